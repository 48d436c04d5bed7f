package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shieldscan/shieldscan/pkg/config"
	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/server"
)

func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	listen := fs.String("listen", envOrDefault("SHIELDSCAN_LISTEN", ""), "Listen address (default from config: "+defaults.ListenAddr+")")
	noMetrics := fs.Bool("no-metrics", false, "Do not serve "+defaults.MetricsPath)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: shieldscan serve [flags]\n\n")
		fmt.Fprintf(stderr, "Run the web front end: a form that scans one URL per submission.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return defaults.ExitUserError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, common, stderr, !*noMetrics, func(c *config.Config) {
		if *listen != "" {
			c.Server.Listen = *listen
		}
		if *noMetrics {
			c.Server.Metrics = false
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitCodeFor(err)
	}
	defer e.close(ctx)

	srv, err := server.New(server.Config{
		Addr:    e.cfg.Server.Listen,
		Scanner: e.scanner,
		Metrics: e.metrics,
		Logger:  e.logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return defaults.ExitInternalError
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return defaults.ExitInternalError
	}
	return defaults.ExitSuccess
}
