// Package server is the web front end: a form that takes a URL, runs a scan
// and shows the results as an HTML page or JSON.
//
// Routes:
//
//	GET  /         form page
//	GET  /scan     form page
//	POST /scan     run a scan of the "url" form field
//	GET  /health   readiness report
//	GET  /metrics  Prometheus metrics (when enabled)
package server

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/duration"
	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/health"
	"github.com/shieldscan/shieldscan/pkg/jsonutil"
	"github.com/shieldscan/shieldscan/pkg/metrics"
	"github.com/shieldscan/shieldscan/pkg/report"
	"github.com/shieldscan/shieldscan/pkg/target"
)

// MsgEmptyURL is shown when the form is submitted without a URL.
const MsgEmptyURL = "Please enter a URL."

// maxFormBytes caps the POST body.
const maxFormBytes = 64 << 10

// ErrDraining is reported by /health once shutdown has begun.
var ErrDraining = errors.New("server: shutting down")

// Scanner runs one scan. *scanner.Scanner implements it.
type Scanner interface {
	Run(ctx context.Context, rawURL string) (*finding.Report, error)
}

// Config configures a Server.
type Config struct {
	// Addr is the listen address (default: ":5000")
	Addr string

	Scanner Scanner

	// Generator renders results (default: report.NewGenerator())
	Generator *report.Generator

	// Metrics, when set, is served at /metrics
	Metrics *metrics.Metrics

	Logger *slog.Logger
}

// Server serves the front end.
type Server struct {
	addr      string
	scanner   Scanner
	generator *report.Generator
	metrics   *metrics.Metrics
	health    *health.Checker
	index     *htmltemplate.Template
	logger    *slog.Logger
	draining  atomic.Bool
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Scanner == nil {
		return nil, errors.New("server: nil scanner")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaults.ListenAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Generator == nil {
		g, err := report.NewGenerator()
		if err != nil {
			return nil, err
		}
		cfg.Generator = g
	}
	index, err := htmltemplate.New("index").Funcs(sprig.FuncMap()).Parse(indexTmpl)
	if err != nil {
		return nil, fmt.Errorf("server: parse index template: %w", err)
	}

	s := &Server{
		addr:      cfg.Addr,
		scanner:   cfg.Scanner,
		generator: cfg.Generator,
		metrics:   cfg.Metrics,
		health:    health.NewChecker(),
		index:     index,
		logger:    cfg.Logger,
	}
	s.health.AddCheck("server", func(context.Context) error {
		if s.draining.Load() {
			return ErrDraining
		}
		return nil
	})
	return s, nil
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /scan", s.handleIndex)
	mux.HandleFunc("POST /scan", s.handleScan)
	mux.Handle("GET /health", s.health.Handler())
	if s.metrics != nil {
		mux.Handle("GET "+defaults.MetricsPath, s.metrics.Handler())
	}
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to duration.ServerShutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: duration.ServerReadHeader,
		IdleTimeout:       duration.ServerIdle,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web front end listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.draining.Store(true)
	s.logger.Info("shutting down web front end")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), duration.ServerShutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type indexView struct {
	Error   string
	URL     string
	Version string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, indexView{})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, "", err.Error())
		return
	}
	rawURL := strings.TrimSpace(r.FormValue("url"))
	if rawURL == "" {
		// The form page answers 200 like any other render; API callers
		// get a 400.
		status := http.StatusOK
		if wantsJSON(r) {
			status = http.StatusBadRequest
		}
		s.fail(w, r, status, "", MsgEmptyURL)
		return
	}

	rep, err := s.scanner.Run(r.Context(), rawURL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, target.ErrNoSchemeSeparator) {
			status = http.StatusBadRequest
		}
		s.fail(w, r, status, rawURL, err.Error())
		return
	}

	format := report.FormatHTML
	if wantsJSON(r) {
		format = report.FormatJSON
	} else if q := r.URL.Query().Get("format"); q != "" {
		if f, err := report.ParseFormat(q); err == nil && f != report.FormatConsole {
			format = f
		}
	}

	body, err := s.generator.GenerateToString(rep, format)
	if err != nil {
		s.logger.Error("render failed", slog.String("format", string(format)), slog.String("error", err.Error()))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write([]byte(body))
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, rawURL, msg string) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", defaults.ContentTypeJSON)
		w.WriteHeader(status)
		_ = jsonutil.Write(w, errorBody{Error: msg}, "")
		return
	}
	s.renderIndex(w, status, indexView{Error: msg, URL: rawURL})
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, v indexView) {
	v.Version = defaults.Version
	w.Header().Set("Content-Type", defaults.ContentTypeHTML)
	w.WriteHeader(status)
	if err := s.index.Execute(w, v); err != nil {
		s.logger.Error("render index failed", slog.String("error", err.Error()))
	}
}

// wantsJSON reports whether the client asked for JSON via Accept or
// ?format=json.
func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), defaults.ContentTypeJSON)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)),
		)
	})
}
