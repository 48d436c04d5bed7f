// Package health reports whether the web front end is ready to accept scans.
package health

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/jsonutil"
)

// ErrUnhealthy is returned by Checker.Err when any check fails.
var ErrUnhealthy = errors.New("health: unhealthy")

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc reports a problem with one dependency, or nil.
type CheckFunc func(ctx context.Context) error

// Result is one check's outcome.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report is the body served at /health.
type Report struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
	UptimeMS  int64     `json:"uptime_ms"`
	Checks    []Result  `json:"checks"`
}

// IsHealthy returns true if the report indicates healthy status
func (r *Report) IsHealthy() bool {
	return r.Status == StatusHealthy
}

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Checker runs registered checks on demand.
type Checker struct {
	mu      sync.RWMutex
	checks  []namedCheck
	started time.Time
}

// NewChecker creates a Checker with no checks; it reports healthy until one
// is added.
func NewChecker() *Checker {
	return &Checker{started: time.Now().UTC()}
}

// AddCheck registers fn under name. Checks run in registration order.
func (c *Checker) AddCheck(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Check runs every check.
func (c *Checker) Check(ctx context.Context) *Report {
	c.mu.RLock()
	checks := make([]namedCheck, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	rep := &Report{
		Status:    StatusHealthy,
		Version:   defaults.Version,
		StartedAt: c.started,
		UptimeMS:  time.Since(c.started).Milliseconds(),
		Checks:    make([]Result, 0, len(checks)),
	}
	for _, nc := range checks {
		res := Result{Name: nc.name, Status: StatusHealthy}
		if err := nc.fn(ctx); err != nil {
			res.Status = StatusUnhealthy
			res.Message = err.Error()
			rep.Status = StatusUnhealthy
		}
		rep.Checks = append(rep.Checks, res)
	}
	return rep
}

// Err returns ErrUnhealthy when any check fails.
func (c *Checker) Err(ctx context.Context) error {
	if !c.Check(ctx).IsHealthy() {
		return ErrUnhealthy
	}
	return nil
}

// Handler serves the report as JSON: 200 when healthy, 503 otherwise.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rep := c.Check(r.Context())
		w.Header().Set("Content-Type", defaults.ContentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		if !rep.IsHealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = jsonutil.Write(w, rep, "")
	})
}
