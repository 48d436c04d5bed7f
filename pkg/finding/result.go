package finding

import (
	"errors"
	"fmt"
	"time"
)

// Finding is one human-readable line of check output.
type Finding string

// String returns the finding text.
func (f Finding) String() string {
	return string(f)
}

// Result is the outcome of one check. Findings always carries the lines to
// show the user; Err is set when the check failed, so callers can tell
// "no data" from "could not look".
type Result struct {
	Category   Category  `json:"category"`
	Findings   []Finding `json:"findings"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`

	Err error `json:"-"`
}

// NewResult returns an empty Result for c.
func NewResult(c Category) Result {
	return Result{Category: c, Findings: []Finding{}}
}

// Add appends formatted finding lines.
func (r *Result) Add(lines ...string) {
	for _, l := range lines {
		r.Findings = append(r.Findings, Finding(l))
	}
}

// Addf appends one formatted finding line.
func (r *Result) Addf(format string, args ...any) {
	r.Findings = append(r.Findings, Finding(fmt.Sprintf(format, args...)))
}

// Fail records err as the failure reason and appends line as the finding
// the user sees. err is wrapped with ErrCheckFailed unless it already
// carries ErrNotFetched.
func (r *Result) Fail(err error, line string) {
	if !errors.Is(err, ErrNotFetched) {
		err = fmt.Errorf("%w: %w", ErrCheckFailed, err)
	}
	r.Err = err
	r.Error = err.Error()
	r.Add(line)
}

// Failed reports whether the check could not complete. Error is consulted
// too so decoded reports keep the distinction.
func (r Result) Failed() bool {
	return r.Err != nil || r.Error != ""
}

// Took records how long the check ran.
func (r *Result) Took(d time.Duration) {
	r.DurationMS = d.Milliseconds()
}

// Strings returns the finding lines as plain strings.
func (r Result) Strings() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = string(f)
	}
	return out
}
