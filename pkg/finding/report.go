package finding

import (
	"sort"
	"strings"
	"time"
)

// VulnerablePrefix starts every positive SQL injection finding.
const VulnerablePrefix = "SQL injection attack vulnerability in link: "

// Report is the aggregated output of one scan.
type Report struct {
	ID         string    `json:"id"`
	Target     string    `json:"target"`
	Host       string    `json:"host"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Results    []Result  `json:"results"`
}

// NewReport starts a report for target.
func NewReport(id, target, host string) *Report {
	return &Report{
		ID:        id,
		Target:    target,
		Host:      host,
		StartedAt: time.Now().UTC(),
		Results:   []Result{},
	}
}

// Add stores res, replacing any earlier result for the same category, and
// keeps Results in category order.
func (r *Report) Add(res Result) {
	for i := range r.Results {
		if r.Results[i].Category == res.Category {
			r.Results[i] = res
			return
		}
	}
	r.Results = append(r.Results, res)
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Category.index() < r.Results[j].Category.index()
	})
}

// Get returns the result for c.
func (r *Report) Get(c Category) (Result, bool) {
	for _, res := range r.Results {
		if res.Category == c {
			return res, true
		}
	}
	return Result{}, false
}

// Findings returns the finding lines for c, or nil when c was not run.
func (r *Report) Findings(c Category) []Finding {
	res, ok := r.Get(c)
	if !ok {
		return nil
	}
	return res.Findings
}

// Map returns the report as category name to finding lines.
func (r *Report) Map() map[string][]string {
	m := make(map[string][]string, len(r.Results))
	for _, res := range r.Results {
		m[string(res.Category)] = res.Strings()
	}
	return m
}

// Finish stamps the total scan duration.
func (r *Report) Finish() {
	r.DurationMS = time.Since(r.StartedAt).Milliseconds()
}

// Vulnerable reports whether the injection check flagged any form.
func (r *Report) Vulnerable() bool {
	for _, f := range r.Findings(SQLInjection) {
		if strings.HasPrefix(string(f), VulnerablePrefix) {
			return true
		}
	}
	return false
}

// Failures returns the categories whose check failed.
func (r *Report) Failures() []Category {
	var out []Category
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res.Category)
		}
	}
	return out
}

// Count returns the total number of finding lines.
func (r *Report) Count() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Findings)
	}
	return n
}
