package trial

import (
	"fmt"
	"strings"
)

// AssertionError is a trial-level verification failure: checksum
// mismatch, wrong entry count, size-extension flag mismatch or a missing
// required artifact. It aborts the current trial immediately and is
// never retried.
type AssertionError struct {
	Trial    string // scenario name, carries index and policy combination
	Subject  string // entry name or aspect under test
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed in %s", e.Trial)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " (%s)", e.Subject)
	}
	fmt.Fprintf(&buf, ": expected %s, got %s", e.Expected, e.Actual)
	return buf.String()
}

// TrialResult is the outcome of one matrix cell.
type TrialResult struct {
	Spec    Spec   `json:"-"`
	Name    string `json:"name"`
	Pass    bool   `json:"pass"`
	Error   string `json:"error,omitempty"`
	Entries int    `json:"entries"`
	Bytes   int64  `json:"bytes"`

	// mismatch marks a checksum verification failure, which stops the
	// whole matrix rather than continuing into dependent trials.
	mismatch bool
}

// Report aggregates a whole matrix run.
type Report struct {
	Name   string        `json:"name"`
	Pass   bool          `json:"pass"`
	Trials []TrialResult `json:"trials"`
}

// NewReport starts a passing report.
func NewReport(name string) *Report {
	return &Report{Name: name, Pass: true}
}

// Add records one trial outcome, updating the aggregate pass flag.
func (r *Report) Add(tr TrialResult) {
	if !tr.Pass {
		r.Pass = false
	}
	r.Trials = append(r.Trials, tr)
}

// Failed returns the failing trial results.
func (r *Report) Failed() []TrialResult {
	var out []TrialResult
	for _, tr := range r.Trials {
		if !tr.Pass {
			out = append(out, tr)
		}
	}
	return out
}

// Summary renders a one-line human-readable outcome.
func (r *Report) Summary() string {
	failed := len(r.Failed())
	if failed == 0 {
		return fmt.Sprintf("%s: %d trials passed", r.Name, len(r.Trials))
	}
	return fmt.Sprintf("%s: %d of %d trials failed", r.Name, failed, len(r.Trials))
}
