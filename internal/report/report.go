// Package report turns an ordered list of rule outcomes into a verdict
// and renders it as text, JSON or SARIF for CI consumption.
package report

import (
	"time"

	"buildcheck.io/buildcheck/internal/rules"
)

// Summary counts outcomes by result.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Report is the result of evaluating one rule set against one target.
// Results keep evaluation order; the verdict is the conjunction of all
// outcomes. RunID, Target, Policy and Elapsed are attached by the
// checker around the deterministic core.
type Report struct {
	RunID   string          `json:"run_id,omitempty"`
	Target  string          `json:"target,omitempty"`
	Policy  string          `json:"policy,omitempty"`
	Passed  bool            `json:"passed"`
	Summary Summary         `json:"summary"`
	Results []rules.Outcome `json:"results"`
	Elapsed time.Duration   `json:"-"`
}

// New builds a report from evaluation outcomes.
func New(outcomes []rules.Outcome) *Report {
	rep := &Report{Results: outcomes}
	rep.Summary.Total = len(outcomes)
	for _, o := range outcomes {
		if o.Passed {
			rep.Summary.Passed++
		} else {
			rep.Summary.Failed++
		}
	}
	rep.Passed = rep.Summary.Failed == 0
	return rep
}

// Failures returns the failed outcomes, in evaluation order.
func (r *Report) Failures() []rules.Outcome {
	var out []rules.Outcome
	for _, o := range r.Results {
		if !o.Passed {
			out = append(out, o)
		}
	}
	return out
}
