// Package rules provides the compliance rule engine for build recipes and
// dependency manifests. Rules are pure predicates over parsed documents;
// a rule set evaluates every rule and never short-circuits, so one run
// yields exactly one outcome per configured rule.
package rules

import (
	"buildcheck.io/buildcheck/internal/manifest"
	"buildcheck.io/buildcheck/internal/recipe"
)

// Input carries the parsed documents a rule evaluates against.
type Input struct {
	Recipe   *recipe.Document
	Manifest *manifest.Manifest
}

// Result is the outcome of one rule evaluation. Line is the 1-based
// physical line number of the offending line, 0 when the finding is not
// tied to a line.
type Result struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Pass builds a passing result.
func Pass(message string) Result {
	return Result{Passed: true, Message: message}
}

// Fail builds a failing result with no line reference.
func Fail(message string) Result {
	return Result{Message: message}
}

// FailAt builds a failing result pointing at a 1-based line number.
func FailAt(line int, message string) Result {
	return Result{Message: message, Line: line}
}

// Rule is a single named compliance check.
type Rule interface {
	// ID returns the rule identifier, kebab-case, e.g. "image-reference".
	ID() string

	// Description returns a one-line summary of what the rule enforces.
	Description() string

	// Evaluate judges the input. Implementations are pure: no I/O, no
	// clock, no mutation of the input.
	Evaluate(in Input) Result
}

// EvaluateFunc adapts a plain function into a rule body.
type EvaluateFunc func(in Input) Result

// NewRule builds a rule from an identifier, description and body.
func NewRule(id, description string, fn EvaluateFunc) Rule {
	return &simpleRule{id: id, description: description, fn: fn}
}

type simpleRule struct {
	id          string
	description string
	fn          EvaluateFunc
}

func (r *simpleRule) ID() string          { return r.id }
func (r *simpleRule) Description() string { return r.description }

func (r *simpleRule) Evaluate(in Input) Result {
	return r.fn(in)
}

// Outcome pairs a rule identity with its result.
type Outcome struct {
	RuleID      string `json:"rule"`
	Description string `json:"description,omitempty"`
	Result
}

// Set is an ordered collection of rules evaluated as a unit.
type Set struct {
	rules []Rule
}

// NewSet builds a set from rules in evaluation order.
func NewSet(rules ...Rule) *Set {
	return &Set{rules: rules}
}

// Add appends rules to the set.
func (s *Set) Add(rules ...Rule) {
	s.rules = append(s.rules, rules...)
}

// Rules returns the rules in evaluation order.
func (s *Set) Rules() []Rule {
	return s.rules
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Evaluate runs every rule in order and returns one outcome per rule.
// Earlier failures never suppress later rules. A panic inside a rule is
// an engine bug and propagates to the caller.
func (s *Set) Evaluate(in Input) []Outcome {
	outcomes := make([]Outcome, 0, len(s.rules))
	for _, r := range s.rules {
		outcomes = append(outcomes, Outcome{
			RuleID:      r.ID(),
			Description: r.Description(),
			Result:      r.Evaluate(in),
		})
	}
	return outcomes
}
