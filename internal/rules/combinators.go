package rules

import (
	"fmt"
	"strings"
)

// Predicate is a named boolean check used by the combinator rules.
type Predicate struct {
	Name string
	Test func(in Input) bool
}

// AllOf builds a rule that passes when every predicate holds. All
// predicates run; the failure message names each one that did not hold.
func AllOf(id, description string, preds ...Predicate) Rule {
	return NewRule(id, description, func(in Input) Result {
		failed := runPredicates(preds, in, false)
		if len(failed) > 0 {
			return Fail(fmt.Sprintf("failed: %s", strings.Join(failed, ", ")))
		}
		return Pass(fmt.Sprintf("all %d checks hold", len(preds)))
	})
}

// AnyOf builds a rule that passes when at least one predicate holds.
func AnyOf(id, description string, preds ...Predicate) Rule {
	return NewRule(id, description, func(in Input) Result {
		failed := runPredicates(preds, in, false)
		if len(failed) == len(preds) && len(preds) > 0 {
			return Fail(fmt.Sprintf("none hold: %s", strings.Join(failed, ", ")))
		}
		return Pass("at least one check holds")
	})
}

// NoneOf builds a rule that passes when no predicate holds. The failure
// message names each predicate that matched.
func NoneOf(id, description string, preds ...Predicate) Rule {
	return NewRule(id, description, func(in Input) Result {
		held := runPredicates(preds, in, true)
		if len(held) > 0 {
			return Fail(fmt.Sprintf("matched: %s", strings.Join(held, ", ")))
		}
		return Pass("no forbidden condition holds")
	})
}

// runPredicates evaluates every predicate and returns the names of those
// whose result equals want. No short-circuiting, matching set evaluation.
func runPredicates(preds []Predicate, in Input, want bool) []string {
	var names []string
	for _, p := range preds {
		if p.Test(in) == want {
			names = append(names, p.Name)
		}
	}
	return names
}
