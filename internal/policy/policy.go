// Package policy holds the declarative configuration a check run
// evaluates: which rules are enabled, in what order, with what
// parameters. A policy is pure data; binding to runnable rules happens
// in the rules package.
package policy

import (
	"buildcheck.io/buildcheck/internal/rules"
)

// Policy is an ordered list of rule activations plus descriptive
// metadata. Order is preserved through evaluation and reporting.
type Policy struct {
	Version     int          `yaml:"version" json:"version"`
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Rules       []RuleConfig `yaml:"rules" json:"rules"`
}

// RuleConfig enables one catalog rule with its parameters.
type RuleConfig struct {
	ID     string         `yaml:"rule" json:"rule"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// Configs converts the policy into the binding form consumed by
// rules.BuildSet, preserving order.
func (p *Policy) Configs() []rules.Config {
	out := make([]rules.Config, 0, len(p.Rules))
	for _, rc := range p.Rules {
		out = append(out, rules.Config{ID: rc.ID, Params: rules.Params(rc.Params)})
	}
	return out
}

// RuleIDs returns the enabled rule identifiers in policy order.
func (p *Policy) RuleIDs() []string {
	ids := make([]string, 0, len(p.Rules))
	for _, rc := range p.Rules {
		ids = append(ids, rc.ID)
	}
	return ids
}

// NeedsManifest reports whether any enabled rule reads the dependency
// manifest. When false, a check can run without a manifest file.
func (p *Policy) NeedsManifest() bool {
	for _, rc := range p.Rules {
		if rules.UsesManifest(rc.ID) {
			return true
		}
	}
	return false
}

// Default returns the built-in conservative policy applied when no
// policy file is given. It sticks to rules that need no site-specific
// parameters.
func Default() *Policy {
	return &Policy{
		Version:     1,
		Name:        "default",
		Description: "conservative baseline for containerized services",
		Rules: []RuleConfig{
			{ID: rules.RuleImageReference},
			{ID: rules.RuleFirstDirective},
			{ID: rules.RuleSingleStage},
			{ID: rules.RuleNonrootUser},
			{ID: rules.RuleEntrypointExecForm},
			{ID: rules.RuleNoDuplicateDeps},
			{ID: rules.RulePinnedDeps},
			{ID: rules.RuleManifestFormat},
		},
	}
}
