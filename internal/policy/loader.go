package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
)

// Load reads a YAML policy file. Read and decode failures come back as
// coded load errors so the caller can map them to the fatal exit path.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrPolicyLoadFailed(path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, apperrors.ErrPolicyLoadFailed(path, err)
	}
	return p, nil
}

// Parse decodes YAML policy data and validates its shape. Unknown rule
// identifiers are NOT rejected here: they surface as failed outcomes in
// the report so a typo cannot silently shrink the rule set.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the structural invariants a decoded policy must hold.
func (p *Policy) Validate() error {
	if len(p.Rules) == 0 {
		return fmt.Errorf("policy %q enables no rules", p.Name)
	}
	for i, rc := range p.Rules {
		if rc.ID == "" {
			return fmt.Errorf("policy %q: rules[%d] has no rule identifier", p.Name, i)
		}
	}
	return nil
}
