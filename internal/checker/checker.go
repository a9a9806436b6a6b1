// Package checker orchestrates a compliance check: load the inputs,
// parse them, evaluate the policy's rule set, assemble the report.
package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"buildcheck.io/buildcheck/internal/manifest"
	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
	"buildcheck.io/buildcheck/internal/pkg/logger"
	"buildcheck.io/buildcheck/internal/policy"
	"buildcheck.io/buildcheck/internal/recipe"
	"buildcheck.io/buildcheck/internal/report"
	"buildcheck.io/buildcheck/internal/rules"
)

// Options name the files a target directory provides.
type Options struct {
	RecipeFile   string
	ManifestFile string
}

func (o Options) withDefaults() Options {
	if o.RecipeFile == "" {
		o.RecipeFile = "Dockerfile"
	}
	if o.ManifestFile == "" {
		o.ManifestFile = "requirements.txt"
	}
	return o
}

// Checker evaluates one policy. The rule set is bound once at
// construction; unknown or misconfigured policy entries stay in the set
// as always-failing rules, so every report covers every enabled rule.
type Checker struct {
	policy *policy.Policy
	set    *rules.Set
	opts   Options
}

// New builds a checker for the policy.
func New(p *policy.Policy, opts Options) *Checker {
	return &Checker{
		policy: p,
		set:    rules.BuildSet(p.Configs()),
		opts:   opts.withDefaults(),
	}
}

// RuleCount returns the number of enabled rules.
func (c *Checker) RuleCount() int {
	return c.set.Len()
}

// Check parses the input texts and evaluates every enabled rule.
// It is pure: no I/O, no clock. Run metadata is attached by callers
// that have it.
func (c *Checker) Check(recipeText, manifestText string) *report.Report {
	in := rules.Input{
		Recipe:   recipe.Parse(recipeText),
		Manifest: manifest.Parse(manifestText),
	}
	rep := report.New(c.set.Evaluate(in))
	rep.Policy = c.policy.Name
	return rep
}

// CheckTarget loads the recipe and manifest files from dir and checks
// them. A missing or unreadable recipe is a load error, never a rule
// failure. A missing manifest degrades to an empty one when no enabled
// rule reads the manifest; otherwise it is a load error too.
func (c *Checker) CheckTarget(ctx context.Context, dir string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	recipePath := filepath.Join(dir, c.opts.RecipeFile)
	recipeData, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, apperrors.ErrRecipeLoadFailed(recipePath, err)
	}

	manifestPath := filepath.Join(dir, c.opts.ManifestFile)
	manifestData, err := os.ReadFile(manifestPath)
	if err != nil {
		if c.policy.NeedsManifest() {
			return nil, apperrors.ErrManifestLoadFailed(manifestPath, err)
		}
		manifestData = nil
	}

	rep := c.Check(string(recipeData), string(manifestData))
	rep.RunID = generateRunID()
	rep.Target = dir
	rep.Elapsed = time.Since(start)

	logger.Debug("Checked target",
		zap.String("run_id", rep.RunID),
		zap.String("target", dir),
		zap.String("policy", c.policy.Name),
		zap.Bool("passed", rep.Passed),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func generateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("run-%s", uuid.New().String())
	}
	return fmt.Sprintf("run-%s", id.String())
}
