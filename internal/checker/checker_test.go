package checker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
	"buildcheck.io/buildcheck/internal/pkg/logger"
	"buildcheck.io/buildcheck/internal/policy"
	"buildcheck.io/buildcheck/internal/rules"
)

func init() {
	// Initialize logger for tests
	_ = logger.Init("error", "json")
}

const (
	oldJreDigest = "29cb2ee552c7c7a924b6a1b59802508dc5123e7edad1d65d575bbf07cd05fa6d"
	newJreDigest = "218ff7542fc2e54b984cab13eac969f447365b55b053e9ec91f5a90415451f1a"
)

const goodRecipe = "FROM bellsoft/liberica-openjre-alpine:25-37@sha256:" + newJreDigest + "\n" +
	"RUN apk add --no-cache tini\n" +
	"USER 1000\n" +
	"ENTRYPOINT [\"tini\", \"-g\", \"--\", \"/app/run.sh\"]\n"

const badRecipe = "FROM bellsoft/liberica-openjre-alpine:17.0.12-25@sha256:" + oldJreDigest + "\n" +
	"USER root\n"

const (
	goodManifest = "grpcio==1.60.0\nrequests==2.31.0\n"
	badManifest  = "requests\ngrpcio==1.60.0\ngrpcio==1.62.0\n"
)

func migrationPolicy() *policy.Policy {
	return &policy.Policy{
		Version: 1,
		Name:    "openjre-migration",
		Rules: []policy.RuleConfig{
			{ID: rules.RuleDigestTransition, Params: map[string]any{
				"old": oldJreDigest,
				"new": newJreDigest,
			}},
			{ID: rules.RuleVersionToken, Params: map[string]any{
				"required":  "25",
				"forbidden": "17.0.12",
			}},
			{ID: rules.RuleNonrootUser},
			{ID: rules.RulePinnedDeps},
			{ID: rules.RuleNoDuplicateDeps},
		},
	}
}

func writeTarget(t *testing.T, recipeText, manifestText string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte(recipeText), 0o600))
	if manifestText != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte(manifestText), 0o600))
	}
	return dir
}

func TestCheckPasses(t *testing.T) {
	t.Parallel()

	c := New(migrationPolicy(), Options{})
	rep := c.Check(goodRecipe, goodManifest)

	assert.True(t, rep.Passed, "failures: %+v", rep.Failures())
	assert.Len(t, rep.Results, c.RuleCount())
	assert.Equal(t, "openjre-migration", rep.Policy)
}

func TestCheckReportsEveryFailure(t *testing.T) {
	t.Parallel()

	c := New(migrationPolicy(), Options{})
	rep := c.Check(badRecipe, badManifest)

	assert.False(t, rep.Passed)
	assert.Equal(t, 5, rep.Summary.Failed, "every rule should fail on this input")

	byRule := make(map[string]string)
	for _, o := range rep.Failures() {
		byRule[o.RuleID] = o.Message
	}
	assert.Contains(t, byRule[rules.RuleDigestTransition], "superseded digest")
	assert.Contains(t, byRule[rules.RuleVersionToken], "17.0.12")
	assert.Contains(t, byRule[rules.RuleNonrootUser], "root")
	assert.Contains(t, byRule[rules.RulePinnedDeps], "requests")
	assert.Contains(t, byRule[rules.RuleNoDuplicateDeps], "grpcio")
}

func TestCheckKeepsUnknownRulesInReport(t *testing.T) {
	t.Parallel()

	p := &policy.Policy{Name: "typo", Rules: []policy.RuleConfig{
		{ID: "no-such-rule"},
		{ID: rules.RuleSingleStage},
	}}
	c := New(p, Options{})
	rep := c.Check(goodRecipe, "")

	require.Len(t, rep.Results, 2)
	assert.False(t, rep.Results[0].Passed)
	assert.Contains(t, rep.Results[0].Message, `unknown rule "no-such-rule"`)
	assert.True(t, rep.Results[1].Passed)
}

func TestCheckDeterministic(t *testing.T) {
	t.Parallel()

	c := New(migrationPolicy(), Options{})
	first := c.Check(badRecipe, badManifest)
	second := c.Check(badRecipe, badManifest)

	require.Equal(t, first.Results, second.Results)
	require.Equal(t, first.Summary, second.Summary)
}

func TestCheckTarget(t *testing.T) {
	t.Parallel()

	dir := writeTarget(t, goodRecipe, goodManifest)
	c := New(migrationPolicy(), Options{})

	rep, err := c.CheckTarget(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, rep.Passed)
	assert.Equal(t, dir, rep.Target)
	assert.True(t, strings.HasPrefix(rep.RunID, "run-"), "run ID %q", rep.RunID)
}

func TestCheckTargetMissingRecipe(t *testing.T) {
	t.Parallel()

	c := New(migrationPolicy(), Options{})
	rep, err := c.CheckTarget(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Nil(t, rep)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeRecipeLoadFailed, appErr.Code)
	assert.Equal(t, apperrors.ExitError, apperrors.ExitCodeFor(err))
}

func TestCheckTargetMissingManifest(t *testing.T) {
	t.Parallel()

	dir := writeTarget(t, goodRecipe, "")

	// The policy reads the manifest, so its absence is a load error.
	c := New(migrationPolicy(), Options{})
	_, err := c.CheckTarget(context.Background(), dir)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeManifestLoadFailed, appErr.Code)

	// A recipe-only policy degrades to an empty manifest.
	recipeOnly := &policy.Policy{Name: "recipe-only", Rules: []policy.RuleConfig{
		{ID: rules.RuleNonrootUser},
	}}
	rep, err := New(recipeOnly, Options{}).CheckTarget(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, rep.Passed)
}

func TestCheckTargetAlternateFileNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Containerfile"), []byte(goodRecipe), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deps.txt"), []byte(goodManifest), 0o600))

	c := New(migrationPolicy(), Options{RecipeFile: "Containerfile", ManifestFile: "deps.txt"})
	rep, err := c.CheckTarget(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, rep.Passed)
}

func TestCheckTargetCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(migrationPolicy(), Options{})
	_, err := c.CheckTarget(ctx, writeTarget(t, goodRecipe, goodManifest))
	require.ErrorIs(t, err, context.Canceled)
}
