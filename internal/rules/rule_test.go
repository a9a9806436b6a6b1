package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildcheck.io/buildcheck/internal/manifest"
	"buildcheck.io/buildcheck/internal/recipe"
)

func makeInput(recipeText, manifestText string) Input {
	return Input{
		Recipe:   recipe.Parse(recipeText),
		Manifest: manifest.Parse(manifestText),
	}
}

func TestSet_EvaluateRunsEveryRule(t *testing.T) {
	t.Parallel()

	var ran []string
	set := NewSet(
		NewRule("a", "always fails", func(Input) Result {
			ran = append(ran, "a")
			return Fail("a failed")
		}),
		NewRule("b", "always passes", func(Input) Result {
			ran = append(ran, "b")
			return Pass("b ok")
		}),
		NewRule("c", "always fails", func(Input) Result {
			ran = append(ran, "c")
			return Fail("c failed")
		}),
	)

	outcomes := set.Evaluate(makeInput("", ""))

	require.Len(t, outcomes, set.Len())
	assert.Equal(t, []string{"a", "b", "c"}, ran, "an early failure must not stop later rules")
	assert.False(t, outcomes[0].Passed)
	assert.True(t, outcomes[1].Passed)
	assert.False(t, outcomes[2].Passed)
}

func TestSet_EvaluatePreservesOrderAndIdentity(t *testing.T) {
	t.Parallel()

	set := NewSet(
		NewRule("first", "d1", func(Input) Result { return Pass("ok") }),
		NewRule("second", "d2", func(Input) Result { return Fail("bad") }),
	)

	outcomes := set.Evaluate(makeInput("FROM alpine", ""))
	require.Len(t, outcomes, 2)
	assert.Equal(t, "first", outcomes[0].RuleID)
	assert.Equal(t, "d1", outcomes[0].Description)
	assert.Equal(t, "second", outcomes[1].RuleID)
	assert.Equal(t, "bad", outcomes[1].Message)
}

func TestSet_EvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	recipeText := "FROM bellsoft/liberica-openjre-alpine:25-37@sha256:218ff7542fc2e54b984cab13eac969f447365b55b053e9ec91f5a90415451f1a\nRUN apk add --no-cache tini\nUSER 1000\nENTRYPOINT [\"tini\", \"-g\", \"--\"]\n"
	manifestText := "grpcio==1.60.0\nclick==8.1.7\n"

	set := BuildSet([]Config{
		{ID: RuleImageReference},
		{ID: RuleSingleStage},
		{ID: RuleNonrootUser},
		{ID: RuleEntrypointExecForm},
		{ID: RuleNoDuplicateDeps},
		{ID: RulePinnedDeps},
		{ID: RuleManifestFormat},
	})

	first := set.Evaluate(makeInput(recipeText, manifestText))
	second := set.Evaluate(makeInput(recipeText, manifestText))

	require.Equal(t, first, second, "identical inputs must produce identical outcomes")
	assert.Len(t, first, set.Len())
}

func TestSet_EvaluateCountMatchesRules(t *testing.T) {
	t.Parallel()

	configs := []Config{
		{ID: RuleImageReference},
		{ID: "no-such-rule"},
		{ID: RuleLayerBudget}, // missing required "max" parameter
		{ID: RuleNoDuplicateDeps},
	}
	set := BuildSet(configs)

	outcomes := set.Evaluate(makeInput("FROM alpine", ""))
	assert.Len(t, outcomes, len(configs),
		"misconfigured entries still produce one outcome each")
}

func TestSet_EvaluatePanicPropagates(t *testing.T) {
	t.Parallel()

	set := NewSet(NewRule("broken", "panics", func(Input) Result {
		panic("rule bug")
	}))

	assert.Panics(t, func() {
		set.Evaluate(makeInput("", ""))
	}, "unexpected faults must surface, not be swallowed")
}

func TestSet_Add(t *testing.T) {
	t.Parallel()

	set := NewSet()
	assert.Zero(t, set.Len())

	set.Add(NewRule("x", "", func(Input) Result { return Pass("ok") }))
	set.Add(
		NewRule("y", "", func(Input) Result { return Pass("ok") }),
		NewRule("z", "", func(Input) Result { return Pass("ok") }),
	)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, "x", set.Rules()[0].ID())
}

func TestResultConstructors(t *testing.T) {
	t.Parallel()

	pass := Pass("fine")
	assert.True(t, pass.Passed)
	assert.Equal(t, "fine", pass.Message)
	assert.Zero(t, pass.Line)

	fail := Fail("broken")
	assert.False(t, fail.Passed)
	assert.Zero(t, fail.Line)

	at := FailAt(7, "broken there")
	assert.False(t, at.Passed)
	assert.Equal(t, 7, at.Line)
}
