package rules

import (
	"fmt"
	"sort"
)

// Built-in rule identifiers.
const (
	RuleImageReference      = "image-reference"
	RuleDigestTransition    = "digest-transition"
	RuleVersionToken        = "version-token"
	RuleSingleStage         = "single-stage"
	RuleFirstDirective      = "first-directive"
	RuleRequiredLabels      = "required-labels"
	RuleVersionConsistency  = "version-consistency"
	RuleRequiredEnv         = "required-env"
	RuleRequiredArgs        = "required-args"
	RuleNonrootUser         = "nonroot-user"
	RuleEntrypointExecForm  = "entrypoint-exec-form"
	RuleLayerBudget         = "layer-budget"
	RuleForbiddenPatterns   = "forbidden-patterns"
	RuleCleanupAfterInstall = "cleanup-after-install"
	RuleCopyBeforeInstall   = "copy-before-install"
	RuleNoDuplicateDeps     = "no-duplicate-deps"
	RulePinnedDeps          = "pinned-deps"
	RuleRequiredDeps        = "required-deps"
	RuleManifestFormat      = "manifest-format"
)

// descriptions is the single source for rule summaries, shared by the
// rule constructors and the catalog listing.
var descriptions = map[string]string{
	RuleImageReference:      "base image reference is pinned and comes from an approved registry",
	RuleDigestTransition:    "superseded base image digest is gone and its replacement is referenced",
	RuleVersionToken:        "required version tokens appear and superseded ones do not",
	RuleSingleStage:         "recipe declares the expected number of build stages",
	RuleFirstDirective:      "recipe opens with an allowed directive",
	RuleRequiredLabels:      "every required image label is declared",
	RuleVersionConsistency:  "image version label agrees with the release version environment variable",
	RuleRequiredEnv:         "every required environment variable is defined",
	RuleRequiredArgs:        "every required build argument is declared, with its expected default",
	RuleNonrootUser:         "container runs as a non-root user declared after privileged build steps",
	RuleEntrypointExecForm:  "entrypoint uses exec form so signals reach the process",
	RuleLayerBudget:         "layer-producing instructions stay within budget",
	RuleForbiddenPatterns:   "no recipe line matches a forbidden pattern",
	RuleCleanupAfterInstall: "install steps clean their caches and scratch space",
	RuleCopyBeforeInstall:   "dependency files are copied before the install step that reads them",
	RuleNoDuplicateDeps:     "no dependency is declared more than once",
	RulePinnedDeps:          "every dependency carries a version constraint",
	RuleRequiredDeps:        "required dependencies are present at acceptable versions",
	RuleManifestFormat:      "manifest text is tidy: no trailing whitespace, no blank-line runs",
}

func describe(id string) string {
	return descriptions[id]
}

// newCatalogRule builds a rule carrying its registered description.
func newCatalogRule(id string, fn EvaluateFunc) Rule {
	return NewRule(id, describe(id), fn)
}

// Factory builds a rule instance from its policy parameters.
type Factory func(params Params) (Rule, error)

var factories = map[string]Factory{
	RuleImageReference:      newImageReferenceRule,
	RuleDigestTransition:    newDigestTransitionRule,
	RuleVersionToken:        newVersionTokenRule,
	RuleSingleStage:         newSingleStageRule,
	RuleFirstDirective:      newFirstDirectiveRule,
	RuleRequiredLabels:      newRequiredLabelsRule,
	RuleVersionConsistency:  newVersionConsistencyRule,
	RuleRequiredEnv:         newRequiredEnvRule,
	RuleRequiredArgs:        newRequiredArgsRule,
	RuleNonrootUser:         newNonrootUserRule,
	RuleEntrypointExecForm:  newEntrypointExecFormRule,
	RuleLayerBudget:         newLayerBudgetRule,
	RuleForbiddenPatterns:   newForbiddenPatternsRule,
	RuleCleanupAfterInstall: newCleanupAfterInstallRule,
	RuleCopyBeforeInstall:   newCopyBeforeInstallRule,
	RuleNoDuplicateDeps:     newNoDuplicateDepsRule,
	RulePinnedDeps:          newPinnedDepsRule,
	RuleRequiredDeps:        newRequiredDepsRule,
	RuleManifestFormat:      newManifestFormatRule,
}

// Known reports whether id names a built-in rule.
func Known(id string) bool {
	_, ok := factories[id]
	return ok
}

// manifestRules are the built-ins that read the dependency manifest.
var manifestRules = map[string]bool{
	RuleNoDuplicateDeps: true,
	RulePinnedDeps:      true,
	RuleRequiredDeps:    true,
	RuleManifestFormat:  true,
}

// UsesManifest reports whether the rule reads the dependency manifest.
// Callers use it to decide whether a missing manifest file matters.
func UsesManifest(id string) bool {
	return manifestRules[id]
}

// Info describes a built-in rule for catalog listings.
type Info struct {
	ID          string
	Description string
}

// Catalog returns every built-in rule, sorted by identifier.
func Catalog() []Info {
	out := make([]Info, 0, len(descriptions))
	for id, desc := range descriptions {
		out = append(out, Info{ID: id, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Config is one rule activation from a policy document.
type Config struct {
	ID     string
	Params Params
}

// Build resolves one policy entry into a runnable rule. Unknown
// identifiers and bad parameters yield a misconfigured rule that always
// fails, so the report stays total instead of silently shrinking.
func Build(id string, params Params) Rule {
	factory, ok := factories[id]
	if !ok {
		return misconfigured(id, fmt.Errorf("unknown rule %q", id))
	}
	r, err := factory(params)
	if err != nil {
		return misconfigured(id, err)
	}
	return r
}

// BuildSet resolves policy entries into a runnable set, in order.
func BuildSet(configs []Config) *Set {
	set := NewSet()
	for _, c := range configs {
		set.Add(Build(c.ID, c.Params))
	}
	return set
}

func misconfigured(id string, err error) Rule {
	return NewRule(id, "misconfigured rule", func(Input) Result {
		return Fail(fmt.Sprintf("rule configuration error: %v", err))
	})
}
