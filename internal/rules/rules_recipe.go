package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"buildcheck.io/buildcheck/internal/recipe"
)

func newRequiredLabelsRule(params Params) (Rule, error) {
	labels, err := params.StringList("labels")
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleRequiredLabels,
		func(in Input) Result {
			defined := definedKeys(in.Recipe, recipe.DirectiveLabel)
			var missing []string
			for _, key := range labels {
				if !defined[key] {
					missing = append(missing, key)
				}
			}
			if len(missing) > 0 {
				return Fail(fmt.Sprintf("missing label(s): %s", strings.Join(missing, ", ")))
			}
			return Pass(fmt.Sprintf("all %d required labels present", len(labels)))
		}), nil
}

func newVersionConsistencyRule(params Params) (Rule, error) {
	envKey, err := params.String("env_key")
	if err != nil {
		return nil, err
	}
	labelKey, err := params.String("label_key")
	if err != nil {
		return nil, err
	}
	requireSemver, err := params.Bool("semver", true)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleVersionConsistency,
		func(in Input) Result {
			envValue, ok := lastValueOf(in.Recipe, recipe.DirectiveEnv, envKey)
			if !ok {
				return Fail(fmt.Sprintf("environment variable %s is not defined", envKey))
			}
			labelValue, ok := lastValueOf(in.Recipe, recipe.DirectiveLabel, labelKey)
			if !ok {
				return Fail(fmt.Sprintf("label %s is not declared", labelKey))
			}
			if !strings.HasPrefix(labelValue, envValue) {
				return Fail(fmt.Sprintf("label %s=%q does not carry %s=%q",
					labelKey, labelValue, envKey, envValue))
			}
			if requireSemver {
				if _, err := semver.NewVersion(labelValue); err != nil {
					return Fail(fmt.Sprintf("label %s=%q is not a semantic version", labelKey, labelValue))
				}
			}
			return Pass(fmt.Sprintf("%s and %s agree on %q", envKey, labelKey, envValue))
		}), nil
}

func newRequiredEnvRule(params Params) (Rule, error) {
	keys, err := params.StringList("keys")
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleRequiredEnv,
		func(in Input) Result {
			defined := definedKeys(in.Recipe, recipe.DirectiveEnv)
			var missing []string
			for _, key := range keys {
				if !defined[key] {
					missing = append(missing, key)
				}
			}
			if len(missing) > 0 {
				return Fail(fmt.Sprintf("missing environment variable(s): %s", strings.Join(missing, ", ")))
			}
			return Pass(fmt.Sprintf("all %d required environment variables defined", len(keys)))
		}), nil
}

func newRequiredArgsRule(params Params) (Rule, error) {
	names, err := params.StringListDefault("args", nil)
	if err != nil {
		return nil, err
	}
	defaults, err := params.StringMap("defaults")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 && len(defaults) == 0 {
		return nil, fmt.Errorf("at least one of parameters %q and %q must be set", "args", "defaults")
	}

	defaultNames := make([]string, 0, len(defaults))
	for name := range defaults {
		defaultNames = append(defaultNames, name)
	}
	sort.Strings(defaultNames)

	return newCatalogRule(RuleRequiredArgs,
		func(in Input) Result {
			declared := make(map[string]string)
			for _, u := range in.Recipe.UnitsOf(recipe.DirectiveArg) {
				fields := strings.Fields(u.Args)
				if len(fields) == 0 {
					continue
				}
				name, value, _ := strings.Cut(fields[0], "=")
				declared[name] = value
			}

			var problems []string
			for _, name := range names {
				if _, ok := declared[name]; !ok {
					problems = append(problems, fmt.Sprintf("ARG %s not declared", name))
				}
			}
			for _, name := range defaultNames {
				want := defaults[name]
				got, ok := declared[name]
				switch {
				case !ok:
					problems = append(problems, fmt.Sprintf("ARG %s not declared", name))
				case got != want:
					problems = append(problems, fmt.Sprintf("ARG %s defaults to %q, expected %q", name, got, want))
				}
			}

			if len(problems) > 0 {
				return Fail(strings.Join(problems, "; "))
			}
			return Pass("all required build arguments declared")
		}), nil
}

// defaultPrivilegedPattern marks RUN steps that need root: package
// installs, account management and ownership changes.
const defaultPrivilegedPattern = `(?i)\b(apk add|apk update|apt-get|yum|dnf|adduser|addgroup|useradd|groupadd|chown|chmod|install)\b`

func newNonrootUserRule(params Params) (Rule, error) {
	pattern, err := params.StringDefault("privileged_pattern", defaultPrivilegedPattern)
	if err != nil {
		return nil, err
	}
	privileged, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", "privileged_pattern", err)
	}
	numeric, err := params.Bool("numeric", false)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleNonrootUser,
		func(in Input) Result {
			users := in.Recipe.UnitsOf(recipe.DirectiveUser)
			if len(users) == 0 {
				return Fail("recipe never drops root: no USER directive")
			}
			final := users[len(users)-1]
			account := final.Args
			if fields := strings.Fields(account); len(fields) > 0 {
				account = fields[0]
			}
			uid, _, _ := strings.Cut(account, ":")

			if strings.EqualFold(uid, "root") || uid == "0" {
				return FailAt(final.LineNumber(), fmt.Sprintf("final USER is %q", account))
			}
			if numeric && !numericUserPattern.MatchString(account) {
				return FailAt(final.LineNumber(),
					fmt.Sprintf("final USER %q is not a numeric uid", account))
			}

			for _, u := range in.Recipe.UnitsOf(recipe.DirectiveRun) {
				if u.Start > final.Start && privileged.MatchString(u.Args) {
					return FailAt(u.LineNumber(),
						fmt.Sprintf("privileged RUN after final USER %s", account))
				}
			}
			for _, u := range in.Recipe.UnitsOf(recipe.DirectiveCopy) {
				if u.Start > final.Start {
					return FailAt(u.LineNumber(),
						fmt.Sprintf("COPY after final USER %s", account))
				}
			}
			return Pass(fmt.Sprintf("container runs as %s", account))
		}), nil
}

var numericUserPattern = regexp.MustCompile(`^\d+(:\d+)?$`)

func newEntrypointExecFormRule(params Params) (Rule, error) {
	requireToken, err := params.StringDefault("require_token", "")
	if err != nil {
		return nil, err
	}
	requireCmd, err := params.Bool("require_cmd", false)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleEntrypointExecForm,
		func(in Input) Result {
			entrypoints := in.Recipe.UnitsOf(recipe.DirectiveEntrypoint)
			if len(entrypoints) == 0 {
				return Fail("recipe declares no ENTRYPOINT")
			}
			final := entrypoints[len(entrypoints)-1]
			args, ok := final.JSONArgs()
			if !ok {
				return FailAt(final.LineNumber(), "ENTRYPOINT uses shell form")
			}
			if requireToken != "" && !strings.Contains(strings.Join(args, " "), requireToken) {
				return FailAt(final.LineNumber(),
					fmt.Sprintf("ENTRYPOINT does not invoke %q", requireToken))
			}
			if requireCmd && len(in.Recipe.UnitsOf(recipe.DirectiveCmd)) == 0 {
				return Fail("ENTRYPOINT has no CMD supplying default arguments")
			}
			return Pass("ENTRYPOINT uses exec form")
		}), nil
}

func newLayerBudgetRule(params Params) (Rule, error) {
	limit, err := params.Int("max")
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleLayerBudget,
		func(in Input) Result {
			count := 0
			for _, d := range []recipe.Directive{recipe.DirectiveRun, recipe.DirectiveCopy, recipe.DirectiveAdd} {
				count += len(in.Recipe.UnitsOf(d))
			}
			if count > limit {
				return Fail(fmt.Sprintf("%d layer-producing instructions exceed the budget of %d", count, limit))
			}
			return Pass(fmt.Sprintf("%d layer-producing instructions within budget of %d", count, limit))
		}), nil
}

func newForbiddenPatternsRule(params Params) (Rule, error) {
	raw, err := params.StringList("patterns")
	if err != nil {
		return nil, err
	}
	patterns := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", "patterns", err)
		}
		patterns = append(patterns, re)
	}

	return newCatalogRule(RuleForbiddenPatterns,
		func(in Input) Result {
			var problems []string
			line := 0
			for _, re := range patterns {
				for _, l := range in.Recipe.Lines() {
					if re.MatchString(l.Raw) {
						problems = append(problems,
							fmt.Sprintf("pattern %q matches line %d", re.String(), l.Index+1))
						if line == 0 {
							line = l.Index + 1
						}
						break
					}
				}
			}
			if len(problems) > 0 {
				return FailAt(line, strings.Join(problems, "; "))
			}
			return Pass("no forbidden pattern matches")
		}), nil
}

type cleanupPair struct {
	name    string
	trigger *regexp.Regexp
	cleanup *regexp.Regexp
}

func newCleanupAfterInstallRule(params Params) (Rule, error) {
	rawPairs, err := params.MapList("pairs")
	if err != nil {
		return nil, err
	}
	if len(rawPairs) == 0 {
		return nil, missingParam("pairs")
	}

	pairs := make([]cleanupPair, 0, len(rawPairs))
	for i, raw := range rawPairs {
		block := Params(raw)
		trigger, err := block.String("trigger")
		if err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}
		cleanup, err := block.String("cleanup")
		if err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}
		name, err := block.StringDefault("name", trigger)
		if err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}
		pair := cleanupPair{name: name}
		if pair.trigger, err = regexp.Compile(trigger); err != nil {
			return nil, fmt.Errorf("pairs[%d].trigger: %w", i, err)
		}
		if pair.cleanup, err = regexp.Compile(cleanup); err != nil {
			return nil, fmt.Errorf("pairs[%d].cleanup: %w", i, err)
		}
		pairs = append(pairs, pair)
	}

	return newCatalogRule(RuleCleanupAfterInstall,
		func(in Input) Result {
			runs := in.Recipe.UnitsOf(recipe.DirectiveRun)

			var problems []string
			line := 0
			for _, pair := range pairs {
				triggerLine := 0
				for _, u := range runs {
					if pair.trigger.MatchString(u.Args) {
						triggerLine = u.LineNumber()
						break
					}
				}
				if triggerLine == 0 {
					continue
				}
				cleaned := false
				for _, u := range runs {
					if pair.cleanup.MatchString(u.Args) {
						cleaned = true
						break
					}
				}
				if !cleaned {
					problems = append(problems, fmt.Sprintf("%s: no cleanup step", pair.name))
					if line == 0 {
						line = triggerLine
					}
				}
			}
			if len(problems) > 0 {
				return FailAt(line, strings.Join(problems, "; "))
			}
			return Pass("install steps clean up after themselves")
		}), nil
}

func newCopyBeforeInstallRule(params Params) (Rule, error) {
	copyPattern, err := params.String("copy_pattern")
	if err != nil {
		return nil, err
	}
	copyRe, err := regexp.Compile(copyPattern)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", "copy_pattern", err)
	}
	runPattern, err := params.String("run_pattern")
	if err != nil {
		return nil, err
	}
	runRe, err := regexp.Compile(runPattern)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", "run_pattern", err)
	}

	return newCatalogRule(RuleCopyBeforeInstall,
		func(in Input) Result {
			var lastCopy *recipe.Unit
			for _, u := range in.Recipe.UnitsOf(recipe.DirectiveCopy) {
				if copyRe.MatchString(u.Args) {
					match := u
					lastCopy = &match
				}
			}
			var firstRun *recipe.Unit
			for _, u := range in.Recipe.UnitsOf(recipe.DirectiveRun) {
				if runRe.MatchString(u.Args) {
					match := u
					firstRun = &match
					break
				}
			}
			if lastCopy == nil || firstRun == nil {
				return Pass("no copy/install pair to order")
			}
			if lastCopy.End > firstRun.Start {
				return FailAt(lastCopy.LineNumber(), "dependency files copied after the install step")
			}
			return Pass("dependency files copied before install")
		}), nil
}
