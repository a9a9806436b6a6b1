package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"buildcheck.io/buildcheck/internal/manifest"
)

func newNoDuplicateDepsRule(Params) (Rule, error) {
	return newCatalogRule(RuleNoDuplicateDeps,
		func(in Input) Result {
			var order []string
			groups := make(map[string][]manifest.Entry)
			for _, e := range in.Manifest.Packages() {
				key := strings.ToLower(e.Name)
				if _, seen := groups[key]; !seen {
					order = append(order, key)
				}
				groups[key] = append(groups[key], e)
			}

			var problems []string
			line := 0
			for _, key := range order {
				group := groups[key]
				if len(group) < 2 {
					continue
				}
				lines := make([]string, len(group))
				for i, e := range group {
					lines[i] = strconv.Itoa(e.Index + 1)
				}
				problems = append(problems,
					fmt.Sprintf("%s declared on lines %s", group[0].Name, strings.Join(lines, ", ")))
				if line == 0 {
					line = group[1].Index + 1
				}
			}

			if len(problems) > 0 {
				return FailAt(line, fmt.Sprintf("duplicate dependencies: %s", strings.Join(problems, "; ")))
			}
			return Pass("no duplicate dependencies")
		}), nil
}

func newPinnedDepsRule(params Params) (Rule, error) {
	exact, err := params.StringListDefault("exact", nil)
	if err != nil {
		return nil, err
	}
	allowUnpinned, err := params.StringListDefault("allow_unpinned", nil)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RulePinnedDeps,
		func(in Input) Result {
			var problems []string
			line := 0
			for _, e := range in.Manifest.Packages() {
				if containsFold(allowUnpinned, e.Name) {
					continue
				}
				if !e.Pinned() {
					problems = append(problems, fmt.Sprintf("%s (line %d) has no version constraint", e.Name, e.Index+1))
					if line == 0 {
						line = e.Index + 1
					}
				}
			}
			for _, name := range exact {
				for _, e := range in.Manifest.Find(name) {
					if e.Pinned() && !e.ExactPin() {
						problems = append(problems,
							fmt.Sprintf("%s (line %d) must be pinned exactly, found %q", e.Name, e.Index+1, e.Operator))
						if line == 0 {
							line = e.Index + 1
						}
					}
				}
			}

			if len(problems) > 0 {
				return FailAt(line, strings.Join(problems, "; "))
			}
			return Pass(fmt.Sprintf("all %d dependencies pinned", len(in.Manifest.Packages())))
		}), nil
}

func newRequiredDepsRule(params Params) (Rule, error) {
	packages, err := params.StringListDefault("packages", nil)
	if err != nil {
		return nil, err
	}
	rawMinimums, err := params.StringMap("minimums")
	if err != nil {
		return nil, err
	}
	if len(packages) == 0 && len(rawMinimums) == 0 {
		return nil, fmt.Errorf("at least one of parameters %q and %q must be set", "packages", "minimums")
	}

	minimums := make(map[string]*semver.Version, len(rawMinimums))
	minNames := make([]string, 0, len(rawMinimums))
	for name, raw := range rawMinimums {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: minimum for %s: %w", "minimums", name, err)
		}
		minimums[name] = v
		minNames = append(minNames, name)
	}
	sort.Strings(minNames)

	requireExact, err := params.Bool("exact", false)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleRequiredDeps,
		func(in Input) Result {
			var problems []string
			line := 0

			note := func(entryLine int, format string, args ...any) {
				problems = append(problems, fmt.Sprintf(format, args...))
				if line == 0 {
					line = entryLine
				}
			}

			for _, name := range packages {
				if len(in.Manifest.Find(name)) == 0 {
					note(0, "%s is missing", name)
				}
			}
			for _, name := range minNames {
				entries := in.Manifest.Find(name)
				if len(entries) == 0 {
					note(0, "%s is missing", name)
					continue
				}
				e := entries[0]
				if !e.Pinned() {
					note(e.Index+1, "%s has no version to compare against minimum %s", name, minimums[name])
					continue
				}
				v, err := semver.NewVersion(e.Version)
				if err != nil {
					note(e.Index+1, "%s version %q is not comparable", name, e.Version)
					continue
				}
				if v.LessThan(minimums[name]) {
					note(e.Index+1, "%s %s is below minimum %s", name, e.Version, minimums[name])
				}
			}
			if requireExact {
				for _, name := range requiredNames(packages, minNames) {
					for _, e := range in.Manifest.Find(name) {
						if !e.ExactPin() {
							note(e.Index+1, "%s (line %d) must be pinned exactly", e.Name, e.Index+1)
						}
					}
				}
			}

			if len(problems) > 0 {
				return FailAt(line, strings.Join(problems, "; "))
			}
			return Pass("all required dependencies present")
		}), nil
}

// requiredNames merges the plain and minimum-bearing package lists,
// preserving order and dropping case-insensitive repeats.
func requiredNames(packages, minNames []string) []string {
	var out []string
	for _, name := range append(append([]string{}, packages...), minNames...) {
		if !containsFold(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func newManifestFormatRule(params Params) (Rule, error) {
	checkTrailing, err := params.Bool("trailing_whitespace", true)
	if err != nil {
		return nil, err
	}
	maxBlankRun, err := params.IntDefault("max_blank_run", 1)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleManifestFormat,
		func(in Input) Result {
			var problems []string
			line := 0

			note := func(at int, format string, args ...any) {
				problems = append(problems, fmt.Sprintf(format, args...))
				if line == 0 {
					line = at
				}
			}

			raw := in.Manifest.RawLines()
			if checkTrailing {
				for i, text := range raw {
					if text != strings.TrimRight(text, " \t") {
						note(i+1, "trailing whitespace on line %d", i+1)
					}
				}
			}
			blanks := 0
			for i, text := range raw {
				if strings.TrimSpace(text) == "" {
					blanks++
					if blanks == maxBlankRun+1 {
						note(i+1, "more than %d consecutive blank line(s) at line %d", maxBlankRun, i+1)
					}
					continue
				}
				blanks = 0
			}

			if len(problems) > 0 {
				return FailAt(line, strings.Join(problems, "; "))
			}
			return Pass("manifest formatting is tidy")
		}), nil
}
