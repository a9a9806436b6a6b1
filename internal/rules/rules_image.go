package rules

import (
	"fmt"
	"regexp"
	"strings"

	"buildcheck.io/buildcheck/internal/recipe"
)

var digestPattern = regexp.MustCompile(`^sha256:[0-9a-f]{64}$`)

// defaultDisallowedTags are floating tags that defeat reproducible builds.
var defaultDisallowedTags = []string{"latest", "edge", "stable", "master", "main"}

func newImageReferenceRule(params Params) (Rule, error) {
	registries, err := params.StringListDefault("registries", nil)
	if err != nil {
		return nil, err
	}
	disallowed, err := params.StringListDefault("disallowed_tags", defaultDisallowedTags)
	if err != nil {
		return nil, err
	}
	requireDigest, err := params.Bool("require_digest", true)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleImageReference,
		func(in Input) Result {
			image, unit, ok := baseImage(in.Recipe)
			if !ok {
				return Fail("recipe declares no base image")
			}
			ref := parseImageRef(image)

			var problems []string
			if ref.Tag == "" {
				problems = append(problems, "missing version tag")
			}
			for _, tag := range disallowed {
				if strings.EqualFold(ref.Tag, tag) {
					problems = append(problems, fmt.Sprintf("floating tag %q", ref.Tag))
					break
				}
			}
			if requireDigest {
				switch {
				case ref.Digest == "":
					problems = append(problems, "missing sha256 digest")
				case !digestPattern.MatchString(ref.Digest):
					problems = append(problems, fmt.Sprintf("malformed digest %q", ref.Digest))
				}
			}
			if len(registries) > 0 && !hasAllowedPrefix(ref.Repository, registries) {
				problems = append(problems, fmt.Sprintf("repository %q not in the allow-list", ref.Repository))
			}

			if len(problems) > 0 {
				return FailAt(unit.LineNumber(),
					fmt.Sprintf("base image %q: %s", image, strings.Join(problems, "; ")))
			}
			return Pass(fmt.Sprintf("base image %q is pinned", image))
		}), nil
}

func hasAllowedPrefix(repository string, allowed []string) bool {
	for _, prefix := range allowed {
		if strings.HasPrefix(repository, prefix) {
			return true
		}
	}
	return false
}

func newDigestTransitionRule(params Params) (Rule, error) {
	oldDigest, err := params.String("old")
	if err != nil {
		return nil, err
	}
	newDigest, err := params.String("new")
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleDigestTransition,
		func(in Input) Result {
			for _, line := range in.Recipe.Lines() {
				if strings.Contains(line.Raw, oldDigest) {
					return FailAt(line.Index+1,
						fmt.Sprintf("superseded digest %s still referenced", shortDigest(oldDigest)))
				}
			}
			_, unit, ok := baseImage(in.Recipe)
			if !ok {
				return Fail("recipe declares no base image")
			}
			if !strings.Contains(unit.Args, newDigest) {
				return FailAt(unit.LineNumber(),
					fmt.Sprintf("base image does not reference digest %s", shortDigest(newDigest)))
			}
			return Pass(fmt.Sprintf("base image moved to digest %s", shortDigest(newDigest)))
		}), nil
}

// shortDigest abbreviates a digest for messages, matching the 12-char
// form container tooling prints.
func shortDigest(d string) string {
	d = strings.TrimPrefix(d, "sha256:")
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func newVersionTokenRule(params Params) (Rule, error) {
	required, err := params.StringDefault("required", "")
	if err != nil {
		return nil, err
	}
	forbidden, err := params.StringDefault("forbidden", "")
	if err != nil {
		return nil, err
	}
	if required == "" && forbidden == "" {
		return nil, fmt.Errorf("at least one of parameters %q and %q must be set", "required", "forbidden")
	}
	directiveName, err := params.StringDefault("directive", "FROM")
	if err != nil {
		return nil, err
	}
	directive, err := directiveParam(directiveName)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleVersionToken,
		func(in Input) Result {
			units := in.Recipe.UnitsOf(directive)

			var problems []string
			line := 0
			if forbidden != "" {
				for _, u := range units {
					if strings.Contains(u.Raw, forbidden) {
						problems = append(problems, fmt.Sprintf("forbidden token %q present", forbidden))
						line = u.LineNumber()
						break
					}
				}
			}
			if required != "" {
				found := false
				for _, u := range units {
					if strings.Contains(u.Raw, required) {
						found = true
						break
					}
				}
				if !found {
					problems = append(problems, fmt.Sprintf("required token %q absent from %s", required, directiveName))
				}
			}

			if len(problems) > 0 {
				return FailAt(line, strings.Join(problems, "; "))
			}
			return Pass(fmt.Sprintf("%s version tokens are in order", directiveName))
		}), nil
}

// directiveParam resolves a configured directive name, rejecting
// spellings the parser does not know.
func directiveParam(name string) (recipe.Directive, error) {
	if d, ok := recipe.DirectiveNamed(name); ok {
		return d, nil
	}
	return recipe.DirectiveUnknown, fmt.Errorf("parameter %q: unknown directive %q", "directive", name)
}

func newSingleStageRule(params Params) (Rule, error) {
	count, err := params.IntDefault("count", 1)
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleSingleStage,
		func(in Input) Result {
			froms := in.Recipe.UnitsOf(recipe.DirectiveFrom)
			if len(froms) == count {
				return Pass(fmt.Sprintf("%d build stage(s) declared", len(froms)))
			}
			line := 0
			if len(froms) > count {
				line = froms[count].LineNumber()
			}
			return FailAt(line, fmt.Sprintf("expected %d build stage(s), found %d", count, len(froms)))
		}), nil
}

func newFirstDirectiveRule(params Params) (Rule, error) {
	allowed, err := params.StringListDefault("allowed", []string{"FROM", "ARG"})
	if err != nil {
		return nil, err
	}

	return newCatalogRule(RuleFirstDirective,
		func(in Input) Result {
			first, ok := in.Recipe.FirstUnit()
			if !ok {
				return Fail("recipe has no instructions")
			}
			for _, name := range allowed {
				if strings.EqualFold(first.Directive.String(), name) {
					return Pass(fmt.Sprintf("recipe opens with %s", first.Directive))
				}
			}
			return FailAt(first.LineNumber(),
				fmt.Sprintf("recipe opens with %s, expected one of %s",
					first.Directive, strings.Join(allowed, ", ")))
		}), nil
}
