package rules

import (
	"strings"

	"buildcheck.io/buildcheck/internal/recipe"
)

// splitTokens splits s on unquoted whitespace. Double-quoted runs stay
// one token with the quotes dropped.
func splitTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case (c == ' ' || c == '\t') && !inQuote:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// keyValuePairs parses the argument text of LABEL and ENV units. Both
// accept key=value lists and the legacy "KEY value" form.
func keyValuePairs(args string) map[string]string {
	tokens := splitTokens(args)
	if len(tokens) == 0 {
		return nil
	}
	pairs := make(map[string]string)
	if !strings.Contains(tokens[0], "=") {
		pairs[tokens[0]] = strings.Join(tokens[1:], " ")
		return pairs
	}
	for _, tok := range tokens {
		if key, val, ok := strings.Cut(tok, "="); ok && key != "" {
			pairs[key] = val
		}
	}
	return pairs
}

// lastValueOf returns the effective value of key across all units of the
// directive, later definitions overriding earlier ones.
func lastValueOf(doc *recipe.Document, d recipe.Directive, key string) (string, bool) {
	value := ""
	found := false
	for _, u := range doc.UnitsOf(d) {
		if v, ok := keyValuePairs(u.Args)[key]; ok {
			value = v
			found = true
		}
	}
	return value, found
}

// definedKeys collects every key defined across all units of the directive.
func definedKeys(doc *recipe.Document, d recipe.Directive) map[string]bool {
	keys := make(map[string]bool)
	for _, u := range doc.UnitsOf(d) {
		for k := range keyValuePairs(u.Args) {
			keys[k] = true
		}
	}
	return keys
}

// imageRef is a container image reference split into its parts.
type imageRef struct {
	Repository string // registry and path, before any tag
	Tag        string
	Digest     string // "sha256:..." or empty
}

// parseImageRef splits "repo[:tag][@digest]". It is tolerant: missing
// parts come back empty rather than failing.
func parseImageRef(s string) imageRef {
	var ref imageRef
	rest := s
	if i := strings.Index(rest, "@"); i >= 0 {
		ref.Digest = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, ":"); i > strings.LastIndex(rest, "/") {
		ref.Tag = rest[i+1:]
		rest = rest[:i]
	}
	ref.Repository = rest
	return ref
}

// baseImage returns the first FROM unit's image reference token.
func baseImage(doc *recipe.Document) (string, recipe.Unit, bool) {
	froms := doc.UnitsOf(recipe.DirectiveFrom)
	if len(froms) == 0 {
		return "", recipe.Unit{}, false
	}
	fields := strings.Fields(froms[0].Args)
	if len(fields) == 0 {
		return "", froms[0], false
	}
	return fields[0], froms[0], true
}
