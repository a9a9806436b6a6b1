package manifest

import "strings"

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Version operators, two-character forms before their one-character
// prefixes so ">=" wins over ">" at the same position.
var operators = []string{"==", ">=", "<=", "~=", "!=", ">", "<"}

// Parse builds a Manifest from manifest text. It never fails: comment and
// blank lines produce no entries but stay in the raw line list, and empty
// input yields an empty manifest.
func Parse(text string) *Manifest {
	m := &Manifest{}
	if text == "" {
		return m
	}

	normalized := newlineNormalizer.Replace(text)
	raw := strings.Split(normalized, "\n")
	if strings.HasSuffix(normalized, "\n") {
		raw = raw[:len(raw)-1]
	}
	m.rawLines = raw

	for i, line := range raw {
		content := stripComment(line)
		if content == "" {
			continue
		}
		m.entries = append(m.entries, parseEntry(content, line, i))
	}
	return m
}

// stripComment removes a full-line or trailing comment and surrounding
// whitespace. Trailing comments need a space before the hash, matching
// pip, so "foo#bar" stays a name.
func stripComment(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		return ""
	}
	if i := strings.Index(trimmed, " #"); i >= 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}
	return trimmed
}

func parseEntry(content, raw string, index int) Entry {
	entry := Entry{Raw: raw, Index: index}

	switch {
	case strings.HasPrefix(content, "-"):
		entry.Kind = KindFlag
		return entry
	case strings.Contains(content, "://"):
		entry.Kind = KindURL
		return entry
	case strings.HasPrefix(content, "/"),
		strings.HasPrefix(content, "./"),
		strings.HasPrefix(content, "../"),
		content == ".":
		entry.Kind = KindPath
		return entry
	}

	entry.Kind = KindPackage

	// Environment markers ("; python_version < ...") are not part of the
	// version constraint.
	spec, _, _ := strings.Cut(content, ";")
	name, op, version := splitConstraint(strings.TrimSpace(spec))
	if i := strings.Index(name, "["); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	entry.Name = name
	entry.Operator = op
	entry.Version = version
	return entry
}

// splitConstraint splits "name<op>version" at the first operator.
func splitConstraint(s string) (name, op, version string) {
	for i := 0; i < len(s); i++ {
		for _, o := range operators {
			if strings.HasPrefix(s[i:], o) {
				return strings.TrimSpace(s[:i]), o, strings.TrimSpace(s[i+len(o):])
			}
		}
	}
	return strings.TrimSpace(s), "", ""
}
