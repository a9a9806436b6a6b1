package recipe

import (
	"strings"
	"unicode"
)

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parse builds a Document from recipe text. It never fails: empty input
// yields an empty document and malformed lines surface as units with
// DirectiveUnknown for rules to judge.
func Parse(text string) *Document {
	doc := &Document{}
	if text == "" {
		return doc
	}

	normalized := newlineNormalizer.Replace(text)
	raw := strings.Split(normalized, "\n")
	if strings.HasSuffix(normalized, "\n") {
		raw = raw[:len(raw)-1]
	}

	doc.lines = make([]Line, len(raw))
	for i, r := range raw {
		doc.lines[i] = Line{Index: i, Raw: r, Directive: classify(r)}
	}

	for i := 0; i < len(doc.lines); {
		line := doc.lines[i]
		if line.Directive == DirectiveBlank || line.Directive == DirectiveComment {
			i++
			continue
		}
		joined, end := joinContinuations(doc.lines, i)
		doc.units = append(doc.units, newUnit(joined, i, end))
		i = end + 1
	}
	return doc
}

// classify derives a physical line's directive from its first token.
func classify(raw string) Directive {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return DirectiveBlank
	case strings.HasPrefix(trimmed, "#"):
		return DirectiveComment
	}
	if d, ok := directiveByName[strings.ToUpper(firstToken(trimmed))]; ok {
		return d
	}
	return DirectiveUnknown
}

// joinContinuations assembles the logical text of the unit starting at
// index i and returns it with the index of the last line consumed.
//
// A line whose final character is a backslash joins the next instruction
// line; comment and blank lines between the two are dropped from the text
// but remain inside the unit's physical span. A backslash with nothing
// left to join onto stays in the text as a literal character.
func joinContinuations(lines []Line, i int) (string, int) {
	var b strings.Builder
	end := i
	text := lines[i].Raw
	for {
		if !strings.HasSuffix(text, `\`) {
			b.WriteString(text)
			return b.String(), end
		}
		j := end + 1
		for j < len(lines) && skippable(lines[j].Directive) {
			j++
		}
		if j >= len(lines) {
			b.WriteString(text)
			return b.String(), end
		}
		b.WriteString(text[:len(text)-1])
		end = j
		text = lines[end].Raw
	}
}

func skippable(d Directive) bool {
	return d == DirectiveBlank || d == DirectiveComment
}

func newUnit(joined string, start, end int) Unit {
	trimmed := strings.TrimSpace(joined)
	token := firstToken(trimmed)
	directive := DirectiveUnknown
	if d, ok := directiveByName[strings.ToUpper(token)]; ok {
		directive = d
	}
	return Unit{
		Directive: directive,
		Args:      strings.TrimSpace(trimmed[len(token):]),
		Raw:       joined,
		Start:     start,
		End:       end,
	}
}

func firstToken(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}
