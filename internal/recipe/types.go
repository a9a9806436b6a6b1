// Package recipe parses container build recipes (Dockerfile syntax) into
// an indexed document of physical lines and logical instruction units.
package recipe

import (
	"encoding/json"
	"strings"
)

// Directive identifies the instruction that opens a recipe line.
type Directive int

// Directives recognized in build recipes. Blank and comment lines get
// their own values so rules can filter them without re-parsing text.
const (
	DirectiveUnknown Directive = iota
	DirectiveBlank
	DirectiveComment
	DirectiveAdd
	DirectiveArg
	DirectiveCmd
	DirectiveCopy
	DirectiveEntrypoint
	DirectiveEnv
	DirectiveExpose
	DirectiveFrom
	DirectiveHealthcheck
	DirectiveLabel
	DirectiveMaintainer
	DirectiveOnbuild
	DirectiveRun
	DirectiveShell
	DirectiveStopsignal
	DirectiveUser
	DirectiveVolume
	DirectiveWorkdir
)

// directiveNames maps Directive to its canonical spelling.
var directiveNames = map[Directive]string{
	DirectiveBlank:       "",
	DirectiveComment:     "#",
	DirectiveAdd:         "ADD",
	DirectiveArg:         "ARG",
	DirectiveCmd:         "CMD",
	DirectiveCopy:        "COPY",
	DirectiveEntrypoint:  "ENTRYPOINT",
	DirectiveEnv:         "ENV",
	DirectiveExpose:      "EXPOSE",
	DirectiveFrom:        "FROM",
	DirectiveHealthcheck: "HEALTHCHECK",
	DirectiveLabel:       "LABEL",
	DirectiveMaintainer:  "MAINTAINER",
	DirectiveOnbuild:     "ONBUILD",
	DirectiveRun:         "RUN",
	DirectiveShell:       "SHELL",
	DirectiveStopsignal:  "STOPSIGNAL",
	DirectiveUser:        "USER",
	DirectiveVolume:      "VOLUME",
	DirectiveWorkdir:     "WORKDIR",
}

// directiveByName is the reverse lookup, keyed by canonical spelling.
var directiveByName = func() map[string]Directive {
	m := make(map[string]Directive, len(directiveNames))
	for d, name := range directiveNames {
		if name != "" && name != "#" {
			m[name] = d
		}
	}
	return m
}()

// String returns the canonical spelling of the directive.
func (d Directive) String() string {
	if name, ok := directiveNames[d]; ok {
		return name
	}
	return "UNKNOWN"
}

// DirectiveNamed resolves a directive by name, case-insensitively.
func DirectiveNamed(name string) (Directive, bool) {
	d, ok := directiveByName[strings.ToUpper(name)]
	return d, ok
}

// Line is one physical line of the recipe, comments and blanks included.
type Line struct {
	Index     int    // 0-based physical index
	Raw       string // exact text, line terminator stripped
	Directive Directive
}

// Unit is one logical instruction after continuation joining.
type Unit struct {
	Directive Directive
	Args      string // joined text after the directive token
	Raw       string // full joined text including the directive token
	Start     int    // 0-based physical index of the first line
	End       int    // 0-based physical index of the last line
}

// LineNumber returns the 1-based line number of the unit's first line,
// the form reports use.
func (u Unit) LineNumber() int {
	return u.Start + 1
}

// JSONArgs decodes the unit arguments as a JSON string array (exec form).
// The second return is false for shell-form or malformed arguments.
func (u Unit) JSONArgs() ([]string, bool) {
	var args []string
	if err := json.Unmarshal([]byte(u.Args), &args); err != nil {
		return nil, false
	}
	return args, true
}

// Document is a parsed recipe. It is immutable after Parse.
type Document struct {
	lines []Line
	units []Unit
}

// Lines returns every physical line in order.
func (d *Document) Lines() []Line {
	return d.lines
}

// Units returns every logical instruction unit in order.
func (d *Document) Units() []Unit {
	return d.units
}

// UnitsOf returns the units whose directive matches, in document order.
func (d *Document) UnitsOf(directive Directive) []Unit {
	var out []Unit
	for _, u := range d.units {
		if u.Directive == directive {
			out = append(out, u)
		}
	}
	return out
}

// FirstUnit returns the first logical unit, or false for a document with
// only blanks and comments.
func (d *Document) FirstUnit() (Unit, bool) {
	if len(d.units) == 0 {
		return Unit{}, false
	}
	return d.units[0], true
}

// LineCount returns the number of physical lines.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Empty reports whether the document has no physical lines.
func (d *Document) Empty() bool {
	return len(d.lines) == 0
}
