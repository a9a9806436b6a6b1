// Package manifest parses dependency manifests (pip requirements syntax)
// into an ordered list of entries plus the raw physical lines.
package manifest

import "strings"

// Kind classifies a manifest entry.
type Kind int

const (
	KindPackage Kind = iota
	KindFlag         // option lines such as -r or --index-url
	KindPath         // local path installs
	KindURL          // direct URL installs
)

var kindNames = map[Kind]string{
	KindPackage: "package",
	KindFlag:    "flag",
	KindPath:    "path",
	KindURL:     "url",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Entry is one dependency-bearing line of the manifest.
type Entry struct {
	Name     string // package name for KindPackage, empty otherwise
	Operator string // version operator ("==", ">=", ...), empty when unpinned
	Version  string // constraint value after the operator
	Raw      string // exact line text
	Index    int    // 0-based physical line index
	Kind     Kind
}

// Pinned reports whether the entry carries any version constraint.
func (e Entry) Pinned() bool {
	return e.Operator != ""
}

// ExactPin reports whether the entry pins one exact version.
func (e Entry) ExactPin() bool {
	return e.Operator == "=="
}

// Manifest is a parsed dependency manifest. Entries come from lines that
// declare something; RawLines keeps every physical line for format rules.
type Manifest struct {
	entries  []Entry
	rawLines []string
}

// Entries returns every entry in order.
func (m *Manifest) Entries() []Entry {
	return m.entries
}

// Packages returns only the KindPackage entries, in order.
func (m *Manifest) Packages() []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.Kind == KindPackage {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the package entries matching name, compared case-insensitively.
func (m *Manifest) Find(name string) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.Kind == KindPackage && strings.EqualFold(e.Name, name) {
			out = append(out, e)
		}
	}
	return out
}

// RawLines returns every physical line of the manifest.
func (m *Manifest) RawLines() []string {
	return m.rawLines
}

// Empty reports whether the manifest has no physical lines.
func (m *Manifest) Empty() bool {
	return len(m.rawLines) == 0
}
