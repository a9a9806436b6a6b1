package report

import (
	"encoding/json"
	"fmt"
	"io"

	"buildcheck.io/buildcheck/internal/rules"
)

// Format selects the rendering of a report.
type Format int

const (
	// FormatText renders one line per outcome plus a summary footer.
	FormatText Format = iota
	// FormatJSON renders the report as an indented JSON document.
	FormatJSON
	// FormatSARIF renders failures as SARIF 2.1.0 for code-scanning upload.
	FormatSARIF
)

// String returns the flag spelling of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	default:
		return "unknown"
	}
}

// ParseFormat resolves a flag or config value into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return FormatText, fmt.Errorf("unknown report format %q (want text, json or sarif)", s)
	}
}

// Renderer writes reports to an output stream in a fixed format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer for the given writer and format.
func NewRenderer(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

// Render writes one report.
func (r *Renderer) Render(rep *Report) error {
	switch r.format {
	case FormatText:
		return r.renderText(rep)
	case FormatJSON:
		return r.renderJSON(rep)
	case FormatSARIF:
		return r.renderSARIF(rep)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Renderer) renderText(rep *Report) error {
	for _, o := range rep.Results {
		status := "PASS"
		if !o.Passed {
			status = "FAIL"
		}
		line := fmt.Sprintf("%s  %s  %s", status, o.RuleID, o.Message)
		if o.Line > 0 {
			line += fmt.Sprintf(" (line %d)", o.Line)
		}
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return fmt.Errorf("write text report: %w", err)
		}
	}

	verdict := "PASS"
	if !rep.Passed {
		verdict = "FAIL"
	}
	if _, err := fmt.Fprintf(r.w, "\n%d rules evaluated: %d passed, %d failed\nverdict: %s\n",
		rep.Summary.Total, rep.Summary.Passed, rep.Summary.Failed, verdict); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

func (r *Renderer) renderJSON(rep *Report) error {
	out := struct {
		*Report
		DurationMS int64 `json:"duration_ms,omitempty"`
	}{Report: rep, DurationMS: rep.Elapsed.Milliseconds()}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode JSON report: %w", err)
	}
	return nil
}

// renderSARIF emits only failed outcomes: SARIF results are findings,
// and a passing rule has nothing to upload. Empty runs keep an empty
// results array, which SARIF 2.1.0 requires when a scan found nothing.
func (r *Renderer) renderSARIF(rep *Report) error {
	sarifRules := []map[string]interface{}{}
	seen := make(map[string]bool)
	for _, o := range rep.Failures() {
		if seen[o.RuleID] {
			continue
		}
		seen[o.RuleID] = true
		sarifRules = append(sarifRules, map[string]interface{}{
			"id":   o.RuleID,
			"name": o.RuleID,
			"help": map[string]interface{}{"text": o.Description},
		})
	}

	results := []map[string]interface{}{}
	for _, o := range rep.Failures() {
		results = append(results, map[string]interface{}{
			"ruleId":    o.RuleID,
			"level":     "error",
			"message":   map[string]interface{}{"text": o.Message},
			"locations": sarifLocations(rep.Target, o),
		})
	}

	sarif := map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "buildcheck",
						"informationUri": "https://buildcheck.io",
						"rules":          sarifRules,
					},
				},
				"results": results,
			},
		},
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sarif); err != nil {
		return fmt.Errorf("encode SARIF report: %w", err)
	}
	return nil
}

func sarifLocations(target string, o rules.Outcome) []map[string]interface{} {
	if target == "" {
		target = "Dockerfile"
	}
	region := map[string]interface{}{"startLine": o.Line}
	if o.Line <= 0 {
		region["startLine"] = 1
	}
	return []map[string]interface{}{
		{
			"physicalLocation": map[string]interface{}{
				"artifactLocation": map[string]interface{}{"uri": target},
				"region":           region,
			},
		},
	}
}
