package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/dats-exporter/pkg/drift"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats for the drift report.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

const maxCell = 60

// Render writes report in the requested format.
func Render(w io.Writer, report *drift.Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		RenderTable(w, report)
		return nil
	case FormatYAML:
		return RenderYAML(w, report)
	default:
		return fmt.Errorf("unknown format: %q (want table or yaml)", format)
	}
}

// RenderTable prints one line per finding followed by the totals.
func RenderTable(w io.Writer, report *drift.Report) {
	fmt.Fprintf(w, "Checked %s (%s): %d records, %d skipped\n", report.Input, report.Profile, report.Checked, report.Skipped)
	if !report.HasDrift() {
		fmt.Fprintln(w, "No drift found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Identifier", "Kind", "Column", "Stored", "Current"})
	for _, f := range report.Findings {
		t.AppendRow(table.Row{f.Identifier, f.Kind, f.Column, clip(f.Stored), clip(f.Current)})
	}
	t.AppendFooter(table.Row{"", "", "", "findings", len(report.Findings)})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(w, "%d changed, %d not found, %d fetch errors\n",
		report.Count(drift.KindChanged), report.Count(drift.KindNotFound), report.Count(drift.KindFetchError))
}

// RenderYAML prints the full report without truncation.
func RenderYAML(w io.Writer, report *drift.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-3]) + "..."
}
