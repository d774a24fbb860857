// Package drift compares a previously exported table with what the catalog
// serves now.
package drift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/fetcher"
	"github.com/dtnitsch/dats-exporter/pkg/tsv"
)

// Kind classifies a finding.
type Kind string

const (
	KindChanged    Kind = "changed"
	KindNotFound   Kind = "not_found"
	KindFetchError Kind = "fetch_error"
)

// Finding is one difference between a stored row and the catalog.
type Finding struct {
	Identifier string `yaml:"identifier"`
	Kind       Kind   `yaml:"kind"`
	Column     string `yaml:"column,omitempty"`
	Stored     string `yaml:"stored,omitempty"`
	Current    string `yaml:"current,omitempty"`
}

// Report is the outcome of checking one exported file.
type Report struct {
	Input    string       `yaml:"input"`
	Profile  dats.Profile `yaml:"profile"`
	Checked  int          `yaml:"checked"`
	Skipped  int          `yaml:"skipped"`
	Findings []Finding    `yaml:"findings"`
}

// HasDrift reports whether any finding was recorded.
func (r *Report) HasDrift() bool {
	return len(r.Findings) > 0
}

// Count returns the number of findings of kind k.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == k {
			n++
		}
	}
	return n
}

// RecordFetcher is the part of the catalog client a check needs.
type RecordFetcher interface {
	GetRecord(ctx context.Context, id string) (dats.Record, *fetcher.Response, error)
}

// Columns returns the header columns that belong to p, in header order.
func Columns(header []string, p dats.Profile) []string {
	known := map[string]bool{}
	for _, c := range p.Columns() {
		known[c] = true
	}
	var out []string
	for _, h := range header {
		if known[h] {
			out = append(out, h)
		}
	}
	return out
}

// Compare diffs one stored row against a freshly assembled one over columns.
// A stored empty value counts as the null sentinel.
func Compare(id string, stored, current dats.Row, columns []string) []Finding {
	var findings []Finding
	for _, col := range columns {
		was := stored[col]
		if strings.TrimSpace(was) == "" {
			was = dats.Null
		}
		now, ok := current[col]
		if !ok {
			now = dats.Null
		}
		if was != now {
			findings = append(findings, Finding{
				Identifier: id,
				Kind:       KindChanged,
				Column:     col,
				Stored:     was,
				Current:    now,
			})
		}
	}
	return findings
}

// Checker re-fetches every row of an export and compares it.
type Checker struct {
	Fetcher RecordFetcher
	// Skip reports identifiers that cannot be fetched.
	Skip func(id string) bool
	// OnFinding, when set, is called for each finding as it is made.
	OnFinding func(Finding)
}

// Check walks table row by row. Fetch failures become findings; only a
// cancelled context or an unrecognizable header stops the check.
func (c *Checker) Check(ctx context.Context, input string, table *tsv.Table) (*Report, error) {
	profile, ok := dats.ProfileForHeader(table.Header)
	if !ok {
		return nil, fmt.Errorf("cannot tell the profile of %s: header has no identifier column", input)
	}
	columns := Columns(table.Header, profile)
	idCol := profile.IdentifierColumn()

	report := &Report{Input: input, Profile: profile}
	add := func(f Finding) {
		report.Findings = append(report.Findings, f)
		if c.OnFinding != nil {
			c.OnFinding(f)
		}
	}

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id := row[idCol]
		if c.skip(id) {
			report.Skipped++
			continue
		}
		report.Checked++

		rec, _, err := c.Fetcher.GetRecord(ctx, id)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return report, err
			}
			kind := KindFetchError
			if errors.Is(err, fetcher.ErrNotFound) {
				kind = KindNotFound
			}
			slog.Debug("drift fetch failed", "identifier", id, "error", err)
			add(Finding{Identifier: id, Kind: kind, Current: err.Error()})
			continue
		}

		current := dats.Assemble(rec, profile)
		for _, f := range Compare(id, row, current, columns) {
			add(f)
		}
	}
	return report, nil
}

func (c *Checker) skip(id string) bool {
	if strings.TrimSpace(id) == "" || id == dats.Null {
		return true
	}
	return c.Skip != nil && c.Skip(id)
}
