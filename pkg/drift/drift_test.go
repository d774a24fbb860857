package drift

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/fetcher"
	"github.com/dtnitsch/dats-exporter/pkg/tsv"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	records map[string]dats.Record
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) GetRecord(_ context.Context, id string) (dats.Record, *fetcher.Response, error) {
	f.calls = append(f.calls, id)
	if err, ok := f.errs[id]; ok {
		return nil, nil, err
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, nil, &fetcher.StatusError{StatusCode: 404}
	}
	return rec, &fetcher.Response{StatusCode: 200}, nil
}

func TestCompare(t *testing.T) {
	stored := dats.Row{"title": "Old", "description": "", "disease": "measles"}
	current := dats.Row{"title": "New", "description": "null", "disease": "measles"}

	got := Compare("doi:1", stored, current, []string{"title", "description", "disease"})
	want := []Finding{{Identifier: "doi:1", Kind: KindChanged, Column: "title", Stored: "Old", Current: "New"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns(t *testing.T) {
	header := []string{"title", "curated", "datasetIdentifier", "format"}
	assert.Equal(t, []string{"title", "datasetIdentifier", "format"}, Columns(header, dats.ProfileDataset))
}

func TestCheck(t *testing.T) {
	header := []string{"title", "datasetIdentifier", "disease"}
	table := &tsv.Table{
		Header: header,
		Rows: []dats.Row{
			{"title": "Measles", "datasetIdentifier": "doi:1", "disease": ""},
			{"title": "Flu", "datasetIdentifier": "doi:2", "disease": "influenza"},
			{"title": "Gone", "datasetIdentifier": "doi:3", "disease": ""},
			{"title": "Pending", "datasetIdentifier": "identifier will be created at time of release"},
			{"title": "Blank", "datasetIdentifier": ""},
			{"title": "Down", "datasetIdentifier": "doi:5"},
		},
	}
	f := &fakeFetcher{
		records: map[string]dats.Record{
			"doi:1": {"title": "Measles", "identifier": map[string]any{"identifier": "doi:1"}},
			"doi:2": {"title": "Influenza", "identifier": map[string]any{"identifier": "doi:2"}},
		},
		errs: map[string]error{"doi:5": fmt.Errorf("connection refused")},
	}

	var streamed int
	c := &Checker{
		Fetcher:   f,
		Skip:      func(id string) bool { return id == "identifier will be created at time of release" },
		OnFinding: func(Finding) { streamed++ },
	}
	report, err := c.Check(context.Background(), "dats-info.txt", table)
	require.NoError(t, err)

	assert.Equal(t, dats.ProfileDataset, report.Profile)
	assert.Equal(t, 4, report.Checked)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, []string{"doi:1", "doi:2", "doi:3", "doi:5"}, f.calls)
	assert.True(t, report.HasDrift())
	assert.Equal(t, len(report.Findings), streamed)

	want := []Finding{
		{Identifier: "doi:2", Kind: KindChanged, Column: "title", Stored: "Flu", Current: "Influenza"},
		{Identifier: "doi:2", Kind: KindChanged, Column: "disease", Stored: "influenza", Current: "null"},
		{Identifier: "doi:3", Kind: KindNotFound, Current: "catalog returned status 404"},
		{Identifier: "doi:5", Kind: KindFetchError, Current: "connection refused"},
	}
	if diff := cmp.Diff(want, report.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, report.Count(KindNotFound))
}

func TestCheck_Clean(t *testing.T) {
	rec := dats.Record{"name": "CSV", "identifier": map[string]any{"identifier": "fmt:1"}}
	row := dats.Assemble(rec, dats.ProfileDataFormat)

	table := &tsv.Table{Header: dats.ProfileDataFormat.Columns(), Rows: []dats.Row{row}}
	c := &Checker{Fetcher: &fakeFetcher{records: map[string]dats.Record{"fmt:1": rec}}}

	report, err := c.Check(context.Background(), "formats.txt", table)
	require.NoError(t, err)
	assert.False(t, report.HasDrift())
	assert.Equal(t, dats.ProfileDataFormat, report.Profile)
}

func TestCheck_UnknownHeader(t *testing.T) {
	c := &Checker{Fetcher: &fakeFetcher{}}
	_, err := c.Check(context.Background(), "x.txt", &tsv.Table{Header: []string{"a", "b"}})
	assert.Error(t, err)
}

func TestCheck_UnchangedAfterWriteAndRead(t *testing.T) {
	recs := map[string]dats.Record{
		"doi:10.1/quoted": {
			"title":       `  "Quoted" title with leading spaces`,
			"description": "First line\nsecond line with \"quotes\"",
			"identifier":  map[string]any{"identifier": "doi:10.1/quoted"},
			"creators": []any{
				map[string]any{"firstName": " Ann", "lastName": "O\"Neil"},
			},
		},
		"fmt:tsv": {
			"name":        `"TSV" format`,
			"identifier":  map[string]any{"identifier": "fmt:tsv", "identifierSource": " EDAM"},
			"description": ` leading, "quoted", trailing `,
		},
	}
	dir := t.TempDir()

	for id, p := range map[string]dats.Profile{"doi:10.1/quoted": dats.ProfileDataset, "fmt:tsv": dats.ProfileDataFormat} {
		for _, encName := range []string{"utf-8", "latin-1"} {
			path := filepath.Join(dir, encName, string(p)+".txt")
			_, err := tsv.WriteFile(path, p.Columns(), []dats.Row{dats.Assemble(recs[id], p)}, encName)
			require.NoError(t, err)

			table, err := tsv.ReadFile(path, encName)
			require.NoError(t, err)

			report, err := (&Checker{Fetcher: &fakeFetcher{records: recs}}).Check(context.Background(), path, table)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Checked, path)
			assert.Empty(t, report.Findings, path)
		}
	}
}
