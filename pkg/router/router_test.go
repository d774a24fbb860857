package router

import (
	"encoding/json"
	"testing"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `
fallback: uncategorized
rules:
  - name: all-datasets
    profile: dataset
    buckets: [dats-info]
  - name: disease-surveillance
    profile: dataset
    match:
      - field: "col:disease"
        op: not_null
    buckets: [disease-surveillance]
  - name: web-resource
    match:
      - field: "raw:types[].information.value"
        op: equals
        value: website
    buckets: [web-resource, dats-info]
  - name: tycho
    match:
      - field: "col:title"
        op: contains
        value: Tycho
      - field: "raw:distributions[].formats[]"
        op: one_of
        values: [CSV, TSV]
    buckets: [project-tycho]
`

func decode(t *testing.T, raw string) dats.Record {
	t.Helper()
	var rec dats.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestRoute(t *testing.T) {
	table, err := Parse([]byte(rulesYAML))
	require.NoError(t, err)

	tests := []struct {
		name string
		json string
		want []string
	}{
		{
			name: "plain dataset",
			json: `{"title":"Census"}`,
			want: []string{"dats-info"},
		},
		{
			name: "disease and web resource without duplicates",
			json: `{"title":"Flu site","types":[{"information":{"value":"website"}}],
				"isAbout":[{"name":"influenza","identifier":{"identifierSource":"https://biosharing.org/bsg-s000098"}}]}`,
			want: []string{"dats-info", "disease-surveillance", "web-resource"},
		},
		{
			name: "every predicate must hold",
			json: `{"title":"Project Tycho","distributions":[{"formats":["PDF"]}]}`,
			want: []string{"dats-info"},
		},
		{
			name: "all predicates hold",
			json: `{"title":"Project Tycho","distributions":[{"formats":["PDF"]},{"formats":["CSV"]}]}`,
			want: []string{"dats-info", "project-tycho"},
		},
		{
			name: "unmatched data format falls back",
			json: `{"name":"XML"}`,
			want: []string{"uncategorized"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decode(t, tt.json)
			row, profile := dats.AssembleAuto(rec)
			got := table.Route(row, rec, profile)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Route() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoute_NoFallbackDropsRecord(t *testing.T) {
	table := &Table{Rules: []Rule{{Name: "formats", Profile: "data-format", Buckets: []string{"formats"}}}}
	rec := decode(t, `{"title":"x"}`)
	row, profile := dats.AssembleAuto(rec)
	if got := table.Route(row, rec, profile); len(got) != 0 {
		t.Errorf("Route() = %v, want no buckets", got)
	}
}

func TestBuckets(t *testing.T) {
	table, err := Parse([]byte(rulesYAML))
	require.NoError(t, err)
	want := []string{"dats-info", "disease-surveillance", "web-resource", "project-tycho", "uncategorized"}
	if diff := cmp.Diff(want, table.Buckets()); diff != "" {
		t.Errorf("Buckets() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	bad := map[string]string{
		"no buckets":     `rules: [{name: a}]`,
		"bad profile":    `rules: [{name: a, profile: video, buckets: [x]}]`,
		"bad prefix":     `rules: [{name: a, buckets: [x], match: [{field: title, op: not_null}]}]`,
		"unknown op":     `rules: [{name: a, buckets: [x], match: [{field: "col:title", op: regex, value: x}]}]`,
		"missing value":  `rules: [{name: a, buckets: [x], match: [{field: "col:title", op: equals}]}]`,
		"missing values": `rules: [{name: a, buckets: [x], match: [{field: "col:title", op: one_of}]}]`,
		"not yaml":       `rules: [`,
	}
	for name, in := range bad {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("%s: Parse() succeeded, want error", name)
		}
	}
}
