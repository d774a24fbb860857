package dats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const datasetJSON = `{
	"title": "Project Tycho: Measles Cases in Pennsylvania",
	"description": "Counts of measles cases.\nWeekly resolution.",
	"identifier": {"identifier": "https://doi.org/10.25337/T7/ptycho.v2.0/US.14189004", "identifierSource": "DOI"},
	"creators": [{"firstName": "Willem", "lastName": "van Panhuis"}],
	"isAbout": [{"name": "measles", "identifier": {"identifier": "14189004", "identifierSource": "https://biosharing.org/bsg-s000098"}}],
	"distributions": [{
		"dates": [{"type": {"value": "creation"}, "date": "2018-04-01"}],
		"formats": ["CSV"],
		"conformsTo": [{"name": "Project Tycho 2.0", "identifier": {"identifier": ""}}],
		"access": {"landingPage": "https://www.tycho.pitt.edu/", "accessURL": "https://zenodo.org/record/1"}
	}],
	"licenses": [{"name": "CC BY 4.0"}],
	"spatialCoverage": [{
		"name": "Pennsylvania",
		"identifier": {"identifier": "http://betaweb.rods.pitt.edu/ls?uri=42"},
		"relatedIdentifiers": [{"identifierSource": "ISO 3166", "identifier": "US-PA"}]
	}],
	"storedIn": {"name": "Zenodo"}
}`

const dataFormatJSON = `{
	"name": "CSV",
	"identifier": {"identifier": "https://w3id.org/spice/SPICE/format/csv", "identifierSource": "https://w3id.org/spice"},
	"type": {"value": "data format"},
	"description": "Comma separated\tvalues",
	"extraProperties": [{"category": "validator", "values": [{"value": "csvlint", "valueIRI": "https://csvlint.io"}]}]
}`

func TestAssembleDataset(t *testing.T) {
	rec := record(t, datasetJSON)

	row, profile := AssembleAuto(rec)
	if profile != ProfileDataset {
		t.Fatalf("profile = %q, want dataset", profile)
	}

	want := Row{
		ColTitle:             "Project Tycho: Measles Cases in Pennsylvania",
		ColDescription:       "Counts of measles cases.; Weekly resolution.",
		ColDatasetIdentifier: "https://doi.org/10.25337/T7/ptycho.v2.0/US.14189004",
		ColDisease:           "measles",
		ColAuthors:           "Willem van Panhuis",
		ColCreated:           "2018-04-01",
		ColModified:          "null",
		ColAccessed:          "null",
		ColLandingPage:       "https://www.tycho.pitt.edu/",
		ColAccessPage:        "https://zenodo.org/record/1",
		ColFormat:            "CSV",
		ColConformsTo:        "Project Tycho 2.0",
		ColLicense:           "CC BY 4.0",
		ColGeography:         "Pennsylvania",
		ColLocationCode:      "42",
		ColISO3166:           "US-PA",
		ColISO3166Numeric:    "null",
		ColISO3166Alpha3:     "null",
		ColDigitalCommons:    "FALSE",
		ColZenodo:            "TRUE",
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleDataFormat(t *testing.T) {
	row, profile := AssembleAuto(record(t, dataFormatJSON))
	if profile != ProfileDataFormat {
		t.Fatalf("profile = %q, want data-format", profile)
	}

	want := Row{
		ColName:               "CSV",
		ColIdentifier:         "https://w3id.org/spice/SPICE/format/csv",
		ColIdentifierSource:   "https://w3id.org/spice",
		ColType:               "data format",
		ColTypeIRI:            "null",
		ColDescription:        "Comma separated values",
		ColLicenses:           "null",
		ColVersion:            "null",
		ColHumanReadable:      "null",
		ColHumanReadableIRI:   "null",
		ColMachineReadable:    "null",
		ColMachineReadableIRI: "null",
		ColValidator:          "csvlint",
		ColValidatorIRI:       "https://csvlint.io",
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleCoversEveryColumn(t *testing.T) {
	inputs := []string{datasetJSON, dataFormatJSON, `{}`, `{"title":""}`, `{"name":null,"creators":"bogus","spatialCoverage":{}}`}
	for _, in := range inputs {
		rec := record(t, in)
		for _, p := range []Profile{ProfileDataset, ProfileDataFormat} {
			row := Assemble(rec, p)
			cols := p.Columns()
			if len(row) != len(cols) {
				t.Errorf("%s row has %d keys, want %d", p, len(row), len(cols))
			}
			for _, c := range cols {
				v, ok := row[c]
				if !ok {
					t.Errorf("%s row for %s is missing column %q", p, in, c)
					continue
				}
				if v == "" {
					t.Errorf("%s row column %q is empty, want a value or null", p, c)
				}
			}
		}
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	rec := record(t, datasetJSON)
	first := Assemble(rec, ProfileDataset)
	second := Assemble(rec, ProfileDataset)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second assembly differs (-first +second):\n%s", diff)
	}
}

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		json string
		want Profile
	}{
		{`{"title":"x"}`, ProfileDataset},
		{`{"title":""}`, ProfileDataset},
		{`{"name":"x"}`, ProfileDataFormat},
		{`{"title":null,"name":"x"}`, ProfileDataFormat},
		{`{}`, ProfileDataFormat},
	}
	for _, tt := range tests {
		if got := DetectProfile(record(t, tt.json)); got != tt.want {
			t.Errorf("DetectProfile(%s) = %q, want %q", tt.json, got, tt.want)
		}
	}
}

func TestParseProfile(t *testing.T) {
	for in, want := range map[string]Profile{
		"dataset":       ProfileDataset,
		"Datasets":      ProfileDataset,
		"data-format":   ProfileDataFormat,
		"data-standard": ProfileDataFormat,
	} {
		got, err := ParseProfile(in)
		if err != nil || got != want {
			t.Errorf("ParseProfile(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseProfile("auto"); err == nil {
		t.Error("ParseProfile(auto) succeeded, want error")
	}
}

func TestProfileForHeader(t *testing.T) {
	if p, ok := ProfileForHeader(ProfileDataset.Columns()); !ok || p != ProfileDataset {
		t.Errorf("dataset header detected as %q, %v", p, ok)
	}
	if p, ok := ProfileForHeader(ProfileDataFormat.Columns()); !ok || p != ProfileDataFormat {
		t.Errorf("data-format header detected as %q, %v", p, ok)
	}
	if _, ok := ProfileForHeader([]string{"foo"}); ok {
		t.Error("unknown header detected as a profile")
	}
}

func TestRowValues(t *testing.T) {
	row := Row{"a": "1", "c": "3"}
	got := row.Values([]string{"a", "b", "c"})
	want := []string{"1", "null", "3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}
