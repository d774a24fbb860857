package check

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *drift.Report {
	return &drift.Report{
		Input:   "dats-info/dats-info.txt",
		Profile: dats.ProfileDataset,
		Checked: 3,
		Skipped: 1,
		Findings: []drift.Finding{
			{Identifier: "doi:1", Kind: drift.KindChanged, Column: "title", Stored: "Old", Current: strings.Repeat("x", 100)},
			{Identifier: "doi:2", Kind: drift.KindNotFound, Current: "catalog returned status 404"},
		},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), "table"))
	out := buf.String()

	assert.Contains(t, out, "Checked dats-info/dats-info.txt (dataset): 3 records, 1 skipped")
	assert.Contains(t, out, "doi:1")
	assert.Contains(t, out, "not_found")
	assert.Contains(t, out, strings.Repeat("x", 57)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 61))
	assert.Contains(t, out, "1 changed, 1 not found, 0 fetch errors")
}

func TestRenderTable_NoDrift(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, &drift.Report{Input: "f.txt", Profile: dats.ProfileDataFormat, Checked: 2})
	assert.Contains(t, buf.String(), "No drift found")
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), "YAML"))

	var back drift.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *sampleReport(), back)
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, sampleReport(), "csv"))
}
