package help

import (
	"testing"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestColumnsCoverEveryProfileColumn(t *testing.T) {
	for _, p := range []dats.Profile{dats.ProfileDataset, dats.ProfileDataFormat} {
		cols := Columns(p)
		require.Len(t, cols, len(p.Columns()), p)
		for i, c := range cols {
			assert.Equal(t, p.Columns()[i], c.Name)
			assert.NotEmpty(t, c.Source, "%s: column %s has no source", p, c.Name)
		}
	}
}

func TestColumnsYAML(t *testing.T) {
	b, err := ColumnsYAML(dats.ProfileDataFormat)
	require.NoError(t, err)

	var doc struct {
		Profile    string   `yaml:"profile"`
		Identifier string   `yaml:"identifier_column"`
		Columns    []Column `yaml:"columns"`
	}
	require.NoError(t, yaml.Unmarshal(b, &doc))
	assert.Equal(t, "data-format", doc.Profile)
	assert.Equal(t, dats.ColIdentifier, doc.Identifier)
	assert.Equal(t, dats.ColName, doc.Columns[0].Name)
}

func TestColdstartIsValidYAML(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(ColdstartYAML), &doc))
	assert.Contains(t, doc, "commands")
	assert.Equal(t, "dats", doc["tool"])
}
