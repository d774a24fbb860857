package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "doi:10.5281/zenodo.1", "doi:10.5281/zenodo.1"},
		{"whitespace", "  doi:1 \t", "doi:1"},
		{"trailing comma", "doi:1,", "doi:1"},
		{"quoted", `"https://doi.org/10.1/x"`, "https://doi.org/10.1/x"},
		{"markdown link", "[paper](https://doi.org/10.1/x)", "https://doi.org/10.1/x"},
		{"keeps trailing dot", "urn:x.", "urn:x."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeIdentifier(tt.raw); got != tt.want {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeAndValidateIdentifiers(t *testing.T) {
	ids := []string{"doi:1", " doi:2 ", "", "doi:1", "bad\x00id", ","}
	valid, invalid := SanitizeAndValidateIdentifiers(ids)

	assert.Equal(t, []string{"doi:1", "doi:2"}, valid)
	assert.Equal(t, []string{"", "bad\x00id", ","}, invalid)
}

func TestSplitIdentifierList(t *testing.T) {
	assert.Nil(t, SplitIdentifierList("  "))
	assert.Equal(t, []string{"a", " b"}, SplitIdentifierList("a, b"))
}

func TestReadIdentifiers(t *testing.T) {
	ids, err := ReadIdentifiers(strings.NewReader("# exported ids\ndoi:1\n\n  doi:2  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"doi:1", "doi:2"}, ids)
}

func TestReadIdentifierFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("doi:1\ndoi:2\n"), 0644))

	ids, err := ReadIdentifierFile(path)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = ReadIdentifierFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(nil))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}
