// Package tsv reads and writes the tab-delimited export files: one header row
// of column names followed by one row per record.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrHeaderMismatch is returned when appending to a file whose header differs
// from the columns being written.
var ErrHeaderMismatch = errors.New("existing file has a different header")

// Table is a parsed export file.
type Table struct {
	Header []string
	Rows   []dats.Row
}

// LookupEncoding maps a config/flag name to a text encoding. UTF-8 maps to
// nil, meaning bytes pass through untouched.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %q", name)
	}
}

// WriteFile writes rows to path in column order. An existing non-empty file is
// appended to without repeating the header; otherwise the file is created and
// the header written first. Values are written as-is.
func WriteFile(path string, columns []string, rows []dats.Row, encodingName string) (int64, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	writeHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		existing, err := readHeader(path, enc)
		if err != nil {
			return 0, err
		}
		if !slices.Equal(existing, columns) {
			return 0, fmt.Errorf("%s: %w", path, ErrHeaderMismatch)
		}
		writeHeader = false
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	counter := &countingWriter{w: f}
	var out io.Writer = counter
	if enc != nil {
		out = transform.NewWriter(counter, encoding.ReplaceUnsupported(enc.NewEncoder()))
	}

	if err := Write(out, columns, rows, writeHeader); err != nil {
		return counter.n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if c, ok := out.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return counter.n, fmt.Errorf("failed to flush %s: %w", path, err)
		}
	}
	return counter.n, nil
}

// Write emits rows to w, optionally preceded by the header.
func Write(w io.Writer, columns []string, rows []dats.Row, header bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if header {
		if err := cw.Write(columns); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := cw.Write(row.Values(columns)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile parses an export file.
func ReadFile(path, encodingName string) (*Table, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(decode(f, enc))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// Read parses tab-delimited text whose first row is the header. Short rows
// are padded with empty values.
func Read(r io.Reader) (*Table, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Header: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(dats.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readHeader(path string, enc encoding.Encoding) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	header, err := newReader(decode(f, enc)).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return header, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func decode(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
