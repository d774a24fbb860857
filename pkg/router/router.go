// Package router assigns assembled records to named output buckets using a
// declarative rule table. Matching is literal: string equality, substring
// containment or presence. A record may land in several buckets.
package router

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"gopkg.in/yaml.v3"
)

// Predicate operators.
const (
	OpEquals   = "equals"
	OpContains = "contains"
	OpNotNull  = "not_null"
	OpOneOf    = "one_of"
)

// Field prefixes. "col:" reads the assembled row, "raw:" reads the source
// record through a dotted path where "[]" fans out over a sequence.
const (
	colPrefix = "col:"
	rawPrefix = "raw:"
)

// Predicate tests one field of a record.
type Predicate struct {
	Field  string   `yaml:"field"`
	Op     string   `yaml:"op"`
	Value  string   `yaml:"value,omitempty"`
	Values []string `yaml:"values,omitempty"`
}

// Rule routes records matching every predicate into Buckets. An empty
// Profile applies the rule to both profiles.
type Rule struct {
	Name    string      `yaml:"name"`
	Profile string      `yaml:"profile,omitempty"`
	Match   []Predicate `yaml:"match,omitempty"`
	Buckets []string    `yaml:"buckets"`
}

// Table is an ordered rule list plus an optional catch-all bucket.
type Table struct {
	Rules    []Rule `yaml:"rules"`
	Fallback string `yaml:"fallback,omitempty"`
}

// Parse decodes and validates a YAML rule table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse routing rules: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects rules that could never be evaluated.
func (t *Table) Validate() error {
	for i, r := range t.Rules {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if len(r.Buckets) == 0 {
			return fmt.Errorf("rule %s: no buckets", label)
		}
		if r.Profile != "" {
			if _, err := dats.ParseProfile(r.Profile); err != nil {
				return fmt.Errorf("rule %s: %w", label, err)
			}
		}
		for _, p := range r.Match {
			if !strings.HasPrefix(p.Field, colPrefix) && !strings.HasPrefix(p.Field, rawPrefix) {
				return fmt.Errorf("rule %s: field %q needs a col: or raw: prefix", label, p.Field)
			}
			switch p.Op {
			case OpEquals, OpContains:
				if p.Value == "" {
					return fmt.Errorf("rule %s: %s needs a value", label, p.Op)
				}
			case OpOneOf:
				if len(p.Values) == 0 {
					return fmt.Errorf("rule %s: one_of needs values", label)
				}
			case OpNotNull:
			default:
				return fmt.Errorf("rule %s: unknown op %q", label, p.Op)
			}
		}
	}
	return nil
}

// Route returns the buckets a record belongs to, in rule order and without
// duplicates. Records matching no rule go to the fallback bucket, if any.
func (t *Table) Route(row dats.Row, rec dats.Record, profile dats.Profile) []string {
	var buckets []string
	seen := map[string]bool{}
	for _, r := range t.Rules {
		if !r.applies(row, rec, profile) {
			continue
		}
		for _, b := range r.Buckets {
			if !seen[b] {
				seen[b] = true
				buckets = append(buckets, b)
			}
		}
	}
	if len(buckets) == 0 && t.Fallback != "" {
		buckets = append(buckets, t.Fallback)
	}
	return buckets
}

// Buckets lists every bucket the table can produce.
func (t *Table) Buckets() []string {
	var out []string
	seen := map[string]bool{}
	add := func(b string) {
		if b != "" && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, r := range t.Rules {
		for _, b := range r.Buckets {
			add(b)
		}
	}
	add(t.Fallback)
	return out
}

func (r Rule) applies(row dats.Row, rec dats.Record, profile dats.Profile) bool {
	if r.Profile != "" {
		p, err := dats.ParseProfile(r.Profile)
		if err != nil || p != profile {
			return false
		}
	}
	for _, p := range r.Match {
		if !p.matches(fieldValues(p.Field, row, rec)) {
			return false
		}
	}
	return true
}

func (p Predicate) matches(values []string) bool {
	for _, v := range values {
		switch p.Op {
		case OpNotNull:
			if v != dats.Null && strings.TrimSpace(v) != "" {
				return true
			}
		case OpEquals:
			if v == p.Value {
				return true
			}
		case OpContains:
			if strings.Contains(v, p.Value) {
				return true
			}
		case OpOneOf:
			for _, want := range p.Values {
				if v == want {
					return true
				}
			}
		}
	}
	return false
}

// fieldValues resolves a predicate field to the strings it should test.
func fieldValues(field string, row dats.Row, rec dats.Record) []string {
	if col, ok := strings.CutPrefix(field, colPrefix); ok {
		v, ok := row[col]
		if !ok {
			return nil
		}
		return []string{v}
	}
	path := strings.TrimPrefix(field, rawPrefix)
	var out []string
	for _, v := range dats.Collect(rec, path) {
		switch s := v.(type) {
		case string:
			out = append(out, s)
		case float64, bool:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}
