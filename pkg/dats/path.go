package dats

import "strings"

// Record is one decoded DATS JSON document. Shape varies by entity kind and
// schema version, so it stays untyped and is read through Lookup.
type Record = map[string]any

// Lookup walks v along path. String segments index mappings, int segments
// index sequences. Missing keys, nulls, type mismatches and out-of-range
// indexes all report ok == false.
func Lookup(v any, path ...any) (any, bool) {
	current := v
	for _, seg := range path {
		switch key := seg.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := m[key]
			if !ok {
				return nil, false
			}
			current = next
		case int:
			list, ok := current.([]any)
			if !ok || key < 0 || key >= len(list) {
				return nil, false
			}
			current = list[key]
		default:
			return nil, false
		}
		if current == nil {
			return nil, false
		}
	}
	return current, true
}

// String returns the string at path. Non-string values are absent.
func String(v any, path ...any) (string, bool) {
	found, ok := Lookup(v, path...)
	if !ok {
		return "", false
	}
	s, ok := found.(string)
	return s, ok
}

// NonBlank is String restricted to values with non-whitespace content.
func NonBlank(v any, path ...any) (string, bool) {
	s, ok := String(v, path...)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// List returns the sequence at path. An empty sequence is reported as present.
func List(v any, path ...any) ([]any, bool) {
	found, ok := Lookup(v, path...)
	if !ok {
		return nil, false
	}
	list, ok := found.([]any)
	return list, ok
}

// Map returns the mapping at path.
func Map(v any, path ...any) (map[string]any, bool) {
	found, ok := Lookup(v, path...)
	if !ok {
		return nil, false
	}
	m, ok := found.(map[string]any)
	return m, ok
}

// ParsePath splits a dotted path such as "distributions.0.access.landingPage"
// into Lookup segments. Purely numeric parts become sequence indexes.
func ParsePath(path string) []any {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segments := make([]any, 0, len(parts))
	for _, part := range parts {
		if idx, ok := atoi(part); ok {
			segments = append(segments, idx)
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// Collect resolves a dotted path in which a part ending in "[]" fans out over
// every element of that sequence, e.g. "isAbout[].identifier.identifierSource".
// Absent branches contribute nothing.
func Collect(v any, path string) []any {
	if path == "" {
		return []any{v}
	}
	head, rest, _ := strings.Cut(path, "[]")
	if head == path {
		found, ok := Lookup(v, ParsePath(path)...)
		if !ok {
			return nil
		}
		return []any{found}
	}
	list, ok := List(v, ParsePath(strings.TrimSuffix(head, "."))...)
	if !ok {
		return nil
	}
	rest = strings.TrimPrefix(rest, ".")
	var out []any
	for _, item := range list {
		out = append(out, Collect(item, rest)...)
	}
	return out
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
