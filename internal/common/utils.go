package common

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\(([^\)]+)\)$`)

// SanitizeIdentifier performs basic cleanup on identifiers to handle common
// copy-paste issues: surrounding whitespace, quotes, trailing commas and
// markdown link wrappers.
func SanitizeIdentifier(raw string) string {
	cleaned := strings.TrimSpace(raw)

	// Example: "[doi](https://doi.org/10.1/x)" -> "https://doi.org/10.1/x"
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	// Identifiers may legitimately end in "." or ")" so only strip separators.
	for _, char := range []string{",", ";", "\"", "'", ">"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"\"", "'", "<"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// SanitizeAndValidateIdentifiers sanitizes all identifiers and returns
// (sanitized identifiers, invalid identifiers). Empty entries and entries
// holding control characters are invalid. Repeated identifiers are kept once.
func SanitizeAndValidateIdentifiers(ids []string) ([]string, []string) {
	sanitized := make([]string, 0, len(ids))
	var invalid []string
	seen := map[string]bool{}

	for _, raw := range ids {
		cleaned := SanitizeIdentifier(raw)
		if cleaned == "" || strings.IndexFunc(cleaned, unicode.IsControl) >= 0 {
			invalid = append(invalid, raw)
			continue
		}
		if seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		sanitized = append(sanitized, cleaned)
	}

	return sanitized, invalid
}

// SplitIdentifierList splits a comma-separated --ids value.
func SplitIdentifierList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// ReadIdentifiers reads one identifier per line. Blank lines and lines
// starting with "#" are ignored.
func ReadIdentifiers(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	return ids, nil
}

// ReadIdentifierFile reads identifiers from path, or from stdin when path
// is "-".
func ReadIdentifierFile(path string) ([]string, error) {
	if path == "-" {
		return ReadIdentifiers(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identifier file: %w", err)
	}
	defer f.Close()
	return ReadIdentifiers(f)
}
