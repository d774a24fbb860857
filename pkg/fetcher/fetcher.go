package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding"
)

// ErrNotFound is returned when the catalog has no record for an identifier.
var ErrNotFound = errors.New("record not found")

// ErrInvalidRecord is returned when a body is not a single JSON object.
var ErrInvalidRecord = errors.New("invalid record")

// StatusError is a non-2xx catalog response.
type StatusError struct {
	StatusCode int
	Summary    string
}

func (e *StatusError) Error() string {
	if e.Summary == "" {
		return fmt.Sprintf("catalog returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, e.Summary)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Response is one catalog fetch.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves DATS records from the metadata catalog, one request per
// identifier. Requests are not retried.
type Fetcher struct {
	client  *resty.Client
	baseURL string
	decoder encoding.Encoding
}

// NewFetcher builds a client for the metadata endpoint at baseURL. A nil
// enc means response bodies are already UTF-8.
func NewFetcher(baseURL string, timeout time.Duration, enc encoding.Encoding) *Fetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "dats-exporter")

	return &Fetcher{
		client:  client,
		baseURL: baseURL,
		decoder: enc,
	}
}

// MetadataURL is the fetch URL for id, with id fully percent-encoded.
func (f *Fetcher) MetadataURL(id string) string {
	sep := "?"
	if strings.Contains(f.baseURL, "?") {
		sep = "&"
	}
	return f.baseURL + sep + "identifier=" + EscapeIdentifier(id)
}

// GetRecordBytes fetches the raw body for id. Non-2xx responses come back as
// a *StatusError alongside the response.
func (f *Fetcher) GetRecordBytes(ctx context.Context, id string) (*Response, error) {
	url := f.MetadataURL(id)
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}

	out := &Response{URL: url, StatusCode: resp.StatusCode(), Body: resp.Body()}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return out, &StatusError{
			StatusCode: resp.StatusCode(),
			Summary:    summarizeBody(resp.Header().Get("Content-Type"), resp.Body()),
		}
	}
	return out, nil
}

// GetRecord fetches and decodes the record for id.
func (f *Fetcher) GetRecord(ctx context.Context, id string) (dats.Record, *Response, error) {
	resp, err := f.GetRecordBytes(ctx, id)
	if err != nil {
		return nil, resp, err
	}
	rec, err := Decode(resp.Body, f.decoder)
	if err != nil {
		return nil, resp, err
	}
	return rec, resp, nil
}

// Decode parses one JSON document into a record, transcoding from enc first
// when it is set.
func Decode(body []byte, enc encoding.Encoding) (dats.Record, error) {
	if enc != nil {
		decoded, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode body: %w", ErrInvalidRecord, err)
		}
		body = decoded
	}
	var rec dats.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrInvalidRecord, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidRecord)
	}
	return rec, nil
}

// summarizeBody turns an error body into one short line. HTML error pages
// are reduced to their title, or their visible text.
func summarizeBody(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if strings.Contains(contentType, "html") || trimmed[0] == '<' {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return truncate(title)
			}
			return truncate(strings.Join(strings.Fields(doc.Find("body").Text()), " "))
		}
	}
	return truncate(strings.Join(strings.Fields(string(trimmed)), " "))
}

func truncate(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// EscapeIdentifier percent-encodes every byte outside the RFC 3986
// unreserved set, so "/", ":" and spaces are all escaped.
func EscapeIdentifier(id string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0F])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
