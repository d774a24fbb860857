// Package source produces DATS records for an export run, either from the
// metadata catalog or from JSON files on disk.
package source

import (
	"context"
	"fmt"
	"iter"

	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/fetcher"
	"github.com/dtnitsch/dats-exporter/pkg/storage"
	"golang.org/x/text/encoding"
)

// Item is one record read from a source. Err is set when this record could
// not be read; the run carries on with the next one.
type Item struct {
	Ref        string // identifier or file path
	URL        string
	StatusCode int
	Body       []byte
	Record     dats.Record
	Err        error
}

// Source yields records one at a time on the caller's goroutine. A non-nil
// error ends the whole read; per-record failures travel in Item.Err. Reading
// stops with ctx.Err() once ctx is done.
type Source interface {
	Kind() string
	Records(ctx context.Context) iter.Seq2[Item, error]
}

// RecordFetcher is the part of the catalog client a remote source needs.
type RecordFetcher interface {
	GetRecord(ctx context.Context, id string) (dats.Record, *fetcher.Response, error)
}

// Remote fetches one record per identifier, in order, one request at a time.
type Remote struct {
	fetcher RecordFetcher
	ids     []string
}

func NewRemote(f RecordFetcher, ids []string) *Remote {
	return &Remote{fetcher: f, ids: ids}
}

func (r *Remote) Kind() string { return "api" }

func (r *Remote) Records(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, id := range r.ids {
			if err := ctx.Err(); err != nil {
				yield(Item{}, err)
				return
			}
			rec, resp, err := r.fetcher.GetRecord(ctx, id)
			item := Item{Ref: id, Record: rec, Err: err}
			if resp != nil {
				item.URL = resp.URL
				item.StatusCode = resp.StatusCode
				item.Body = resp.Body
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Local reads every *.json file in a directory, sorted by name. Each file
// holds exactly one record.
type Local struct {
	dir     string
	enc     encoding.Encoding
	storage *storage.Storage
}

func NewLocal(dir string, enc encoding.Encoding) *Local {
	return &Local{dir: dir, enc: enc, storage: &storage.Storage{}}
}

func (l *Local) Kind() string { return "dir" }

func (l *Local) Records(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		files, err := l.storage.ListFiles(l.dir, ".json")
		if err != nil {
			yield(Item{}, fmt.Errorf("failed to list input directory: %w", err))
			return
		}

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				yield(Item{}, err)
				return
			}
			item := Item{Ref: path}
			body, err := l.storage.ReadFile(path)
			if err != nil {
				item.Err = err
			} else {
				item.Body = body
				item.Record, item.Err = fetcher.Decode(body, l.enc)
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
