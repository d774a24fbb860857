package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/dats-exporter/internal/common"
	"github.com/dtnitsch/dats-exporter/models"
	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/db"
	"github.com/dtnitsch/dats-exporter/pkg/fetcher"
	"github.com/dtnitsch/dats-exporter/pkg/manifest"
	"github.com/dtnitsch/dats-exporter/pkg/source"
	"github.com/dtnitsch/dats-exporter/pkg/storage"
	"github.com/dtnitsch/dats-exporter/pkg/tsv"
)

// Result summarizes one export run.
type Result struct {
	RunID        string
	Inputs       int
	Exported     int
	Failed       int
	Unrouted     int
	Rows         int
	Bytes        int64
	Writes       []manifest.BucketWrite
	ManifestPath string
}

// Pipeline runs source -> assemble -> route -> write for one export.
type Pipeline struct {
	Logger  *slog.Logger
	Config  models.Config
	Options models.ExportConfig
	Source  source.Source
	// DB is optional. When nil nothing is audited.
	DB      *db.DB
	Storage *storage.Storage
}

type bucketKey struct {
	name    string
	profile dats.Profile
}

// Run reads every record, then writes each bucket once. Read failures are
// logged and skipped unless FailFast is set. Write failures end the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	if p.Storage == nil {
		p.Storage = &storage.Storage{}
	}

	if p.DB != nil {
		runID, err := p.DB.CreateRun("export", p.Source.Kind(), p.Options.Profile.String(), p.Options.OutDir)
		if err != nil {
			return nil, err
		}
		res.RunID = runID
		p.Logger = p.Logger.With("run_id", runID)
	}

	rows := map[bucketKey][]dats.Row{}
	var order []bucketKey
	var results []manifest.FetchResult

	for item, err := range p.Source.Records(ctx) {
		if err != nil {
			p.finish(res, db.StatusFailed, err)
			return res, fmt.Errorf("reading records: %w", err)
		}
		res.Inputs++
		fr := manifest.FetchResult{Ref: item.Ref, StatusCode: item.StatusCode}

		if item.Err != nil {
			res.Failed++
			fr.Error = item.Err
			fr.ErrorType = errorType(item.Err)
			results = append(results, fr)
			p.Logger.Warn("failed to read record", "ref", item.Ref, "status", item.StatusCode, "error", item.Err)
			p.audit(res.RunID, item, "", nil)
			if p.Options.FailFast {
				p.finish(res, db.StatusFailed, item.Err)
				return res, fmt.Errorf("reading %s: %w", item.Ref, item.Err)
			}
			continue
		}

		profile := p.Options.Profile.Resolve(item.Record)
		row := dats.Assemble(item.Record, profile)
		buckets := p.Config.Routing.Route(row, item.Record, profile)

		res.Exported++
		fr.Profile = string(profile)
		fr.Buckets = buckets
		results = append(results, fr)
		p.audit(res.RunID, item, profile, buckets)

		if len(buckets) == 0 {
			res.Unrouted++
			p.Logger.Warn("record matched no bucket", "ref", item.Ref, "profile", profile)
			continue
		}
		for _, b := range buckets {
			key := bucketKey{name: b, profile: profile}
			if _, ok := rows[key]; !ok {
				order = append(order, key)
			}
			rows[key] = append(rows[key], row)
		}
		p.Logger.Debug("record routed", "ref", item.Ref, "profile", profile, "buckets", buckets)
	}

	paths := p.bucketPaths(order)
	for _, key := range order {
		path := paths[key]
		n, err := tsv.WriteFile(path, key.profile.Columns(), rows[key], p.Options.Encoding)
		if err != nil {
			p.finish(res, db.StatusFailed, err)
			return res, fmt.Errorf("writing bucket %s: %w", key.name, err)
		}
		res.Rows += len(rows[key])
		res.Bytes += n
		res.Writes = append(res.Writes, manifest.BucketWrite{
			Name:    key.name,
			Path:    path,
			Profile: string(key.profile),
			Rows:    len(rows[key]),
		})
		p.Logger.Info("bucket written", "bucket", key.name, "path", path, "rows", len(rows[key]), "bytes", n)
	}

	m := manifest.Build(res.RunID, p.Source.Kind(), p.Options.Profile.String(), p.Options.Encoding, results, res.Writes, p.Storage)
	manifestPath, err := manifest.Save(m, p.Options.OutDir, p.Storage)
	if err != nil {
		p.Logger.Warn("failed to save manifest", "error", err)
	} else {
		res.ManifestPath = manifestPath
	}

	p.finish(res, db.StatusOK, nil)
	return res, nil
}

// bucketPaths assigns a file to every bucket. The first profile routed into
// a bucket owns the configured file; rows of the other profile go to a
// sibling file suffixed with that profile's name.
func (p *Pipeline) bucketPaths(order []bucketKey) map[bucketKey]string {
	owner := map[string]dats.Profile{}
	paths := map[bucketKey]string{}
	for _, key := range order {
		path := p.Config.BucketPath(p.Options.OutDir, key.name)
		if first, ok := owner[key.name]; !ok {
			owner[key.name] = key.profile
		} else if first != key.profile {
			ext := filepath.Ext(path)
			path = strings.TrimSuffix(path, ext) + "-" + string(key.profile) + ext
			p.Logger.Warn("bucket received both profiles", "bucket", key.name, "profile", key.profile, "path", path)
		}
		paths[key] = path
	}
	return paths
}

func (p *Pipeline) audit(runID string, item source.Item, profile dats.Profile, buckets []string) {
	if p.DB == nil {
		return
	}
	f := db.Fetch{
		RunID:      runID,
		Ref:        item.Ref,
		URL:        item.URL,
		StatusCode: item.StatusCode,
		Success:    item.Err == nil,
		Profile:    string(profile),
		Buckets:    buckets,
		SizeBytes:  int64(len(item.Body)),
	}
	if item.Err != nil {
		f.ErrorMessage = item.Err.Error()
	}
	if len(item.Body) > 0 {
		f.ContentHash = common.ContentHash(item.Body)
		if item.Err == nil {
			if prev, err := p.DB.LastFetchHash(item.Ref, runID); err == nil && prev != "" {
				p.Logger.Debug("record compared with previous export", "ref", item.Ref, "changed", prev != f.ContentHash)
			}
		}
	}
	if err := p.DB.RecordFetch(f); err != nil {
		p.Logger.Warn("failed to audit fetch", "ref", item.Ref, "error", err)
	}
}

func (p *Pipeline) finish(res *Result, status string, runErr error) {
	if p.DB == nil || res.RunID == "" {
		return
	}
	stats := db.RunStats{
		Status:      status,
		RecordCount: res.Inputs,
		FailedCount: res.Failed,
		RowCount:    res.Rows,
	}
	if runErr != nil {
		stats.ErrorMessage = runErr.Error()
	}
	if err := p.DB.FinishRun(res.RunID, stats); err != nil {
		p.Logger.Warn("failed to finish run", "error", err)
	}
}

func errorType(err error) string {
	var statusErr *fetcher.StatusError
	switch {
	case errors.Is(err, fetcher.ErrNotFound):
		return "not_found"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, fetcher.ErrInvalidRecord):
		return "decode_error"
	default:
		return "fetch_error"
	}
}
