package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dtnitsch/dats-exporter/pkg/storage"
	"gopkg.in/yaml.v3"
)

// FetchResult is the outcome of reading one record during an export.
type FetchResult struct {
	Ref        string
	StatusCode int
	Profile    string
	Buckets    []string
	Error      error
	ErrorType  string
}

// BucketWrite is what the writer reports for one bucket file.
type BucketWrite struct {
	Name    string
	Path    string
	Profile string
	Rows    int
}

// Build aggregates per-record results and bucket writes into a manifest.
func Build(runID, source, profile, encoding string, results []FetchResult, writes []BucketWrite, s *storage.Storage) RunManifest {
	m := RunManifest{
		RunID:       runID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Source:      source,
		Profile:     profile,
		Encoding:    encoding,
		TotalInputs: len(results),
	}

	for _, result := range results {
		if result.Error != nil {
			m.Failed++
			m.Failures = append(m.Failures, Failure{
				Ref:          result.Ref,
				StatusCode:   result.StatusCode,
				ErrorType:    result.ErrorType,
				ErrorMessage: result.Error.Error(),
			})
			continue
		}
		m.Exported++
		if len(result.Buckets) == 0 {
			m.Unrouted++
		}
	}

	for _, w := range writes {
		summary := BucketSummary{
			Name:    w.Name,
			Path:    w.Path,
			Profile: w.Profile,
			Rows:    w.Rows,
		}
		if stats, err := s.GetFileStats(w.Path); err == nil {
			summary.SizeBytes = stats.SizeBytes
		}
		m.Buckets = append(m.Buckets, summary)
	}
	sort.Slice(m.Buckets, func(i, j int) bool {
		return m.Buckets[i].Name < m.Buckets[j].Name
	})

	return m
}

// Save writes m as YAML into dir and returns the file path.
func Save(m RunManifest, dir string, s *storage.Storage) (string, error) {
	manifestPath := filepath.Join(dir, fmt.Sprintf("manifest-%s.yaml", time.Now().Format("2006-01-02-150405")))
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, data); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
