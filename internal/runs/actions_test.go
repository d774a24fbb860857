package runs

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/dtnitsch/dats-exporter/pkg/db"
	"github.com/stretchr/testify/assert"
)

func TestRenderRuns(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []db.Run{
		{RunID: "0f6c1a2b-0000-4000-8000-000000000000", Command: "export", Source: "api", StartedAt: now.Add(-2 * time.Hour),
			Status: db.StatusOK, RecordCount: 1200, FailedCount: 3, RowCount: 2400},
		{RunID: "9d1e5f00-0000-4000-8000-000000000000", Command: "check", Source: "dats-info.txt", StartedAt: now.Add(-48 * time.Hour),
			Status: db.StatusDrift, RecordCount: 10},
	}

	var buf bytes.Buffer
	RenderRuns(&buf, runs, now)
	out := buf.String()

	assert.Contains(t, out, "0f6c1a2b")
	assert.NotContains(t, out, "0f6c1a2b-0000")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "drift")
}

func TestRenderRun(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := &db.Run{
		RunID:       "0f6c1a2b-0000-4000-8000-000000000000",
		Command:     "export",
		Source:      "api",
		Profile:     "auto",
		StartedAt:   started,
		FinishedAt:  sql.NullTime{Time: started.Add(1500 * time.Millisecond), Valid: true},
		Status:      db.StatusOK,
		RecordCount: 2,
		FailedCount: 1,
	}
	fetches := []db.Fetch{
		{Ref: "doi:1", StatusCode: 200, Success: true, Profile: "dataset", Buckets: []string{"dats-info", "zenodo-hosted"}, SizeBytes: 2048},
		{Ref: "doi:2", StatusCode: 404, ErrorMessage: "catalog returned status 404"},
	}
	findings := []db.Finding{{Identifier: "doi:1", Kind: "changed", Column: "title", StoredValue: "Old", CurrentValue: "New"}}

	var buf bytes.Buffer
	RenderRun(&buf, run, fetches, findings, false)
	out := buf.String()
	assert.Contains(t, out, "Run 0f6c1a2b-0000-4000-8000-000000000000")
	assert.Contains(t, out, "Duration:  1.5s")
	assert.Contains(t, out, "dats-info, zenodo-hosted")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "Drift findings (1)")

	buf.Reset()
	RenderRun(&buf, run, fetches, nil, true)
	assert.NotContains(t, buf.String(), "zenodo-hosted")
	assert.Contains(t, buf.String(), "doi:2")
}
