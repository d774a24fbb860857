package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusDrift   = "drift"
)

// Run is one export or check invocation.
type Run struct {
	RunID        string
	Command      string
	Source       string
	Profile      string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Status       string
	RecordCount  int
	FailedCount  int
	RowCount     int
	OutDir       string
	ErrorMessage string
}

// RunStats are the totals written when a run finishes.
type RunStats struct {
	Status       string
	RecordCount  int
	FailedCount  int
	RowCount     int
	ErrorMessage string
}

// Fetch is one record read attempt within a run.
type Fetch struct {
	FetchID      int64
	RunID        string
	Ref          string
	URL          string
	StatusCode   int
	Success      bool
	ErrorMessage string
	ContentHash  string
	SizeBytes    int64
	Profile      string
	Buckets      []string
	FetchedAt    time.Time
}

// Finding is a stored drift finding.
type Finding struct {
	FindingID    int64
	RunID        string
	Identifier   string
	Kind         string
	Column       string
	StoredValue  string
	CurrentValue string
}

// CreateRun starts a new run and returns its id.
func (db *DB) CreateRun(command, source, profile, outDir string) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO runs (run_id, command, source, profile, started_at, status, out_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, command, source, profile, time.Now().UTC(), StatusRunning, outDir)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the end time and totals of a run.
func (db *DB) FinishRun(runID string, stats RunStats) error {
	res, err := db.Exec(`
		UPDATE runs
		SET finished_at = ?, status = ?, record_count = ?, failed_count = ?, row_count = ?, error_message = ?
		WHERE run_id = ?
	`, time.Now().UTC(), stats.Status, stats.RecordCount, stats.FailedCount, stats.RowCount, stats.ErrorMessage, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// RecordFetch stores one read attempt.
func (db *DB) RecordFetch(f Fetch) error {
	fetchedAt := f.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
		INSERT INTO fetches (run_id, ref, url, status_code, success, error_message, content_hash, size_bytes, profile, buckets, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.RunID, f.Ref, f.URL, f.StatusCode, f.Success, f.ErrorMessage, f.ContentHash, f.SizeBytes, f.Profile, strings.Join(f.Buckets, ","), fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// RecordFinding stores one drift finding.
func (db *DB) RecordFinding(f Finding) error {
	_, err := db.Exec(`
		INSERT INTO drift_findings (run_id, identifier, kind, column_name, stored_value, current_value)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.RunID, f.Identifier, f.Kind, f.Column, f.StoredValue, f.CurrentValue)
	if err != nil {
		return fmt.Errorf("failed to record finding: %w", err)
	}
	return nil
}

const runColumns = `run_id, command, source, profile, started_at, finished_at, status,
	record_count, failed_count, row_count, COALESCE(out_dir, ''), COALESCE(error_message, '')`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.RunID,
		&r.Command,
		&r.Source,
		&r.Profile,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Status,
		&r.RecordCount,
		&r.FailedCount,
		&r.RowCount,
		&r.OutDir,
		&r.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun retrieves a run by id. A unique id prefix is accepted.
func (db *DB) GetRun(runID string) (*Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs WHERE run_id LIKE ? ORDER BY started_at DESC LIMIT 2`, runID+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("run %s not found", runID)
	case 1:
		return found[0], nil
	default:
		if found[0].RunID == runID {
			return found[0], nil
		}
		return nil, fmt.Errorf("run id %s is ambiguous", runID)
	}
}

// ListRuns returns the most recent runs first. limit <= 0 means all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRunFetches returns a run's read attempts in the order they were made.
func (db *DB) GetRunFetches(runID string) ([]Fetch, error) {
	rows, err := db.Query(`
		SELECT fetch_id, run_id, ref, COALESCE(url, ''), COALESCE(status_code, 0), success,
			COALESCE(error_message, ''), COALESCE(content_hash, ''), COALESCE(size_bytes, 0),
			COALESCE(profile, ''), COALESCE(buckets, ''), fetched_at
		FROM fetches
		WHERE run_id = ?
		ORDER BY fetch_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fetches: %w", err)
	}
	defer rows.Close()

	var fetches []Fetch
	for rows.Next() {
		var f Fetch
		var buckets string
		if err := rows.Scan(
			&f.FetchID,
			&f.RunID,
			&f.Ref,
			&f.URL,
			&f.StatusCode,
			&f.Success,
			&f.ErrorMessage,
			&f.ContentHash,
			&f.SizeBytes,
			&f.Profile,
			&buckets,
			&f.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		if buckets != "" {
			f.Buckets = strings.Split(buckets, ",")
		}
		fetches = append(fetches, f)
	}
	return fetches, rows.Err()
}

// GetRunFindings returns a run's drift findings in the order they were made.
func (db *DB) GetRunFindings(runID string) ([]Finding, error) {
	rows, err := db.Query(`
		SELECT finding_id, run_id, identifier, kind, COALESCE(column_name, ''),
			COALESCE(stored_value, ''), COALESCE(current_value, '')
		FROM drift_findings
		WHERE run_id = ?
		ORDER BY finding_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(
			&f.FindingID,
			&f.RunID,
			&f.Identifier,
			&f.Kind,
			&f.Column,
			&f.StoredValue,
			&f.CurrentValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// LastFetchHash returns the content hash of the most recent successful read
// of ref before runID, or "" when there is none.
func (db *DB) LastFetchHash(ref, runID string) (string, error) {
	var hash string
	err := db.QueryRow(`
		SELECT COALESCE(content_hash, '')
		FROM fetches
		WHERE ref = ? AND run_id != ? AND success = 1
		ORDER BY fetch_id DESC
		LIMIT 1
	`, ref, runID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last fetch hash: %w", err)
	}
	return hash, nil
}
