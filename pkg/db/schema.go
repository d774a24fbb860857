package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per export or check invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,          -- uuid
    command TEXT NOT NULL,            -- export, check
    source TEXT NOT NULL,             -- api, dir, or the checked file
    profile TEXT NOT NULL,            -- dataset, data-format, auto
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'running',  -- running, ok, failed, drift
    record_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    row_count INTEGER DEFAULT 0,
    out_dir TEXT,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);

-- Fetches: every record read attempt within a run
CREATE TABLE IF NOT EXISTS fetches (
    fetch_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    ref TEXT NOT NULL,                -- identifier or file path
    url TEXT,
    status_code INTEGER,
    success BOOLEAN NOT NULL,
    error_message TEXT,
    content_hash TEXT,
    size_bytes INTEGER,
    profile TEXT,
    buckets TEXT,                     -- comma-separated bucket names
    fetched_at TIMESTAMP NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
CREATE INDEX IF NOT EXISTS idx_fetches_ref ON fetches(ref);
CREATE INDEX IF NOT EXISTS idx_fetches_hash ON fetches(content_hash);

-- Drift findings recorded by check runs
CREATE TABLE IF NOT EXISTS drift_findings (
    finding_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    identifier TEXT NOT NULL,
    kind TEXT NOT NULL,               -- changed, not_found, fetch_error
    column_name TEXT,
    stored_value TEXT,
    current_value TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_findings_run ON drift_findings(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_identifier ON drift_findings(identifier);
`
