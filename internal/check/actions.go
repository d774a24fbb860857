package check

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/dats-exporter/internal/common"
	"github.com/dtnitsch/dats-exporter/models"
	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/db"
	"github.com/dtnitsch/dats-exporter/pkg/drift"
	"github.com/dtnitsch/dats-exporter/pkg/fetcher"
	"github.com/dtnitsch/dats-exporter/pkg/storage"
	"github.com/dtnitsch/dats-exporter/pkg/tsv"
	"github.com/urfave/cli/v2"
)

// FindExport picks the export file to check: opts.Input itself, or the newest
// bucket file under it. Run manifests and other non-export files are ignored.
func FindExport(s *storage.Storage, cfg models.Config, opts models.CheckConfig) (string, error) {
	input := opts.Input
	if input == "" {
		input = cfg.OutDir
	}
	return s.NewestFile(input, opts.Match, cfg.ExportExtensions()...)
}

// CheckAction re-fetches every identifier in the newest export and reports
// columns whose value changed. Exit status is 1 when drift was found.
func CheckAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"), c.Bool("verbose"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	common.ApplyConfigFlags(c, &cfg)

	opts := models.CheckConfig{
		Input:    c.String("input"),
		Match:    c.String("match"),
		Encoding: cfg.Encoding,
		Format:   c.String("format"),
	}
	enc, err := tsv.LookupEncoding(opts.Encoding)
	if err != nil {
		logger.Error("invalid encoding", "error", err)
		os.Exit(2)
	}

	path, err := FindExport(&storage.Storage{}, cfg, opts)
	if err != nil {
		logger.Error("failed to find export", "input", opts.Input, "out_dir", cfg.OutDir, "match", opts.Match, "error", err)
		os.Exit(2)
	}
	exported, err := tsv.ReadFile(path, opts.Encoding)
	if err != nil {
		logger.Error("failed to read export", "path", path, "error", err)
		os.Exit(2)
	}
	logger.Info("checking export", "path", path, "rows", len(exported.Rows))

	var database *db.DB
	var runID string
	if !c.Bool("no-db") {
		database, err = db.Open(c.String("db"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(2)
		}
		defer database.Close()
	}

	checker := &drift.Checker{
		Fetcher: fetcher.NewFetcher(cfg.APIURL, cfg.Timeout, enc),
		Skip:    cfg.SkipIdentifier,
		OnFinding: func(f drift.Finding) {
			logger.Debug("drift", "identifier", f.Identifier, "kind", f.Kind, "column", f.Column)
			if database == nil || runID == "" {
				return
			}
			err := database.RecordFinding(db.Finding{
				RunID:        runID,
				Identifier:   f.Identifier,
				Kind:         string(f.Kind),
				Column:       f.Column,
				StoredValue:  f.Stored,
				CurrentValue: f.Current,
			})
			if err != nil {
				logger.Warn("failed to audit finding", "error", err)
			}
		},
	}

	if database != nil {
		profile, _ := dats.ProfileForHeader(exported.Header)
		runID, err = database.CreateRun("check", path, string(profile), "")
		if err != nil {
			logger.Warn("failed to create run", "error", err)
		}
	}

	report, err := checker.Check(c.Context, path, exported)
	if err != nil {
		finishRun(database, runID, db.RunStats{Status: db.StatusFailed, ErrorMessage: err.Error()}, logger)
		logger.Error("check failed", "path", path, "error", err)
		return cli.Exit(fmt.Sprintf("check failed: %v", err), 2)
	}

	status := db.StatusOK
	if report.HasDrift() {
		status = db.StatusDrift
	}
	finishRun(database, runID, db.RunStats{
		Status:      status,
		RecordCount: report.Checked,
		FailedCount: report.Count(drift.KindNotFound) + report.Count(drift.KindFetchError),
		RowCount:    len(report.Findings),
	}, logger)

	if err := Render(os.Stdout, report, opts.Format); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if report.HasDrift() {
		return cli.Exit("", 1)
	}
	return nil
}

func finishRun(database *db.DB, runID string, stats db.RunStats, logger *slog.Logger) {
	if database == nil || runID == "" {
		return
	}
	if err := database.FinishRun(runID, stats); err != nil {
		logger.Warn("failed to finish run", "error", err)
	}
}
