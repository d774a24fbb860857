package export

import (
	"fmt"
	"os"

	"github.com/dtnitsch/dats-exporter/internal/common"
	"github.com/dtnitsch/dats-exporter/models"
	"github.com/dtnitsch/dats-exporter/pkg/db"
	"github.com/dtnitsch/dats-exporter/pkg/fetcher"
	"github.com/dtnitsch/dats-exporter/pkg/source"
	"github.com/dtnitsch/dats-exporter/pkg/tsv"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func ExportAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"), c.Bool("verbose"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	common.ApplyConfigFlags(c, &cfg)

	kind, err := models.ParseSourceKind(c.String("source"))
	if err != nil {
		logger.Error("invalid source", "error", err)
		os.Exit(2)
	}
	profile, err := models.ParseProfileMode(c.String("profile"))
	if err != nil {
		logger.Error("invalid profile", "error", err)
		os.Exit(2)
	}
	enc, err := tsv.LookupEncoding(cfg.Encoding)
	if err != nil {
		logger.Error("invalid encoding", "error", err)
		os.Exit(2)
	}

	opts := models.ExportConfig{
		Source:   kind,
		Dir:      c.String("dir"),
		Profile:  profile,
		OutDir:   cfg.OutDir,
		Encoding: cfg.Encoding,
		FailFast: c.Bool("fail-fast"),
	}

	var src source.Source
	switch kind {
	case models.SourceDir:
		if opts.Dir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir is required with --source dir")
			os.Exit(1)
		}
		src = source.NewLocal(opts.Dir, enc)
	default:
		ids, err := collectIdentifiers(c, cfg)
		if err != nil {
			logger.Error("failed to read identifiers", "error", err)
			os.Exit(2)
		}
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, "Error: No identifiers provided")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage:")
			fmt.Fprintln(os.Stderr, `  dats export --ids "doi:10.5281/zenodo.1,doi:10.5281/zenodo.2"`)
			fmt.Fprintln(os.Stderr, `  dats export --ids-file identifiers.txt`)
			fmt.Fprintln(os.Stderr, `  dats export --source dir --dir ./records`)
			os.Exit(1)
		}
		opts.IDs = ids
		src = source.NewRemote(fetcher.NewFetcher(cfg.APIURL, cfg.Timeout, enc), ids)
	}

	var database *db.DB
	if !c.Bool("no-db") {
		database, err = db.Open(c.String("db"))
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(2)
		}
		defer database.Close()
	}

	logger.Info("export starting", "source", kind, "profile", profile.String(), "out_dir", opts.OutDir, "inputs", len(opts.IDs))

	p := &Pipeline{
		Logger:  logger,
		Config:  cfg,
		Options: opts,
		Source:  src,
		DB:      database,
	}
	res, err := p.Run(c.Context)
	if err != nil {
		logger.Error("export failed", "error", err)
		return cli.Exit(fmt.Sprintf("export failed: %v", err), 2)
	}

	if !c.Bool("quiet") {
		printSummary(res)
	}
	return nil
}

// collectIdentifiers merges --ids and --ids-file, drops placeholders and
// rejects malformed entries.
func collectIdentifiers(c *cli.Context, cfg models.Config) ([]string, error) {
	raw := common.SplitIdentifierList(c.String("ids"))
	if path := c.String("ids-file"); path != "" {
		fromFile, err := common.ReadIdentifierFile(path)
		if err != nil {
			return nil, err
		}
		raw = append(raw, fromFile...)
	}

	ids, invalid := common.SanitizeAndValidateIdentifiers(raw)
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%d identifier(s) are malformed: %q", len(invalid), invalid)
	}

	kept := ids[:0]
	for _, id := range ids {
		if cfg.SkipIdentifier(id) {
			continue
		}
		kept = append(kept, id)
	}
	return kept, nil
}

func printSummary(res *Result) {
	fmt.Printf("Exported %s/%s records (%s failed) into %s rows, %s written\n",
		humanize.Comma(int64(res.Exported)),
		humanize.Comma(int64(res.Inputs)),
		humanize.Comma(int64(res.Failed)),
		humanize.Comma(int64(res.Rows)),
		humanize.Bytes(uint64(res.Bytes)),
	)
	for _, w := range res.Writes {
		fmt.Printf("  %-24s %6s rows  %s\n", w.Name, humanize.Comma(int64(w.Rows)), w.Path)
	}
	if res.Unrouted > 0 {
		fmt.Printf("\n%d record(s) matched no bucket\n", res.Unrouted)
	}
	if res.ManifestPath != "" {
		fmt.Printf("\nManifest: %s\n", res.ManifestPath)
	}
	if res.RunID != "" {
		fmt.Printf("Run: %s  (dats runs show %s)\n", res.RunID, res.RunID[:8])
	}
}
