package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/dats-exporter/internal/check"
	"github.com/dtnitsch/dats-exporter/internal/export"
	"github.com/dtnitsch/dats-exporter/internal/runs"
	"github.com/dtnitsch/dats-exporter/models"
	"github.com/dtnitsch/dats-exporter/pkg/dats"
	"github.com/dtnitsch/dats-exporter/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	configFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file; <name>.local.<ext> beside it overrides it",
			Value:   models.DefaultConfigName,
		},
		&cli.StringFlag{Name: "api-url", Usage: "metadata endpoint queried with ?identifier=<id>"},
		&cli.StringFlag{Name: "encoding", Usage: "text encoding for API bodies and TSV files (utf-8, latin-1, cp1252)"},
		&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout", Value: 30 * time.Second},
	}
	auditFlags := []cli.Flag{
		&cli.StringFlag{Name: "db", Usage: "audit database path (default: next to the binary)"},
		&cli.BoolFlag{Name: "no-db", Usage: "do not record this run in the audit database"},
	}
	logFlags := []cli.Flag{
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors and skip the summary"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug detail"},
	}

	exportFlags := []cli.Flag{
		&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "record source: api or dir", Value: "api"},
		&cli.StringFlag{Name: "ids", Usage: "comma-separated identifiers to fetch"},
		&cli.StringFlag{Name: "ids-file", Usage: "file with one identifier per line (- for stdin)"},
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "directory of *.json records (with --source dir)"},
		&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "dataset, data-format or auto", Value: models.ProfileAuto},
		&cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Usage: "directory bucket files are written under"},
		&cli.BoolFlag{Name: "fail-fast", Usage: "stop at the first record that cannot be read"},
	}
	checkFlags := []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "exported file, or directory to pick the newest file from (default: out_dir)"},
		&cli.StringFlag{Name: "match", Aliases: []string{"m"}, Usage: "only consider files or folders whose name contains this, e.g. dats-info"},
		&cli.StringFlag{Name: "out-dir", Usage: "default --input when none is given"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "report format: table or yaml", Value: check.FormatTable},
	}

	return &cli.App{
		Name:  "dats",
		Usage: "export DATS metadata records to tab-delimited files",
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "fetch records, route them into buckets and write TSV files",
				Flags:  concat(exportFlags, configFlags, auditFlags, logFlags),
				Action: export.ExportAction,
			},
			{
				Name:   "check",
				Usage:  "re-fetch the identifiers of an earlier export and report changed values",
				Flags:  concat(checkFlags, configFlags, auditFlags, logFlags),
				Action: check.CheckAction,
			},
			{
				Name:  "runs",
				Usage: "inspect the audit log of earlier runs",
				Flags: auditFlags[:1],
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list recent runs",
						Flags:  []cli.Flag{auditFlags[0], &cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20}},
						Action: runs.ListAction,
					},
					{
						Name:      "show",
						Usage:     "show one run (default: latest)",
						ArgsUsage: "[run-id]",
						Flags:     []cli.Flag{auditFlags[0], &cli.BoolFlag{Name: "failed-only"}},
						Action:    runs.ShowAction,
					},
				},
				Action: runs.ListAction,
			},
			{
				Name:  "quickstart",
				Usage: "print a short usage guide",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:  "columns",
				Usage: "print the exported columns of a profile and where they come from",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "dataset or data-format", Value: string(dats.ProfileDataset)},
				},
				Action: columnsAction,
			},
		},
	}
}

func columnsAction(c *cli.Context) error {
	p, err := dats.ParseProfile(c.String("profile"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	b, err := help.ColumnsYAML(p)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(b)
	return err
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
