package runs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/dats-exporter/pkg/db"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
)

func ListAction(c *cli.Context) error {
	database, err := db.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	RenderRuns(os.Stdout, runs, time.Now())
	fmt.Printf("\nTip: Use 'dats runs show <id>' to see details\n")
	return nil
}

// ShowAction prints one run with its fetches and findings. Without an
// argument the latest run is shown.
func ShowAction(c *cli.Context) error {
	database, err := db.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	run, err := getRunOrLatest(c, database)
	if err != nil {
		return err
	}
	fetches, err := database.GetRunFetches(run.RunID)
	if err != nil {
		return err
	}
	findings, err := database.GetRunFindings(run.RunID)
	if err != nil {
		return err
	}

	RenderRun(os.Stdout, run, fetches, findings, c.Bool("failed-only"))
	return nil
}

// getRunOrLatest returns the run named by the first argument, or the latest
// run if no argument was given.
func getRunOrLatest(c *cli.Context, database *db.DB) (*db.Run, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("no runs found. Run 'dats export --ids \"...\"' first")
		}
		return &runs[0], nil
	}
	return database.GetRun(c.Args().First())
}

// RenderRuns prints a table of runs, newest first.
func RenderRuns(w io.Writer, runs []db.Run, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Command", "Started", "Status", "Records", "Failed", "Rows", "Source"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID[:8],
			r.Command,
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Status,
			humanize.Comma(int64(r.RecordCount)),
			r.FailedCount,
			humanize.Comma(int64(r.RowCount)),
			r.Source,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "total", len(runs)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderRun prints the details of one run.
func RenderRun(w io.Writer, run *db.Run, fetches []db.Fetch, findings []db.Finding, failedOnly bool) {
	fmt.Fprintf(w, "Run %s\n", run.RunID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Command:   %s\n", run.Command)
	fmt.Fprintf(w, "Source:    %s\n", run.Source)
	fmt.Fprintf(w, "Profile:   %s\n", run.Profile)
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt.Valid {
		fmt.Fprintf(w, "Duration:  %s\n", run.FinishedAt.Time.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Status:    %s\n", run.Status)
	fmt.Fprintf(w, "Records:   %d total (%d failed)\n", run.RecordCount, run.FailedCount)
	if run.OutDir != "" {
		fmt.Fprintf(w, "Out dir:   %s\n", run.OutDir)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", run.ErrorMessage)
	}

	if len(fetches) > 0 {
		fmt.Fprintf(w, "\nRecords (%d):\n", len(fetches))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Ref", "Status", "Profile", "Buckets", "Size", "Error"})
		for _, f := range fetches {
			if failedOnly && f.Success {
				continue
			}
			t.AppendRow(table.Row{
				f.Ref,
				f.StatusCode,
				f.Profile,
				strings.Join(f.Buckets, ", "),
				humanize.Bytes(uint64(f.SizeBytes)),
				f.ErrorMessage,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if len(findings) > 0 {
		fmt.Fprintf(w, "\nDrift findings (%d):\n", len(findings))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Identifier", "Kind", "Column", "Stored", "Current"})
		for _, f := range findings {
			t.AppendRow(table.Row{f.Identifier, f.Kind, f.Column, f.StoredValue, f.CurrentValue})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}
}
