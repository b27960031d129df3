package calculate

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"pr-dashboard/connectors/config"
	ccsv "pr-dashboard/connectors/csv"
	"pr-dashboard/domain/pr"
)

// Run executes the calculate command: load the PR CSV once, compute every
// view and write them as CSV files under -out, then print a summary.
//
// Usage:
//
//	pr-dashboard calculate [-data data/pr_data.csv] [-out data] [-start 2024-01-01 -end 2024-01-31 | -all]
func Run(args []string) error {
	return run(args, os.Stdout, time.Now)
}

func run(args []string, stdout io.Writer, now func() time.Time) error {
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	source := fs.String("data", cfg.Data.Source, "path or http(s) URL of the PR CSV")
	out := fs.String("out", cfg.Data.OutDir, "directory receiving the computed CSV files")
	start := fs.String("start", "", "range start (YYYY-MM-DD); defaults to the configured window")
	end := fs.String("end", "", "range end (YYYY-MM-DD, inclusive)")
	all := fs.Bool("all", false, "ignore the date range")
	quoted := fs.Bool("quoted", cfg.Data.Quoted, "parse the CSV with RFC 4180 quoting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("calculate: unexpected arguments %v", fs.Args())
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	rng := pr.LastDays(now(), cfg.Data.WindowDays)
	switch {
	case *all:
		rng = pr.DateRange{}
	case *start != "" || *end != "":
		rng, err = parseDays(*start, *end, loc)
		if err != nil {
			return err
		}
	}

	records, err := ccsv.NewLoader(*source, cfg.Data.Token, *quoted).Load(context.Background())
	if err != nil {
		return err
	}

	snap := pr.Compute(records, rng, pr.Options{Location: loc, TopN: cfg.Data.TopContributors, Now: now})
	if err := ccsv.WriteAll(*out, snap); err != nil {
		slog.Error("calculate.csv.write.error", "out", *out, "error", err)
		return fmt.Errorf("write outputs: %w", err)
	}

	Summary(stdout, snap)
	slog.Info("calculate.done", "records", snap.Total, "filtered", snap.Filtered, "out", *out)
	return nil
}

// parseDays reads the -start/-end pair. Both are required together.
func parseDays(start, end string, loc *time.Location) (pr.DateRange, error) {
	if start == "" || end == "" {
		return pr.DateRange{}, fmt.Errorf("calculate: -start and -end must be given together")
	}
	s, err := time.ParseInLocation("2006-01-02", start, loc)
	if err != nil {
		return pr.DateRange{}, fmt.Errorf("calculate: -start: %w", err)
	}
	e, err := time.ParseInLocation("2006-01-02", end, loc)
	if err != nil {
		return pr.DateRange{}, fmt.Errorf("calculate: -end: %w", err)
	}
	if s.After(e) {
		return pr.DateRange{}, fmt.Errorf("calculate: -start is after -end")
	}
	e = e.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return pr.DateRange{Start: &s, End: &e}, nil
}

// Summary prints the four views as aligned text blocks.
func Summary(w io.Writer, s pr.Snapshot) {
	fmt.Fprintf(w, "%d PRs, %d in range\n", s.Total, s.Filtered)
	block(w, "PRs created per month", s.Trend)
	status := make([]pr.LabelCount, 0, len(s.Status))
	for _, st := range s.Status {
		status = append(status, pr.LabelCount{Label: st.Label, Count: st.Count})
	}
	block(w, "Status", status)
	block(w, "Top contributors", s.Contributors)
	block(w, "Age", s.Age)
}

func block(w io.Writer, title string, rows []pr.LabelCount) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", runewidth.StringWidth(title)))
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Label))
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %d\n", PadRight(r.Label, width), r.Count)
	}
}

// PadRight pads str with spaces to the given display width.
func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}
