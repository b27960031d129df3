package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"pr-dashboard/domain/pr"
)

// Output file names written by WriteAll.
const (
	TrendFile        = "pr_trend_month.csv"
	StatusFile       = "pr_status.csv"
	ContributorsFile = "pr_contributors.csv"
	AgeFile          = "pr_age_buckets.csv"
	TableFile        = "pr_table.csv"
)

// WriteAll writes every view of s into dir.
func WriteAll(dir string, s pr.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := WriteLabelCounts(filepath.Join(dir, TrendFile), "month", s.Trend); err != nil {
		return err
	}
	if err := WriteStatus(filepath.Join(dir, StatusFile), s.Status); err != nil {
		return err
	}
	if err := WriteLabelCounts(filepath.Join(dir, ContributorsFile), "actor", s.Contributors); err != nil {
		return err
	}
	if err := WriteLabelCounts(filepath.Join(dir, AgeFile), "bucket", s.Age); err != nil {
		return err
	}
	return WriteTable(filepath.Join(dir, TableFile), s.Table)
}

// WriteLabelCounts writes label/count rows under the given label header.
func WriteLabelCounts(path, labelHeader string, rows []pr.LabelCount) error {
	return writeRows(path, []string{labelHeader, "count"}, len(rows), func(i int) []string {
		return []string{rows[i].Label, strconv.Itoa(rows[i].Count)}
	})
}

// WriteStatus writes the status distribution with its colors.
func WriteStatus(path string, rows []pr.StatusSlice) error {
	return writeRows(path, []string{"status", "count", "color"}, len(rows), func(i int) []string {
		return []string{rows[i].Label, strconv.Itoa(rows[i].Count), rows[i].Color}
	})
}

// WriteTable writes the projected table rows.
func WriteTable(path string, rows []pr.TableRow) error {
	headers := []string{"id", "title", "creator", "status", "created", "time_to_merge"}
	return writeRows(path, headers, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.ID, r.Title, r.Creator, r.Status, r.Created, r.TimeToMerge}
	})
}

func writeRows(path string, headers []string, n int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
