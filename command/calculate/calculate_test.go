package calculate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccsv "pr-dashboard/connectors/csv"
	"pr-dashboard/domain/pr"
)

const data = `PullRequestNumber,PullRequestSummary,Actor,pr_state,created_at,age_hours
1,Fix build,alice,Merged,2024-01-03T10:00:00Z,10
2,Add docs,bob,Open,2024-02-04T10:00:00Z,30
3,Refactor,アリス,Closed,2024-02-05T10:00:00Z,200
`

func setup(t *testing.T) (src, out string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "absent.yml"))
	t.Setenv("PRDASH_TIMEZONE", "UTC")
	src = filepath.Join(dir, "pr_data.csv")
	require.NoError(t, os.WriteFile(src, []byte(data), 0o644))
	return src, filepath.Join(dir, "out")
}

func TestRun_All(t *testing.T) {
	src, out := setup(t)
	var stdout bytes.Buffer

	err := run([]string{"-data", src, "-out", out, "-all"}, &stdout, time.Now)

	require.NoError(t, err)
	for _, f := range []string{ccsv.TrendFile, ccsv.StatusFile, ccsv.ContributorsFile, ccsv.AgeFile, ccsv.TableFile} {
		assert.FileExists(t, filepath.Join(out, f))
	}
	trend, err := os.ReadFile(filepath.Join(out, ccsv.TrendFile))
	require.NoError(t, err)
	assert.Equal(t, "month,count\nJan 2024,1\nFeb 2024,2\n", string(trend))
	assert.Contains(t, stdout.String(), "3 PRs, 3 in range")
}

func TestRun_DefaultWindow(t *testing.T) {
	src, out := setup(t)
	now := func() time.Time { return time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC) }
	var stdout bytes.Buffer

	require.NoError(t, run([]string{"-data", src, "-out", out}, &stdout, now))

	assert.Contains(t, stdout.String(), "3 PRs, 2 in range")
}

func TestRun_ExplicitRange(t *testing.T) {
	src, out := setup(t)
	var stdout bytes.Buffer

	require.NoError(t, run([]string{"-data", src, "-out", out, "-start", "2024-02-04", "-end", "2024-02-04"}, &stdout, time.Now))

	table, err := os.ReadFile(filepath.Join(out, ccsv.TableFile))
	require.NoError(t, err)
	assert.Equal(t, "id,title,creator,status,created,time_to_merge\n2,Add docs,bob,Open,2024-02-04,Pending\n", string(table))
}

func TestRun_Errors(t *testing.T) {
	src, out := setup(t)

	tests := map[string][]string{
		"missing end":    {"-data", src, "-out", out, "-start", "2024-01-01"},
		"inverted":       {"-data", src, "-out", out, "-start", "2024-02-01", "-end", "2024-01-01"},
		"bad date":       {"-data", src, "-out", out, "-start", "soon", "-end", "2024-01-01"},
		"extra args":     {"-data", src, "-out", out, "stray"},
		"missing source": {"-data", filepath.Join(t.TempDir(), "nope.csv"), "-out", out},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(args, &bytes.Buffer{}, time.Now))
		})
	}
}

func TestRun_MissingSourceIsFetchError(t *testing.T) {
	_, out := setup(t)

	err := run([]string{"-data", filepath.Join(t.TempDir(), "nope.csv"), "-out", out}, &bytes.Buffer{}, time.Now)

	assert.ErrorIs(t, err, ccsv.ErrFetch)
}

func TestSummary_AlignsWideLabels(t *testing.T) {
	var buf bytes.Buffer
	s := pr.Snapshot{
		Total:        2,
		Filtered:     2,
		Contributors: []pr.LabelCount{{Label: "アリス", Count: 1}, {Label: "bob", Count: 1}},
		Age:          pr.AgeHistogram(nil),
	}

	Summary(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "アリス  1\n")
	assert.Contains(t, out, "bob     1\n")
	assert.Equal(t, 1, strings.Count(out, ">5 days"))
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"pad short string", "hello", 10, "hello     "},
		{"no padding needed", "hello", 5, "hello"},
		{"longer than width", "hello world", 5, "hello world"},
		{"empty string", "", 3, "   "},
		{"wide runes", "こんにちは", 12, "こんにちは  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PadRight(tt.input, tt.width))
		})
	}
}
