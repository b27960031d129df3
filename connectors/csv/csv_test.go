package csv

import (
	"context"
	stdcsv "encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pr-dashboard/domain/pr"
)

const sample = `PullRequestNumber,PullRequestSummary,Actor,pr_state,created_at,age_hours
1,Fix build,alice,Merged,2024-01-03T10:00:00Z,10
2,Add docs,bob,Open,2024-01-04T10:00:00Z,30
3,Short row,carol
`

func TestParse_EveryHeaderPresent(t *testing.T) {
	recs := Parse(sample)

	require.Len(t, recs, 3)
	headers := []string{"PullRequestNumber", "PullRequestSummary", "Actor", "pr_state", "created_at", "age_hours"}
	for _, r := range recs {
		for _, h := range headers {
			_, ok := r[h]
			assert.True(t, ok, "missing %s", h)
		}
	}
	assert.Equal(t, "Fix build", recs[0].Get(pr.ColSummary))
	assert.Equal(t, "30", recs[1].Get(pr.ColAgeHours))
	assert.Equal(t, "carol", recs[2].Get(pr.ColActor))
	assert.Equal(t, "", recs[2].Get(pr.ColState))
	assert.Equal(t, "", recs[2].Get(pr.ColAgeHours))
}

func TestParse_TrimsAndHandlesCRLF(t *testing.T) {
	recs := Parse(" a , b \r\n 1 , 2 \r\n3,4,5\r\n")

	require.Len(t, recs, 2)
	assert.Equal(t, pr.Record{"a": "1", "b": "2"}, recs[0])
	assert.Equal(t, pr.Record{"a": "3", "b": "4"}, recs[1])
}

func TestParse_NoQuotingSupport(t *testing.T) {
	recs := Parse("title,actor\n\"Hello, world\",alice\n")

	require.Len(t, recs, 1)
	assert.Equal(t, `"Hello`, recs[0]["title"])
	assert.Equal(t, `world"`, recs[0]["actor"])
}

func TestParse_HeaderOnlyAndEmpty(t *testing.T) {
	assert.Empty(t, Parse("a,b,c\n"))
	assert.Empty(t, Parse(""))
}

func TestParse_BlankLineStillCounts(t *testing.T) {
	recs := Parse("a,b\n1,2\n\n3,4")

	require.Len(t, recs, 3)
	assert.Equal(t, pr.Record{"a": "", "b": ""}, recs[1])
}

func TestParseQuoted(t *testing.T) {
	recs, err := ParseQuoted("title,actor,state\n\"Hello, world\",alice\n\"multi\nline\",bob,Open\n")

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, pr.Record{"title": "Hello, world", "actor": "alice", "state": ""}, recs[0])
	assert.Equal(t, "multi\nline", recs[1]["title"])
}

func TestParseQuoted_Malformed(t *testing.T) {
	_, err := ParseQuoted("a,b\n\"unterminated,1\n")

	assert.Error(t, err)
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pr_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	recs, err := NewLoader(path, "", false).Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.csv"), "", false).Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_HTTP(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	recs, err := NewLoader(srv.URL+"/data/pr_data.csv", "s3cret", false).Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, "Bearer s3cret", <-auth)
}

func TestLoader_HTTPNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.URL, "", false).Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "404")
}

func TestLoader_Quoted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pr_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("PullRequestSummary,Actor\n\"a, b\",alice\n"), 0o644))

	recs, err := NewLoader(path, "", true).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a, b", recs[0].Get(pr.ColSummary))
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := pr.Snapshot{
		Trend:        []pr.LabelCount{{Label: "Jan 2024", Count: 2}},
		Status:       []pr.StatusSlice{{Label: "Merged", Count: 2, Color: "#10b981"}},
		Contributors: []pr.LabelCount{{Label: "alice", Count: 2}},
		Age:          pr.AgeHistogram(nil),
		Table:        []pr.TableRow{{ID: "1", Title: "Fix, build", Creator: "alice", Status: "Merged", Created: "2024-01-03", TimeToMerge: "10.0 hours"}},
	}

	require.NoError(t, WriteAll(dir, s))

	rows := readBack(t, filepath.Join(dir, StatusFile))
	assert.Equal(t, [][]string{{"status", "count", "color"}, {"Merged", "2", "#10b981"}}, rows)

	rows = readBack(t, filepath.Join(dir, AgeFile))
	assert.Len(t, rows, 6)

	rows = readBack(t, filepath.Join(dir, TableFile))
	require.Len(t, rows, 2)
	assert.Equal(t, "Fix, build", rows[1][1])
}

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := stdcsv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
