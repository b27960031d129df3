package pr

import (
	"strings"
	"time"
)

// Column names read from the source CSV.
const (
	ColCreatedAt = "created_at"
	ColState     = "pr_state"
	ColActor     = "Actor"
	ColAgeHours  = "age_hours"
	ColNumber    = "PullRequestNumber"
	ColID        = "pr_id"
	ColSummary   = "PullRequestSummary"
)

// Record is one row of the source data keyed by header name.
// Absent columns read as the empty string.
type Record map[string]string

// Get returns the value of column, or "" when the row does not carry it.
func (r Record) Get(column string) string {
	return r[column]
}

// DateRange bounds are inclusive. A nil bound disables filtering.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// LastDays returns the range [now-days, now].
func LastDays(now time.Time, days int) DateRange {
	start := now.AddDate(0, 0, -days)
	end := now
	return DateRange{Start: &start, End: &end}
}

// IsOpen reports whether the range lets every record through.
func (r DateRange) IsOpen() bool {
	return r.Start == nil || r.End == nil
}

// LabelCount is one labelled count in an aggregate view.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusSlice is a status label with its count and display color.
type StatusSlice struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// TableRow is the display projection of a filtered record.
type TableRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Creator     string `json:"creator"`
	Status      string `json:"status"`
	Created     string `json:"created"`
	TimeToMerge string `json:"timeToMerge"`
	Badge       string `json:"badge"`
}

// ViewType is the dashboard view toggle. It is stored and echoed back but
// no aggregation branches on it.
type ViewType string

const (
	ViewDaily   ViewType = "daily"
	ViewWeekly  ViewType = "weekly"
	ViewMonthly ViewType = "monthly"
)

// ParseViewType accepts the toggle values case-insensitively.
func ParseViewType(s string) (ViewType, bool) {
	switch v := ViewType(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDaily, ViewWeekly, ViewMonthly:
		return v, true
	}
	return "", false
}

// timeLayouts are tried in order when reading created_at.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTime parses a created_at value. Values without a zone are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
