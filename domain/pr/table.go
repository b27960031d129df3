package pr

import (
	"fmt"
	"math"
	"time"

	lo "github.com/samber/lo"
)

const (
	// Pending is the time-to-merge label for unresolved PRs.
	Pending   = "Pending"
	noTitle   = "No title"
	dayLayout = "2006-01-02"
)

// IsResolved reports whether a status counts towards time-to-merge.
func IsResolved(status string) bool {
	return status == "Merged" || status == "Awaiting Merger"
}

// TimeToMerge formats the elapsed time of a resolved PR.
func TimeToMerge(status string, hours float64) string {
	if !IsResolved(status) {
		return Pending
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}
	if hours < 24 {
		return fmt.Sprintf("%.1f hours", hours)
	}
	return fmt.Sprintf("%.0f days", math.Floor(hours/24))
}

// Badge returns the CSS class used to render a status.
func Badge(status string) string {
	switch status {
	case "Merged", "Awaiting Merger":
		return "badge bg-success"
	case "Open", "Awaiting Review":
		return "badge bg-primary"
	case "Closed":
		return "badge bg-danger"
	default:
		return "badge bg-secondary"
	}
}

// Project maps filtered records to table rows, preserving order.
func Project(records []Record, loc *time.Location) []TableRow {
	return lo.Map(records, func(r Record, _ int) TableRow {
		status := orUnknown(r.Get(ColState))
		id := r.Get(ColNumber)
		if id == "" {
			id = r.Get(ColID)
		}
		title := r.Get(ColSummary)
		if title == "" {
			title = noTitle
		}
		created := InvalidDate
		if t, ok := ParseTime(r.Get(ColCreatedAt), loc); ok {
			if loc != nil {
				t = t.In(loc)
			}
			created = t.Format(dayLayout)
		}
		return TableRow{
			ID:          id,
			Title:       title,
			Creator:     orUnknown(r.Get(ColActor)),
			Status:      status,
			Created:     created,
			TimeToMerge: TimeToMerge(r.Get(ColState), AgeHours(r)),
			Badge:       Badge(status),
		}
	})
}
