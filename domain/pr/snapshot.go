package pr

import "time"

// Snapshot is everything the dashboard shows for one (records, range) pair.
type Snapshot struct {
	Range        DateRange     `json:"range"`
	View         ViewType      `json:"view"`
	Total        int           `json:"total"`
	Filtered     int           `json:"filtered"`
	Trend        []LabelCount  `json:"trend"`
	Status       []StatusSlice `json:"status"`
	Contributors []LabelCount  `json:"contributors"`
	Age          []LabelCount  `json:"age"`
	Table        []TableRow    `json:"table"`
	ComputedAt   time.Time     `json:"computedAt"`
}

// Options tune Compute. The zero value reads timestamps in UTC and keeps
// DefaultTopContributors contributors.
type Options struct {
	Location *time.Location
	TopN     int
	View     ViewType
	Now      func() time.Time
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Compute derives every view. Trend always covers all records; the other
// views and the table cover the records inside r.
func Compute(all []Record, r DateRange, opts Options) Snapshot {
	loc := opts.location()
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopContributors
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	filtered := Filter(all, r, loc)
	return Snapshot{
		Range:        r,
		View:         opts.View,
		Total:        len(all),
		Filtered:     len(filtered),
		Trend:        Trend(all, loc),
		Status:       StatusDistribution(filtered),
		Contributors: TopContributors(filtered, topN),
		Age:          AgeHistogram(filtered),
		Table:        Project(filtered, loc),
		ComputedAt:   now(),
	}
}

// Presenter receives every recomputed snapshot. Implementations decide how
// the views are drawn.
type Presenter interface {
	Present(s Snapshot)
}
