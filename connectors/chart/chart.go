// Package chart shapes dashboard snapshots into Chart.js data and keeps the
// four chart instances the browser draws.
package chart

import (
	"sync"

	lo "github.com/samber/lo"

	"pr-dashboard/domain/pr"
)

// Chart names, matching the mount points of the dashboard page.
const (
	Trend       = "trend"
	Status      = "status"
	Contributor = "contributor"
	MergeTime   = "mergeTime"
)

// Names lists the charts in page order.
var Names = []string{Trend, Status, Contributor, MergeTime}

// Dataset is one Chart.js dataset. Color fields hold either a single color
// or one color per label.
type Dataset struct {
	Label           string  `json:"label,omitempty"`
	Data            []int   `json:"data"`
	BackgroundColor any     `json:"backgroundColor,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderWidth     int     `json:"borderWidth"`
	Tension         float64 `json:"tension,omitempty"`
	Fill            bool    `json:"fill,omitempty"`
}

// Data is the Chart.js data object bound to a chart.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Chart is one drawn chart. Revision increments on every redraw.
type Chart struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Data     Data   `json:"data"`
	Revision int    `json:"revision"`
}

// Board owns the chart instances. The first Present constructs them; later
// calls rebind data in place and trigger a redraw.
type Board struct {
	mu     sync.RWMutex
	charts map[string]*Chart
}

func NewBoard() *Board {
	return &Board{charts: map[string]*Chart{}}
}

// Present implements pr.Presenter.
func (b *Board) Present(s pr.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bind(Trend, "line", TrendData(s.Trend))
	b.bind(Status, "doughnut", StatusData(s.Status))
	b.bind(Contributor, "bar", ContributorData(s.Contributors))
	b.bind(MergeTime, "bar", MergeTimeData(s.Age))
}

func (b *Board) bind(name, typ string, d Data) {
	c, ok := b.charts[name]
	if !ok {
		b.charts[name] = &Chart{Name: name, Type: typ, Data: d, Revision: 1}
		return
	}
	c.Data = d
	c.Revision++
}

// Charts returns copies of the charts in page order. Charts never presented
// are left out.
func (b *Board) Charts() []Chart {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Chart, 0, len(Names))
	for _, n := range Names {
		if c, ok := b.charts[n]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// Get returns a copy of one chart.
func (b *Board) Get(name string) (Chart, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.charts[name]
	if !ok {
		return Chart{}, false
	}
	return *c, true
}

func labels(cs []pr.LabelCount) []string {
	return lo.Map(cs, func(c pr.LabelCount, _ int) string { return c.Label })
}

func counts(cs []pr.LabelCount) []int {
	return lo.Map(cs, func(c pr.LabelCount, _ int) int { return c.Count })
}

// TrendData is the line chart of PRs created per month.
func TrendData(trend []pr.LabelCount) Data {
	return Data{
		Labels: labels(trend),
		Datasets: []Dataset{{
			Label:           "PRs Created",
			Data:            counts(trend),
			BorderColor:     "#4f46e5",
			BackgroundColor: "rgba(79, 70, 229, 0.1)",
			BorderWidth:     2,
			Tension:         0.3,
			Fill:            true,
		}},
	}
}

// StatusData is the doughnut of statuses in their palette colors.
func StatusData(status []pr.StatusSlice) Data {
	return Data{
		Labels: lo.Map(status, func(s pr.StatusSlice, _ int) string { return s.Label }),
		Datasets: []Dataset{{
			Data:            lo.Map(status, func(s pr.StatusSlice, _ int) int { return s.Count }),
			BackgroundColor: lo.Map(status, func(s pr.StatusSlice, _ int) string { return s.Color }),
		}},
	}
}

// contributorShades fade with rank.
var contributorShades = []string{
	"rgba(79, 70, 229, 0.7)",
	"rgba(79, 70, 229, 0.6)",
	"rgba(79, 70, 229, 0.5)",
	"rgba(79, 70, 229, 0.4)",
	"rgba(79, 70, 229, 0.3)",
}

// ContributorData is the bar chart of top contributors.
func ContributorData(top []pr.LabelCount) Data {
	return Data{
		Labels: labels(top),
		Datasets: []Dataset{{
			Label:           "PRs Created",
			Data:            counts(top),
			BackgroundColor: contributorShades,
			BorderColor:     "rgba(79, 70, 229, 1)",
			BorderWidth:     1,
		}},
	}
}

// MergeTimeData is the age histogram bar chart.
func MergeTimeData(age []pr.LabelCount) Data {
	return Data{
		Labels: labels(age),
		Datasets: []Dataset{{
			Label:           "Number of PRs",
			Data:            counts(age),
			BackgroundColor: "rgba(16, 185, 129, 0.6)",
			BorderColor:     "rgba(16, 185, 129, 1)",
			BorderWidth:     1,
		}},
	}
}
