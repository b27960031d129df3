package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pr-dashboard/domain/pr"
)

var (
	// ErrNotLoaded is returned before the first successful load.
	ErrNotLoaded = errors.New("pr data not loaded")
	// ErrInvalidRange rejects a range whose start is after its end.
	ErrInvalidRange = errors.New("range start is after range end")
)

// Source provides the raw PR records.
type Source interface {
	Load(ctx context.Context) ([]pr.Record, error)
}

// Dashboard owns the application state: the full dataset, the active range
// and view type, and the last computed snapshot. Every change recomputes
// the whole snapshot and hands it to the presenter. The range and view are
// shared by every session: one user's change is what all users see.
type Dashboard struct {
	source     Source
	presenter  pr.Presenter
	loc        *time.Location
	topN       int
	windowDays int
	now        func() time.Time

	mu      sync.RWMutex
	records []pr.Record
	rng     pr.DateRange
	view    pr.ViewType
	snap    pr.Snapshot
	loaded  bool
	loadErr error
}

func NewDashboard(source Source, presenter pr.Presenter, loc *time.Location, topN, windowDays int) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{
		source:     source,
		presenter:  presenter,
		loc:        loc,
		topN:       topN,
		windowDays: windowDays,
		now:        time.Now,
		view:       pr.ViewDaily,
	}
}

// Load fetches the records, resets the range to the last windowDays days
// and recomputes. A failure is kept and reported by Snapshot; nothing is
// presented.
func (d *Dashboard) Load(ctx context.Context) error {
	slog.Info("dashboard.load.start")
	records, err := d.source.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.loadErr = err
		return err
	}
	d.records = records
	d.rng = pr.LastDays(d.now(), d.windowDays)
	d.loaded = true
	d.loadErr = nil
	d.recompute()
	slog.Info("dashboard.load.done", "records", len(records), "filtered", d.snap.Filtered)
	return nil
}

// SetRange applies a new date range. A nil bound disables filtering.
func (d *Dashboard) SetRange(r pr.DateRange) (pr.Snapshot, error) {
	if !r.IsOpen() && r.Start.After(*r.End) {
		return pr.Snapshot{}, ErrInvalidRange
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return pr.Snapshot{}, d.notLoaded()
	}
	d.rng = r
	d.recompute()
	slog.Info("dashboard.range.set", "open", r.IsOpen(), "filtered", d.snap.Filtered)
	return d.snap, nil
}

// SetViewType stores the view toggle. It does not change any aggregation.
func (d *Dashboard) SetViewType(v pr.ViewType) (pr.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view = v
	if !d.loaded {
		return pr.Snapshot{}, d.notLoaded()
	}
	d.recompute()
	return d.snap, nil
}

// Snapshot returns the last computed snapshot or the load failure.
func (d *Dashboard) Snapshot() (pr.Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.loaded {
		return pr.Snapshot{}, d.notLoaded()
	}
	return d.snap, nil
}

// Location is the zone used for parsing and formatting timestamps.
func (d *Dashboard) Location() *time.Location { return d.loc }

func (d *Dashboard) notLoaded() error {
	if d.loadErr != nil {
		return d.loadErr
	}
	return ErrNotLoaded
}

// recompute must run with d.mu held for writing.
func (d *Dashboard) recompute() {
	d.snap = pr.Compute(d.records, d.rng, pr.Options{
		Location: d.loc,
		TopN:     d.topN,
		View:     d.view,
		Now:      d.now,
	})
	if d.presenter != nil {
		d.presenter.Present(d.snap)
	}
}
