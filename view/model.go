// Package view ties an event source to the recurrence engine, the layout
// algorithms and the view cache. It is the entry point a calendar UI uses.
package view

import (
	"io"
	"log/slog"

	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
	"github.com/Tinnci/merkuro-github-fork/recurrence"
	"github.com/Tinnci/merkuro-github-fork/source"
	"github.com/Tinnci/merkuro-github-fork/viewcache"
	"github.com/Tinnci/merkuro-github-fork/window"
)

// Config holds the collaborators of a Model. Zero values fall back to the
// package defaults.
type Config struct {
	Engine recurrence.EngineConfig
	Cache  viewcache.Config
	Logger *slog.Logger
}

// DefaultConfig provides defaults for interactive views.
var DefaultConfig = Config{
	Engine: recurrence.DefaultEngineConfig,
	Cache:  viewcache.DefaultConfig,
}

// Model serves memoized layouts for one event source.
type Model struct {
	src    source.Source
	engine *recurrence.Engine
	cache  *viewcache.Cache
	logger *slog.Logger
}

// New creates a model over src and starts watching it for changes.
func New(src source.Source, config Config) *Model {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Engine.Logger == nil {
		config.Engine.Logger = config.Logger
	}
	if config.Cache.Logger == nil {
		config.Cache.Logger = config.Logger
	}

	m := &Model{
		src:    src,
		engine: recurrence.NewEngineWithConfig(config.Engine),
		cache:  viewcache.New(config.Cache),
		logger: config.Logger,
	}
	m.cache.Watch(src)
	return m
}

// Engine returns the recurrence engine used by the model.
func (m *Model) Engine() *recurrence.Engine { return m.engine }

// Occurrences returns every instance touching [from, to]. Results are not
// cached.
func (m *Model) Occurrences(from, to model.Date) []model.Occurrence {
	return m.engine.ExpandAll(m.src.Events(), from, to)
}

// DayBuckets returns the all-day and timed buckets of the instances covering
// ref, for a line of periodDays days starting at ref.
func (m *Model) DayBuckets(ref model.Date, periodDays int) []layout.Bucket {
	key := viewcache.Key{Date: ref, PeriodLength: periodDays, Kind: layout.KindDayBuckets, Span: 1}
	v := m.cache.GetOrCompute(key, func() any {
		occs := m.engine.ExpandAll(m.src.Events(), ref, ref)
		buckets := layout.DayBuckets(occs, ref, periodDays)
		m.logger.Debug("computed day buckets", "date", ref, "period", periodDays, "buckets", len(buckets))
		return buckets
	})
	return v.([]layout.Bucket)
}

// TimeGrid returns the time grid items of the window described by opts.
// Invalid options give an empty result. Grids in different locations are
// cached separately.
func (m *Model) TimeGrid(opts layout.GridOptions) []layout.Item {
	if !opts.Valid() {
		m.logger.Debug("time grid: invalid options", "start", opts.Start, "days", opts.Days, "period", opts.PeriodLength)
		return nil
	}
	key := viewcache.Key{
		Date:         opts.Start,
		PeriodLength: opts.PeriodLength,
		Kind:         layout.KindTimeGrid,
		Span:         opts.Days,
		Location:     viewcache.LocationName(opts.Location),
	}
	v := m.cache.GetOrCompute(key, func() any {
		// one extra day each side catches instances whose own date differs
		// from their date in opts.Location; TimeGrid drops what falls outside
		occs := m.engine.ExpandAll(m.src.Events(), opts.Start.AddDays(-1), opts.Start.AddDays(opts.Days))
		items := layout.TimeGrid(occs, opts)
		m.logger.Debug("computed time grid", "start", opts.Start, "days", opts.Days, "items", len(items))
		return items
	})
	return v.([]layout.Item)
}

// Day is the bucket layout of one date of a day bucket row.
type Day struct {
	Date    model.Date
	Buckets []layout.Bucket
}

// Row computes the layout a window row requests. Time grid rows return
// items; day bucket rows return one Day per date, with durations clamped to
// the end of the date's line of req.PeriodLength days.
func (m *Model) Row(req window.Request) ([]layout.Item, []Day) {
	if req.Kind == layout.KindTimeGrid {
		return m.TimeGrid(layout.GridOptions{
			Start:        req.Start,
			Days:         req.Days,
			PeriodLength: req.PeriodLength,
			Location:     req.Location,
		}), nil
	}
	if req.PeriodLength < 1 || req.Days < 1 {
		return nil, nil
	}
	days := make([]Day, 0, req.Days)
	for offset := 0; offset < req.Days; offset++ {
		date := req.Start.AddDays(offset)
		remaining := req.PeriodLength - offset%req.PeriodLength
		days = append(days, Day{Date: date, Buckets: m.DayBuckets(date, remaining)})
	}
	return nil, days
}

// OnRecompute registers fn to run once after each burst of source changes.
// It returns a function that removes fn.
func (m *Model) OnRecompute(fn func(generation uint64)) func() {
	return m.cache.OnRecompute(fn)
}

// Stats returns the statistics of the underlying cache.
func (m *Model) Stats() viewcache.Stats {
	return m.cache.Stats()
}

// Close stops watching the source and drops all cached layouts.
func (m *Model) Close() {
	m.cache.Close()
}
