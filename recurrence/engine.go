package recurrence

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// Engine expands recurrence rules into concrete instances. It holds no state
// besides its configuration and is safe for concurrent use.
type Engine struct {
	config EngineConfig
	logger *slog.Logger
}

// NewEngine creates a new recurrence engine instance
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// Config returns the effective configuration of e.
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Expand returns the start times of every instance of ev whose date falls in
// [rangeStart, rangeEnd], in ascending order.
//
// Invalid input (reversed range, interval below 1, missing start) yields an
// empty result rather than an error: an empty view is a valid state.
func (e *Engine) Expand(ev model.Event, rangeStart, rangeEnd model.Date) []time.Time {
	starts, _ := e.expand(ev, rangeStart, rangeEnd, 0)
	return starts
}

// ExpandBounded is Expand stopped after the configured MaxOccurrences
// instances. truncated reports whether instances inside the range were left
// out.
func (e *Engine) ExpandBounded(ev model.Event, rangeStart, rangeEnd model.Date) (starts []time.Time, truncated bool) {
	return e.expand(ev, rangeStart, rangeEnd, e.config.MaxOccurrences)
}

// expand does the work of Expand; a positive limit caps the result.
func (e *Engine) expand(ev model.Event, rangeStart, rangeEnd model.Date, limit int) ([]time.Time, bool) {
	if rangeStart.After(rangeEnd) {
		e.logger.Debug("expand: reversed range", "uid", ev.UID, "range_start", rangeStart, "range_end", rangeEnd)
		return nil, false
	}
	if ev.Start.IsZero() {
		e.logger.Debug("expand: event has no start", "uid", ev.UID)
		return nil, false
	}

	rule := ev.Recurrence
	anchor := model.DateOf(ev.Start)

	if rule.Pattern == model.None {
		if anchor.Before(rangeStart) || anchor.After(rangeEnd) {
			return nil, false
		}
		return []time.Time{ev.Start}, false
	}
	if !rule.Valid() {
		e.logger.Debug("expand: invalid interval", "uid", ev.UID, "interval", rule.Interval)
		return nil, false
	}

	last := rangeEnd
	if end, ok := rule.EndDate.Get(); ok && end.Before(last) {
		last = end
	}
	if anchor.After(last) {
		return nil, false
	}

	x := expansion{
		engine: e,
		event:  ev,
		from:   rangeStart,
		last:   last,
		limit:  limit,
	}
	if len(ev.ExceptionDates) > 0 {
		x.exceptions = make(map[model.Date]struct{}, len(ev.ExceptionDates))
		for _, d := range ev.ExceptionDates {
			x.exceptions[d] = struct{}{}
		}
	}

	switch rule.Pattern {
	case model.Daily:
		x.stepDays(anchor, rule.Interval)
	case model.Weekly:
		x.stepDays(anchor, 7*rule.Interval)
	case model.Monthly:
		x.stepCalendar(anchor, rule.Interval, monthsBetween, model.Date.AddMonths)
	case model.Yearly:
		x.stepCalendar(anchor, rule.Interval, yearsBetween, model.Date.AddYears)
	}
	return x.out, x.truncated
}

// expansion carries the state of a single Expand call.
type expansion struct {
	engine     *Engine
	event      model.Event
	from, last model.Date
	exceptions map[model.Date]struct{}
	limit      int
	truncated  bool
	out        []time.Time
}

// emit records d unless it is an exception; it reports false once the
// limit is reached.
func (x *expansion) emit(d model.Date) bool {
	if _, skip := x.exceptions[d]; skip {
		return true
	}
	if x.limit > 0 && len(x.out) >= x.limit {
		x.truncated = true
		x.engine.logger.Warn("expand: truncated occurrences",
			"uid", x.event.UID,
			"cap", x.limit)
		return false
	}
	x.out = append(x.out, d.At(x.event.Start))
	return true
}

func (x *expansion) stepDays(anchor model.Date, step int) {
	current := anchor
	if current.Before(x.from) {
		gap := current.DaysTo(x.from)
		// round up so the first candidate never lands before the range
		steps := (gap + step - 1) / step
		current = current.AddDays(steps * step)
	}
	for ; !current.After(x.last); current = current.AddDays(step) {
		if !x.emit(current) {
			return
		}
	}
}

// stepCalendar walks anchor+k*interval units, always measured from the
// anchor so that a clamped day (31st in February) does not drift.
func (x *expansion) stepCalendar(
	anchor model.Date, interval int,
	unitsBetween func(a, b model.Date) int,
	add func(d model.Date, n int) model.Date,
) {
	k := 0
	if anchor.Before(x.from) {
		k = unitsBetween(anchor, x.from) / interval
	}
	for ; ; k++ {
		current := add(anchor, k*interval)
		if current.After(x.last) {
			return
		}
		if current.Before(x.from) {
			continue
		}
		if !x.emit(current) {
			return
		}
	}
}

func monthsBetween(a, b model.Date) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

func yearsBetween(a, b model.Date) int {
	return b.Year - a.Year
}

// Occurrences expands ev over [from, to] and pairs every start with its end.
func (e *Engine) Occurrences(ev model.Event, from, to model.Date) []model.Occurrence {
	ev = ev.Normalize()
	starts := e.Expand(ev, from, to)
	if len(starts) == 0 {
		return nil
	}
	shared := ev
	out := make([]model.Occurrence, 0, len(starts))
	span := ev.SpanDays()
	duration := ev.Duration()
	for _, start := range starts {
		occ := model.Occurrence{Event: &shared, Start: start}
		if ev.AllDay {
			occ.End = model.DateOf(start).AddDays(span).In(start.Location())
		} else {
			occ.End = start.Add(duration)
		}
		out = append(out, occ)
	}
	return out
}

// ExpandAll expands a snapshot of events and returns every instance that
// touches [from, to], sorted by start time and uid. Multi-day instances that
// started before from are included. Events failing Validate are skipped.
func (e *Engine) ExpandAll(events []model.Event, from, to model.Date) []model.Occurrence {
	if from.After(to) {
		return nil
	}
	var out []model.Occurrence
	for _, ev := range events {
		ev = ev.Normalize()
		if err := ev.Validate(); err != nil {
			e.logger.Debug("expand: skipping event", "uid", ev.UID, "err", err)
			continue
		}
		// widen the lower bound so instances spanning into the range are found
		lookback := from.AddDays(-(ev.SpanDays() - 1))
		if !ev.IsRecurring() {
			if model.DateOf(ev.Start).After(to) || ev.LastDay().Before(from) {
				continue
			}
			lookback = model.DateOf(ev.Start)
		}
		for _, occ := range e.Occurrences(ev, lookback, to) {
			if occ.LastDay().Before(from) {
				continue
			}
			out = append(out, occ)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].UID() < out[j].UID()
	})
	return out
}
