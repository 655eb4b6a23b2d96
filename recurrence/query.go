package recurrence

import (
	"github.com/samber/mo"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// OccurredOn reports whether ev has an instance on date. A single event
// counts on every date it covers; a recurring one only on dates an instance
// starts.
func (e *Engine) OccurredOn(ev model.Event, date model.Date) bool {
	if date.IsZero() {
		return false
	}
	if !ev.IsRecurring() {
		if ev.Start.IsZero() {
			return false
		}
		return !date.Before(model.DateOf(ev.Start)) && !date.After(ev.LastDay())
	}
	return len(e.Expand(ev, date, date)) > 0
}

// NextOccurrence returns the first instance date strictly after after.
//
// Only the configured search window (SearchWindowDays by default) is scanned:
// an instance further away is reported as absent, indistinguishable from a
// rule that has ended.
func (e *Engine) NextOccurrence(ev model.Event, after model.Date) mo.Option[model.Date] {
	if after.IsZero() {
		return mo.None[model.Date]()
	}
	starts := e.Expand(ev, after.AddDays(1), after.AddDays(e.config.SearchWindowDays))
	if len(starts) == 0 {
		return mo.None[model.Date]()
	}
	return mo.Some(model.DateOf(starts[0]))
}

// PreviousOccurrence returns the last instance date strictly before before,
// scanning the same bounded window backwards.
func (e *Engine) PreviousOccurrence(ev model.Event, before model.Date) mo.Option[model.Date] {
	if before.IsZero() {
		return mo.None[model.Date]()
	}
	starts := e.Expand(ev, before.AddDays(-e.config.SearchWindowDays), before.AddDays(-1))
	if len(starts) == 0 {
		return mo.None[model.Date]()
	}
	return mo.Some(model.DateOf(starts[len(starts)-1]))
}
