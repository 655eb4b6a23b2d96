package model

import "time"

// Occurrence is one concrete instance of an event. It is derived per query
// and never stored.
type Occurrence struct {
	Event *Event
	Start time.Time
	End   time.Time
}

// AllDay reports whether the underlying event is an all-day event.
func (o Occurrence) AllDay() bool {
	return o.Event != nil && o.Event.AllDay
}

// UID returns the uid of the underlying event.
func (o Occurrence) UID() string {
	if o.Event == nil {
		return ""
	}
	return o.Event.UID
}

// Key identifies a single instance of a (possibly recurring) event.
func (o Occurrence) Key() string {
	return o.UID() + "@" + o.Start.Format(time.RFC3339)
}

// FirstDay is the date the occurrence starts on.
func (o Occurrence) FirstDay() Date {
	return DateOf(o.Start)
}

// LastDay is the last date the occurrence covers.
func (o Occurrence) LastDay() Date {
	return lastDay(o.Start, o.End)
}

// SpanDays returns the number of dates the occurrence covers, at least 1.
func (o Occurrence) SpanDays() int {
	return o.FirstDay().DaysTo(o.LastDay()) + 1
}

// Covers reports whether the occurrence touches date d.
func (o Occurrence) Covers(d Date) bool {
	return !d.Before(o.FirstDay()) && !d.After(o.LastDay())
}
