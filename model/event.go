package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
)

// ErrInvalidEvent is returned by Validate for events that cannot be expanded.
var ErrInvalidEvent = errors.New("invalid event")

// Pattern is the frequency of a recurrence rule.
type Pattern int

const (
	None Pattern = iota
	Daily
	Weekly
	Monthly
	Yearly
)

// String provides a human-readable representation of the Pattern.
func (p Pattern) String() string {
	switch p {
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	case Yearly:
		return "Yearly"
	default:
		return "None"
	}
}

// Recurrence describes how an event repeats.
//
// Only Pattern, Interval and EndDate take part in expansion. ByDayOfWeek,
// ByDayOfMonth and ByMonth are reserved: they keep what an imported rule
// declared but are ignored by the expander.
type Recurrence struct {
	Pattern  Pattern
	Interval int             // step between instances in units of Pattern, >= 1
	EndDate  mo.Option[Date] // inclusive; absent means unbounded

	ByDayOfWeek  []time.Weekday
	ByDayOfMonth []int
	ByMonth      []time.Month
}

// NoRecurrence is the rule of a single, non-repeating event.
var NoRecurrence = Recurrence{Pattern: None, Interval: 1, EndDate: mo.None[Date]()}

// Repeat returns a rule with the given pattern and interval and no end date.
func Repeat(p Pattern, interval int) Recurrence {
	return Recurrence{Pattern: p, Interval: interval, EndDate: mo.None[Date]()}
}

// Until returns a copy of r ending on d (inclusive).
func (r Recurrence) Until(d Date) Recurrence {
	r.EndDate = mo.Some(d)
	return r
}

// Valid reports whether the rule can be expanded.
func (r Recurrence) Valid() bool {
	return r.Interval >= 1
}

// Event is a calendar entry handed to the engine by an event source.
type Event struct {
	UID         string
	Title       string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	Recurrence     Recurrence
	ExceptionDates []Date

	// Display metadata, opaque to the engine
	Color        string
	CollectionID string
	Priority     int
}

// Validate reports why e cannot be expanded, if it cannot.
func (e Event) Validate() error {
	if e.UID == "" {
		return fmt.Errorf("%w: empty uid", ErrInvalidEvent)
	}
	if e.Start.IsZero() {
		return fmt.Errorf("%w: %s has no start", ErrInvalidEvent, e.UID)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("%w: %s ends before it starts", ErrInvalidEvent, e.UID)
	}
	if e.Recurrence.Pattern != None && !e.Recurrence.Valid() {
		return fmt.Errorf("%w: %s has interval %d", ErrInvalidEvent, e.UID, e.Recurrence.Interval)
	}
	return nil
}

// Normalize returns a copy of e with all-day times snapped to day boundaries
// and a zero recurrence interval defaulted to 1.
func (e Event) Normalize() Event {
	if e.Recurrence.Interval == 0 {
		e.Recurrence.Interval = 1
	}
	if !e.AllDay {
		return e
	}
	loc := e.Start.Location()
	first := DateOf(e.Start)
	last := e.LastDay()
	e.Start = first.In(loc)
	e.End = last.AddDays(1).In(loc)
	return e
}

// IsRecurring reports whether e repeats.
func (e Event) IsRecurring() bool {
	return e.Recurrence.Pattern != None
}

// Duration is the length of a single instance.
func (e Event) Duration() time.Duration {
	if e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// LastDay returns the last date e covers. An end exactly at midnight is
// exclusive and does not cover its own date.
func (e Event) LastDay() Date {
	return lastDay(e.Start, e.End)
}

// SpanDays returns the number of dates e covers, at least 1.
func (e Event) SpanDays() int {
	return DateOf(e.Start).DaysTo(e.LastDay()) + 1
}

// IsException reports whether d is listed as an exception date.
func (e Event) IsException(d Date) bool {
	for _, ex := range e.ExceptionDates {
		if ex == d {
			return true
		}
	}
	return false
}

func lastDay(start, end time.Time) Date {
	if !end.After(start) {
		return DateOf(start)
	}
	d := DateOf(end)
	if end.Equal(d.In(end.Location())) {
		return d.AddDays(-1)
	}
	return d
}
