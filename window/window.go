// Package window tracks the rows of an infinitely scrolling calendar view and
// tells callers which layout each row needs.
package window

import (
	"time"

	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
)

// Scale is the grouping of one row.
type Scale int

const (
	Week Scale = iota
	Month
	Year
	Decade
)

// String provides a human-readable representation of the Scale.
func (s Scale) String() string {
	switch s {
	case Week:
		return "Week"
	case Month:
		return "Month"
	case Year:
		return "Year"
	case Decade:
		return "Decade"
	default:
		return "Unknown"
	}
}

const (
	// DefaultDatesToAdd is the number of rows added per growth step.
	DefaultDatesToAdd = 10
	// DefaultPeriodMinutes is the time grid resolution of week rows.
	DefaultPeriodMinutes = 15

	monthGridDays = 42
	daysPerWeek   = 7
)

// Row is one scrollable row. FirstDayOfMonth is only set on the Month scale,
// where Start is the first day of the 6-week grid shown for that month.
type Row struct {
	Start           model.Date
	FirstDayOfMonth model.Date
}

// Request describes the layout a row needs.
type Request struct {
	Kind         layout.Kind
	Start        model.Date
	Days         int
	PeriodLength int // minutes per unit for time grids, days per line for buckets
	// Location positions time grids; nil means each occurrence's own zone.
	Location *time.Location
}

// End returns the last date covered by the request.
func (r Request) End() model.Date {
	return r.Start.AddDays(r.Days - 1)
}

// Window is an ordered list of rows that grows at either end. It is not safe
// for concurrent use.
type Window struct {
	scale        Scale
	firstWeekday time.Weekday
	datesToAdd   int
	rows         []Row

	// PeriodMinutes is the grid resolution requested for week rows.
	PeriodMinutes int
	// Location is passed on with week row requests.
	Location *time.Location
}

// New builds a window of datesToAdd rows around today. A non-positive
// datesToAdd means DefaultDatesToAdd.
func New(today model.Date, scale Scale, datesToAdd int, firstWeekday time.Weekday) *Window {
	if datesToAdd <= 0 {
		datesToAdd = DefaultDatesToAdd
	}
	w := &Window{
		scale:         scale,
		firstWeekday:  firstWeekday,
		datesToAdd:    datesToAdd,
		PeriodMinutes: DefaultPeriodMinutes,
	}

	var first Row
	switch scale {
	case Week:
		start := model.StartOfWeek(today, firstWeekday).AddDays(-(datesToAdd * daysPerWeek) / 2)
		first = Row{Start: model.StartOfWeek(start, firstWeekday)}
	case Month:
		first = w.monthRow(model.FirstDayOfMonth(today).AddMonths(-datesToAdd / 2))
	case Year:
		first = Row{Start: model.FirstDayOfMonth(today).AddYears(-datesToAdd / 2)}
	case Decade:
		// start one year before the decade so a 3x4 grid ends on the next one
		firstYear := (today.Year/10)*10 - 1
		start := model.NewDate(firstYear, today.Month, 1)
		first = Row{Start: start.AddYears(-(datesToAdd*12)/2 + 10)}
	}

	w.rows = append(w.rows, first)
	w.Append(datesToAdd - 1)
	return w
}

// monthRow aligns the grid start strictly before the first of the month, so
// every month shows at least one day of the previous one.
func (w *Window) monthRow(firstOfMonth model.Date) Row {
	start := model.StartOfWeek(firstOfMonth, w.firstWeekday)
	if !start.Before(firstOfMonth) {
		start = start.AddDays(-daysPerWeek)
	}
	return Row{Start: start, FirstDayOfMonth: firstOfMonth}
}

func (w *Window) step(r Row, n int) Row {
	switch w.scale {
	case Week:
		return Row{Start: r.Start.AddDays(n * daysPerWeek)}
	case Month:
		return w.monthRow(r.FirstDayOfMonth.AddMonths(n))
	case Year:
		return Row{Start: r.Start.AddYears(n)}
	default:
		return Row{Start: r.Start.AddYears(10 * n)}
	}
}

// Append adds n rows after the last one. A non-positive n adds nothing.
func (w *Window) Append(n int) {
	for i := 0; i < n; i++ {
		w.rows = append(w.rows, w.step(w.rows[len(w.rows)-1], 1))
	}
}

// Prepend adds n rows before the first one. A non-positive n adds nothing.
func (w *Window) Prepend(n int) {
	if n <= 0 {
		return
	}
	added := make([]Row, n)
	next := w.rows[0]
	for i := n - 1; i >= 0; i-- {
		next = w.step(next, -1)
		added[i] = next
	}
	w.rows = append(added, w.rows...)
}

// Grow adds the configured number of rows at the end, or at the start when
// atEnd is false.
func (w *Window) Grow(atEnd bool) {
	if atEnd {
		w.Append(w.datesToAdd)
	} else {
		w.Prepend(w.datesToAdd)
	}
}

// Scale returns the scale of the window.
func (w *Window) Scale() Scale { return w.scale }

// Len returns the number of rows.
func (w *Window) Len() int { return len(w.rows) }

// Row returns row i.
func (w *Window) Row(i int) (Row, bool) {
	if i < 0 || i >= len(w.rows) {
		return Row{}, false
	}
	return w.rows[i], true
}

// Rows returns a copy of all rows.
func (w *Window) Rows() []Row {
	out := make([]Row, len(w.rows))
	copy(out, w.rows)
	return out
}

// Index returns the row containing d, or -1.
func (w *Window) Index(d model.Date) int {
	for i, r := range w.rows {
		if w.scale == Month {
			// month grids overlap; a date belongs to its own month's row
			if r.FirstDayOfMonth == model.FirstDayOfMonth(d) {
				return i
			}
			continue
		}
		req, _ := w.Request(i)
		if !d.Before(req.Start) && !d.After(req.End()) {
			return i
		}
	}
	return -1
}

// Request returns the layout row i needs: a 7-day time grid for weeks, a
// 42-day bucket grid for months, and bucket grids over the whole span for
// years and decades.
func (w *Window) Request(i int) (Request, bool) {
	r, ok := w.Row(i)
	if !ok {
		return Request{}, false
	}
	switch w.scale {
	case Week:
		return Request{Kind: layout.KindTimeGrid, Start: r.Start, Days: daysPerWeek, PeriodLength: w.PeriodMinutes, Location: w.Location}, true
	case Month:
		return Request{Kind: layout.KindDayBuckets, Start: r.Start, Days: monthGridDays, PeriodLength: daysPerWeek}, true
	case Year:
		return Request{Kind: layout.KindDayBuckets, Start: r.Start, Days: r.Start.DaysTo(r.Start.AddYears(1)), PeriodLength: daysPerWeek}, true
	default:
		return Request{Kind: layout.KindDayBuckets, Start: r.Start, Days: r.Start.DaysTo(r.Start.AddYears(10)), PeriodLength: daysPerWeek}, true
	}
}

// Schedule returns the agenda request of a month row: one bucket line per
// day of the month.
func (w *Window) Schedule(i int) (Request, bool) {
	r, ok := w.Row(i)
	if !ok || w.scale != Month {
		return Request{}, false
	}
	first := r.FirstDayOfMonth
	return Request{
		Kind:         layout.KindDayBuckets,
		Start:        first,
		Days:         model.DaysInMonth(first.Year, first.Month),
		PeriodLength: 1,
	}, true
}

// Range returns the first and last date covered by any row.
func (w *Window) Range() (from, to model.Date) {
	first, _ := w.Request(0)
	last, _ := w.Request(len(w.rows) - 1)
	return first.Start, last.End()
}
