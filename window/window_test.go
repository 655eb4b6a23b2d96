package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tinnci/merkuro-github-fork/layout"
	"github.com/Tinnci/merkuro-github-fork/model"
)

var today = model.NewDate(2026, 10, 16) // a Friday

func TestNew_Week(t *testing.T) {
	w := New(today, Week, 10, time.Monday)
	require.Equal(t, 10, w.Len())

	first, _ := w.Row(0)
	assert.Equal(t, model.NewDate(2026, 9, 7), first.Start)
	for _, r := range w.Rows() {
		assert.Equal(t, time.Monday, r.Start.Weekday())
	}

	from, to := w.Range()
	assert.Equal(t, model.NewDate(2026, 9, 7), from)
	assert.Equal(t, model.NewDate(2026, 11, 15), to)

	idx := w.Index(today)
	require.GreaterOrEqual(t, idx, 0)
	row, _ := w.Row(idx)
	assert.Equal(t, model.NewDate(2026, 10, 12), row.Start)

	req, ok := w.Request(idx)
	require.True(t, ok)
	assert.Equal(t, layout.KindTimeGrid, req.Kind)
	assert.Equal(t, 7, req.Days)
	assert.Equal(t, DefaultPeriodMinutes, req.PeriodLength)
}

func TestNew_WeekSundayFirst(t *testing.T) {
	w := New(today, Week, 4, time.Sunday)
	for _, r := range w.Rows() {
		assert.Equal(t, time.Sunday, r.Start.Weekday())
	}
	assert.GreaterOrEqual(t, w.Index(today), 0)
}

func TestNew_Month(t *testing.T) {
	w := New(today, Month, 10, time.Monday)
	require.Equal(t, 10, w.Len())

	first, _ := w.Row(0)
	assert.Equal(t, model.NewDate(2026, 5, 1), first.FirstDayOfMonth)
	assert.Equal(t, model.NewDate(2026, 4, 27), first.Start)

	// June 2026 starts on a Monday; the grid still begins the week before
	june, _ := w.Row(1)
	assert.Equal(t, model.NewDate(2026, 6, 1), june.FirstDayOfMonth)
	assert.Equal(t, model.NewDate(2026, 5, 25), june.Start)

	for _, r := range w.Rows() {
		assert.True(t, r.Start.Before(r.FirstDayOfMonth))
		assert.Equal(t, time.Monday, r.Start.Weekday())
	}

	req, _ := w.Request(1)
	assert.Equal(t, layout.KindDayBuckets, req.Kind)
	assert.Equal(t, 42, req.Days)
	assert.Equal(t, 7, req.PeriodLength)

	sched, ok := w.Schedule(1)
	require.True(t, ok)
	assert.Equal(t, model.NewDate(2026, 6, 1), sched.Start)
	assert.Equal(t, 30, sched.Days)

	idx := w.Index(model.NewDate(2026, 6, 1))
	row, _ := w.Row(idx)
	assert.Equal(t, model.NewDate(2026, 6, 1), row.FirstDayOfMonth, "overlapping grids resolve to the date's own month")
}

func TestNew_YearAndDecade(t *testing.T) {
	y := New(today, Year, 10, time.Monday)
	first, _ := y.Row(0)
	assert.Equal(t, model.NewDate(2021, 10, 1), first.Start)
	req, _ := y.Request(0)
	assert.Equal(t, 365, req.Days)

	d := New(today, Decade, 10, time.Monday)
	first, _ = d.Row(0)
	second, _ := d.Row(1)
	assert.Equal(t, 10, first.Start.DaysTo(second.Start)/365)
	assert.Equal(t, time.October, first.Start.Month)

	_, ok := d.Schedule(0)
	assert.False(t, ok)
}

func TestWindow_Grow(t *testing.T) {
	w := New(today, Week, 4, time.Monday)
	first, _ := w.Row(0)

	w.Prepend(2)
	assert.Equal(t, 6, w.Len())
	newFirst, _ := w.Row(0)
	assert.Equal(t, first.Start.AddDays(-14), newFirst.Start)

	w.Grow(true)
	assert.Equal(t, 10, w.Len())
	w.Grow(false)
	assert.Equal(t, 14, w.Len())

	rows := w.Rows()
	for i := 1; i < len(rows); i++ {
		assert.Equal(t, 7, rows[i-1].Start.DaysTo(rows[i].Start))
	}

	w.Append(0)
	w.Prepend(-1)
	assert.Equal(t, 14, w.Len())
}

func TestWindow_MonthPrependKeepsMonths(t *testing.T) {
	w := New(today, Month, 2, time.Sunday)
	w.Prepend(3)

	rows := w.Rows()
	for i := 1; i < len(rows); i++ {
		assert.Equal(t, rows[i-1].FirstDayOfMonth.AddMonths(1), rows[i].FirstDayOfMonth)
	}
}

func TestWindow_Defaults(t *testing.T) {
	w := New(today, Month, 0, time.Monday)
	assert.Equal(t, DefaultDatesToAdd, w.Len())
	assert.Equal(t, Month, w.Scale())

	_, ok := w.Request(-1)
	assert.False(t, ok)
	_, ok = w.Request(w.Len())
	assert.False(t, ok)
	assert.Equal(t, -1, w.Index(model.NewDate(1990, 1, 1)))
}
