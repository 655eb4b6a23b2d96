package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	assert.False(t, IsLeapYear(2026))
	assert.False(t, IsLeapYear(2100)) // divisible by 100 but not 400
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2026, time.January))
	assert.Equal(t, 28, DaysInMonth(2026, time.February))
	assert.Equal(t, 30, DaysInMonth(2026, time.April))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
}

func TestDate_AddMonths(t *testing.T) {
	tests := []struct {
		name     string
		from     Date
		months   int
		expected Date
	}{
		{"clamp to Feb in common year", NewDate(2026, 1, 31), 1, NewDate(2026, 2, 28)},
		{"clamp to Feb in leap year", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"clamp to 30-day month", NewDate(2026, 3, 31), 1, NewDate(2026, 4, 30)},
		{"cross year boundary", NewDate(2026, 11, 15), 3, NewDate(2027, 2, 15)},
		{"negative step", NewDate(2026, 1, 31), -2, NewDate(2025, 11, 30)},
		{"negative across several years", NewDate(2026, 2, 10), -26, NewDate(2023, 12, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.AddMonths(tt.months))
		})
	}
}

func TestDate_AddYears(t *testing.T) {
	assert.Equal(t, NewDate(2025, 2, 28), NewDate(2024, 2, 29).AddYears(1))
	assert.Equal(t, NewDate(2028, 2, 29), NewDate(2024, 2, 29).AddYears(4))
	assert.Equal(t, NewDate(2100, 2, 28), NewDate(2096, 2, 29).AddYears(4))
}

func TestDate_DaysToAndCompare(t *testing.T) {
	a := NewDate(2026, 1, 6)
	b := NewDate(2026, 3, 1)
	assert.Equal(t, 54, a.DaysTo(b))
	assert.Equal(t, -54, b.DaysTo(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(NewDate(2026, 1, 6)))
}

func TestDate_DaysToAcrossCenturies(t *testing.T) {
	tests := []struct {
		name     string
		from, to Date
		want     int
	}{
		{"Since 1700", NewDate(1700, 1, 1), NewDate(2026, 1, 6), 119074},
		{"Since year 1", NewDate(1, 1, 1), NewDate(2026, 1, 6), 739621},
		{"Before the epoch", NewDate(1969, 12, 31), NewDate(1970, 1, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.DaysTo(tt.to))
			assert.Equal(t, -tt.want, tt.to.DaysTo(tt.from))
			assert.Equal(t, tt.to, tt.from.AddDays(tt.want))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-06")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, 1, 6), d)
	assert.Equal(t, "2026-01-06", d.String())

	_, err = ParseDate("06.01.2026")
	assert.Error(t, err)
}

func TestWeekHelpers(t *testing.T) {
	// 2026-01-06 is a Tuesday
	d := NewDate(2026, 1, 6)
	monday := StartOfWeek(d, time.Monday)
	sunday := EndOfWeek(d, time.Monday)
	assert.Equal(t, NewDate(2026, 1, 5), monday)
	assert.Equal(t, NewDate(2026, 1, 11), sunday)
	assert.Equal(t, time.Sunday, sunday.Weekday())

	assert.Equal(t, NewDate(2026, 1, 4), StartOfWeek(d, time.Sunday))
	assert.Equal(t, d, StartOfWeek(d, time.Tuesday))
}

func TestMonthHelpers(t *testing.T) {
	d := NewDate(2026, 1, 6)
	assert.Equal(t, NewDate(2026, 1, 1), FirstDayOfMonth(d))
	assert.Equal(t, NewDate(2026, 1, 31), LastDayOfMonth(d))
}

func TestWorkingDaysBetween(t *testing.T) {
	assert.Equal(t, 5, WorkingDaysBetween(NewDate(2026, 1, 5), NewDate(2026, 1, 9)))
	assert.Equal(t, 5, WorkingDaysBetween(NewDate(2026, 1, 5), NewDate(2026, 1, 11)))
	assert.Equal(t, 0, WorkingDaysBetween(NewDate(2026, 1, 9), NewDate(2026, 1, 5)))
}
