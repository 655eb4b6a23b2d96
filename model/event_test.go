package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Validate(t *testing.T) {
	start := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name:  "valid single event",
			event: Event{UID: "a", Start: start, End: start.Add(time.Hour)},
		},
		{
			name:  "zero length instant is valid",
			event: Event{UID: "a", Start: start, End: start},
		},
		{
			name:    "missing uid",
			event:   Event{Start: start, End: start.Add(time.Hour)},
			wantErr: true,
		},
		{
			name:    "end before start",
			event:   Event{UID: "a", Start: start, End: start.Add(-time.Hour)},
			wantErr: true,
		},
		{
			name:    "negative interval",
			event:   Event{UID: "a", Start: start, End: start, Recurrence: Repeat(Daily, -1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidEvent))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvent_LastDayAndSpan(t *testing.T) {
	// All-day event stored with an exclusive midnight end covers only its first day
	allDay := Event{
		UID:    "holiday",
		Start:  time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
		AllDay: true,
	}
	assert.Equal(t, NewDate(2026, 1, 6), allDay.LastDay())
	assert.Equal(t, 1, allDay.SpanDays())

	multi := Event{
		UID:   "trip",
		Start: time.Date(2026, 1, 6, 18, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, NewDate(2026, 1, 8), multi.LastDay())
	assert.Equal(t, 3, multi.SpanDays())
}

func TestEvent_Normalize(t *testing.T) {
	e := Event{
		UID:    "conf",
		Start:  time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC),
		End:    time.Date(2026, 1, 7, 17, 0, 0, 0, time.UTC),
		AllDay: true,
	}
	n := e.Normalize()
	assert.Equal(t, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), n.Start)
	assert.Equal(t, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), n.End)
	assert.Equal(t, 1, n.Recurrence.Interval)
	assert.Equal(t, 2, n.SpanDays())

	timed := Event{UID: "x", Start: e.Start, End: e.End}
	assert.Equal(t, timed.Start, timed.Normalize().Start)
}

func TestRecurrence_Until(t *testing.T) {
	r := Repeat(Weekly, 2)
	assert.True(t, r.EndDate.IsAbsent())

	bounded := r.Until(NewDate(2026, 6, 30))
	end, ok := bounded.EndDate.Get()
	assert.True(t, ok)
	assert.Equal(t, NewDate(2026, 6, 30), end)
	assert.True(t, r.EndDate.IsAbsent(), "Until must not modify the receiver")
	assert.Equal(t, "Weekly", bounded.Pattern.String())
}

func TestEvent_IsException(t *testing.T) {
	e := Event{ExceptionDates: []Date{NewDate(2026, 1, 8)}}
	assert.True(t, e.IsException(NewDate(2026, 1, 8)))
	assert.False(t, e.IsException(NewDate(2026, 1, 9)))
}
