package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tinnci/merkuro-github-fork/model"
)

func TestParseRule(t *testing.T) {
	dtstart := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    string
		pattern  model.Pattern
		interval int
		end      model.Date
		wantErr  error
	}{
		{name: "Daily", value: "FREQ=DAILY", pattern: model.Daily, interval: 1},
		{name: "Prefixed", value: "RRULE:FREQ=WEEKLY;INTERVAL=2", pattern: model.Weekly, interval: 2},
		{name: "Until date", value: "FREQ=DAILY;UNTIL=20260110", pattern: model.Daily, interval: 1, end: d(2026, 1, 10)},
		{name: "Until UTC", value: "FREQ=MONTHLY;UNTIL=20261231T090000Z", pattern: model.Monthly, interval: 1, end: d(2026, 12, 31)},
		{name: "Until before instance time", value: "FREQ=DAILY;UNTIL=20260110T080000Z", pattern: model.Daily, interval: 1, end: d(2026, 1, 9)},
		{name: "Until after instance time", value: "FREQ=DAILY;UNTIL=20260110T235959Z", pattern: model.Daily, interval: 1, end: d(2026, 1, 10)},
		{name: "Count becomes end date", value: "FREQ=DAILY;INTERVAL=2;COUNT=3", pattern: model.Daily, interval: 2, end: d(2026, 1, 10)},
		{name: "Yearly count", value: "FREQ=YEARLY;COUNT=2", pattern: model.Yearly, interval: 1, end: d(2027, 1, 6)},
		{name: "Hourly unsupported", value: "FREQ=HOURLY", wantErr: ErrUnsupportedRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRule(tt.value, dtstart)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, rec.Pattern)
			assert.Equal(t, tt.interval, rec.Interval)
			end, ok := rec.EndDate.Get()
			if tt.end.IsZero() {
				assert.False(t, ok)
			} else {
				assert.True(t, ok)
				assert.Equal(t, tt.end, end)
			}
		})
	}
}

func TestParseRule_UntilInZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	// 09:00 Berlin is 08:00 UTC in winter
	dtstart := time.Date(2026, 1, 6, 9, 0, 0, 0, berlin)

	rec, err := ParseRule("FREQ=DAILY;UNTIL=20260110T075959Z", dtstart)
	require.NoError(t, err)
	end, _ := rec.EndDate.Get()
	assert.Equal(t, d(2026, 1, 9), end)

	rec, err = ParseRule("FREQ=DAILY;UNTIL=20260110T080000Z", dtstart)
	require.NoError(t, err)
	end, _ = rec.EndDate.Get()
	assert.Equal(t, d(2026, 1, 10), end)

	got := NewEngine().Expand(timedEvent("ev", dtstart, time.Hour, rec), d(2026, 1, 1), d(2026, 1, 31))
	assert.Len(t, got, 5)
}

func TestParseRule_ReservedFields(t *testing.T) {
	rec, err := ParseRule("FREQ=WEEKLY;BYDAY=MO,SU;BYMONTH=3", time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Sunday}, rec.ByDayOfWeek)
	assert.Equal(t, []time.Month{time.March}, rec.ByMonth)

	// reserved fields do not change the expansion
	ev := timedEvent("ev", time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), time.Hour, rec)
	got := NewEngine().Expand(ev, d(2026, 1, 1), d(2026, 1, 31))
	assert.Equal(t, []model.Date{d(2026, 1, 5), d(2026, 1, 12), d(2026, 1, 19), d(2026, 1, 26)}, dates(got))
}

func TestParseRule_Invalid(t *testing.T) {
	_, err := ParseRule("FREQ=SOMETIMES", time.Now())
	assert.Error(t, err)
}

func TestFormatRule(t *testing.T) {
	dtstart := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)

	s, err := FormatRule(model.NoRecurrence, dtstart)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = FormatRule(model.Repeat(model.Daily, 1), dtstart)
	require.NoError(t, err)
	assert.Equal(t, "FREQ=DAILY", s)

	s, err = FormatRule(model.Repeat(model.Weekly, 2).Until(d(2026, 3, 1)), dtstart)
	require.NoError(t, err)
	assert.Contains(t, s, "FREQ=WEEKLY")
	assert.Contains(t, s, "INTERVAL=2")
	assert.Contains(t, s, "UNTIL=20260301T090000Z")

	_, err = FormatRule(model.Recurrence{Pattern: model.Monthly}, dtstart)
	assert.ErrorIs(t, err, ErrUnsupportedRule)
}

func TestFormatRule_ParseBack(t *testing.T) {
	dtstart := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)
	rec := model.Repeat(model.Monthly, 3).Until(d(2027, 1, 31))

	s, err := FormatRule(rec, dtstart)
	require.NoError(t, err)
	parsed, err := ParseRule(s, dtstart)
	require.NoError(t, err)

	assert.Equal(t, rec.Pattern, parsed.Pattern)
	assert.Equal(t, rec.Interval, parsed.Interval)
	assert.Equal(t, rec.EndDate, parsed.EndDate)
}
