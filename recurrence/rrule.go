package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// ErrUnsupportedRule is returned for RRULE values outside the daily, weekly,
// monthly and yearly patterns the engine expands.
var ErrUnsupportedRule = errors.New("unsupported recurrence rule")

// rrule-go numbers weekdays from Monday, time.Weekday from Sunday
var rruleWeekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

func toRRuleWeekday(wd time.Weekday) rrule.Weekday {
	return rruleWeekdays[(int(wd)+6)%7]
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

// ParseRule converts an RRULE value (without the "RRULE:" prefix) into the
// reduced recurrence model. dtstart anchors COUNT and supplies the location
// for a floating UNTIL.
//
// BYDAY, BYMONTHDAY and BYMONTH are kept in the reserved fields of the result
// and do not affect expansion. UNTIL becomes the date of the last instance
// starting at or before it, so an UNTIL earlier in the day than the instance
// time excludes that day. COUNT is converted to the inclusive end date of the
// last counted instance.
func ParseRule(value string, dtstart time.Time) (model.Recurrence, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "RRULE:")
	loc := dtstart.Location()
	opt, err := rrule.StrToROptionInLocation(value, loc)
	if err != nil {
		return model.Recurrence{}, fmt.Errorf("parse rrule %q: %w", value, err)
	}

	rec := model.Recurrence{Interval: opt.Interval, EndDate: mo.None[model.Date]()}
	if rec.Interval == 0 {
		rec.Interval = 1
	}
	switch opt.Freq {
	case rrule.DAILY:
		rec.Pattern = model.Daily
	case rrule.WEEKLY:
		rec.Pattern = model.Weekly
	case rrule.MONTHLY:
		rec.Pattern = model.Monthly
	case rrule.YEARLY:
		rec.Pattern = model.Yearly
	default:
		return model.Recurrence{}, fmt.Errorf("%w: FREQ=%v", ErrUnsupportedRule, opt.Freq)
	}

	for _, wd := range opt.Byweekday {
		rec.ByDayOfWeek = append(rec.ByDayOfWeek, fromRRuleWeekday(wd))
	}
	rec.ByDayOfMonth = append(rec.ByDayOfMonth, opt.Bymonthday...)
	for _, m := range opt.Bymonth {
		rec.ByMonth = append(rec.ByMonth, time.Month(m))
	}

	switch {
	case !opt.Until.IsZero():
		if untilIsDate(value) {
			rec.EndDate = mo.Some(model.DateOf(opt.Until.In(loc)))
		} else {
			rec.EndDate = mo.Some(untilDate(opt.Until, dtstart))
		}
	case opt.Count > 0:
		rec.EndDate = mo.Some(nthInstance(model.DateOf(dtstart), rec, opt.Count))
	}
	return rec, nil
}

// untilIsDate reports whether the UNTIL part of value is a DATE, which
// includes the whole day.
func untilIsDate(value string) bool {
	for _, part := range strings.Split(value, ";") {
		if name, v, ok := strings.Cut(part, "="); ok && strings.EqualFold(name, "UNTIL") {
			return !strings.Contains(v, "T")
		}
	}
	return false
}

// untilDate returns the last date whose instance, at the wall clock time of
// dtstart, does not start after until.
func untilDate(until, dtstart time.Time) model.Date {
	until = until.In(dtstart.Location())
	last := model.DateOf(until)
	if last.At(dtstart).After(until) {
		last = last.AddDays(-1)
	}
	return last
}

// nthInstance returns the date of the n-th (1-based) instance of rec anchored
// at anchor, ignoring exception dates as RFC 5545 COUNT does.
func nthInstance(anchor model.Date, rec model.Recurrence, n int) model.Date {
	steps := (n - 1) * rec.Interval
	switch rec.Pattern {
	case model.Daily:
		return anchor.AddDays(steps)
	case model.Weekly:
		return anchor.AddDays(7 * steps)
	case model.Monthly:
		return anchor.AddMonths(steps)
	case model.Yearly:
		return anchor.AddYears(steps)
	default:
		return anchor
	}
}

// FormatRule renders rec as an RRULE value. The end date becomes an UNTIL
// at the instance time on that date, in UTC. A non-recurring rule renders as
// the empty string.
func FormatRule(rec model.Recurrence, dtstart time.Time) (string, error) {
	opt := rrule.ROption{Interval: rec.Interval}
	switch rec.Pattern {
	case model.None:
		return "", nil
	case model.Daily:
		opt.Freq = rrule.DAILY
	case model.Weekly:
		opt.Freq = rrule.WEEKLY
	case model.Monthly:
		opt.Freq = rrule.MONTHLY
	case model.Yearly:
		opt.Freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("%w: pattern %d", ErrUnsupportedRule, rec.Pattern)
	}
	if !rec.Valid() {
		return "", fmt.Errorf("%w: interval %d", ErrUnsupportedRule, rec.Interval)
	}
	if opt.Interval == 1 {
		opt.Interval = 0 // omit the default
	}
	if end, ok := rec.EndDate.Get(); ok {
		opt.Until = end.At(dtstart).UTC()
	}
	for _, wd := range rec.ByDayOfWeek {
		opt.Byweekday = append(opt.Byweekday, toRRuleWeekday(wd))
	}
	opt.Bymonthday = append(opt.Bymonthday, rec.ByDayOfMonth...)
	for _, m := range rec.ByMonth {
		opt.Bymonth = append(opt.Bymonth, int(m))
	}
	return opt.RRuleString(), nil
}
