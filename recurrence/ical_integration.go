package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// ErrMissingStart is returned for components without a DTSTART.
var ErrMissingStart = errors.New("component has no DTSTART")

const (
	dateLayout  = "20060102"
	utcLayout   = "20060102T150405Z"
	localLayout = "20060102T150405"
)

// EventFromComponent converts a VEVENT into a model.Event. Floating times and
// dates are interpreted in loc (UTC if nil).
func EventFromComponent(comp *ical.Component, loc *time.Location) (model.Event, error) {
	if loc == nil {
		loc = time.UTC
	}
	var ev model.Event

	uid, err := comp.Props.Text(ical.PropUID)
	if err != nil {
		return ev, fmt.Errorf("read UID: %w", err)
	}
	ev.UID = uid
	ev.Title, _ = comp.Props.Text(ical.PropSummary)
	ev.Description, _ = comp.Props.Text(ical.PropDescription)
	ev.Location, _ = comp.Props.Text(ical.PropLocation)
	ev.Color, _ = comp.Props.Text(ical.PropColor)
	if p := comp.Props.Get(ical.PropPriority); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil {
			ev.Priority = n
		}
	}

	start, end, allDay, err := extractTimes(comp, loc)
	if err != nil {
		return ev, fmt.Errorf("event %q: %w", uid, err)
	}
	ev.Start, ev.End, ev.AllDay = start, end, allDay
	ev.Recurrence = model.NoRecurrence

	if p := comp.Props.Get(ical.PropRecurrenceRule); p != nil && p.Value != "" {
		rec, err := ParseRule(p.Value, start)
		if err != nil {
			return ev, fmt.Errorf("event %q: %w", uid, err)
		}
		ev.Recurrence = rec
	}

	for _, p := range comp.Props[ical.PropExceptionDates] {
		ev.ExceptionDates = append(ev.ExceptionDates, parseExceptionDates(p.Value, p.Params, loc)...)
	}

	return ev.Normalize(), nil
}

// extractTimes reads DTSTART and DTEND or DURATION. A missing end means a one
// day event for dates and an instant for date-times.
func extractTimes(comp *ical.Component, loc *time.Location) (start, end time.Time, allDay bool, err error) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil || startProp.Value == "" {
		return start, end, false, ErrMissingStart
	}
	allDay = isDateValue(startProp)
	start, err = startProp.DateTime(loc)
	if err != nil {
		return start, end, false, fmt.Errorf("parse DTSTART: %w", err)
	}

	switch {
	case comp.Props.Get(ical.PropDateTimeEnd) != nil:
		end, err = comp.Props.Get(ical.PropDateTimeEnd).DateTime(loc)
		if err != nil {
			return start, end, allDay, fmt.Errorf("parse DTEND: %w", err)
		}
		// Some producers write DTEND equal to DTSTART for single-day dates
		if allDay && !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
	case comp.Props.Get(ical.PropDuration) != nil:
		d, err := comp.Props.Get(ical.PropDuration).Duration()
		if err != nil {
			return start, end, allDay, fmt.Errorf("parse DURATION: %w", err)
		}
		end = start.Add(d)
	case allDay:
		end = start.AddDate(0, 0, 1)
	default:
		end = start
	}
	return start, end, allDay, nil
}

func isDateValue(p *ical.Prop) bool {
	if strings.EqualFold(p.Params.Get(ical.ParamValue), "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseExceptionDates parses an EXDATE value list into dates. Date-times
// contribute their date in loc (or their TZID zone).
func parseExceptionDates(value string, params ical.Params, loc *time.Location) []model.Date {
	if value == "" {
		return nil
	}
	if tzid := params.Get(ical.ParamTimezoneID); tzid != "" {
		if tz, err := time.LoadLocation(tzid); err == nil {
			loc = tz
		}
	}

	var dates []model.Date
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		var (
			t   time.Time
			err error
		)
		switch {
		case strings.HasSuffix(s, "Z"):
			t, err = time.Parse(utcLayout, s)
			t = t.In(loc)
		case strings.Contains(s, "T"):
			t, err = time.ParseInLocation(localLayout, s, loc)
		default:
			t, err = time.ParseInLocation(dateLayout, s, loc)
		}
		if err == nil {
			dates = append(dates, model.DateOf(t))
		}
	}
	return dates
}

// ComponentFromEvent renders ev as a VEVENT.
func ComponentFromEvent(ev model.Event) (*ical.Component, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	comp := ical.NewComponent(ical.CompEvent)
	comp.Props.SetText(ical.PropUID, ev.UID)
	comp.Props.SetText(ical.PropSummary, ev.Title)
	if ev.Description != "" {
		comp.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		comp.Props.SetText(ical.PropLocation, ev.Location)
	}

	if ev.AllDay {
		comp.Props.SetDate(ical.PropDateTimeStart, ev.Start)
		comp.Props.SetDate(ical.PropDateTimeEnd, ev.End)
	} else {
		comp.Props.SetDateTime(ical.PropDateTimeStart, ev.Start)
		comp.Props.SetDateTime(ical.PropDateTimeEnd, ev.End)
	}

	if ev.IsRecurring() {
		rule, err := FormatRule(ev.Recurrence, ev.Start)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", ev.UID, err)
		}
		p := ical.NewProp(ical.PropRecurrenceRule)
		p.Value = rule
		comp.Props.Set(p)
	}

	if len(ev.ExceptionDates) > 0 {
		values := make([]string, 0, len(ev.ExceptionDates))
		for _, d := range ev.ExceptionDates {
			values = append(values, d.In(time.UTC).Format(dateLayout))
		}
		p := ical.NewProp(ical.PropExceptionDates)
		p.SetValueType(ical.ValueDate)
		p.Value = strings.Join(values, ",")
		comp.Props.Set(p)
	}

	if ev.Priority != 0 {
		p := ical.NewProp(ical.PropPriority)
		p.Value = strconv.Itoa(ev.Priority)
		comp.Props.Set(p)
	}
	if ev.Color != "" {
		comp.Props.SetText(ical.PropColor, ev.Color)
	}
	return comp, nil
}
