package source

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/Tinnci/merkuro-github-fork/model"
	"github.com/Tinnci/merkuro-github-fork/recurrence"
)

const productID = "-//Merkuro//Occurrence Engine//EN"

// DecodeEvents reads one iCalendar stream and converts every VEVENT in it.
// Floating times are interpreted in loc.
func DecodeEvents(r io.Reader, loc *time.Location) ([]model.Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	var events []model.Event
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		ev, err := recurrence.EventFromComponent(child, loc)
		if err != nil {
			return nil, &Error{Type: ErrInvalidInput, Message: "malformed event", Err: err}
		}
		events = append(events, ev)
	}
	return events, nil
}

// EncodeEvents writes events as a single VCALENDAR.
func EncodeEvents(w io.Writer, events []model.Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := time.Now().UTC()
	for _, ev := range events {
		comp, err := recurrence.ComponentFromEvent(ev)
		if err != nil {
			return &Error{Type: ErrInvalidInput, Message: "cannot encode event " + ev.UID, Err: err}
		}
		comp.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		cal.Children = append(cal.Children, comp)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
