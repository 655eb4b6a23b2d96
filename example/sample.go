package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/Tinnci/merkuro-github-fork/model"
	"github.com/Tinnci/merkuro-github-fork/source/memory"
)

// setupStore fills a store with a week of sample events around today
func setupStore(logger *slog.Logger) *memory.Store {
	store := memory.New(logger)
	ctx := context.Background()
	today := model.DateOf(time.Now())

	addEvent(ctx, store, createEvent("Team Standup", "Room A",
		today.At(clock(9, 0)), today.At(clock(9, 15)), "FREQ=WEEKLY;INTERVAL=1"), logger)
	addEvent(ctx, store, createEvent("Design Review", "Room B",
		today.At(clock(9, 0)), today.At(clock(10, 30)), ""), logger)
	addEvent(ctx, store, createEvent("Lunch", "Canteen",
		today.At(clock(12, 0)), today.At(clock(13, 0)), "FREQ=DAILY;INTERVAL=1;COUNT=5"), logger)
	addEvent(ctx, store, createEvent("Gym", "Fitness Center",
		today.AddDays(1).At(clock(18, 0)), today.AddDays(1).At(clock(19, 30)), "FREQ=WEEKLY;INTERVAL=2"), logger)

	trip := createAllDayEvent("Conference", today.AddDays(2), today.AddDays(5))
	addEvent(ctx, store, trip, logger)

	rent := createAllDayEvent("Pay Rent", model.FirstDayOfMonth(today), model.FirstDayOfMonth(today).AddDays(1))
	setRule(rent, "FREQ=MONTHLY;INTERVAL=1")
	addEvent(ctx, store, rent, logger)

	return store
}

func clock(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.Local)
}

func addEvent(ctx context.Context, store *memory.Store, event *ical.Event, logger *slog.Logger) {
	if _, err := store.PutComponent(ctx, event.Component, collectionID, time.Local); err != nil {
		logger.Error("failed to add sample event", "summary", event.Props.Get(ical.PropSummary).Value, "err", err)
	}
}

// createEvent is a helper function to create a timed VEVENT
func createEvent(summary, location string, start, end time.Time, rule string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.New().String())
	event.Props.SetText(ical.PropSummary, summary)
	event.Props.SetText(ical.PropLocation, location)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)
	if rule != "" {
		setRule(event, rule)
	}
	return event
}

// setRule stores rule verbatim; SetText would escape its semicolons
func setRule(event *ical.Event, rule string) {
	p := ical.NewProp(ical.PropRecurrenceRule)
	p.Value = rule
	event.Props.Set(p)
}

// createAllDayEvent creates a VEVENT covering [first, end)
func createAllDayEvent(summary string, first, end model.Date) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.New().String())
	event.Props.SetText(ical.PropSummary, summary)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())
	event.Props.SetDate(ical.PropDateTimeStart, first.In(time.Local))
	event.Props.SetDate(ical.PropDateTimeEnd, end.In(time.Local))
	return event
}
