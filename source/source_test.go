package source

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Tinnci/merkuro-github-fork/model"
)

func TestError(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &Error{Type: ErrInvalidInput, Message: "bad event", Err: inner})

	assert.True(t, IsType(err, ErrInvalidInput))
	assert.False(t, IsType(err, ErrNotFound))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "not_found: missing", (&Error{Type: ErrNotFound, Message: "missing"}).Error())
}

func TestMockSource(t *testing.T) {
	m := &MockSource{}
	start := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)
	m.SetEvents([]model.Event{NewMockEvent("a", "A", start, start.Add(time.Hour))})
	m.AllowSubscribe()

	var got []Change
	cancel := m.Subscribe(func(c Change) { got = append(got, c) })
	require.NotNil(t, cancel)
	cancel()

	fn := m.Subscriber()
	require.NotNil(t, fn)
	fn(Change{Kind: Added, UIDs: []string{"b"}})
	assert.Equal(t, []Change{{Kind: Added, UIDs: []string{"b"}}}, got)

	assert.Len(t, m.Events(), 1)
	m.SetEvents(nil)
	assert.Empty(t, m.Events())
	m.AssertCalled(t, "Subscribe", mock.Anything)
}

func TestDecodeEvents_Invalid(t *testing.T) {
	_, err := DecodeEvents(strings.NewReader("not a calendar"), time.UTC)
	assert.Error(t, err)

	ics := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:x\r\n" +
		"BEGIN:VEVENT\r\nUID:nostart\r\nDTSTAMP:20260101T000000Z\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	events, err := DecodeEvents(strings.NewReader(ics), time.UTC)
	assert.Error(t, err)
	assert.Empty(t, events)
}
