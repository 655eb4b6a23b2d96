package source

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Tinnci/merkuro-github-fork/model"
)

// MockSource implements the Source interface for testing
type MockSource struct {
	mock.Mock
}

// Events implements the Source interface
func (m *MockSource) Events() []model.Event {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Event)
}

// Subscribe implements the Source interface. The registered callback can be
// retrieved with Subscriber to simulate change notifications.
func (m *MockSource) Subscribe(fn func(Change)) func() {
	args := m.Called(fn)
	if args.Get(0) == nil {
		return func() {}
	}
	return args.Get(0).(func())
}

// Subscriber returns the callback passed to the most recent Subscribe call,
// or nil.
func (m *MockSource) Subscriber() func(Change) {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "Subscribe" {
			fn, _ := m.Calls[i].Arguments.Get(0).(func(Change))
			return fn
		}
	}
	return nil
}

// --- Helper methods for creating test data ---

// NewMockEvent creates a timed test event
func NewMockEvent(uid, title string, start, end time.Time) model.Event {
	return model.Event{
		UID:        uid,
		Title:      title,
		Start:      start,
		End:        end,
		Recurrence: model.NoRecurrence,
	}
}

// NewMockRecurringEvent creates a timed test event repeating with rec
func NewMockRecurringEvent(uid, title string, start, end time.Time, rec model.Recurrence) model.Event {
	ev := NewMockEvent(uid, title, start, end)
	ev.Recurrence = rec
	return ev
}

// --- Convenience methods for setting up common test scenarios ---

// SetEvents makes Events return events, replacing any earlier expectation.
func (m *MockSource) SetEvents(events []model.Event) {
	m.ExpectedCalls = removeMatchingCalls(m.ExpectedCalls, "Events")
	m.On("Events").Return(events)
}

// AllowSubscribe accepts any Subscribe call and returns a no-op cancel.
func (m *MockSource) AllowSubscribe() {
	m.ExpectedCalls = removeMatchingCalls(m.ExpectedCalls, "Subscribe")
	m.On("Subscribe", mock.Anything).Return(func() {})
}

// Helper to remove existing mock calls for a method
func removeMatchingCalls(calls []*mock.Call, method string) []*mock.Call {
	result := make([]*mock.Call, 0, len(calls))
	for _, call := range calls {
		if call.Method == method {
			continue
		}
		result = append(result, call)
	}
	return result
}
