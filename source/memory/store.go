// memory based event source, for tests and the example program
package memory

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/Tinnci/merkuro-github-fork/model"
	"github.com/Tinnci/merkuro-github-fork/recurrence"
	"github.com/Tinnci/merkuro-github-fork/source"
)

var _ source.Source = (*Store)(nil)

type entry struct {
	event model.Event
	etag  string
}

// Store implements source.Source using an in-memory map keyed by uid.
// Subscribers are notified synchronously after the store lock is released,
// so they may read the store from the callback.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	subs    map[int]func(source.Change)
	nextSub int
	logger  *slog.Logger
}

// New creates a new in-memory event store. A nil logger disables logging.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		entries: make(map[string]*entry),
		subs:    make(map[int]func(source.Change)),
		logger:  logger,
	}
}

// generateETag hashes the iCalendar rendering of ev, so that re-putting an
// unchanged event keeps its tag.
func generateETag(ev model.Event) string {
	comp, err := recurrence.ComponentFromEvent(ev)
	if err != nil {
		return ""
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Merkuro//Memory Store//EN")
	comp.Props.SetDateTime(ical.PropDateTimeStamp, time.Unix(0, 0).UTC())
	cal.Children = append(cal.Children, comp)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return ""
	}
	// property order is not part of the content
	lines := strings.Split(buf.String(), "\r\n")
	sort.Strings(lines)
	hash := sha1.Sum([]byte(strings.Join(lines, "\n")))
	return `"` + hex.EncodeToString(hash[:]) + `"`
}

// Events returns a snapshot of all events ordered by uid.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]model.Event, 0, len(s.entries))
	for _, e := range s.entries {
		events = append(events, e.event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].UID < events[j].UID })
	return events
}

// Subscribe implements source.Source.
func (s *Store) Subscribe(fn func(source.Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify(c source.Change) {
	s.mu.RLock()
	subs := make([]func(source.Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	s.logger.Debug("store changed", "kind", c.Kind, "uids", c.UIDs, "subscribers", len(subs))
	for _, fn := range subs {
		fn(c)
	}
}

// Get returns the event with the given uid.
func (s *Store) Get(_ context.Context, uid string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[uid]
	if !ok {
		return model.Event{}, &source.Error{
			Type:    source.ErrNotFound,
			Message: "event not found",
		}
	}
	return e.event, nil
}

// ETag returns the entity tag of the event with the given uid.
func (s *Store) ETag(_ context.Context, uid string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[uid]
	if !ok {
		return "", &source.Error{
			Type:    source.ErrNotFound,
			Message: "event not found",
		}
	}
	return e.etag, nil
}

// List returns the events of one collection ordered by uid. An empty
// collectionID lists everything.
func (s *Store) List(_ context.Context, collectionID string) []model.Event {
	var events []model.Event
	for _, ev := range s.Events() {
		if collectionID == "" || ev.CollectionID == collectionID {
			events = append(events, ev)
		}
	}
	return events
}

// Create adds ev. A missing uid is replaced by a random one; the stored
// event is returned.
func (s *Store) Create(_ context.Context, ev model.Event) (model.Event, error) {
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return model.Event{}, &source.Error{
			Type:    source.ErrInvalidInput,
			Message: "invalid event",
			Err:     err,
		}
	}

	s.mu.Lock()
	if _, exists := s.entries[ev.UID]; exists {
		s.mu.Unlock()
		return model.Event{}, &source.Error{
			Type:    source.ErrAlreadyExists,
			Message: "event already exists",
		}
	}
	s.entries[ev.UID] = &entry{event: ev, etag: generateETag(ev)}
	s.mu.Unlock()

	s.notify(source.Change{Kind: source.Added, UIDs: []string{ev.UID}})
	return ev, nil
}

// Update replaces an existing event and returns its new entity tag.
// Replacing an event with an identical one does not notify subscribers.
func (s *Store) Update(_ context.Context, ev model.Event) (string, error) {
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return "", &source.Error{
			Type:    source.ErrInvalidInput,
			Message: "invalid event",
			Err:     err,
		}
	}
	etag := generateETag(ev)

	s.mu.Lock()
	e, exists := s.entries[ev.UID]
	if !exists {
		s.mu.Unlock()
		return "", &source.Error{
			Type:    source.ErrNotFound,
			Message: "event not found",
		}
	}
	changed := etag == "" || etag != e.etag
	e.event, e.etag = ev, etag
	s.mu.Unlock()

	if changed {
		s.notify(source.Change{Kind: source.Updated, UIDs: []string{ev.UID}})
	}
	return etag, nil
}

// Put creates ev or replaces the stored event with the same uid. The
// lookup and the write happen under one lock.
func (s *Store) Put(_ context.Context, ev model.Event) (model.Event, error) {
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return model.Event{}, &source.Error{
			Type:    source.ErrInvalidInput,
			Message: "invalid event",
			Err:     err,
		}
	}
	etag := generateETag(ev)

	s.mu.Lock()
	kind := source.Added
	changed := true
	if e, exists := s.entries[ev.UID]; exists {
		kind = source.Updated
		changed = etag == "" || etag != e.etag
		e.event, e.etag = ev, etag
	} else {
		s.entries[ev.UID] = &entry{event: ev, etag: etag}
	}
	s.mu.Unlock()

	if changed {
		s.notify(source.Change{Kind: kind, UIDs: []string{ev.UID}})
	}
	return ev, nil
}

// PutComponent converts a VEVENT and stores it in collectionID.
func (s *Store) PutComponent(ctx context.Context, comp *ical.Component, collectionID string, loc *time.Location) (model.Event, error) {
	if comp == nil || comp.Name != ical.CompEvent {
		return model.Event{}, &source.Error{
			Type:    source.ErrInvalidInput,
			Message: "not a VEVENT",
		}
	}
	ev, err := recurrence.EventFromComponent(comp, loc)
	if err != nil {
		return model.Event{}, &source.Error{
			Type:    source.ErrInvalidInput,
			Message: "malformed event",
			Err:     err,
		}
	}
	ev.CollectionID = collectionID
	return s.Put(ctx, ev)
}

// Import decodes an iCalendar stream into collectionID and notifies
// subscribers once with a Reset.
func (s *Store) Import(_ context.Context, r io.Reader, collectionID string, loc *time.Location) (int, error) {
	events, err := source.DecodeEvents(r, loc)
	if err != nil {
		return 0, err
	}

	stored := 0
	s.mu.Lock()
	for _, ev := range events {
		if ev.UID == "" {
			ev.UID = uuid.NewString()
		}
		ev = ev.Normalize()
		if err := ev.Validate(); err != nil {
			s.logger.Warn("import: skipping event", "uid", ev.UID, "err", err)
			continue
		}
		ev.CollectionID = collectionID
		s.entries[ev.UID] = &entry{event: ev, etag: generateETag(ev)}
		stored++
	}
	s.mu.Unlock()

	s.logger.Info("imported events", "collection", collectionID, "count", stored)
	s.notify(source.Change{Kind: source.Reset})
	return stored, nil
}

// Delete removes the event with the given uid.
func (s *Store) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	if _, exists := s.entries[uid]; !exists {
		s.mu.Unlock()
		return &source.Error{
			Type:    source.ErrNotFound,
			Message: "event not found",
		}
	}
	delete(s.entries, uid)
	s.mu.Unlock()

	s.notify(source.Change{Kind: source.Removed, UIDs: []string{uid}})
	return nil
}

// DeleteCollection removes every event of collectionID and reports how many
// were removed.
func (s *Store) DeleteCollection(_ context.Context, collectionID string) int {
	var removed []string
	s.mu.Lock()
	for uid, e := range s.entries {
		if e.event.CollectionID == collectionID {
			delete(s.entries, uid)
			removed = append(removed, uid)
		}
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		sort.Strings(removed)
		s.notify(source.Change{Kind: source.Removed, UIDs: removed})
	}
	return len(removed)
}

// Reset replaces the whole collection. Invalid events are skipped and
// logged.
func (s *Store) Reset(events []model.Event) {
	entries := make(map[string]*entry, len(events))
	for _, ev := range events {
		if ev.UID == "" {
			ev.UID = uuid.NewString()
		}
		ev = ev.Normalize()
		if err := ev.Validate(); err != nil {
			s.logger.Warn("reset: skipping event", "uid", ev.UID, "err", err)
			continue
		}
		entries[ev.UID] = &entry{event: ev, etag: generateETag(ev)}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.notify(source.Change{Kind: source.Reset})
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
