// Package store holds the in-memory ordered event collection and the
// CRUD/status operations over it. Every successful local mutation
// re-derives both persisted representations before it is considered
// complete; the cross-context replacement path deliberately does not write
// back, which is what breaks the notify → write → notify loop between
// contexts.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seniorplus/agenda/internal/event"
	"github.com/seniorplus/agenda/internal/importer"
	"github.com/seniorplus/agenda/internal/persist"
)

// EventStore owns the in-memory collection. Operations within one context
// are serialized by the mutex: the sync watcher replaces state from a
// goroutine concurrent with local mutations.
type EventStore struct {
	mu     sync.Mutex
	events []event.Event
	user   string

	persist   *persist.Layer
	importer  *importer.Validator
	norm      *event.Normalizer
	clock     event.Clock
	notify    Notifier
	onPersist func(stamp string)
}

// New creates an empty store. No user is set yet, so nothing is loaded and
// mutations stay memory-only until SetUser establishes a session.
func New(p *persist.Layer, imp *importer.Validator, clock event.Clock, notify Notifier) *EventStore {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &EventStore{
		events:   []event.Event{},
		persist:  p,
		importer: imp,
		norm:     p.Normalizer(),
		clock:    clock,
		notify:   notify,
	}
}

// OnPersist registers a hook that receives the envelope stamp of every
// completed save. The sync watcher uses it to recognize this context's own
// writes when they echo back through the shared key.
func (s *EventStore) OnPersist(fn func(stamp string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPersist = fn
}

// SetUser tracks the session's current user. A transition to absent clears
// the in-memory collection (logout reset); a transition from absent to
// present reloads it from persistence.
func (s *EventStore) SetUser(ctx context.Context, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.user
	s.user = user

	switch {
	case user == "":
		s.events = []event.Event{}
	case prev == "":
		s.events = s.persist.Load(ctx)
	}
}

// Events returns a copy of the collection in insertion order.
func (s *EventStore) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Add constructs a new canonical event with a fresh identifier and Pendente
// status, appends it and persists. ok is false only when the supplied date
// is malformed; callers are expected to validate input before reaching the
// store.
func (s *EventStore) Add(ctx context.Context, title, date, startTime, endTime, location, description, category string) (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.norm.Normalize(map[string]any{
		"title":       title,
		"date":        date,
		"startTime":   startTime,
		"endTime":     endTime,
		"location":    location,
		"description": description,
		"category":    category,
		"status":      event.StatusPending,
	})
	if !ok {
		return event.Event{}, false
	}

	s.events = append(s.events, e)
	s.persistLocked(ctx)
	s.notify.ShowSuccess(fmt.Sprintf(msgAdded, e.Title))
	return e, true
}

// Update merges partial onto the record with the given id (existing fields
// preserved unless overridden), re-normalizes, refreshes updatedAt and
// persists. An unknown id is a silent miss: found is false, nothing is
// notified, and the caller decides whether that is an error.
func (s *EventStore) Update(ctx context.Context, id string, partial map[string]any) (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return event.Event{}, false
	}

	merged := s.events[idx].Fields()
	for k, v := range partial {
		merged[k] = v
	}
	merged["updatedAt"] = s.now()

	e, ok := s.norm.Normalize(merged)
	if !ok {
		// The partial broke the date invariant; the record stays as it was.
		return event.Event{}, false
	}

	s.events[idx] = e
	s.persistLocked(ctx)
	s.notify.ShowSuccess(msgUpdated)
	return e, true
}

// Delete removes the matching record and persists. Success is signaled only
// when a record was actually found and removed.
func (s *EventStore) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	removed := s.events[idx]
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	s.persistLocked(ctx)
	s.notify.ShowSuccess(fmt.Sprintf(msgRemoved, removed.Title))
	return true
}

// ToggleStatus flips the status between Pendente and Concluído, refreshes
// updatedAt and persists.
func (s *EventStore) ToggleStatus(ctx context.Context, id string) (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return event.Event{}, false
	}

	e := s.events[idx]
	if e.Status == event.StatusDone {
		e.Status = event.StatusPending
	} else {
		e.Status = event.StatusDone
	}
	e.UpdatedAt = s.now()

	s.events[idx] = e
	s.persistLocked(ctx)
	s.notify.ShowInfo(fmt.Sprintf(msgToggled, e.Title, strings.ToLower(e.Status)))
	return e, true
}

// ImportBatch admits a batch of externally supplied records, appends the
// valid subset and persists once for the whole batch. Returns the admitted
// events; empty when no record survived admission, in which case the error
// channel carries a count-aware message and the store is untouched.
func (s *EventStore) ImportBatch(ctx context.Context, records []map[string]any) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(records) == 0 {
		s.notify.ShowError(msgImportEmpty)
		return []event.Event{}
	}

	admitted, rejected := s.importer.Admit(records)
	if len(admitted) == 0 {
		s.notify.ShowError(fmt.Sprintf(msgImportNone, rejected))
		return []event.Event{}
	}

	s.events = append(s.events, admitted...)
	s.persistLocked(ctx)
	s.notify.ShowSuccess(fmt.Sprintf(msgImported, len(admitted)))
	return admitted
}

// ReplaceAll swaps in a collection replayed from another context's write.
// This is the only path that changes state without a local mutation: it
// never persists (loop guard) and never notifies.
func (s *EventStore) ReplaceAll(events []event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]event.Event, len(events))
	copy(s.events, events)
}

// persistLocked writes both storage keys and fires the OnPersist hook.
// Saves are skipped while no user session is established; the in-memory
// collection remains the session's source of truth either way.
func (s *EventStore) persistLocked(ctx context.Context) {
	if s.user == "" {
		return
	}
	stamp := s.persist.Save(ctx, s.events)
	if s.onPersist != nil {
		s.onPersist(stamp)
	}
}

func (s *EventStore) indexOf(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *EventStore) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}
