package form

import (
	"context"
	"errors"
	"sync"

	"github.com/glotvold/go-site/pkg/model"
)

// EventKind names a user interaction.
type EventKind string

const (
	EventBlur   EventKind = "blur"
	EventInput  EventKind = "input"
	EventSubmit EventKind = "submit"
)

// Event is one interaction. Field is empty for form-level events.
type Event struct {
	Kind  EventKind
	Field model.Field
}

// Handler reacts to an event.
type Handler func(ctx context.Context, ev Event) error

// Subscription removes a handler when cancelled. Unsubscribe is idempotent.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe detaches the handler.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

// UnsubscribeAll cancels every subscription.
func UnsubscribeAll(subs []*Subscription) {
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

type handlerKey struct {
	kind  EventKind
	field model.Field
}

type handlerEntry struct {
	id      uint64
	handler Handler
}

// Dispatcher routes events to handlers registered for the event kind and
// field. Handlers registered with an empty field receive every event of
// their kind.
type Dispatcher struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[handlerKey][]handlerEntry
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[handlerKey][]handlerEntry)}
}

// On registers handler for kind on field.
func (d *Dispatcher) On(kind EventKind, field model.Field, handler Handler) *Subscription {
	if d == nil || handler == nil {
		return &Subscription{}
	}
	key := handlerKey{kind: kind, field: field}

	d.mu.Lock()
	if d.handlers == nil {
		d.handlers = make(map[handlerKey][]handlerEntry)
	}
	d.next++
	id := d.next
	d.handlers[key] = append(d.handlers[key], handlerEntry{id: id, handler: handler})
	d.mu.Unlock()

	return &Subscription{cancel: func() { d.remove(key, id) }}
}

func (d *Dispatcher) remove(key handlerKey, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.handlers[key]
	for i, entry := range entries {
		if entry.id == id {
			d.handlers[key] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(d.handlers[key]) == 0 {
		delete(d.handlers, key)
	}
}

// Count reports the number of live handlers.
func (d *Dispatcher) Count() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, entries := range d.handlers {
		total += len(entries)
	}
	return total
}

// Dispatch runs the matching handlers in registration order and joins their
// errors. Handlers run outside the dispatcher lock.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	var matched []handlerEntry
	matched = append(matched, d.handlers[handlerKey{kind: ev.Kind, field: ev.Field}]...)
	if ev.Field != "" {
		matched = append(matched, d.handlers[handlerKey{kind: ev.Kind}]...)
	}
	d.mu.RUnlock()

	var errs []error
	for _, entry := range matched {
		if err := entry.handler(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Blur dispatches a blur event for field.
func (d *Dispatcher) Blur(ctx context.Context, field model.Field) error {
	return d.Dispatch(ctx, Event{Kind: EventBlur, Field: field})
}

// Input dispatches an input event for field.
func (d *Dispatcher) Input(ctx context.Context, field model.Field) error {
	return d.Dispatch(ctx, Event{Kind: EventInput, Field: field})
}

// Submit dispatches a submit event.
func (d *Dispatcher) Submit(ctx context.Context) error {
	return d.Dispatch(ctx, Event{Kind: EventSubmit})
}
