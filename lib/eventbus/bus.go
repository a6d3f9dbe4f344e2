// Package eventbus is a small synchronous publish/subscribe registry used by
// islands rendered on the same page to notify each other of state changes.
//
// A Bus is owned by the page composition that created it and is discarded
// with Close when the page (or island request) is done. Delivery is
// synchronous, in subscription order, with no buffering or replay.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Well-known event names.
const (
	RatingUpdated = "rating:updated"
	CommentAdded  = "comment:added"

	// All subscribes to every event, after the subscribers of its name.
	All = "*"
)

// PostEvent is the payload of RatingUpdated and CommentAdded.
type PostEvent struct {
	PostID string `json:"postId"`
}

// Event is a single published event.
type Event struct {
	Name    string
	Payload any
}

// Handler receives events. A returned error is logged; it never reaches the
// publisher and does not stop delivery to later subscribers.
type Handler func(Event) error

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a page-scoped event bus. The zero value is not usable; call New.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]subscription
	nextID uint64
	closed bool
	log    *slog.Logger
}

// New creates an empty bus. A nil logger falls back to slog.Default().
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		subs: make(map[string][]subscription),
		log:  log,
	}
}

// Subscribe registers h for events named name and returns a function that
// removes exactly this subscription. Calling it more than once is a no-op.
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		next := make([]subscription, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, name)
		} else {
			b.subs[name] = next
		}
		return
	}
}

// Publish delivers payload to the current subscribers of name.
// Subscribers added while the event is being dispatched are not invoked for
// it. Publishing with no subscribers, or on a closed bus, drops the event.
func (b *Bus) Publish(name string, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	snapshot := append([]subscription(nil), b.subs[name]...)
	if name != All {
		snapshot = append(snapshot, b.subs[All]...)
	}
	b.mu.Unlock()

	evt := Event{Name: name, Payload: payload}
	for _, s := range snapshot {
		b.dispatch(s, evt)
	}
}

func (b *Bus) dispatch(s subscription, evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error("event handler panicked",
				slog.String("event", evt.Name),
				slog.String("panic", fmt.Sprint(rec)),
			)
		}
	}()

	if err := s.handler(evt); err != nil {
		b.log.Error("event handler failed",
			slog.String("event", evt.Name),
			slog.String("error", err.Error()),
		)
	}
}

// Clear removes every subscriber of name.
func (b *Bus) Clear(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, name)
}

// Len returns the number of subscribers for name.
func (b *Bus) Len(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}

// Close discards all subscriptions. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string][]subscription)
}

// ForPost wraps h so it only sees PostEvent payloads for postID.
func ForPost(postID string, h Handler) Handler {
	return func(evt Event) error {
		switch p := evt.Payload.(type) {
		case PostEvent:
			if p.PostID != postID {
				return nil
			}
		case *PostEvent:
			if p == nil || p.PostID != postID {
				return nil
			}
		default:
			return nil
		}
		return h(evt)
	}
}
