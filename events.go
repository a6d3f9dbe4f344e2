package hxblog

import (
	"context"
	"net/http"
	"sync"

	"github.com/pthm/hxblog/lib/eventbus"
)

type (
	busKey     struct{}
	requestKey struct{}
	actionKey  struct{}
)

// WithBus returns a context carrying bus.
func WithBus(ctx context.Context, bus *eventbus.Bus) context.Context {
	return context.WithValue(ctx, busKey{}, bus)
}

// BusFrom returns the event bus of the current island request, or nil.
func BusFrom(ctx context.Context) *eventbus.Bus {
	bus, _ := ctx.Value(busKey{}).(*eventbus.Bus)
	return bus
}

func withRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom returns the island request being served, or nil. Hydrate uses
// it to reach request headers.
func RequestFrom(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey{}).(*http.Request)
	return r
}

func withAction(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actionKey{}, name)
}

// ActionFrom returns the name of the action being served. It is empty for
// render requests and outside an island request.
func ActionFrom(ctx context.Context) string {
	name, _ := ctx.Value(actionKey{}).(string)
	return name
}

// Publish publishes on the request's event bus. It is a no-op outside an
// island request.
func Publish(ctx context.Context, name string, payload any) {
	if bus := BusFrom(ctx); bus != nil {
		bus.Publish(name, payload)
	}
}

// triggerRecorder collects every event published on a request bus so they
// can be forwarded in HX-Trigger.
type triggerRecorder struct {
	mu     sync.Mutex
	events []TriggerEvent
}

func (t *triggerRecorder) record(evt eventbus.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, TriggerEvent{Name: evt.Name, Detail: evt.Payload})
	return nil
}

func (t *triggerRecorder) list() []TriggerEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TriggerEvent(nil), t.events...)
}
