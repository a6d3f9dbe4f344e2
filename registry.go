package hxblog

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Registry routes island requests to registered components.
type Registry struct {
	mu         sync.RWMutex
	encoder    *Encoder
	components map[string]HXComponent
	log        *slog.Logger

	// OnError writes the response for a failed island request. The default
	// maps errors with StatusCode and logs server errors.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(reg *Registry) { reg.log = l }
}

// NewRegistry creates a registry whose props are protected with key.
func NewRegistry(key []byte, opts ...RegistryOption) (*Registry, error) {
	enc, err := NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("hxblog: create encoder: %w", err)
	}
	reg := &Registry{
		encoder:    enc,
		components: make(map[string]HXComponent),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	reg.OnError = defaultOnError(reg.log)
	return reg, nil
}

func defaultOnError(log *slog.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status := StatusCode(err)
		if status >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "island request failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		} else {
			log.DebugContext(r.Context(), "island request rejected",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		http.Error(w, http.StatusText(status), status)
	}
}

// Encoder returns the props encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add registers components. Each must embed *Component[P]. Add panics on a
// prefix collision.
func (reg *Registry) Add(components ...HXComponent) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, comp := range components {
		a, ok := comp.(attachable)
		if !ok {
			panic(fmt.Sprintf("hxblog: %T does not embed *hxblog.Component[P]", comp))
		}
		prefix := comp.HXPrefix()
		if _, exists := reg.components[prefix]; exists {
			panic(fmt.Sprintf("hxblog: prefix collision for %q", prefix))
		}
		a.attach(reg)
		reg.components[prefix] = comp
	}
}

// Prefixes returns the registered prefixes in sorted order.
func (reg *Registry) Prefixes() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.components))
	for p := range reg.components {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (reg *Registry) lookup(path string) (HXComponent, bool) {
	rest, ok := strings.CutPrefix(path, "/_c/")
	if !ok {
		return nil, false
	}
	seg, _, _ := strings.Cut(rest, "/")
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	comp, ok := reg.components["/_c/"+seg]
	return comp, ok
}

// Handler serves every registered island under /_c/. Mutating requests
// must carry HX-Request: true, which cross-origin forms cannot set.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		comp, ok := reg.lookup(r.URL.Path)
		if !ok {
			reg.OnError(w, r, ErrNotFound)
			return
		}
		comp.HXServeHTTP(w, r)
	})
}
