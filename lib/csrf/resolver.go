// Package csrf discovers the anti-forgery token for a server-rendered page
// and produces the inline bootstrap script that hands it to the browser.
package csrf

import (
	"fmt"
	"log/slog"
)

// DefaultAttributeNames are the request and session attribute names probed
// for a token, in priority order.
var DefaultAttributeNames = []string{
	"org.springframework.security.web.csrf.CsrfToken",
	"_csrf",
	"csrfToken",
}

// Attributes is a read-only attribute store such as a request or session.
type Attributes interface {
	Attribute(name string) (any, error)
}

// Context yields the attribute stores of the current render. Either store
// may be unavailable; implementations return an error or a nil store.
type Context interface {
	RequestAttributes() (Attributes, error)
	SessionAttributes() (Attributes, error)
}

// Resolver finds the first usable token across request then session
// attributes.
type Resolver struct {
	names []string
	log   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAttributeNames overrides DefaultAttributeNames.
func WithAttributeNames(names ...string) Option {
	return func(r *Resolver) { r.names = names }
}

// WithLogger sets the logger used for swallowed probe failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{names: DefaultAttributeNames, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first candidate that normalizes to a non-empty token.
// A nil ctx resolves to no token.
func (r *Resolver) Resolve(ctx Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	stores := []struct {
		kind string
		get  func() (Attributes, error)
	}{
		{"request", ctx.RequestAttributes},
		{"session", ctx.SessionAttributes},
	}

	for _, store := range stores {
		attrs, err := safeStore(store.get)
		if err != nil {
			r.log.Debug("csrf attribute store unavailable",
				slog.String("store", store.kind),
				slog.String("error", err.Error()),
			)
			continue
		}
		if attrs == nil {
			continue
		}
		for _, name := range r.names {
			tok, err := r.probe(attrs, name)
			if err != nil {
				r.log.Debug("csrf candidate failed",
					slog.String("store", store.kind),
					slog.String("attribute", name),
					slog.String("error", err.Error()),
				)
				continue
			}
			if tok != "" {
				return tok, true
			}
		}
	}
	return "", false
}

// probe reads and normalizes a single attribute. Panics raised by attribute
// stores or token objects are converted into errors.
func (r *Resolver) probe(attrs Attributes, name string) (tok string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			tok, err = "", fmt.Errorf("panic: %v", rec)
		}
	}()

	v, err := attrs.Attribute(name)
	if err != nil {
		return "", err
	}
	src, ok := Classify(v)
	if !ok {
		return "", nil
	}
	raw, err := src.token()
	if err != nil {
		return "", err
	}
	tok, _ = Normalize(raw)
	return tok, nil
}

func safeStore(get func() (Attributes, error)) (attrs Attributes, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			attrs, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	return get()
}
