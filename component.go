package hxblog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog/lib/eventbus"
)

// PropsParam is the request parameter carrying encoded props.
const PropsParam = "p"

// HandlerFunc handles a named island action.
type HandlerFunc[P any] func(ctx context.Context, props P, r *http.Request) Result[P]

type actionDef[P any] struct {
	name    string
	method  string
	handler HandlerFunc[P]
}

// Component is embedded by islands. P is the props type, which is encoded
// into every URL the island emits and decoded on every request.
//
//	type Rating struct {
//	    *hxblog.Component[RatingProps]
//	    svc *blog.Service
//	}
//
//	func NewRating(svc *blog.Service) *Rating {
//	    c := &Rating{svc: svc}
//	    c.Component = hxblog.New[RatingProps]("rating", c)
//	    c.Action("rate", c.handleRate)
//	    return c
//	}
//
// The URL prefix is derived from the name and the call site of New.
type Component[P any] struct {
	name      string
	prefix    string
	sensitive bool
	actions   map[string]*actionDef[P]
	island    Island[P]
	reg       *Registry
}

// New creates a component for island. Props are signed by default.
func New[P any](name string, island Island[P]) *Component[P] {
	return &Component[P]{
		name:    name,
		prefix:  "/_c/" + name + "-" + componentHash(name, 1),
		actions: make(map[string]*actionDef[P]),
		island:  island,
	}
}

// Sensitive encrypts props instead of only signing them. Use it for props
// carrying secrets such as the CSRF token.
func (c *Component[P]) Sensitive() *Component[P] {
	c.sensitive = true
	return c
}

func (c *Component[P]) Name() string      { return c.name }
func (c *Component[P]) Prefix() string    { return c.prefix }
func (c *Component[P]) HXPrefix() string  { return c.prefix }
func (c *Component[P]) IsSensitive() bool { return c.sensitive }

// Action registers a POST action.
func (c *Component[P]) Action(name string, handler HandlerFunc[P]) {
	c.action(name, http.MethodPost, handler)
}

func (c *Component[P]) action(name, method string, handler HandlerFunc[P]) {
	c.actions[name] = &actionDef[P]{name: name, method: method, handler: handler}
}

func (c *Component[P]) attach(reg *Registry) {
	c.reg = reg
}

func (c *Component[P]) logger() *slog.Logger {
	if c.reg != nil && c.reg.log != nil {
		return c.reg.log
	}
	return slog.Default()
}

// Refresh returns an action that re-renders the island with props.
func (c *Component[P]) Refresh(props P) *Action {
	return NewAction(c.buildURL("", props), http.MethodGet)
}

// Act returns an action invoking the registered action name with props.
// GET actions carry props in the URL; other methods send them in hx-vals.
func (c *Component[P]) Act(name string, props P) *Action {
	method := http.MethodPost
	if def, ok := c.actions[name]; ok {
		method = def.method
	}
	path := c.prefix + "/" + name
	if method == http.MethodGet {
		return NewAction(c.buildURL(name, props), method)
	}
	a := NewAction(path, method)
	if encoded, ok := c.encode(props); ok {
		a.Vals(map[string]any{PropsParam: encoded})
	}
	return a
}

// Defer renders placeholder and loads the island once the page has loaded.
func (c *Component[P]) Defer(props P, placeholder templ.Component) templ.Component {
	return mountComponent(c.Refresh(props).OnLoad(), placeholder)
}

// Lazy renders placeholder and loads the island when it scrolls into view.
func (c *Component[P]) Lazy(props P, placeholder templ.Component) templ.Component {
	return mountComponent(c.Refresh(props).OnIntersect(), placeholder)
}

func (c *Component[P]) encode(props P) (string, bool) {
	if c.reg == nil || c.reg.encoder == nil {
		c.logger().Error("component not registered", slog.String("component", c.name))
		return "", false
	}
	encoded, err := c.reg.encoder.Encode(props, c.sensitive)
	if err != nil {
		c.logger().Error("encode props failed",
			slog.String("component", c.name),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	return encoded, true
}

func (c *Component[P]) buildURL(action string, props P) string {
	path := c.prefix + "/" + action
	encoded, ok := c.encode(props)
	if !ok {
		return path
	}
	return path + "?" + PropsParam + "=" + encoded
}

// HXServeHTTP decodes props, hydrates them, dispatches to the render or the
// named action and writes the result.
func (c *Component[P]) HXServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, c.prefix)
	if !ok {
		c.fail(w, r, ErrNotFound)
		return
	}
	name := strings.TrimPrefix(rest, "/")

	var handler HandlerFunc[P]
	if name == "" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			c.fail(w, r, ErrMethodNotAllowed)
			return
		}
	} else {
		def, ok := c.actions[name]
		if !ok {
			c.fail(w, r, fmt.Errorf("%w: action %q", ErrNotFound, name))
			return
		}
		if def.method != r.Method {
			c.fail(w, r, ErrMethodNotAllowed)
			return
		}
		handler = def.handler
	}

	props, err := c.decode(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	log := c.logger().With(slog.String("component", c.name), slog.String("action", name))
	bus := eventbus.New(log)
	defer bus.Close()
	recorder := &triggerRecorder{}
	bus.Subscribe(eventbus.All, recorder.record)

	ctx := withAction(withRequest(WithBus(r.Context(), bus), r), name)
	r = r.WithContext(ctx)

	if err := c.island.Hydrate(ctx, &props); err != nil {
		c.fail(w, r, fmt.Errorf("%w: %w", ErrHydrationFailed, err))
		return
	}

	res := OK(props)
	if handler != nil {
		res = handler(ctx, props, r)
	}
	c.write(w, r, bus, recorder, res)
}

func (c *Component[P]) decode(r *http.Request) (P, error) {
	var props P
	encoded := r.URL.Query().Get(PropsParam)
	if encoded == "" && r.Method != http.MethodGet {
		encoded = r.FormValue(PropsParam)
	}
	if encoded == "" {
		return props, ErrInvalidFormat
	}
	if c.reg == nil || c.reg.encoder == nil {
		return props, fmt.Errorf("hxblog: component %q is not registered", c.name)
	}
	if err := c.reg.encoder.Decode(encoded, c.sensitive, &props); err != nil {
		return props, wrapEncodingError(err)
	}
	return props, nil
}

func (c *Component[P]) write(w http.ResponseWriter, r *http.Request, bus *eventbus.Bus, recorder *triggerRecorder, res Result[P]) {
	if res.skip {
		return
	}
	// A failed action announces nothing, including events its handler
	// already published.
	if res.err != nil {
		bus.Clear(eventbus.All)
	}

	for _, t := range res.triggers {
		bus.Publish(t.Name, t.Detail)
	}

	// The browser gave up on this request; writing would update a view
	// that no longer exists.
	if err := r.Context().Err(); err != nil {
		c.logger().Debug("dropping stale island response",
			slog.String("component", c.name),
			slog.String("error", err.Error()),
		)
		return
	}

	h := w.Header()
	for k, v := range res.headers {
		h.Set(k, v)
	}
	if trigger := BuildTriggerHeader(recorder.list()); trigger != "" {
		h.Set("HX-Trigger", trigger)
	}

	if res.redirect != "" {
		h.Set("HX-Redirect", res.redirect)
		w.WriteHeader(statusOr(res.status, http.StatusOK))
		return
	}

	if res.err != nil {
		c.fail(w, r, res.err)
		return
	}

	var buf bytes.Buffer
	if err := c.island.Render(r.Context(), res.props).Render(r.Context(), &buf); err != nil {
		c.fail(w, r, fmt.Errorf("render %s: %w", c.name, err))
		return
	}
	buf.WriteString(renderToasts(res.toasts))

	h.Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusOr(res.status, http.StatusOK))
	if _, err := buf.WriteTo(w); err != nil {
		c.logger().Debug("write island response", slog.String("error", err.Error()))
	}
}

func (c *Component[P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.reg != nil && c.reg.OnError != nil {
		c.reg.OnError(w, r, err)
		return
	}
	defaultOnError(c.logger())(w, r, err)
}

func statusOr(code, def int) int {
	if code == 0 {
		return def
	}
	return code
}

// componentHash derives a short stable id from name and the caller's
// source position.
func componentHash(name string, skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	input := name
	if ok {
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}

func mountComponent(a *Action, placeholder templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<div"); err != nil {
			return err
		}
		if err := templ.RenderAttributes(ctx, w, a.Attrs()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}
