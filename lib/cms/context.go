package cms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog/lib/csrf"
	"github.com/pthm/hxblog/lib/i18n"
)

// ErrNoSession is returned by SessionAttributes when the request carries no
// session.
var ErrNoSession = errors.New("cms: no session")

// Attributes is a request or session attribute store.
type Attributes map[string]any

// Attribute implements csrf.Attributes.
func (a Attributes) Attribute(name string) (any, error) {
	return a[name], nil
}

type attrsKey struct{}

type attrs struct {
	request Attributes
	session Attributes
}

// WithAttributes stores request and session attributes on ctx. A nil
// session means the request has none.
func WithAttributes(ctx context.Context, request, session Attributes) context.Context {
	return context.WithValue(ctx, attrsKey{}, &attrs{request: request, session: session})
}

// RenderContext carries the per-request state views need. It implements
// csrf.Context.
type RenderContext struct {
	Request *http.Request
	Locale  string

	// CSRFToken is resolved once per page render by the caller, empty when
	// no token was found.
	CSRFToken string

	views *Views
	log   *slog.Logger
}

// NewRenderContext builds a render context for r. The locale comes from the
// lang query parameter, then Accept-Language, then defaultLocale.
func NewRenderContext(r *http.Request, views *Views, log *slog.Logger, defaultLocale string) *RenderContext {
	if log == nil {
		log = slog.Default()
	}
	locale := defaultLocale
	if r != nil {
		if q := r.URL.Query().Get("lang"); q != "" {
			locale = q
		} else if al := r.Header.Get("Accept-Language"); al != "" {
			locale = firstLanguage(al)
		}
	}
	return &RenderContext{
		Request: r,
		Locale:  i18n.Locale(locale),
		views:   views,
		log:     log,
	}
}

func firstLanguage(header string) string {
	for i, c := range header {
		if c == ',' || c == ';' {
			return header[:i]
		}
	}
	return header
}

// Logger returns the context logger. Safe on a nil receiver.
func (rc *RenderContext) Logger() *slog.Logger {
	if rc == nil || rc.log == nil {
		return slog.Default()
	}
	return rc.log
}

// T translates key for the context locale.
func (rc *RenderContext) T(key string, def ...string) string {
	locale := i18n.DefaultLocale
	if rc != nil {
		locale = rc.Locale
	}
	return i18n.Translator{Locale: locale}.T(key, def...)
}

// Param returns a query parameter of the current request.
func (rc *RenderContext) Param(name string) string {
	if rc == nil || rc.Request == nil {
		return ""
	}
	return rc.Request.URL.Query().Get(name)
}

// Path returns the path of the current request.
func (rc *RenderContext) Path() string {
	if rc == nil || rc.Request == nil {
		return ""
	}
	return rc.Request.URL.Path
}

// Context returns the request context.
func (rc *RenderContext) Context() context.Context {
	if rc == nil || rc.Request == nil {
		return context.Background()
	}
	return rc.Request.Context()
}

// Render renders node through the registered view name.
func (rc *RenderContext) Render(node *Node, view string) templ.Component {
	if rc == nil || rc.views == nil {
		return templ.NopComponent
	}
	return rc.views.Render(node, view, rc)
}

func (rc *RenderContext) stored() *attrs {
	if rc == nil || rc.Request == nil {
		return nil
	}
	a, _ := rc.Request.Context().Value(attrsKey{}).(*attrs)
	return a
}

// RequestAttributes implements csrf.Context.
func (rc *RenderContext) RequestAttributes() (csrf.Attributes, error) {
	a := rc.stored()
	if a == nil || a.request == nil {
		return Attributes{}, nil
	}
	return a.request, nil
}

// SessionAttributes implements csrf.Context.
func (rc *RenderContext) SessionAttributes() (csrf.Attributes, error) {
	a := rc.stored()
	if a == nil || a.session == nil {
		return nil, ErrNoSession
	}
	return a.session, nil
}
