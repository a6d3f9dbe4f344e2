package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// markup writes HTML and keeps the first write error, so view code can be
// written as a sequence of calls and checked once.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

// view adapts fn to a templ component.
func view(fn func(m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{ctx: ctx, w: w}
		fn(m)
		return m.err
	})
}

// raw writes trusted markup.
func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// text writes escaped text.
func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

func (m *markup) textf(format string, args ...any) {
	m.text(fmt.Sprintf(format, args...))
}

// open writes a start tag. Attribute values are escaped.
func (m *markup) open(tag string, attrs templ.Attributes) {
	m.raw("<" + tag)
	if m.err == nil && len(attrs) > 0 {
		m.err = templ.RenderAttributes(m.ctx, m.w, attrs)
	}
	m.raw(">")
}

func (m *markup) close(tag string) {
	m.raw("</" + tag + ">")
}

// elem writes a whole element with escaped text content.
func (m *markup) elem(tag string, attrs templ.Attributes, content string) {
	m.open(tag, attrs)
	m.text(content)
	m.close(tag)
}

// html writes sanitized user or editor supplied markup.
func (m *markup) html(s string) {
	m.raw(sanitize(s))
}

func (m *markup) component(c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(m.ctx, m.w)
}

// merge combines attribute sets, later sets winning.
func merge(sets ...templ.Attributes) templ.Attributes {
	out := templ.Attributes{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

var policy = bluemonday.UGCPolicy()

// sanitize strips scripts, event handlers and unsafe URLs from rich text
// stored in content properties or submitted with comments.
func sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// elementID returns a fresh DOM id with the given prefix.
func elementID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// safeURL neutralises javascript: and other unsafe URL schemes.
func safeURL(u string) string {
	return string(templ.URL(u))
}
