package csrf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attrMap map[string]any

func (m attrMap) Attribute(name string) (any, error) {
	v := m[name]
	if err, ok := v.(error); ok {
		return nil, err
	}
	if fn, ok := v.(func()); ok {
		fn()
	}
	return v, nil
}

type fakeContext struct {
	request    Attributes
	session    Attributes
	requestErr error
	sessionErr error
}

func (c fakeContext) RequestAttributes() (Attributes, error) { return c.request, c.requestErr }
func (c fakeContext) SessionAttributes() (Attributes, error) { return c.session, c.sessionErr }

type tokenObject struct {
	tok string
	err error
}

func (o tokenObject) GetToken() (string, error) { return o.tok, o.err }

type valueObject struct{ v any }

func (o valueObject) GetValue() (any, error) { return o.v, nil }

type panickingGetter struct{}

func (panickingGetter) GetToken() (string, error) { panic("broken token object") }

func TestResolve(t *testing.T) {
	const springName = "org.springframework.security.web.csrf.CsrfToken"

	tests := []struct {
		name  string
		ctx   Context
		want  string
		found bool
	}{
		{
			name:  "nil context",
			ctx:   nil,
			found: false,
		},
		{
			name:  "request string attribute",
			ctx:   fakeContext{request: attrMap{"_csrf": "  req-token  "}},
			want:  "req-token",
			found: true,
		},
		{
			name: "request priority order",
			ctx: fakeContext{request: attrMap{
				springName:  tokenObject{tok: "spring"},
				"_csrf":     "underscore",
				"csrfToken": "plain",
			}},
			want:  "spring",
			found: true,
		},
		{
			name: "request wins over session",
			ctx: fakeContext{
				request: attrMap{"csrfToken": "from-request"},
				session: attrMap{springName: "from-session"},
			},
			want:  "from-request",
			found: true,
		},
		{
			name: "blank request falls through to session",
			ctx: fakeContext{
				request: attrMap{springName: "   ", "_csrf": ""},
				session: attrMap{"_csrf": "session-token"},
			},
			want:  "session-token",
			found: true,
		},
		{
			name:  "property bearing map",
			ctx:   fakeContext{session: attrMap{"_csrf": map[string]any{"headerName": "X-CSRF-Token", "token": "prop-token"}}},
			want:  "prop-token",
			found: true,
		},
		{
			name:  "property bearing value field",
			ctx:   fakeContext{session: attrMap{"_csrf": map[string]string{"value": " v-token "}}},
			want:  "v-token",
			found: true,
		},
		{
			name:  "value getter",
			ctx:   fakeContext{request: attrMap{"csrfToken": valueObject{v: "getter-value"}}},
			want:  "getter-value",
			found: true,
		},
		{
			name: "getter error is skipped",
			ctx: fakeContext{request: attrMap{
				springName: tokenObject{err: errors.New("no token")},
				"_csrf":    "fallback",
			}},
			want:  "fallback",
			found: true,
		},
		{
			name: "panicking getter is skipped",
			ctx: fakeContext{request: attrMap{
				springName: panickingGetter{},
				"_csrf":    "after-panic",
			}},
			want:  "after-panic",
			found: true,
		},
		{
			name: "panicking attribute store is skipped",
			ctx: fakeContext{
				request: attrMap{springName: func() { panic("store exploded") }},
				session: attrMap{"csrfToken": "session"},
			},
			want:  "session",
			found: true,
		},
		{
			name: "request store error falls through",
			ctx: fakeContext{
				requestErr: errors.New("no request"),
				session:    attrMap{"csrfToken": "session"},
			},
			want:  "session",
			found: true,
		},
		{
			name: "unsupported shapes are ignored",
			ctx: fakeContext{
				request: attrMap{springName: 42, "_csrf": []string{"x"}},
				session: attrMap{"csrfToken": valueObject{v: 7}},
			},
			found: false,
		},
		{
			name: "all empty",
			ctx: fakeContext{
				request: attrMap{"_csrf": " "},
				session: attrMap{"csrfToken": tokenObject{tok: "\t"}},
			},
			found: false,
		},
		{
			name: "attribute errors everywhere",
			ctx: fakeContext{
				request: attrMap{"_csrf": errors.New("boom")},
				session: attrMap{"_csrf": errors.New("boom")},
			},
			found: false,
		},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.ctx)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_CustomNames(t *testing.T) {
	r := NewResolver(WithAttributeNames("X-CSRF-TOKEN"))

	got, ok := r.Resolve(fakeContext{
		request: attrMap{"_csrf": "ignored"},
		session: attrMap{"X-CSRF-TOKEN": "custom"},
	})
	require.True(t, ok)
	assert.Equal(t, "custom", got)
}

func TestClassify(t *testing.T) {
	s := "ptr"
	tests := []struct {
		name string
		in   any
		want Source
		ok   bool
	}{
		{"nil", nil, nil, false},
		{"string", "abc", Literal("abc"), true},
		{"string pointer", &s, Literal("ptr"), true},
		{"nil string pointer", (*string)(nil), nil, false},
		{"getter", tokenObject{tok: "t"}, Getter{tokenObject{tok: "t"}}, true},
		{"number", 12, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScriptHTML(t *testing.T) {
	t.Run("with token", func(t *testing.T) {
		html := ScriptHTML(" abc123 ")
		assert.True(t, strings.HasPrefix(html, "<script>"))
		assert.Contains(t, html, `window.contextJsParameters.csrfToken = "abc123";`)
		assert.Contains(t, html, `htmx:configRequest`)
		assert.Contains(t, html, `e.detail.headers["X-CSRF-Token"]`)
	})

	t.Run("escapes closing tags", func(t *testing.T) {
		html := ScriptHTML(`</script><script>alert(1)`)
		assert.Equal(t, 1, strings.Count(html, "</script>"))
	})

	t.Run("without token", func(t *testing.T) {
		assert.Equal(t, "<!-- No CSRF token available -->", ScriptHTML("  "))
	})
}
