package hxblog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// TestResult captures an island response for assertions.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Toasts          []Toast
	RedirectURL     string

	details map[string]json.RawMessage
}

// TestRender hydrates and renders an island without HTTP.
func TestRender[P any](ctx context.Context, island Island[P], props P) (*TestResult, error) {
	if err := island.Hydrate(ctx, &props); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := island.Render(ctx, props).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestRequestBuilder builds an HTMX request against a component.
type TestRequestBuilder struct {
	method   string
	url      string
	formData url.Values
	headers  map[string]string
	ctx      context.Context
}

// NewTestRequest starts a request for method and url.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:   method,
		url:      url,
		formData: make(map[string][]string),
		headers:  make(map[string]string),
		ctx:      context.Background(),
	}
}

// NewTestRequestFor starts a request that replays what HTMX would send for a.
func NewTestRequestFor(a *Action) *TestRequestBuilder {
	b := NewTestRequest(a.method, a.url)
	for k, v := range a.vals {
		b.formData.Set(k, fmt.Sprint(v))
	}
	return b
}

func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.formData.Set(key, value)
	return b
}

func (b *TestRequestBuilder) WithFormValues(data map[string]string) *TestRequestBuilder {
	for k, v := range data {
		b.formData.Set(k, v)
	}
	return b
}

func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Request returns the built *http.Request.
func (b *TestRequestBuilder) Request() *http.Request {
	body := strings.NewReader(b.formData.Encode())
	req := httptest.NewRequest(b.method, b.url, body).WithContext(b.ctx)
	req.Header.Set("HX-Request", "true")
	if len(b.formData) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	return req
}

// Execute serves the request with h, which may be a component or any
// handler such as Registry.Handler().
func (b *TestRequestBuilder) Execute(h http.Handler) *TestResult {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, b.Request())
	return newTestResult(rec)
}

// ExecuteComponent serves the request with comp directly.
func (b *TestRequestBuilder) ExecuteComponent(comp HXComponent) *TestResult {
	return b.Execute(http.HandlerFunc(comp.HXServeHTTP))
}

func newTestResult(rec *httptest.ResponseRecorder) *TestResult {
	result := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		result.TriggeredEvents, result.details = parseTriggerHeader(trigger)
	}
	result.Toasts = parseToasts(result.HTML)
	return result
}

func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent reports whether event was forwarded in HX-Trigger.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// EventDetail decodes the detail of a forwarded event into v.
func (r *TestResult) EventDetail(event string, v any) error {
	raw, ok := r.details[event]
	if !ok {
		return fmt.Errorf("event %q has no detail", event)
	}
	return json.Unmarshal(raw, v)
}

// HasToast reports whether a toast of kind with message was rendered.
// Messages are compared in their escaped form.
func (r *TestResult) HasToast(kind, message string) bool {
	for _, t := range r.Toasts {
		if t.Kind == kind && t.Message == message {
			return true
		}
	}
	return false
}

func (r *TestResult) IsOK() bool                 { return r.StatusCode == http.StatusOK }
func (r *TestResult) HasStatus(code int) bool    { return r.StatusCode == code }
func (r *TestResult) GetHeader(key string) string { return r.Headers.Get(key) }

// parseTriggerHeader returns the event names of an HX-Trigger value in
// order of appearance, plus the JSON details when the value is an object.
func parseTriggerHeader(trigger string) ([]string, map[string]json.RawMessage) {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil, nil
	}

	if strings.HasPrefix(trigger, "{") {
		dec := json.NewDecoder(strings.NewReader(trigger))
		if _, err := dec.Token(); err != nil {
			return nil, nil
		}
		var names []string
		details := make(map[string]json.RawMessage)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			name, _ := tok.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				break
			}
			names = append(names, name)
			details[name] = raw
		}
		return names, details
	}

	parts := strings.Split(trigger, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names, nil
}

// parseToasts extracts the toasts appended by renderToasts.
func parseToasts(html string) []Toast {
	const prefix = `<p class="blog-toast blog-toast-`
	var toasts []Toast
	for {
		start := strings.Index(html, prefix)
		if start == -1 {
			return toasts
		}
		html = html[start+len(prefix):]

		kind, rest, ok := strings.Cut(html, `"`)
		if !ok {
			return toasts
		}
		_, rest, ok = strings.Cut(rest, ">")
		if !ok {
			return toasts
		}
		msg, rest, ok := strings.Cut(rest, "</p>")
		if !ok {
			return toasts
		}
		toasts = append(toasts, Toast{Kind: kind, Message: msg})
		html = rest
	}
}
