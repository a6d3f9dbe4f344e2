package hxblog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
)

type mockProps struct {
	Name  string
	Count int
}

type mockIsland struct {
	hydrateErr error
	renderErr  error
}

func (m *mockIsland) Hydrate(ctx context.Context, props *mockProps) error {
	if m.hydrateErr != nil {
		return m.hydrateErr
	}
	props.Count++
	return nil
}

func (m *mockIsland) Render(ctx context.Context, props mockProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if m.renderErr != nil {
			return m.renderErr
		}
		_, err := io.WriteString(w, `<div class="mock">Hello, `+props.Name+`!</div>`)
		return err
	})
}

func TestTestRender_Success(t *testing.T) {
	result, err := TestRender[mockProps](context.Background(), &mockIsland{}, mockProps{Name: "World"})
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}
	if !result.HTMLContains("Hello, World!") {
		t.Errorf("HTML = %q", result.HTML)
	}
	if !result.IsOK() {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
}

func TestTestRender_Errors(t *testing.T) {
	hydrateErr := errors.New("hydrate failed")
	if _, err := TestRender[mockProps](context.Background(), &mockIsland{hydrateErr: hydrateErr}, mockProps{}); !errors.Is(err, hydrateErr) {
		t.Errorf("TestRender() error = %v, want %v", err, hydrateErr)
	}

	renderErr := errors.New("render failed")
	if _, err := TestRender[mockProps](context.Background(), &mockIsland{renderErr: renderErr}, mockProps{}); !errors.Is(err, renderErr) {
		t.Errorf("TestRender() error = %v, want %v", err, renderErr)
	}
}

func TestTestRequestBuilder(t *testing.T) {
	var seen *http.Request
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		_ = r.ParseForm()
		w.Header().Set("HX-Trigger", `{"comment:added":{"postId":"p1"},"refresh":true}`)
		w.Header().Set("HX-Redirect", "/next")
		_, _ = io.WriteString(w, renderToasts([]Toast{{Kind: ToastInfo, Message: "received"}}))
	})

	result := NewTestRequest(http.MethodPost, "/x").
		WithFormData("name", "Ann").
		WithFormValues(map[string]string{"body": "Hi"}).
		WithHeader("X-CSRF-Token", "tok").
		Execute(h)

	if seen.Header.Get("HX-Request") != "true" {
		t.Error("HX-Request header not set")
	}
	if seen.Header.Get("X-CSRF-Token") != "tok" {
		t.Error("custom header not set")
	}
	if seen.PostForm.Get("name") != "Ann" || seen.PostForm.Get("body") != "Hi" {
		t.Errorf("form = %v", seen.PostForm)
	}

	if !result.HasEvent("comment:added") || !result.HasEvent("refresh") {
		t.Errorf("TriggeredEvents = %v", result.TriggeredEvents)
	}
	var detail struct {
		PostID string `json:"postId"`
	}
	if err := result.EventDetail("comment:added", &detail); err != nil || detail.PostID != "p1" {
		t.Errorf("EventDetail() = %+v, %v", detail, err)
	}
	if result.RedirectURL != "/next" {
		t.Errorf("RedirectURL = %q", result.RedirectURL)
	}
	if !result.HasToast(ToastInfo, "received") {
		t.Errorf("Toasts = %v", result.Toasts)
	}
}

func TestTestRequestBuilder_WithContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	var got any
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Context().Value(key{})
	})
	NewTestRequest(http.MethodGet, "/").WithContext(ctx).Execute(h)

	if got != "v" {
		t.Errorf("context value = %v", got)
	}
}

func TestParseTriggerHeader(t *testing.T) {
	names, details := parseTriggerHeader("a, b ,c")
	if len(names) != 3 || names[1] != "b" || details != nil {
		t.Errorf("parseTriggerHeader(simple) = %v, %v", names, details)
	}

	names, details = parseTriggerHeader(`{"x":{"k":"v, w"},"y":true}`)
	if len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Errorf("parseTriggerHeader(json) names = %v", names)
	}
	if string(details["x"]) != `{"k":"v, w"}` {
		t.Errorf("detail = %s", details["x"])
	}

	if names, _ := parseTriggerHeader("  "); names != nil {
		t.Errorf("parseTriggerHeader(empty) = %v", names)
	}
}

func TestParseToastsIgnoresOtherMarkup(t *testing.T) {
	if got := parseToasts(`<p class="blog-rating-thanks">Thanks</p>`); len(got) != 0 {
		t.Errorf("toasts = %v", got)
	}
	if got := parseToasts(`<p class="blog-toast blog-toast-info" role="status">unterminated`); len(got) != 0 {
		t.Errorf("toasts = %v", got)
	}
}

func TestNewTestRequestForAction(t *testing.T) {
	a := NewAction("/_c/x/rate", http.MethodPost).Vals(map[string]any{"value": 4})

	req := NewTestRequestFor(a).Request()
	if req.Method != http.MethodPost {
		t.Errorf("Method = %q", req.Method)
	}
	if err := req.ParseForm(); err != nil {
		t.Fatal(err)
	}
	if req.PostForm.Get("value") != "4" {
		t.Errorf("value = %q", req.PostForm.Get("value"))
	}

	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusTeapot)
	if res := newTestResult(rec); !res.HasStatus(http.StatusTeapot) {
		t.Errorf("StatusCode = %d", res.StatusCode)
	}
}
