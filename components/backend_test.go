package components

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/cms"
	"github.com/pthm/hxblog/lib/graphql"
)

// fakeBackend is an in-memory GraphQL blog backend.
type fakeBackend struct {
	mu       sync.Mutex
	rating   blog.Rating
	comments []blog.Comment
	status   blog.Status
	errors   map[string]string
	calls    map[string]int
	tokens   []string
	lastVars map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		status: blog.StatusPending,
		errors: make(map[string]string),
		calls:  make(map[string]int),
	}
}

var operations = []string{"getRating", "ratePost", "getComments", "createComment", "moderateComment"}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var op string
	for _, name := range operations {
		if strings.Contains(req.Query, name+"(") {
			op = name
			break
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	b.tokens = append(b.tokens, r.Header.Get(graphql.HeaderName))
	b.lastVars = req.Variables

	w.Header().Set("Content-Type", "application/json")
	if msg, ok := b.errors[op]; ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]any{{"message": msg}}})
		return
	}

	var payload any
	switch op {
	case "getRating":
		payload = b.rating
	case "ratePost":
		n := float64(b.rating.RatingCount)
		v, _ := req.Variables["rating"].(float64)
		b.rating.AverageRating = (b.rating.AverageRating*n + v) / (n + 1)
		b.rating.RatingCount++
		payload = b.rating
	case "getComments":
		payload = blog.CommentList{Comments: b.comments, Total: len(b.comments)}
	case "createComment":
		c := blog.Comment{
			UUID:       "c-new",
			AuthorName: req.Variables["authorName"].(string),
			Body:       req.Variables["body"].(string),
			Created:    "2024-05-01T10:00:00Z",
			Status:     b.status,
		}
		b.comments = append(b.comments, c)
		payload = blog.CommentReceipt{UUID: c.UUID, Status: b.status, Message: "received"}
	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"blog": map[string]any{op: payload}}})
}

func (b *fakeBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *fakeBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *fakeBackend) lastToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tokens) == 0 {
		return ""
	}
	return b.tokens[len(b.tokens)-1]
}

// fixture wires a site against a fake backend.
type fixture struct {
	backend *fakeBackend
	site    *Site
	reg     *hxblog.Registry
	views   *cms.Views
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := graphql.DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.BreakerTimeout = 0
	client := graphql.New(cfg)
	t.Cleanup(client.Close)

	reg, err := hxblog.NewRegistry([]byte("test-key"))
	require.NoError(t, err)
	views := cms.NewViews()
	site := Init(Deps{Client: client}, reg, views)

	return &fixture{backend: backend, site: site, reg: reg, views: views}
}

func (f *fixture) exec(a *hxblog.Action) *hxblog.TestResult {
	return hxblog.NewTestRequestFor(a).Execute(f.reg.Handler())
}
