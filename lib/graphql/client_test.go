package graphql

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type captured struct {
	header http.Header
	body   map[string]any
}

func backend(t *testing.T, status int, payload string) (*httptest.Server, *captured) {
	t.Helper()
	seen := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &seen.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func newClient(t *testing.T, endpoint string, opts ...Option) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.BreakerTimeout = 0
	c := New(cfg, opts...)
	t.Cleanup(c.Close)
	return c
}

func TestDoDecodesData(t *testing.T) {
	srv, seen := backend(t, http.StatusOK, `{"data":{"rating":{"average":4.5,"count":2}}}`)
	c := newClient(t, srv.URL, WithTokenSource(StaticToken("tok-1")))

	var out struct {
		Rating struct {
			Average float64 `json:"average"`
			Count   int     `json:"count"`
		} `json:"rating"`
	}
	res := c.Do(context.Background(), "query GetRating($postId: String!) { rating }", map[string]any{"postId": "p1"}, &out)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 4.5, out.Rating.Average)
	assert.Equal(t, 2, out.Rating.Count)
	assert.Equal(t, "tok-1", seen.header.Get(HeaderName))
	assert.Equal(t, "application/json", seen.header.Get("Content-Type"))
	assert.Equal(t, map[string]any{"postId": "p1"}, seen.body["variables"])
}

func TestDoJoinsGraphQLErrors(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `{"errors":[{"message":"x"},{"message":"y"}]}`)
	c := newClient(t, srv.URL)

	res := c.Do(context.Background(), "query Q { a }", nil, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "x, y", res.Error)
}

func TestDoNon2xx(t *testing.T) {
	srv, _ := backend(t, http.StatusForbidden, `forbidden`)
	c := newClient(t, srv.URL)

	res := c.Do(context.Background(), "mutation Rate { a }", nil, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Request failed with status 403: forbidden", res.Error)
}

func TestDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url)
	res := c.Do(context.Background(), "query Q { a }", nil, nil)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestDoMalformedJSON(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `not json`)
	c := newClient(t, srv.URL)

	res := c.Do(context.Background(), "query Q { a }", nil, nil)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestDoWithoutTokenStillSends(t *testing.T) {
	srv, seen := backend(t, http.StatusOK, `{"data":{}}`)
	c := newClient(t, srv.URL)

	res := c.Do(context.Background(), "query Q { a }", nil, nil)
	assert.True(t, res.Success)
	assert.Empty(t, seen.header.Get(HeaderName))
}

func TestWithTokensOverridesSource(t *testing.T) {
	srv, seen := backend(t, http.StatusOK, `{"data":{}}`)
	base := newClient(t, srv.URL, WithTokenSource(StaticToken("base")))

	res := base.WithTokens(StaticToken("override")).Do(context.Background(), "query Q { a }", nil, nil)
	require.True(t, res.Success)
	assert.Equal(t, "override", seen.header.Get(HeaderName))

	res = base.Do(context.Background(), "query Q { a }", nil, nil)
	require.True(t, res.Success)
	assert.Equal(t, "base", seen.header.Get(HeaderName))
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	srv, _ := backend(t, http.StatusBadGateway, `down`)
	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.BreakerName = "test-breaker"
	cfg.BreakerTimeout = time.Minute
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	c := New(cfg)
	t.Cleanup(c.Close)

	for i := 0; i < 2; i++ {
		res := c.Do(context.Background(), "query Q { a }", nil, nil)
		assert.Equal(t, "Request failed with status 502: down", res.Error)
	}

	res := c.Do(context.Background(), "query Q { a }", nil, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "circuit breaker is open")
}

func TestTokenChainOrder(t *testing.T) {
	env := map[string]string{"CSRF_TOKEN": "from-env", "VITE_CSRF_TOKEN": "vite"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	h := http.Header{}
	h.Set(HeaderName, "from-header")

	tests := []struct {
		name   string
		source TokenSource
		want   string
		ok     bool
	}{
		{"injected wins", Chain(StaticToken("injected"), LookupToken(lookup), HeaderToken(h)), "injected", true},
		{"blank injected falls through", Chain(StaticToken("  "), LookupToken(lookup), HeaderToken(h)), "from-env", true},
		{"header last", Chain(StaticToken(""), LookupToken(func(string) (string, bool) { return "", false }), HeaderToken(h)), "from-header", true},
		{"nothing", Chain(nil, HeaderToken(nil)), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.source.Token(context.Background())
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupTokenVariantOrder(t *testing.T) {
	env := map[string]string{"csrftoken": "lower", "CSRFTOKEN": "upper"}
	src := LookupToken(func(k string) (string, bool) { v, ok := env[k]; return v, ok })

	got, ok := src.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "lower", got)
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "GetRating", operationName("query GetRating($postId: String!) { x }"))
	assert.Equal(t, "RatePost", operationName("\n  mutation RatePost{ x }"))
	assert.Equal(t, "anonymous", operationName("{ x }"))
}
