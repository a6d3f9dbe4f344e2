// Package graphql is the request client islands and views use to talk to the
// blog GraphQL backend.
//
// Every call returns a Result instead of an error: transport failures,
// non-2xx responses and GraphQL errors are all folded into Result.Error so
// callers can render a fallback without further checks. Requests are never
// retried.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// HeaderName is the header carrying the CSRF token.
const HeaderName = "X-CSRF-Token"

// DefaultEndpoint is the backend address used during server rendering.
const DefaultEndpoint = "http://localhost:8080/modules/graphql"

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// Config holds client configuration.
type Config struct {
	Endpoint string
	Timeout  time.Duration

	// Breaker settings. A zero BreakerTimeout disables the breaker.
	BreakerName         string
	BreakerTimeout      time.Duration
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:            DefaultEndpoint,
		Timeout:             10 * time.Second,
		BreakerName:         "graphql",
		BreakerTimeout:      30 * time.Second,
		BreakerMinRequests:  5,
		BreakerFailureRatio: 0.5,
	}
}

// Result is the uniform outcome of a request.
type Result struct {
	Success bool
	Error   string
}

// OK reports whether the request succeeded.
func (r Result) OK() bool { return r.Success }

func failure(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type response struct {
	status     int
	statusText string
	body       []byte
}

var errServerStatus = errors.New("graphql: server error status")

// Client posts GraphQL documents to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*response]
	tokens     TokenSource
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the default token source.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: slog.Default(),
	}
	if cfg.BreakerTimeout > 0 {
		c.breaker = newBreaker(cfg)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker[*response] {
	name := cfg.BreakerName
	if name == "" {
		name = "graphql"
	}
	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio

	return gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

// WithTokens returns a client sharing c's transport and breaker but using
// src to find the CSRF token.
func (c *Client) WithTokens(src TokenSource) *Client {
	cp := *c
	cp.tokens = src
	return &cp
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Do sends query with variables and decodes the response data into out
// (which may be nil). It never returns an error; see Result.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) (res Result) {
	op := operationName(query)
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = failure("%v", rec)
		}
		outcome := "success"
		if !res.Success {
			outcome = "error"
		}
		requestsTotal.WithLabelValues(op, outcome).Inc()
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return failure("%s", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return failure("%s", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if tok, ok := c.token(ctx); ok {
		req.Header.Set(HeaderName, tok)
	} else {
		c.log.WarnContext(ctx, "no csrf token available, protected mutations will be rejected",
			slog.String("operation", op),
		)
	}

	resp, err := c.send(req)
	if err != nil && resp == nil {
		c.log.ErrorContext(ctx, "graphql transport error",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return failure("%s", err.Error())
	}

	if resp.status < 200 || resp.status > 299 {
		c.log.ErrorContext(ctx, "graphql http error",
			slog.String("operation", op),
			slog.Int("status", resp.status),
		)
		return failure("Request failed with status %d: %s", resp.status, string(resp.body))
	}

	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return failure("%s", err.Error())
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		c.log.WarnContext(ctx, "graphql errors",
			slog.String("operation", op),
			slog.Any("errors", msgs),
		)
		return Result{Success: false, Error: strings.Join(msgs, ", ")}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return failure("%s", err.Error())
		}
	}

	return Result{Success: true}
}

func (c *Client) token(ctx context.Context) (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Token(ctx)
}

func (c *Client) send(req *http.Request) (*response, error) {
	do := func() (*response, error) {
		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = httpResp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		resp := &response{status: httpResp.StatusCode, statusText: httpResp.Status, body: data}
		if resp.status >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	}

	if c.breaker == nil {
		return do()
	}
	return c.breaker.Execute(do)
}

// operationName extracts the operation name used as a metrics label.
func operationName(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '(' || r == '{'
	})
	for i, f := range fields {
		if (f == "query" || f == "mutation") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return "anonymous"
}
