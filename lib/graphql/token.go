package graphql

import (
	"context"
	"net/http"
	"os"
	"strings"
)

// TokenSource supplies the CSRF token attached to a request.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, bool)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, bool) { return f(ctx) }

// EnvTokenNames are the case variants of the deployment-provided token.
var EnvTokenNames = []string{"csrfToken", "csrftoken", "CSRFTOKEN", "CSRF_TOKEN", "VITE_CSRF_TOKEN"}

func normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// StaticToken always yields tok (when non-blank).
func StaticToken(tok string) TokenSource {
	return TokenFunc(func(context.Context) (string, bool) { return normalize(tok) })
}

// EnvToken looks the token up in the process environment under names,
// defaulting to EnvTokenNames.
func EnvToken(names ...string) TokenSource {
	return LookupToken(os.LookupEnv, names...)
}

// LookupToken is EnvToken with a custom lookup function.
func LookupToken(lookup func(string) (string, bool), names ...string) TokenSource {
	if len(names) == 0 {
		names = EnvTokenNames
	}
	return TokenFunc(func(context.Context) (string, bool) {
		for _, name := range names {
			if v, ok := lookup(name); ok {
				if tok, ok := normalize(v); ok {
					return tok, true
				}
			}
		}
		return "", false
	})
}

// HeaderToken reads the token the page bootstrap script attached to an
// incoming browser request.
func HeaderToken(h http.Header) TokenSource {
	return TokenFunc(func(context.Context) (string, bool) {
		if h == nil {
			return "", false
		}
		return normalize(h.Get(HeaderName))
	})
}

// Chain returns the first token yielded by sources, in order.
func Chain(sources ...TokenSource) TokenSource {
	return TokenFunc(func(ctx context.Context) (string, bool) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if tok, ok := src.Token(ctx); ok {
				return tok, true
			}
		}
		return "", false
	})
}
