// Package components holds the blog views and the interactive islands they
// mount: rating, comments, rating statistics and card ratings.
package components

import (
	"log/slog"
	"net/http"

	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/graphql"
)

// Deps are the collaborators shared by views and islands.
type Deps struct {
	Client *graphql.Client
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// islandService returns a blog service for an island request. The token
// comes from the island props, then the deployment environment, then the
// X-CSRF-Token header set by the page bootstrap script.
func (d Deps) islandService(token string, r *http.Request) *blog.Service {
	var header http.Header
	if r != nil {
		header = r.Header
	}
	src := graphql.Chain(
		graphql.StaticToken(token),
		graphql.EnvToken(),
		graphql.HeaderToken(header),
	)
	return blog.NewService(d.Client.WithTokens(src), d.logger())
}

// serverService returns a blog service for pre-fetching during a page
// render, authenticated with the token resolved for that render.
func (d Deps) serverService(token string) *blog.Service {
	return blog.NewService(d.Client.WithTokens(graphql.StaticToken(token)), d.logger())
}
