package components

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/cms"
)

// View names registered besides cms.DefaultView.
const (
	ViewCards    = "cards"
	ViewFullPage = "fullPage"
)

const dateLayout = "January 2, 2006"

// Site owns the islands and the views that mount them.
type Site struct {
	deps Deps

	Rating     *Rating
	Comments   *Comments
	Stats      *Stats
	CardRating *CardRating
}

// Init creates the islands, registers them with reg and registers the blog
// views. Call it once at startup before handling requests.
//
//	reg, _ := hxblog.NewRegistry(key)
//	views := cms.NewViews()
//	site := components.Init(components.Deps{Client: client}, reg, views)
func Init(deps Deps, reg *hxblog.Registry, views *cms.Views) *Site {
	s := &Site{
		deps:       deps,
		Rating:     NewRating(deps),
		Comments:   NewComments(deps),
		Stats:      NewStats(deps),
		CardRating: NewCardRating(deps),
	}
	reg.Add(s.Rating, s.Comments, s.Stats, s.CardRating)

	views.Register(cms.TypeBlog, cms.DefaultView, s.BlogList)
	views.Register(cms.TypeBlog, ViewCards, s.BlogCards)
	views.Register(cms.TypePost, cms.DefaultView, s.Post)
	views.Register(cms.TypePost, ViewFullPage, s.PostFullPage)
	views.Register(cms.TypeAuthor, cms.DefaultView, AuthorCard)
	return s
}

// prefetched is the server-side snapshot of a post's rating and comments.
type prefetched struct {
	rating     blog.Rating
	ratingOK   bool
	comments   []blog.Comment
	commentsOK bool
}

// prefetch loads the rating and, when requested, the approved comments of a
// post concurrently. Failures are logged and leave the field unset.
func (s *Site) prefetch(ctx context.Context, postID, token string, withComments bool) prefetched {
	var out prefetched
	if s.deps.Client == nil || postID == "" {
		return out
	}
	svc := s.deps.serverService(token)
	log := s.deps.logger().With(slog.String("post_id", postID))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := svc.GetRating(gctx, postID)
		if err != nil {
			log.DebugContext(gctx, "rating pre-fetch failed", slog.String("error", err.Error()))
			return nil
		}
		out.rating, out.ratingOK = r, true
		return nil
	})
	if withComments {
		g.Go(func() error {
			cs, err := svc.GetApprovedComments(gctx, postID)
			if err != nil {
				log.DebugContext(gctx, "comments pre-fetch failed", slog.String("error", err.Error()))
				return nil
			}
			out.comments, out.commentsOK = cs, true
			return nil
		})
	}
	_ = g.Wait()
	return out
}
