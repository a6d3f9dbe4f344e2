package components

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/eventbus"
	"github.com/pthm/hxblog/lib/i18n"
)

// StatsLayout selects how rating statistics are shown.
type StatsLayout string

const (
	// StatsInline is a one-line summary for post headers.
	StatsInline StatsLayout = "inline"
	// StatsPanel is the sidebar block with ratings, average and comments.
	StatsPanel StatsLayout = "stats"
)

// StatsProps is the state of a stats island.
type StatsProps struct {
	PostID    string      `msgpack:"post"`
	Layout    StatsLayout `msgpack:"layout"`
	CSRFToken string      `msgpack:"t,omitempty"`
	Locale    string      `msgpack:"l,omitempty"`

	Rating   blog.Rating `msgpack:"-"`
	Comments int         `msgpack:"-"`
	Loaded   bool        `msgpack:"-"`
}

// Stats shows rating and comment statistics of a post and refreshes itself
// when a rating or comment for the same post is published.
type Stats struct {
	*hxblog.Component[StatsProps]
	deps Deps
}

// NewStats creates the stats island.
func NewStats(deps Deps) *Stats {
	c := &Stats{deps: deps}
	c.Component = hxblog.New[StatsProps]("stats", c).Sensitive()
	return c
}

// Hydrate fetches the rating and, for the panel layout, the approved
// comment count. Failed fetches leave zero values.
func (c *Stats) Hydrate(ctx context.Context, props *StatsProps) error {
	svc := c.deps.islandService(props.CSRFToken, hxblog.RequestFrom(ctx))
	log := c.deps.logger().With(slog.String("post_id", props.PostID))

	var (
		rating   blog.Rating
		comments []blog.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := svc.GetRating(gctx, props.PostID)
		if err != nil {
			log.DebugContext(gctx, "stats rating fetch failed", slog.String("error", err.Error()))
			return nil
		}
		rating = r
		return nil
	})
	if props.Layout == StatsPanel {
		g.Go(func() error {
			cs, err := svc.GetApprovedComments(gctx, props.PostID)
			if err != nil {
				log.DebugContext(gctx, "stats comments fetch failed", slog.String("error", err.Error()))
				return nil
			}
			comments = cs
			return nil
		})
	}
	_ = g.Wait()

	props.Rating = rating
	props.Comments = len(comments)
	props.Loaded = true
	return nil
}

// RefreshAction re-renders the island whenever a rating or comment for its
// post is published.
func (c *Stats) RefreshAction(props StatsProps) *hxblog.Action {
	return c.Refresh(props).
		OnPostEvent(eventbus.RatingUpdated, props.PostID).
		OnPostEvent(eventbus.CommentAdded, props.PostID).
		TargetThis().
		SwapOuter()
}

// Mount embeds the island; it always loads after the page.
func (c *Stats) Mount(props StatsProps) templ.Component {
	props.Loaded = false
	return c.Defer(props, c.Render(context.Background(), props))
}

// Render produces the island markup.
func (c *Stats) Render(_ context.Context, props StatsProps) templ.Component {
	t := i18n.For(props.Locale)
	return view(func(m *markup) {
		if props.Layout == StatsInline {
			renderInlineStats(m, t, props, c.RefreshAction(props).Attrs())
			return
		}
		renderStatsPanel(m, t, props, c.RefreshAction(props).Attrs())
	})
}

func renderInlineStats(m *markup, t i18n.Translator, props StatsProps, refresh templ.Attributes) {
	m.open("span", merge(templ.Attributes{"class": "blog-stats-inline"}, refresh))
	switch {
	case !props.Loaded:
		m.elem("span", templ.Attributes{"class": "loading"}, "⭐ "+t.T("stats.loading"))
	case props.Rating.HasRatings():
		m.textf("⭐ %.1f (%s)", props.Rating.AverageRating, countLabel(t, props.Rating.RatingCount))
	}
	m.close("span")
}

func renderStatsPanel(m *markup, t i18n.Translator, props StatsProps, refresh templ.Attributes) {
	m.open("div", merge(templ.Attributes{"class": "blog-stats"}, refresh))
	if !props.Loaded {
		stat(m, "...", t.T("stats.loading"), "loading")
		m.close("div")
		return
	}
	stat(m, strconv.FormatUint(uint64(props.Rating.RatingCount), 10), t.T("stats.ratings"), "")
	if props.Rating.AverageRating > 0 {
		stat(m, fmt.Sprintf("%.1f", props.Rating.AverageRating), t.T("stats.average"), "")
	}
	stat(m, strconv.Itoa(props.Comments), t.T("stats.comments"), "")
	m.close("div")
}

func stat(m *markup, value, label, modifier string) {
	class := "blog-stat"
	if modifier != "" {
		class += " " + modifier
	}
	m.open("div", templ.Attributes{"class": class})
	m.elem("div", templ.Attributes{"class": "blog-stat-value"}, value)
	m.elem("div", templ.Attributes{"class": "blog-stat-label"}, label)
	m.close("div")
}
