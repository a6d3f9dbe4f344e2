package components

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/i18n"
)

// CardRatingProps is the state of a card rating island.
type CardRatingProps struct {
	PostID string `msgpack:"post"`
	Locale string `msgpack:"l,omitempty"`

	Rating blog.Rating `msgpack:"-"`
	Loaded bool        `msgpack:"-"`
}

// CardRating is the star summary shown on a post card.
type CardRating struct {
	*hxblog.Component[CardRatingProps]
	deps Deps
}

// NewCardRating creates the card rating island.
func NewCardRating(deps Deps) *CardRating {
	c := &CardRating{deps: deps}
	c.Component = hxblog.New[CardRatingProps]("cardrating", c)
	return c
}

func (c *CardRating) Hydrate(ctx context.Context, props *CardRatingProps) error {
	rating, err := c.deps.islandService("", hxblog.RequestFrom(ctx)).GetRating(ctx, props.PostID)
	if err != nil {
		c.deps.logger().DebugContext(ctx, "card rating fetch failed",
			slog.String("post_id", props.PostID),
			slog.String("error", err.Error()),
		)
	}
	props.Rating = rating
	props.Loaded = true
	return nil
}

// Mount loads the island when the card scrolls into view.
func (c *CardRating) Mount(props CardRatingProps) templ.Component {
	props.Loaded = false
	return c.Lazy(props, c.Render(context.Background(), props))
}

func (c *CardRating) Render(_ context.Context, props CardRatingProps) templ.Component {
	t := i18n.For(props.Locale)
	return view(func(m *markup) {
		switch {
		case !props.Loaded:
			m.elem("div", templ.Attributes{"class": "blog-card-rating loading"}, "⭐ "+t.T("rating.loading"))
		case !props.Rating.HasRatings():
			m.elem("div", templ.Attributes{"class": "blog-card-rating empty"}, t.T("rating.noRatings"))
		default:
			m.open("div", templ.Attributes{"class": "blog-card-rating"})
			m.elem("span", templ.Attributes{"class": "stars"}, stars(props.Rating.AverageRating))
			m.raw(" ")
			m.elem("span", templ.Attributes{"class": "count"}, "("+strconv.FormatUint(uint64(props.Rating.RatingCount), 10)+")")
			m.close("div")
		}
	})
}

// stars renders an average as filled and empty stars out of five.
func stars(average float64) string {
	n := int(math.Round(average))
	n = max(blog.MinRating-1, min(n, blog.MaxRating))
	return strings.Repeat("★", n) + strings.Repeat("☆", blog.MaxRating-n)
}
