package components

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/eventbus"
	"github.com/pthm/hxblog/lib/i18n"
)

// RatingState is the lifecycle of a rating island.
type RatingState string

const (
	RatingLoading    RatingState = "loading"
	RatingIdle       RatingState = "idle"
	RatingSubmitting RatingState = "submitting"
	RatingRated      RatingState = "rated"
)

// RatingProps is the state of a rating island. It carries the CSRF token, so
// the island encrypts its props.
type RatingProps struct {
	PostID     string      `msgpack:"post"`
	Average    float64     `msgpack:"avg"`
	Count      uint        `msgpack:"n"`
	State      RatingState `msgpack:"s"`
	UserRating int         `msgpack:"u,omitempty"`
	CSRFToken  string      `msgpack:"t,omitempty"`
	Locale     string      `msgpack:"l,omitempty"`
	ElementID  string      `msgpack:"id"`
}

// NewRatingProps returns props for a rating island that fetches the rating
// once mounted.
func NewRatingProps(postID, token, locale string) RatingProps {
	return RatingProps{
		PostID:    postID,
		State:     RatingLoading,
		CSRFToken: token,
		Locale:    locale,
		ElementID: elementID("rating"),
	}
}

// WithRating returns props that display r without fetching.
func (p RatingProps) WithRating(r blog.Rating) RatingProps {
	p.Average = r.AverageRating
	p.Count = r.RatingCount
	if p.Count == 0 {
		p.Average = 0
	}
	p.State = RatingIdle
	return p
}

// Rating shows the average rating of a post and lets the reader rate it
// once per page.
type Rating struct {
	*hxblog.Component[RatingProps]
	deps Deps
}

// NewRating creates the rating island.
func NewRating(deps Deps) *Rating {
	c := &Rating{deps: deps}
	c.Component = hxblog.New[RatingProps]("rating", c).Sensitive()
	c.Action("rate", c.handleRate)
	return c
}

// Hydrate fetches the rating while the island is still loading. A failed
// fetch leaves the island idle with no ratings.
func (c *Rating) Hydrate(ctx context.Context, props *RatingProps) error {
	if props.State != RatingLoading && props.State != "" {
		return nil
	}
	props.State = RatingIdle
	rating, err := c.deps.islandService(props.CSRFToken, hxblog.RequestFrom(ctx)).GetRating(ctx, props.PostID)
	if err != nil {
		c.deps.logger().DebugContext(ctx, "rating fetch failed",
			slog.String("post_id", props.PostID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	props.Average = rating.AverageRating
	props.Count = rating.RatingCount
	return nil
}

func (c *Rating) handleRate(ctx context.Context, props RatingProps, r *http.Request) hxblog.Result[RatingProps] {
	// One rating per page lifetime.
	if props.State == RatingSubmitting || props.State == RatingRated {
		return hxblog.OK(props)
	}

	value, _ := strconv.Atoi(r.FormValue("rating"))
	props.State = RatingSubmitting

	rating, err := c.deps.islandService(props.CSRFToken, r).RatePost(ctx, props.PostID, value)
	if err != nil {
		props.State = RatingIdle
		msg := err.Error()
		if msg == "" {
			msg = i18n.For(props.Locale).T("rating.failed")
		}
		return hxblog.OK(props).Alert(msg)
	}

	props.Average = rating.AverageRating
	props.Count = rating.RatingCount
	props.UserRating = value
	props.State = RatingRated
	return hxblog.OK(props).Trigger(eventbus.RatingUpdated, eventbus.PostEvent{PostID: props.PostID})
}

// Mount embeds the island in a page. Loading islands fetch once the page has
// loaded; others render in place.
func (c *Rating) Mount(props RatingProps) templ.Component {
	if props.State == RatingLoading {
		return c.Defer(props, c.Render(context.Background(), props))
	}
	return c.Render(context.Background(), props)
}

// Render produces the island markup.
func (c *Rating) Render(_ context.Context, props RatingProps) templ.Component {
	t := i18n.For(props.Locale)
	return view(func(m *markup) {
		m.open("div", templ.Attributes{
			"class":      "blog-rating",
			"id":         props.ElementID,
			"data-state": string(props.State),
		})
		m.elem("h3", nil, t.T("rating.title"))

		m.open("div", templ.Attributes{"class": "blog-rating-summary"})
		switch {
		case props.State == RatingLoading:
			m.elem("span", templ.Attributes{"class": "blog-rating-loading"}, t.T("rating.loading"))
		case props.Count == 0:
			m.elem("span", templ.Attributes{"class": "blog-rating-empty"}, t.T("rating.noRatings"))
		default:
			m.elem("span", templ.Attributes{"class": "blog-rating-average"}, fmt.Sprintf("%.1f", props.Average))
			m.raw(" ")
			m.elem("span", templ.Attributes{"class": "blog-rating-count"}, "("+countLabel(t, props.Count)+")")
		}
		m.close("div")

		filled := int(math.Round(props.Average))
		disabled := props.State != RatingIdle
		m.open("div", templ.Attributes{"class": "blog-rating-stars"})
		for i := blog.MinRating; i <= blog.MaxRating; i++ {
			class := "blog-rating-star"
			if i <= filled {
				class += " filled"
			}
			attrs := templ.Attributes{
				"type":       "button",
				"class":      class,
				"aria-label": fmt.Sprintf(t.T("rating.rate"), i),
				"disabled":   disabled,
			}
			if !disabled {
				attrs = merge(attrs, c.Act("rate", props).
					Vals(map[string]any{"rating": i}).
					Target("#"+props.ElementID).
					SwapOuter().
					DisabledElt("#"+props.ElementID+" button").
					Sync("this:drop").
					Indicator("#"+props.ElementID+"-busy").
					Attrs())
			}
			m.open("button", attrs)
			m.raw("★")
			m.close("button")
		}
		m.close("div")

		m.elem("span", templ.Attributes{"class": "htmx-indicator", "id": props.ElementID + "-busy"}, t.T("rating.submitting"))
		if props.State == RatingRated {
			m.elem("p", templ.Attributes{"class": "blog-rating-thanks"}, t.T("rating.thanks"))
		}
		m.close("div")
	})
}

func countLabel(t i18n.Translator, n uint) string {
	if n == 1 {
		return "1 " + t.T("rating.rating")
	}
	return strconv.FormatUint(uint64(n), 10) + " " + t.T("rating.ratings")
}
