package components

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/eventbus"
	"github.com/pthm/hxblog/lib/graphql"
)

func TestRatingLoadsOnMount(t *testing.T) {
	tests := []struct {
		name    string
		rating  blog.Rating
		want    []string
		notWant []string
	}{
		{
			name:    "no ratings",
			rating:  blog.Rating{PostID: "p1"},
			want:    []string{"No ratings yet", `data-state="idle"`},
			notWant: []string{"0.0"},
		},
		{
			name:   "with ratings",
			rating: blog.Rating{PostID: "p1", AverageRating: 4.5, RatingCount: 2},
			want:   []string{"4.5", "(2 ratings)"},
		},
		{
			name:   "single rating",
			rating: blog.Rating{PostID: "p1", AverageRating: 3, RatingCount: 1},
			want:   []string{"3.0", "(1 rating)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.backend.rating = tt.rating

			res := f.exec(f.site.Rating.Refresh(NewRatingProps("p1", "tok", "en")))

			require.True(t, res.IsOK(), res.HTML)
			for _, s := range tt.want {
				assert.Contains(t, res.HTML, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, res.HTML, s)
			}
			assert.Equal(t, 1, f.backend.count("getRating"))
		})
	}
}

func TestRatingFetchFailureRendersIdle(t *testing.T) {
	f := newFixture(t)
	f.backend.errors["getRating"] = "backend down"

	res := f.exec(f.site.Rating.Refresh(NewRatingProps("p1", "", "en")))

	require.True(t, res.IsOK())
	assert.Contains(t, res.HTML, "No ratings yet")
	assert.Contains(t, res.HTML, `data-state="idle"`)
}

func TestRatingSubmit(t *testing.T) {
	f := newFixture(t)
	f.backend.rating = blog.Rating{PostID: "p1", AverageRating: 4, RatingCount: 1}
	props := NewRatingProps("p1", "page-token", "en").WithRating(f.backend.rating)

	res := f.exec(f.site.Rating.Act("rate", props).Vals(map[string]any{"rating": 5}))

	require.True(t, res.IsOK(), res.HTML)
	assert.Equal(t, 1, f.backend.count("ratePost"))
	assert.Equal(t, "page-token", f.backend.lastToken())
	assert.Contains(t, res.HTML, "Thank you for rating!")
	assert.Contains(t, res.HTML, "4.5")
	assert.Contains(t, res.HTML, "(2 ratings)")
	assert.Contains(t, res.HTML, `data-state="rated"`)

	assert.Equal(t, []string{eventbus.RatingUpdated}, res.TriggeredEvents)
	var detail eventbus.PostEvent
	require.NoError(t, res.EventDetail(eventbus.RatingUpdated, &detail))
	assert.Equal(t, "p1", detail.PostID)
}

func TestRatingIgnoredOnceRated(t *testing.T) {
	for _, state := range []RatingState{RatingRated, RatingSubmitting} {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(t)
			props := NewRatingProps("p1", "tok", "en").WithRating(blog.Rating{AverageRating: 5, RatingCount: 1})
			props.State = state

			res := f.exec(f.site.Rating.Act("rate", props).Vals(map[string]any{"rating": 1}))

			require.True(t, res.IsOK())
			assert.Zero(t, f.backend.count("ratePost"))
			assert.Empty(t, res.TriggeredEvents)
		})
	}
}

func TestRatingOutOfRange(t *testing.T) {
	f := newFixture(t)
	props := NewRatingProps("p1", "tok", "en").WithRating(blog.Rating{})

	res := f.exec(f.site.Rating.Act("rate", props).Vals(map[string]any{"rating": 9}))

	require.True(t, res.IsOK())
	assert.Zero(t, f.backend.count("ratePost"))
	assert.True(t, res.HasEvent(hxblog.AlertEvent))
	assert.False(t, res.HasEvent(eventbus.RatingUpdated))

	var alert struct {
		Message string `json:"message"`
	}
	require.NoError(t, res.EventDetail(hxblog.AlertEvent, &alert))
	assert.Equal(t, "Rating must be between 1 and 5", alert.Message)
}

func TestRatingBackendFailureAlerts(t *testing.T) {
	f := newFixture(t)
	f.backend.errors["ratePost"] = "rating service unavailable"
	props := NewRatingProps("p1", "tok", "en").WithRating(blog.Rating{})

	res := f.exec(f.site.Rating.Act("rate", props).Vals(map[string]any{"rating": 3}))

	require.True(t, res.IsOK())
	assert.Contains(t, res.HTML, `data-state="idle"`)
	assert.NotContains(t, res.HTML, "Thank you for rating!")

	var alert struct {
		Message string `json:"message"`
	}
	require.NoError(t, res.EventDetail(hxblog.AlertEvent, &alert))
	assert.Equal(t, "rating service unavailable", alert.Message)
}

func TestRatingTokenFallsBackToHeader(t *testing.T) {
	f := newFixture(t)
	props := NewRatingProps("p1", "", "en").WithRating(blog.Rating{})

	res := hxblog.NewTestRequestFor(f.site.Rating.Act("rate", props).Vals(map[string]any{"rating": 4})).
		WithHeader(graphql.HeaderName, "header-token").
		Execute(f.reg.Handler())

	require.True(t, res.IsOK())
	assert.Equal(t, "header-token", f.backend.lastToken())
}

func TestRatingRequiresHTMX(t *testing.T) {
	f := newFixture(t)
	props := NewRatingProps("p1", "", "en").WithRating(blog.Rating{})

	res := hxblog.NewTestRequestFor(f.site.Rating.Act("rate", props).Vals(map[string]any{"rating": 4})).
		WithHeader("HX-Request", "").
		Execute(f.reg.Handler())

	assert.True(t, res.HasStatus(http.StatusForbidden))
	assert.Zero(t, f.backend.count("ratePost"))
}

func TestRatingRenderGuardsInFlightRequests(t *testing.T) {
	f := newFixture(t)
	props := NewRatingProps("p1", "tok", "en").WithRating(blog.Rating{AverageRating: 3.6, RatingCount: 5})

	res, err := hxblog.TestRender[RatingProps](t.Context(), f.site.Rating, props)
	require.NoError(t, err)

	assert.Equal(t, 5, strings.Count(res.HTML, `hx-post="`))
	assert.Contains(t, res.HTML, `hx-sync="this:drop"`)
	assert.Contains(t, res.HTML, `hx-disabled-elt="#`+props.ElementID+` button"`)
	assert.Contains(t, res.HTML, `aria-label="Rate 5 stars"`)
	assert.Equal(t, 4, strings.Count(res.HTML, "blog-rating-star filled"))
	assert.NotContains(t, res.HTML, "disabled>")

	props.State = RatingRated
	res, err = hxblog.TestRender[RatingProps](t.Context(), f.site.Rating, props)
	require.NoError(t, err)
	assert.Zero(t, strings.Count(res.HTML, `hx-post="`))
	assert.Equal(t, 5, strings.Count(res.HTML, " disabled"))
}

func TestRatingPropsAreEncrypted(t *testing.T) {
	f := newFixture(t)
	props := NewRatingProps("p1", "secret-token", "en").WithRating(blog.Rating{})

	a := f.site.Rating.Refresh(props)
	assert.NotContains(t, a.URL(), "secret-token")
	assert.True(t, f.site.Rating.IsSensitive())
}
