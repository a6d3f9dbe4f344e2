package components

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/cms"
)

func renderNode(t *testing.T, f *fixture, node *cms.Node, viewName, target string) string {
	t.Helper()
	rc := cms.NewRenderContext(httptest.NewRequest("GET", target, nil), f.views, nil, "en")
	rc.CSRFToken = "page-token"
	var sb strings.Builder
	require.NoError(t, f.views.Render(node, viewName, rc).Render(t.Context(), &sb))
	return sb.String()
}

func samplePost(id string) *cms.Node {
	author := cms.NewNode("ann", cms.TypeAuthor, map[string]any{
		cms.PropTitle:       "Ann Author",
		cms.PropRole:        "Editor",
		cms.PropBio:         `<p>Writes <b>things</b></p><img src=x onerror="alert(1)">`,
		cms.PropSocialLinks: []any{"https://x.com/ann", "https://github.com/ann", "https://ann.dev"},
	})
	return cms.NewNode(id, cms.TypePost, map[string]any{
		cms.PropTitle:         "Hello " + id,
		cms.PropContent:       "<p>Body of " + id + "</p>",
		cms.PropExcerpt:       "Excerpt " + id,
		cms.PropTags:          []string{"go", "htmx"},
		cms.PropDatePublished: "2024-01-15",
		cms.PropDateModified:  "2024-02-01",
		cms.PropRatingCount:   2,
		cms.PropRatingTotal:   9,
	}).SetRef(cms.PropAuthor, author)
}

func sampleBlog(posts int) *cms.Node {
	root := cms.NewNode("blog", cms.TypeBlog, map[string]any{
		cms.PropTitle:       "Engineering",
		cms.PropDescription: "<em>Notes</em>",
		cms.PropPageSize:    10,
	})
	for i := 1; i <= posts; i++ {
		p := samplePost(fmt.Sprintf("p%02d", i))
		p.URL = "/posts/" + p.ID
		root.AddChild(p)
	}
	root.AddChild(cms.NewNode("file", cms.TypeFile, nil))
	return root
}

func TestBlogListPagination(t *testing.T) {
	f := newFixture(t)

	html := renderNode(t, f, sampleBlog(25), cms.DefaultView, "/?page=3")

	assert.Equal(t, 5, strings.Count(html, `class="blog-post"`))
	assert.Contains(t, html, "Hello p21")
	assert.Contains(t, html, "Hello p25")
	assert.NotContains(t, html, "Hello p20")
	assert.Contains(t, html, "Page 3 of 3")
	assert.Contains(t, html, `href="/?page=2"`)
	assert.NotContains(t, html, "Next →")
	assert.Contains(t, html, "<em>Notes</em>")
}

func TestBlogListHugePageShowsLastPage(t *testing.T) {
	f := newFixture(t)

	html := renderNode(t, f, sampleBlog(25), cms.DefaultView, "/?page=9223372036854775807")

	assert.Equal(t, 5, strings.Count(html, `class="blog-post"`))
	assert.Contains(t, html, "Page 3 of 3")
}

func TestBlogListSinglePageHasNoPager(t *testing.T) {
	f := newFixture(t)

	html := renderNode(t, f, sampleBlog(3), cms.DefaultView, "/?page=abc")

	assert.Equal(t, 3, strings.Count(html, `class="blog-post"`))
	assert.NotContains(t, html, "blog-pagination")
}

func TestBlogListEmpty(t *testing.T) {
	f := newFixture(t)

	html := renderNode(t, f, sampleBlog(0), cms.DefaultView, "/?lang=de")

	assert.Contains(t, html, "Noch keine Beiträge.")
}

func TestBlogCards(t *testing.T) {
	f := newFixture(t)

	html := renderNode(t, f, sampleBlog(2), ViewCards, "/cards")

	assert.Equal(t, 2, strings.Count(html, `class="blog-card"`))
	assert.Contains(t, html, `href="/posts/p01"`)
	assert.Contains(t, html, "By Ann Author")
	assert.Contains(t, html, "Excerpt p02")
	assert.Equal(t, 2, strings.Count(html, `hx-trigger="intersect once"`))
	// card ratings load lazily
	assert.Zero(t, f.backend.count("getRating"))
}

func TestPostDefaultPrefetches(t *testing.T) {
	f := newFixture(t)
	f.backend.rating = blog.Rating{PostID: "p1", AverageRating: 3, RatingCount: 3}
	f.backend.comments = seedComments()

	html := renderNode(t, f, samplePost("p1"), cms.DefaultView, "/posts/p1")

	assert.Equal(t, 1, f.backend.count("getRating"))
	assert.Equal(t, 1, f.backend.count("getComments"))
	assert.Equal(t, "page-token", f.backend.lastToken())

	assert.Contains(t, html, "Hello p1")
	assert.Contains(t, html, "Published January 15, 2024")
	assert.Contains(t, html, "Updated February 1, 2024")
	assert.Contains(t, html, "3.0")
	assert.Contains(t, html, "Comments (2)")
	assert.Contains(t, html, "About the author")
	assert.Contains(t, html, "Ann Author")
	// pre-fetched islands render in place
	assert.NotContains(t, html, `hx-trigger="load"`)
	assert.NotContains(t, html, "page-token")
}

func TestPostDefaultFallsBackToNodeRating(t *testing.T) {
	f := newFixture(t)
	f.backend.errors["getRating"] = "down"
	f.backend.errors["getComments"] = "down"

	html := renderNode(t, f, samplePost("p1"), cms.DefaultView, "/posts/p1")

	// 9 / 2 from node properties
	assert.Contains(t, html, "4.5")
	assert.Contains(t, html, "(2 ratings)")
	// comments load on mount instead
	assert.Contains(t, html, `hx-trigger="load"`)
	assert.Contains(t, html, "Loading comments...")
}

func TestPostWithoutComments(t *testing.T) {
	f := newFixture(t)
	post := samplePost("p1")
	post.Properties[cms.PropAllowComments] = false

	html := renderNode(t, f, post, cms.DefaultView, "/posts/p1")

	assert.NotContains(t, html, "blog-comments")
	assert.Zero(t, f.backend.count("getComments"))
}

func TestPostFullPage(t *testing.T) {
	f := newFixture(t)
	post := samplePost("p1")
	post.SetRef(cms.PropImage, &cms.Node{ID: "img", Type: cms.TypeFile, URL: "/files/hero.png"})

	html := renderNode(t, f, post, ViewFullPage, "/posts/p1")

	assert.Contains(t, html, `src="/files/hero.png"`)
	assert.Contains(t, html, "Excerpt p1")
	assert.Contains(t, html, "📅 January 15, 2024")
	assert.Contains(t, html, "#htmx")
	assert.Contains(t, html, "Topics")
	assert.Contains(t, html, "Post statistics")
	assert.Contains(t, html, "blog-stats-inline")
	assert.Contains(t, html, "blog-stats")
}

func TestAuthorCard(t *testing.T) {
	f := newFixture(t)
	author := samplePost("p1").Ref(cms.PropAuthor)

	html := renderNode(t, f, author, cms.DefaultView, "/authors/ann")

	assert.Contains(t, html, "Ann Author")
	assert.Contains(t, html, "Editor")
	assert.Contains(t, html, "<b>things</b>")
	assert.NotContains(t, html, "onerror")
	assert.True(t, strings.Contains(html, ">Twitter<") && strings.Contains(html, ">GitHub<") && strings.Contains(html, ">Website<"))
}

func TestNotAvailableFallbacks(t *testing.T) {
	f := newFixture(t)
	rc := cms.NewRenderContext(httptest.NewRequest("GET", "/", nil), f.views, nil, "en")

	tests := []struct {
		view cms.View
		want string
	}{
		{f.site.Post, "Post not available"},
		{f.site.PostFullPage, "Post not available"},
		{f.site.BlogList, "No blog content available"},
		{f.site.BlogCards, "No blog content available"},
		{AuthorCard, "Author information not available"},
	}
	for _, tt := range tests {
		var sb strings.Builder
		require.NoError(t, tt.view(nil, rc).Render(t.Context(), &sb))
		assert.Contains(t, sb.String(), tt.want)
	}
	assert.Zero(t, f.backend.count("getRating"))
}

func TestLinkLabel(t *testing.T) {
	tests := map[string]string{
		"https://twitter.com/a":      "Twitter",
		"https://x.com/a":            "Twitter",
		"https://www.linkedin.com/a": "LinkedIn",
		"https://github.com/a":       "GitHub",
		"https://facebook.com/a":     "Facebook",
		"https://example.org":        "Website",
	}
	for url, want := range tests {
		assert.Equal(t, want, LinkLabel(url), url)
	}
}
