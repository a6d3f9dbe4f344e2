package components

import (
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/cms"
)

// postFields are the properties shared by both post views.
type postFields struct {
	id            string
	title         string
	content       string
	excerpt       string
	tags          []string
	published     time.Time
	hasPublished  bool
	modified      time.Time
	hasModified   bool
	allowComments bool
	author        *cms.Node
	ratingCount   int
	ratingTotal   float64
}

func readPost(node *cms.Node, rc *cms.RenderContext) postFields {
	f := postFields{
		id:            node.ID,
		title:         node.Title(rc.T("post.untitled")),
		content:       node.String(cms.PropContent, ""),
		excerpt:       node.String(cms.PropExcerpt, ""),
		tags:          node.Strings(cms.PropTags),
		allowComments: node.Bool(cms.PropAllowComments, true),
		author:        node.Ref(cms.PropAuthor),
		ratingCount:   node.Int(cms.PropRatingCount, 0),
		ratingTotal:   node.Float(cms.PropRatingTotal, 0),
	}
	f.published, f.hasPublished = node.Time(cms.PropDatePublished)
	f.modified, f.hasModified = node.Time(cms.PropDateModified)
	return f
}

// showUpdated reports whether the modification date differs from the
// publication date.
func (f postFields) showUpdated() bool {
	return f.hasModified && (!f.hasPublished || !f.modified.Equal(f.published))
}

// nodeRating is the rating stored on the post node.
func (f postFields) nodeRating() (blog.Rating, bool) {
	if f.ratingCount <= 0 {
		return blog.Rating{}, false
	}
	return blog.Rating{
		PostID:        f.id,
		AverageRating: f.ratingTotal / float64(f.ratingCount),
		RatingCount:   uint(f.ratingCount),
	}, true
}

// ratingProps prefers the pre-fetched rating, then the rating stored on the
// node. Without either the island loads on mount.
func (s *Site) ratingProps(f postFields, rc *cms.RenderContext, pre prefetched) RatingProps {
	props := NewRatingProps(f.id, rc.CSRFToken, rc.Locale)
	if pre.ratingOK {
		return props.WithRating(pre.rating)
	}
	if r, ok := f.nodeRating(); ok {
		return props.WithRating(r)
	}
	return props
}

func (s *Site) commentsProps(f postFields, rc *cms.RenderContext, pre prefetched) CommentsProps {
	props := NewCommentsProps(f.id, rc.CSRFToken, rc.Locale)
	if pre.commentsOK {
		return props.WithComments(pre.comments)
	}
	return props
}

func notAvailable(class, message string) templ.Component {
	return view(func(m *markup) {
		m.elem("div", templ.Attributes{"class": class}, message)
	})
}

func dateTime(m *markup, class, itemprop, prefix string, t time.Time) {
	m.open("time", templ.Attributes{
		"class":    class,
		"datetime": t.Format("2006-01-02"),
		"itemprop": itemprop,
	})
	m.text(prefix + t.Format(dateLayout))
	m.close("time")
}

// Post is the default post view: header, content, author card, rating and
// comments.
func (s *Site) Post(node *cms.Node, rc *cms.RenderContext) templ.Component {
	if node == nil {
		return notAvailable("blog-post", rc.T("post.notAvailable"))
	}
	return view(func(m *markup) {
		f := readPost(node, rc)
		pre := s.prefetch(m.ctx, f.id, rc.CSRFToken, f.allowComments)

		m.open("article", templ.Attributes{
			"class":     "blog-post",
			"id":        "post-" + f.id,
			"itemscope": true,
			"itemtype":  "https://schema.org/BlogPosting",
		})

		m.open("header", templ.Attributes{"class": "blog-post-header"})
		m.open("h1", templ.Attributes{"itemprop": "headline"})
		if node.URL != "" {
			m.elem("a", templ.Attributes{"href": safeURL(node.URL)}, f.title)
		} else {
			m.text(f.title)
		}
		m.close("h1")
		m.open("div", templ.Attributes{"class": "blog-post-meta"})
		if f.hasPublished {
			dateTime(m, "published", "datePublished", rc.T("blog.published")+" ", f.published)
		}
		if f.showUpdated() {
			dateTime(m, "updated", "dateModified", rc.T("blog.updated")+" ", f.modified)
		}
		m.close("div")
		renderTags(m, "blog-post-tags", "", f.tags)
		m.close("header")

		m.open("div", templ.Attributes{"class": "blog-post-content", "itemprop": "articleBody"})
		m.html(f.content)
		m.close("div")

		if f.author != nil {
			m.open("aside", templ.Attributes{"class": "blog-post-author"})
			m.elem("h3", nil, rc.T("author.about"))
			m.component(rc.Render(f.author, cms.DefaultView))
			m.close("aside")
		}

		m.open("aside", templ.Attributes{"class": "blog-post-rating"})
		m.component(s.Rating.Mount(s.ratingProps(f, rc, pre)))
		m.close("aside")

		if f.allowComments {
			m.open("aside", templ.Attributes{"class": "blog-post-comments"})
			m.component(s.Comments.Mount(s.commentsProps(f, rc, pre)))
			m.close("aside")
		}
		m.close("article")
	})
}

// PostFullPage is the standalone article layout with a hero image, inline
// statistics and a sidebar.
func (s *Site) PostFullPage(node *cms.Node, rc *cms.RenderContext) templ.Component {
	if node == nil {
		return notAvailable("blog-full-page", rc.T("post.notAvailable"))
	}
	return view(func(m *markup) {
		f := readPost(node, rc)
		pre := s.prefetch(m.ctx, f.id, rc.CSRFToken, f.allowComments)

		m.open("article", templ.Attributes{
			"class":     "blog-full-page",
			"id":        "post-" + f.id,
			"itemscope": true,
			"itemtype":  "https://schema.org/BlogPosting",
		})

		if img := node.Ref(cms.PropImage); img != nil && img.URL != "" {
			m.open("div", templ.Attributes{"class": "blog-hero"})
			m.open("img", templ.Attributes{"src": safeURL(img.URL), "alt": f.title, "itemprop": "image"})
			m.close("div")
		}

		m.open("header", templ.Attributes{"class": "blog-full-page-header"})
		renderTags(m, "blog-full-page-tags", "", f.tags)
		m.elem("h1", templ.Attributes{"itemprop": "headline"}, f.title)
		if f.excerpt != "" {
			m.elem("p", templ.Attributes{"class": "blog-excerpt", "itemprop": "description"}, f.excerpt)
		}
		m.open("div", templ.Attributes{"class": "blog-full-page-meta"})
		if f.hasPublished {
			dateTime(m, "published", "datePublished", "📅 ", f.published)
		}
		if f.showUpdated() {
			dateTime(m, "updated", "dateModified", "✏️ "+rc.T("blog.updated")+" ", f.modified)
		}
		m.component(s.Stats.Mount(StatsProps{PostID: f.id, Layout: StatsInline, CSRFToken: rc.CSRFToken, Locale: rc.Locale}))
		m.close("div")
		m.close("header")

		m.open("div", templ.Attributes{"class": "blog-full-page-layout"})

		m.open("div", templ.Attributes{"class": "blog-full-page-content"})
		m.open("div", templ.Attributes{"class": "blog-post-content", "itemprop": "articleBody"})
		m.html(f.content)
		m.close("div")
		m.open("aside", templ.Attributes{"class": "blog-post-rating"})
		m.component(s.Rating.Mount(s.ratingProps(f, rc, pre)))
		m.close("aside")
		if f.allowComments {
			m.open("aside", templ.Attributes{"class": "blog-post-comments"})
			m.component(s.Comments.Mount(s.commentsProps(f, rc, pre)))
			m.close("aside")
		}
		m.close("div")

		m.open("aside", templ.Attributes{"class": "blog-full-page-sidebar"})
		if f.author != nil {
			m.open("div", templ.Attributes{"class": "blog-sidebar-author"})
			m.elem("h3", nil, rc.T("author.about"))
			m.component(rc.Render(f.author, cms.DefaultView))
			m.close("div")
		}
		m.open("div", templ.Attributes{"class": "blog-sidebar-stats"})
		m.elem("h3", nil, rc.T("stats.title"))
		m.component(s.Stats.Mount(StatsProps{PostID: f.id, Layout: StatsPanel, CSRFToken: rc.CSRFToken, Locale: rc.Locale}))
		m.close("div")
		if len(f.tags) > 0 {
			m.open("div", templ.Attributes{"class": "blog-sidebar-topics"})
			m.elem("h3", nil, rc.T("blog.topics"))
			renderTags(m, "blog-topic-list", "#", f.tags)
			m.close("div")
		}
		m.close("aside")

		m.close("div")
		m.close("article")
	})
}

func renderTags(m *markup, class, prefix string, tags []string) {
	if len(tags) == 0 {
		return
	}
	m.open("div", templ.Attributes{"class": class})
	for _, tag := range tags {
		m.elem("span", templ.Attributes{"class": "blog-tag", "itemprop": "keywords"}, prefix+tag)
	}
	m.close("div")
}
