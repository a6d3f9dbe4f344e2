package components

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog/lib/cms"
	"github.com/pthm/hxblog/lib/pagination"
)

func blogHeader(m *markup, node *cms.Node, rc *cms.RenderContext) {
	m.open("header", templ.Attributes{"class": "blog-list-header"})
	m.elem("h1", nil, node.Title("Blog"))
	if desc := node.String(cms.PropDescription, ""); desc != "" {
		m.open("div", templ.Attributes{"class": "blog-description"})
		m.html(desc)
		m.close("div")
	}
	m.close("header")
}

// BlogList is the default blog view: a paged list of posts, each rendered
// through the post default view.
func (s *Site) BlogList(node *cms.Node, rc *cms.RenderContext) templ.Component {
	if node == nil {
		return notAvailable("blog-list", rc.T("blog.noContent"))
	}
	return view(func(m *markup) {
		posts := node.ChildrenOfType(cms.TypePost)
		params := pagination.FromRequest(rc.Request, node.Int(cms.PropPageSize, pagination.DefaultPageSize))
		page := pagination.Paginate(posts, params)

		m.open("div", templ.Attributes{"class": "blog-list"})
		blogHeader(m, node, rc)

		if page.TotalCount == 0 {
			m.elem("p", templ.Attributes{"class": "blog-no-posts"}, rc.T("blog.noPosts"))
			m.close("div")
			return
		}

		m.open("div", templ.Attributes{"class": "blog-list-items"})
		for _, post := range page.Items {
			m.component(rc.Render(post, cms.DefaultView))
		}
		m.close("div")

		if page.TotalPages > 1 {
			renderPager(m, rc, page.Page, page.TotalPages, page.HasPrev, page.HasNext)
		}
		m.close("div")
	})
}

func renderPager(m *markup, rc *cms.RenderContext, current, total int, hasPrev, hasNext bool) {
	path := rc.Path()
	m.open("nav", templ.Attributes{"class": "blog-pagination"})
	if hasPrev {
		m.open("a", templ.Attributes{"class": "prev", "href": pagination.URL(path, current-1)})
		m.text("← " + rc.T("blog.previous"))
		m.close("a")
	} else {
		m.raw("<span></span>")
	}

	m.open("span", templ.Attributes{"class": "blog-pagination-info"})
	m.text(rc.T("blog.page") + " " + strconv.Itoa(current) + " " + rc.T("blog.of") + " " + strconv.Itoa(total))
	m.close("span")

	if hasNext {
		m.open("a", templ.Attributes{"class": "next", "href": pagination.URL(path, current+1)})
		m.text(rc.T("blog.next") + " →")
		m.close("a")
	} else {
		m.raw("<span></span>")
	}
	m.close("nav")
}

// BlogCards renders the posts of a blog as a card grid with lazily loaded
// star summaries.
func (s *Site) BlogCards(node *cms.Node, rc *cms.RenderContext) templ.Component {
	if node == nil {
		return notAvailable("blog-list", rc.T("blog.noContent"))
	}
	return view(func(m *markup) {
		posts := node.ChildrenOfType(cms.TypePost)

		m.open("div", templ.Attributes{"class": "blog-list"})
		blogHeader(m, node, rc)

		if len(posts) == 0 {
			m.elem("p", templ.Attributes{"class": "blog-no-posts"}, rc.T("blog.noPostsAvailable"))
			m.close("div")
			return
		}

		m.open("div", templ.Attributes{"class": "blog-cards"})
		for _, post := range posts {
			href := safeURL(post.URL)
			m.open("article", templ.Attributes{"class": "blog-card", "id": "card-" + post.ID})
			m.open("h2", templ.Attributes{"class": "blog-card-title"})
			m.elem("a", templ.Attributes{"href": href}, post.Title(rc.T("blog.untitled")))
			m.close("h2")
			if excerpt := post.String(cms.PropExcerpt, ""); excerpt != "" {
				m.elem("p", templ.Attributes{"class": "blog-card-excerpt"}, excerpt)
			}
			m.open("div", templ.Attributes{"class": "blog-card-footer"})
			if author := post.Ref(cms.PropAuthor).Title(""); author != "" {
				m.elem("span", templ.Attributes{"class": "blog-card-author"}, rc.T("blog.by")+" "+author)
			}
			m.component(s.CardRating.Mount(CardRatingProps{PostID: post.ID, Locale: rc.Locale}))
			m.close("div")
			m.elem("a", templ.Attributes{"class": "blog-card-link", "href": href}, rc.T("blog.readMore")+" →")
			m.close("article")
		}
		m.close("div")
		m.close("div")
	})
}
