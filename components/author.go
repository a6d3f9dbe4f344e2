package components

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog/lib/cms"
)

// AuthorCard is the default author view.
func AuthorCard(node *cms.Node, rc *cms.RenderContext) templ.Component {
	if node == nil {
		return notAvailable("blog-author", rc.T("author.notAvailable"))
	}
	return view(func(m *markup) {
		name := node.Title("Anonymous")

		m.open("div", templ.Attributes{
			"class":     "blog-author",
			"itemscope": true,
			"itemtype":  "https://schema.org/Person",
		})

		m.open("div", templ.Attributes{"class": "blog-author-header"})
		if avatar := node.Ref(cms.PropAvatar); avatar != nil && avatar.URL != "" {
			m.open("img", templ.Attributes{
				"class":    "blog-author-avatar",
				"src":      safeURL(avatar.URL),
				"alt":      name,
				"itemprop": "image",
			})
		}
		m.open("div", nil)
		m.elem("h4", templ.Attributes{"itemprop": "name"}, name)
		if role := node.String(cms.PropRole, ""); role != "" {
			m.elem("div", templ.Attributes{"class": "blog-author-role", "itemprop": "jobTitle"}, role)
		}
		m.close("div")
		m.close("div")

		if bio := node.String(cms.PropBio, ""); bio != "" {
			m.open("div", templ.Attributes{"class": "blog-author-bio", "itemprop": "description"})
			m.html(bio)
			m.close("div")
		}

		if links := node.Strings(cms.PropSocialLinks); len(links) > 0 {
			m.open("div", templ.Attributes{"class": "blog-author-social"})
			for _, link := range links {
				m.elem("a", templ.Attributes{
					"href":     safeURL(link),
					"target":   "_blank",
					"rel":      "noopener noreferrer",
					"itemprop": "sameAs",
				}, LinkLabel(link))
			}
			m.close("div")
		}
		m.close("div")
	})
}

// LinkLabel names the network a profile URL points to.
func LinkLabel(url string) string {
	switch {
	case strings.Contains(url, "twitter.com"), strings.Contains(url, "x.com"):
		return "Twitter"
	case strings.Contains(url, "linkedin.com"):
		return "LinkedIn"
	case strings.Contains(url, "github.com"):
		return "GitHub"
	case strings.Contains(url, "facebook.com"):
		return "Facebook"
	default:
		return "Website"
	}
}
