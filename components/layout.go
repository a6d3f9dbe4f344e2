package components

import (
	"github.com/a-h/templ"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/csrf"
	"github.com/pthm/hxblog/lib/i18n"
)

// HTMXScript is the HTMX build loaded by every page.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

// pageScript shows alerts raised by islands and dismisses toasts.
const pageScript = `<script>` +
	`document.body.addEventListener("` + hxblog.AlertEvent + `",function(e){` +
	`if(e.detail&&e.detail.message){window.alert(e.detail.message);}});` +
	`document.body.addEventListener("htmx:afterSwap",function(){` +
	`document.querySelectorAll("[data-auto-dismiss]").forEach(function(el){` +
	`var ms=parseInt(el.getAttribute("data-auto-dismiss"),10);el.removeAttribute("data-auto-dismiss");` +
	`setTimeout(function(){el.remove();},ms);});});` +
	`</script>`

// Page wraps body in the HTML document. token is the CSRF token resolved for
// this render; without one the bootstrap script is replaced by a comment.
func Page(title, locale, token string, body templ.Component) templ.Component {
	return view(func(m *markup) {
		m.raw("<!DOCTYPE html>")
		m.open("html", templ.Attributes{"lang": i18n.Locale(locale)})
		m.raw("<head>")
		m.raw(`<meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.elem("title", nil, title)
		m.open("script", templ.Attributes{"src": HTMXScript, "defer": true})
		m.close("script")
		m.raw("</head>")
		m.raw("<body>")
		m.component(csrf.InlineScript(token))
		m.component(body)
		m.component(hxblog.ToastContainer())
		m.raw(pageScript)
		m.raw("</body>")
		m.close("html")
	})
}
