package csrf

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"
)

// HeaderName is the request header carrying the token to the backend.
const HeaderName = "X-CSRF-Token"

// missingComment is emitted in place of the script when no token resolved.
const missingComment = "<!-- No CSRF token available -->"

// InlineScript returns a component that publishes token on
// window.contextJsParameters.csrfToken and makes HTMX send it as
// X-CSRF-Token on every island request.
func InlineScript(token string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, ScriptHTML(token))
		return err
	})
}

// ScriptHTML renders the bootstrap script markup.
func ScriptHTML(token string) string {
	tok, ok := Normalize(token)
	if !ok {
		return missingComment
	}
	// json.Marshal escapes <, > and & so the literal cannot close the tag.
	lit, _ := json.Marshal(tok)
	return `<script>` +
		`window.contextJsParameters = window.contextJsParameters || {};` +
		`window.contextJsParameters.csrfToken = ` + string(lit) + `;` +
		`(function(){var m=document.createElement("meta");m.name="csrf-token";m.content=` + string(lit) + `;document.head.appendChild(m);})();` +
		`document.addEventListener("htmx:configRequest",function(e){` +
		`var t=window.contextJsParameters&&window.contextJsParameters.csrfToken;` +
		`if(t){e.detail.headers["` + HeaderName + `"]=t;}});` +
		`</script>`
}
