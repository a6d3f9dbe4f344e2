package components

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/pthm/hxblog"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/eventbus"
	"github.com/pthm/hxblog/lib/i18n"
)

// Form field names of the comment form.
const (
	fieldAuthorName  = "authorName"
	fieldAuthorEmail = "authorEmail"
	fieldBody        = "body"
)

// CommentsProps is the state of a comments island. Everything below
// ElementID is rebuilt on each request.
type CommentsProps struct {
	PostID    string `msgpack:"post"`
	CSRFToken string `msgpack:"t,omitempty"`
	Locale    string `msgpack:"l,omitempty"`
	ElementID string `msgpack:"id"`

	Comments    []blog.Comment    `msgpack:"-"`
	Loaded      bool              `msgpack:"-"`
	Form        blog.NewComment   `msgpack:"-"`
	FieldErrors map[string]string `msgpack:"-"`
	Error       string            `msgpack:"-"`
	Notice      string            `msgpack:"-"`
	FormOnly    bool              `msgpack:"-"`
}

// NewCommentsProps returns props for a comments island that loads the
// approved comments once mounted.
func NewCommentsProps(postID, token, locale string) CommentsProps {
	return CommentsProps{
		PostID:    postID,
		CSRFToken: token,
		Locale:    locale,
		ElementID: elementID("comments"),
	}
}

// WithComments returns props showing the approved subset of comments
// without fetching.
func (p CommentsProps) WithComments(comments []blog.Comment) CommentsProps {
	p.Comments = blog.Approved(comments)
	p.Loaded = true
	return p
}

// Comments lists the approved comments of a post and accepts new ones.
type Comments struct {
	*hxblog.Component[CommentsProps]
	deps Deps
}

// NewComments creates the comments island.
func NewComments(deps Deps) *Comments {
	c := &Comments{deps: deps}
	c.Component = hxblog.New[CommentsProps]("comments", c).Sensitive()
	c.Action("submit", c.handleSubmit)
	return c
}

// Hydrate loads the approved comments for render requests. Actions answer
// with the form alone and load the list themselves when they need it. A
// failed load renders an empty list.
func (c *Comments) Hydrate(ctx context.Context, props *CommentsProps) error {
	if hxblog.ActionFrom(ctx) != "" {
		return nil
	}
	props.Comments = c.load(ctx, c.deps.islandService(props.CSRFToken, hxblog.RequestFrom(ctx)), props.PostID)
	props.Loaded = true
	return nil
}

func (c *Comments) load(ctx context.Context, svc *blog.Service, postID string) []blog.Comment {
	comments, err := svc.GetApprovedComments(ctx, postID)
	if err != nil {
		c.deps.logger().DebugContext(ctx, "comments fetch failed",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return comments
}

func (c *Comments) handleSubmit(ctx context.Context, props CommentsProps, r *http.Request) hxblog.Result[CommentsProps] {
	t := i18n.For(props.Locale)
	props.FormOnly = true
	props.Form = blog.NewComment{
		AuthorName:  r.FormValue(fieldAuthorName),
		AuthorEmail: r.FormValue(fieldAuthorEmail),
		Body:        r.FormValue(fieldBody),
	}

	if err := props.Form.Validate(); err != nil {
		props.Error = t.T("comments.required")
		var ve *blog.ValidationError
		if errors.As(err, &ve) {
			props.FieldErrors = ve.Fields()
		}
		return hxblog.OK(props)
	}

	svc := c.deps.islandService(props.CSRFToken, r)
	receipt, err := svc.CreateComment(ctx, props.PostID, props.Form)
	if err != nil {
		props.Error = err.Error()
		if props.Error == "" {
			props.Error = t.T("comments.failed")
		}
		return hxblog.OK(props)
	}

	props.Form = blog.NewComment{}
	props.Notice = t.T("comments.success")
	if !receipt.Status.IsApproved() {
		return hxblog.OK(props).Toast(hxblog.ToastInfo, receipt.Message)
	}

	// The new comment is visible, so the whole island is swapped in.
	props.FormOnly = false
	props.Comments = c.load(ctx, svc, props.PostID)
	props.Loaded = true
	return hxblog.OK(props).
		Header("HX-Retarget", "#"+props.ElementID).
		Toast(hxblog.ToastInfo, receipt.Message).
		Trigger(eventbus.CommentAdded, eventbus.PostEvent{PostID: props.PostID})
}

// Mount embeds the island in a page. Props without pre-fetched comments
// load once the page has loaded.
func (c *Comments) Mount(props CommentsProps) templ.Component {
	if !props.Loaded {
		return c.Defer(props, c.Render(context.Background(), props))
	}
	return c.Render(context.Background(), props)
}

// Render produces the island markup.
func (c *Comments) Render(_ context.Context, props CommentsProps) templ.Component {
	t := i18n.For(props.Locale)
	if props.FormOnly {
		return view(func(m *markup) { c.renderForm(m, t, props) })
	}
	return view(func(m *markup) {
		m.open("section", templ.Attributes{"class": "blog-comments", "id": props.ElementID})

		if !props.Loaded {
			m.elem("p", templ.Attributes{"class": "blog-comments-loading"}, t.T("comments.loading"))
			m.close("section")
			return
		}

		m.open("h3", nil)
		m.textf("%s (%d)", t.T("comments.title"), len(props.Comments))
		m.close("h3")

		if len(props.Comments) == 0 {
			m.elem("p", templ.Attributes{"class": "blog-comments-empty"}, t.T("comments.empty"))
		} else {
			m.open("ul", templ.Attributes{"class": "blog-comments-list"})
			for _, cm := range props.Comments {
				renderComment(m, cm)
			}
			m.close("ul")
		}

		c.renderForm(m, t, props)
		m.close("section")
	})
}

// renderComment writes one approved comment. The body is stored HTML and is
// written unescaped after passing the bluemonday UGC policy.
func renderComment(m *markup, cm blog.Comment) {
	m.open("li", templ.Attributes{"class": "blog-comment", "id": "comment-" + cm.UUID})
	m.open("div", templ.Attributes{"class": "blog-comment-meta"})
	m.elem("strong", nil, cm.AuthorName)
	if ts, ok := cm.CreatedAt(); ok {
		m.raw(" ")
		m.elem("time", templ.Attributes{"datetime": cm.Created}, ts.Format(dateLayout))
	}
	m.close("div")
	m.open("div", templ.Attributes{"class": "blog-comment-body"})
	m.html(cm.Body)
	m.close("div")
	m.close("li")
}

func (c *Comments) renderForm(m *markup, t i18n.Translator, props CommentsProps) {
	id := props.ElementID
	action := c.Act("submit", props).
		Target("#" + id + "-form").
		SwapOuter().
		DisabledElt("#" + id + " button[type=submit]").
		Sync("this:drop").
		Indicator("#" + id + "-busy")

	m.open("form", merge(templ.Attributes{"class": "blog-comment-form", "id": id + "-form"}, action.Attrs()))
	m.elem("h4", nil, t.T("comments.leave"))

	if props.Error != "" {
		m.elem("p", templ.Attributes{"class": "blog-comment-error", "role": "alert"}, props.Error)
	}
	if props.Notice != "" {
		m.elem("p", templ.Attributes{"class": "blog-comment-success", "role": "status"}, props.Notice)
	}

	invalid := func(field string) string {
		if _, ok := props.FieldErrors[field]; ok {
			return t.T("comments.fieldRequired")
		}
		return ""
	}

	formField(m, id+"-name", fieldAuthorName, "text", t.T("comments.name"), "", props.Form.AuthorName, invalid("AuthorName"))
	formField(m, id+"-email", fieldAuthorEmail, "email", t.T("comments.email"), t.T("comments.emailHint"), props.Form.AuthorEmail, invalid("AuthorEmail"))

	m.open("label", templ.Attributes{"for": id + "-body"})
	m.text(t.T("comments.body"))
	m.close("label")
	bodyErr := invalid("Body")
	m.open("textarea", fieldAttrs(id+"-body", templ.Attributes{"name": fieldBody, "rows": "4", "required": true}, bodyErr))
	m.text(props.Form.Body)
	m.close("textarea")
	fieldError(m, id+"-body", bodyErr)

	m.open("button", templ.Attributes{"type": "submit"})
	m.elem("span", templ.Attributes{"class": "htmx-indicator", "id": id + "-busy"}, t.T("comments.submitting"))
	m.elem("span", templ.Attributes{"class": "idle-label"}, t.T("comments.submit"))
	m.close("button")
	m.close("form")
}

func formField(m *markup, id, name, kind, label, hint, value, errMsg string) {
	m.open("label", templ.Attributes{"for": id})
	m.text(label)
	if hint != "" {
		m.raw(" ")
		m.elem("small", nil, "("+hint+")")
	}
	m.close("label")
	m.open("input", fieldAttrs(id, templ.Attributes{
		"name":     name,
		"type":     kind,
		"value":    value,
		"required": true,
	}, errMsg))
	fieldError(m, id, errMsg)
}

func fieldAttrs(id string, attrs templ.Attributes, errMsg string) templ.Attributes {
	attrs["id"] = id
	if errMsg == "" {
		return attrs
	}
	return merge(attrs, templ.Attributes{"aria-invalid": "true", "aria-describedby": id + "-error"})
}

func fieldError(m *markup, id, errMsg string) {
	if errMsg != "" {
		m.elem("small", templ.Attributes{"class": "blog-field-error", "id": id + "-error"}, errMsg)
	}
}
