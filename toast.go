package hxblog

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Toast kinds.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastError   = "error"
)

// ToastsID is the id of the page element toasts are appended to.
const ToastsID = "blog-toasts"

// toastTTL is how long the page script keeps a toast, in milliseconds.
const toastTTL = "5000"

// Toast is a transient message shown beside the page, such as the backend's
// receipt for a submitted comment.
type Toast struct {
	Kind    string
	Message string
}

// renderToasts appends toasts to the page container with an out-of-band
// swap. Messages are escaped.
func renderToasts(toasts []Toast) string {
	if len(toasts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<div id="` + ToastsID + `" hx-swap-oob="beforeend">`)
	for _, t := range toasts {
		kind := t.Kind
		if kind == "" {
			kind = ToastInfo
		}
		sb.WriteString(`<p class="blog-toast blog-toast-`)
		sb.WriteString(templ.EscapeString(kind))
		sb.WriteString(`" role="status" data-auto-dismiss="` + toastTTL + `">`)
		sb.WriteString(templ.EscapeString(t.Message))
		sb.WriteString(`</p>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer is the layout element toasts are swapped into.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="`+ToastsID+`" class="blog-toasts" aria-live="polite"></div>`)
		return err
	})
}
