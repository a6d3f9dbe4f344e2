package hxblog

// AlertEvent is the client event that shows a blocking window.alert. Its
// detail carries the message.
const AlertEvent = "blog:alert"

// Result is returned from action handlers to describe the response.
//
//	return hxblog.OK(props)
//	return hxblog.OK(props).Trigger(eventbus.RatingUpdated, eventbus.PostEvent{PostID: id})
//	return hxblog.OK(props).Alert("Failed to submit rating")
//	return hxblog.Err(props, err)
//
// Triggered events are published on the request's event bus and forwarded to
// the browser in the HX-Trigger header.
type Result[P any] struct {
	props    P
	err      error
	redirect string
	toasts   []Toast
	triggers []TriggerEvent
	headers  map[string]string
	status   int
	skip     bool
}

// TriggerEvent is an event forwarded in HX-Trigger. A nil Detail is sent as
// a bare event.
type TriggerEvent struct {
	Name   string
	Detail any
}

// OK renders the island with props.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err hands err to the registry's OnError.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip means the handler wrote its own response.
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// Redirect navigates the browser via HX-Redirect.
func Redirect[P any](url string) Result[P] {
	return Result[P]{redirect: url}
}

// Toast appends a transient message to the page. Empty messages are
// ignored.
func (r Result[P]) Toast(kind, message string) Result[P] {
	if message == "" {
		return r
	}
	r.toasts = append(r.toasts, Toast{Kind: kind, Message: message})
	return r
}

// Trigger publishes event with an optional detail payload.
func (r Result[P]) Trigger(event string, detail ...any) Result[P] {
	evt := TriggerEvent{Name: event}
	if len(detail) > 0 {
		evt.Detail = detail[0]
	}
	r.triggers = append(r.triggers, evt)
	return r
}

// Alert shows message in a blocking browser alert.
func (r Result[P]) Alert(message string) Result[P] {
	return r.Trigger(AlertEvent, map[string]string{"message": message})
}

// PushURL updates the browser URL via HX-Push-Url.
func (r Result[P]) PushURL(url string) Result[P] {
	return r.Header("HX-Push-Url", url)
}

// Header sets a response header.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status sets the HTTP status code.
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

func (r Result[P]) GetProps() P                 { return r.props }
func (r Result[P]) GetErr() error               { return r.err }
func (r Result[P]) GetRedirect() string         { return r.redirect }
func (r Result[P]) GetToasts() []Toast          { return r.toasts }
func (r Result[P]) GetTriggers() []TriggerEvent { return r.triggers }
func (r Result[P]) GetHeaders() map[string]string {
	return r.headers
}

// GetStatus returns the status code; 0 means 200.
func (r Result[P]) GetStatus() int { return r.status }

// ShouldSkip reports whether the handler wrote its own response.
func (r Result[P]) ShouldSkip() bool { return r.skip }
