package hxblog

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Action is a fluent builder for the HTMX attributes that invoke a component
// route. Obtain one from Component.Refresh or Component.Act, or build one
// directly with NewAction.
//
//	c.Act("rate", props).Vals(map[string]any{"value": 4}).DisabledElt("this").Attrs()
type Action struct {
	url         string
	method      string
	target      string
	swap        SwapMode
	triggers    []string
	indicator   string
	vals        map[string]any
	disabledElt string
	sync        string
}

// NewAction creates an action for url using method. An empty method means GET.
func NewAction(url, method string) *Action {
	if method == "" {
		method = http.MethodGet
	}
	return &Action{url: url, method: method, swap: SwapOuter}
}

// URL returns the request URL.
func (a *Action) URL() string { return a.url }

// Method returns the HTTP method.
func (a *Action) Method() string { return a.method }

// Target sets hx-target to a CSS selector.
func (a *Action) Target(selector string) *Action {
	a.target = selector
	return a
}

// TargetThis targets the element carrying the attributes.
func (a *Action) TargetThis() *Action { return a.Target("this") }

// Swap sets the swap mode.
func (a *Action) Swap(mode SwapMode) *Action {
	a.swap = mode
	return a
}

func (a *Action) SwapOuter() *Action { return a.Swap(SwapOuter) }
func (a *Action) SwapInner() *Action { return a.Swap(SwapInner) }
func (a *Action) SwapNone() *Action  { return a.Swap(SwapNone) }

// On adds a raw hx-trigger entry. Triggers accumulate and are joined
// with ", ".
func (a *Action) On(trigger string) *Action {
	a.triggers = append(a.triggers, trigger)
	return a
}

// OnLoad fires once when the element is loaded.
func (a *Action) OnLoad() *Action { return a.On("load") }

// OnIntersect fires once when the element enters the viewport.
func (a *Action) OnIntersect() *Action { return a.On("intersect once") }

// OnEvent fires when event reaches the body. An optional filter is a
// JavaScript expression over the event, such as "detail.postId=='42'".
func (a *Action) OnEvent(event string, filter ...string) *Action {
	trigger := event
	if len(filter) > 0 && filter[0] != "" {
		trigger += "[" + filter[0] + "]"
	}
	return a.On(trigger + " from:body")
}

// OnPostEvent fires when event reaches the body for the given post.
func (a *Action) OnPostEvent(event, postID string) *Action {
	return a.OnEvent(event, fmt.Sprintf("detail.postId==%s", jsString(postID)))
}

// Indicator sets the element shown while the request is in flight.
func (a *Action) Indicator(selector string) *Action {
	a.indicator = selector
	return a
}

// Vals merges extra values into the request parameters.
func (a *Action) Vals(vals map[string]any) *Action {
	if a.vals == nil {
		a.vals = make(map[string]any, len(vals))
	}
	maps.Copy(a.vals, vals)
	return a
}

// DisabledElt disables the matched elements while the request is in flight.
func (a *Action) DisabledElt(selector string) *Action {
	a.disabledElt = selector
	return a
}

// Sync sets hx-sync, for example "this:drop" to ignore repeat requests.
func (a *Action) Sync(strategy string) *Action {
	a.sync = strategy
	return a
}

// Attrs returns the HTMX attributes.
func (a *Action) Attrs() templ.Attributes {
	attrs := templ.Attributes{
		methodAttr(a.method): a.url,
		"hx-swap":            string(a.swap),
	}
	if a.target != "" {
		attrs["hx-target"] = a.target
	}
	if len(a.triggers) > 0 {
		attrs["hx-trigger"] = strings.Join(a.triggers, ", ")
	}
	if a.indicator != "" {
		attrs["hx-indicator"] = a.indicator
	}
	if len(a.vals) > 0 {
		data, err := json.Marshal(a.vals)
		if err == nil {
			attrs["hx-vals"] = string(data)
		}
	}
	if a.disabledElt != "" {
		attrs["hx-disabled-elt"] = a.disabledElt
	}
	if a.sync != "" {
		attrs["hx-sync"] = a.sync
	}
	return attrs
}

func methodAttr(method string) string {
	switch method {
	case http.MethodPost:
		return "hx-post"
	case http.MethodPut:
		return "hx-put"
	case http.MethodPatch:
		return "hx-patch"
	case http.MethodDelete:
		return "hx-delete"
	}
	return "hx-get"
}

// jsString quotes s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "<", `\x3c`, ">", `\x3e`)
	return "'" + r.Replace(s) + "'"
}
