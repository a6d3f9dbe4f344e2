// Package hxblog is the island runtime of the blog presentation layer.
//
// Pages are rendered on the server. Interactive parts of a page (the star
// rating, the comment list and form, the statistics panel) are islands:
// small server components that HTMX loads after the page and talks to for
// every interaction.
//
// # Components
//
// An island embeds *Component[P], where P is its props type, and implements
// Hydrate and Render:
//
//	type Stats struct {
//	    *hxblog.Component[StatsProps]
//	    svc *blog.Service
//	}
//
//	func NewStats(svc *blog.Service) *Stats {
//	    c := &Stats{svc: svc}
//	    c.Component = hxblog.New[StatsProps]("stats", c)
//	    return c
//	}
//
// Props are encoded into every URL the island emits. They are signed by
// default and encrypted when the component is marked Sensitive, which is
// required for props that carry the CSRF token.
//
// # Actions
//
// Actions are registered by name and invoked from markup through the Action
// builder:
//
//	c.Action("rate", c.handleRate)
//	c.Act("rate", props).Vals(map[string]any{"value": 4}).Sync("this:drop").Attrs()
//
// The runtime decodes props, calls Hydrate, runs the handler and renders the
// returned props. If the browser abandons the request before the result is
// written, the response is dropped.
//
// # Events
//
// Each island request gets its own eventbus.Bus. Events published on it,
// either directly with Publish or through Result.Trigger, are forwarded to the
// browser in the HX-Trigger header, where sibling islands pick them up:
//
//	return hxblog.OK(props).Trigger(eventbus.CommentAdded, eventbus.PostEvent{PostID: id})
//	c.Refresh(props).OnPostEvent(eventbus.CommentAdded, id).Attrs()
//
// # Registration
//
//	reg, err := hxblog.NewRegistry(key)
//	reg.Add(rating, comments, stats)
//	router.Handle("/_c/*", reg.Handler())
//
// Mutating requests must carry HX-Request: true.
package hxblog
