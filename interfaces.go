package hxblog

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// Hydrater is implemented by islands to complete decoded props before any
// handler runs, for example by fetching data the props only reference.
//
// Hydrate runs exactly once per request.
type Hydrater[P any] interface {
	Hydrate(ctx context.Context, props *P) error
}

// Renderer is implemented by islands to produce their markup. It is called
// for the load request and after every action that returns OK or Err.
// Render should not have side effects.
type Renderer[P any] interface {
	Render(ctx context.Context, props P) templ.Component
}

// Island is the full lifecycle an island implements.
type Island[P any] interface {
	Hydrater[P]
	Renderer[P]
}

// HXComponent is the routing surface of a registered component.
type HXComponent interface {
	HXPrefix() string
	HXServeHTTP(w http.ResponseWriter, r *http.Request)
}

// attachable is satisfied by types embedding *Component[P].
type attachable interface {
	HXComponent
	attach(reg *Registry)
}
