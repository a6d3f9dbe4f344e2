package cms

import (
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// DefaultView is the view used when none is requested.
const DefaultView = "default"

// View renders a node.
type View func(node *Node, rc *RenderContext) templ.Component

type viewKey struct {
	nodeType string
	name     string
}

// Views maps (node type, view name) to views.
type Views struct {
	mu    sync.RWMutex
	views map[viewKey]View
}

// NewViews creates an empty registry.
func NewViews() *Views {
	return &Views{views: make(map[viewKey]View)}
}

// Register adds or replaces a view.
func (v *Views) Register(nodeType, name string, view View) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.views[viewKey{nodeType, name}] = view
}

// Lookup finds the view for nodeType, falling back to the default view when
// name is unknown.
func (v *Views) Lookup(nodeType, name string) (View, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if name == "" {
		name = DefaultView
	}
	if view, ok := v.views[viewKey{nodeType, name}]; ok {
		return view, true
	}
	view, ok := v.views[viewKey{nodeType, DefaultView}]
	return view, ok
}

// Render renders node with the named view. Unknown node types render
// nothing.
func (v *Views) Render(node *Node, name string, rc *RenderContext) templ.Component {
	if node == nil {
		return templ.NopComponent
	}
	view, ok := v.Lookup(node.Type, name)
	if !ok {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			rc.Logger().DebugContext(ctx, "no view registered",
				"node_type", node.Type, "view", name)
			return nil
		})
	}
	return view(node, rc)
}
