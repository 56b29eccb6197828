package menu

import (
	"sort"

	"github.com/atomicstack/dwin-panel/internal/input"
)

// DrawFunc paints a whole screen.
type DrawFunc func()

// HandleFunc consumes one encoder event for the active screen.
type HandleFunc func(input.Event)

// Node is a registered screen.
type Node struct {
	ID     ID
	Draw   DrawFunc
	Handle HandleFunc
}

// Registry maps ids to their draw and input callbacks. Screens that a
// machine's capabilities exclude are simply never registered.
type Registry struct {
	nodes map[ID]*Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[ID]*Node)}
}

// Register installs or replaces the callbacks for id.
func (r *Registry) Register(id ID, draw DrawFunc, handle HandleFunc) {
	r.nodes[id] = &Node{ID: id, Draw: draw, Handle: handle}
}

// Find locates a node by ID.
func (r *Registry) Find(id ID) (*Node, bool) {
	node, ok := r.nodes[id]
	return node, ok
}

// Dispatch routes ev to the handler registered for id. Unknown ids and nodes
// without a handler are a no-op; the return value reports whether a handler
// ran.
func (r *Registry) Dispatch(id ID, ev input.Event) bool {
	node, ok := r.nodes[id]
	if !ok || node.Handle == nil {
		return false
	}
	node.Handle(ev)
	return true
}

// Draw paints the screen registered for id, reporting whether anything ran.
func (r *Registry) Draw(id ID) bool {
	node, ok := r.nodes[id]
	if !ok || node.Draw == nil {
		return false
	}
	node.Draw()
	return true
}

// IDs lists the registered ids in declaration order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
