// Package dom defines the service-provider interface between Loom's binding
// layer and a display-tree host: a live tree of nodes with properties,
// event dispatch, and removal notification.
//
// Loom consumes this interface; it does not render. Package domtest provides
// an in-memory implementation for tests and examples, and any platform with
// a node tree (a browser bridge, a terminal UI, a scene graph) can implement
// it to become a Loom target.
package dom

// Node is one element of the host's display tree.
type Node interface {
	// Tag returns the element's tag name, fixed at creation.
	Tag() string

	// SetProperty writes a named property. Hosts decide how properties
	// affect presentation; Loom only writes them.
	SetProperty(name string, value any)

	// Property reads a named property, reporting whether it was ever set.
	Property(name string) (any, bool)

	// AppendChild adds child as the last child of this node, detaching it
	// from any previous parent first.
	AppendChild(child Node)

	// RemoveChild detaches child from this node. Removing a node that is
	// not a child is a no-op.
	RemoveChild(child Node)

	// Children returns the current children in order.
	Children() []Node

	// Parent returns the parent node, or nil for detached nodes and roots.
	Parent() Node

	// AddEventListener registers fn for the named event and returns a
	// function that removes exactly this registration.
	AddEventListener(name string, fn func(Event)) (remove func())
}

// Document is the host's document: an element factory, a root, and a
// removal-notification facility scoped to the whole tree.
type Document interface {
	// CreateElement creates a detached element with the given tag.
	CreateElement(tag string) Node

	// Root returns the document root node.
	Root() Node

	// WatchRemovals registers fn to receive the root of every subtree
	// removed from the live document tree, and returns a function that
	// stops the subscription. Consumers walk removed subtrees themselves.
	// Hosts may deliver notifications synchronously or asynchronously.
	WatchRemovals(fn func(removed Node)) (stop func())
}

// Event is one dispatched host event.
type Event struct {
	// Type is the event name, e.g. "click".
	Type string
	// Target is the node the event was dispatched on.
	Target Node
	// Detail is host-defined event payload, if any.
	Detail any
}
