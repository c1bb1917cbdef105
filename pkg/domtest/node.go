package domtest

import (
	"fmt"

	"github.com/go-loom/loom/pkg/dom"
)

// Node is the in-memory dom.Node.
type Node struct {
	doc            *Document
	tag            string
	props          map[string]any
	parent         *Node
	children       []*Node
	nextListenerID int
	listeners      map[string][]*listener
}

type listener struct {
	id      int
	fn      func(dom.Event)
	removed bool
}

// Tag returns the element's tag name.
func (n *Node) Tag() string {
	return n.tag
}

// SetProperty writes a named property.
func (n *Node) SetProperty(name string, value any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
}

// Property reads a named property.
func (n *Node) Property(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// AppendChild adds child as the last child of n, detaching it from any
// previous parent first. A move never notifies removal watchers; only
// RemoveChild does. Appending a node under itself or a descendant panics.
func (n *Node) AppendChild(child dom.Node) {
	c := n.doc.own(child, "AppendChild")
	for a := n; a != nil; a = a.parent {
		if a == c {
			panic(fmt.Sprintf("domtest: AppendChild: cannot append <%s> under its own subtree", c.tag))
		}
	}
	if c.parent != nil {
		c.parent.detach(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// RemoveChild detaches child from n. When the subtree was connected to the
// document root, removal watchers are notified synchronously with the
// subtree root. Removing a node that is not a child of n is a no-op.
func (n *Node) RemoveChild(child dom.Node) {
	c, ok := child.(*Node)
	if !ok || c.parent != n {
		return
	}
	wasConnected := c.connected()
	n.detach(c)
	if wasConnected {
		n.doc.notifyRemoval(c)
	}
}

// Children returns the current children in order.
func (n *Node) Children() []dom.Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]dom.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Parent returns the parent node, or nil for detached nodes and the root.
func (n *Node) Parent() dom.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// AddEventListener registers fn for the named event, in registration order,
// and returns a remove function for exactly this registration.
func (n *Node) AddEventListener(name string, fn func(dom.Event)) (remove func()) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	n.nextListenerID++
	l := &listener{id: n.nextListenerID, fn: fn}
	n.listeners[name] = append(n.listeners[name], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := n.listeners[name]
		for i, x := range list {
			if x == l {
				n.listeners[name] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// Dispatch synchronously delivers an event of the given type to listeners
// registered on n, in registration order. There is no bubbling.
func (n *Node) Dispatch(eventType string, detail any) {
	list := n.listeners[eventType]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)
	ev := dom.Event{Type: eventType, Target: n, Detail: detail}
	for _, l := range snapshot {
		if !l.removed {
			l.fn(ev)
		}
	}
}

// connected reports whether n's root ancestor is the document root.
func (n *Node) connected() bool {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur == n.doc.root
}

// detach splices c out of n's children without notification.
func (n *Node) detach(c *Node) {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// own asserts that child is a domtest node belonging to this document.
func (d *Document) own(child dom.Node, op string) *Node {
	c, ok := child.(*Node)
	if !ok || c.doc != d {
		panic(fmt.Sprintf("domtest: %s: node %T does not belong to this document", op, child))
	}
	return c
}
