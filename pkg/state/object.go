package state

import "fmt"

// Object kinds, as reported in ObjectInfo.Kind.
const (
	KindValue    = "value"
	KindComputed = "computed"
)

// Object is the capability shared by every state object. Only Value and
// Computed satisfy it; the unexported methods seal the interface. The
// assertion `v.(Object)` is the discriminant for "is this a state object",
// with no reflection involved.
type Object interface {
	// stateNode exposes the graph-side node.
	stateNode() *node
	// valueAny returns the current value as an untyped snapshot.
	valueAny() any
}

// Is reports whether v is a state object (a Value or Computed of any type).
func Is(v any) bool {
	_, ok := v.(Object)
	return ok
}

// Peek returns obj's current value without establishing a dependency.
func Peek(obj Object) any {
	return obj.valueAny()
}

// Dependencies returns the objects obj currently reads, for tooling and
// tests. The order is unspecified. Values have no dependencies.
func Dependencies(obj Object) []ObjectInfo {
	n := obj.stateNode()
	if len(n.deps) == 0 {
		return nil
	}
	out := make([]ObjectInfo, 0, len(n.deps))
	for dep := range n.deps {
		out = append(out, dep.info())
	}
	return out
}

// node is the graph-side identity of one state object: its emitter, its
// dependency set, and its tracing identity.
type node struct {
	id        uint64
	kind      string
	label     string
	events    emitter
	deps      map[*node]struct{}
	destroyed bool
}

// lastID is the node id counter. The graph is single-threaded by contract,
// so no synchronization is needed.
var lastID uint64

func newNode(kind string) *node {
	lastID++
	return &node{id: lastID, kind: kind}
}

func (n *node) info() ObjectInfo {
	label := n.label
	if label == "" {
		label = fmt.Sprintf("%s#%d", n.kind, n.id)
	}
	return ObjectInfo{ID: n.id, Kind: n.kind, Label: label}
}

// destroy emits destroyed exactly once so dependents detach their handlers.
func (n *node) destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	if t := activeTracer; t != nil {
		t.ObjectDestroyed(n.info())
	}
	n.events.emit(eventDestroyed)
}
