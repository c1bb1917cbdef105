// Package domtest provides an in-memory display-tree host implementing the
// dom interfaces, plus YAML fixtures and text snapshots for tests.
//
// The host is synchronous and single-goroutine, matching the state graph's
// execution model: removal watchers fire from inside RemoveChild, event
// listeners from inside Dispatch.
package domtest

import (
	"github.com/go-loom/loom/pkg/dom"
)

// Document is the in-memory dom.Document.
type Document struct {
	root        *Node
	nextWatchID int
	watchers    []*removalWatcher
}

type removalWatcher struct {
	id      int
	fn      func(dom.Node)
	stopped bool
}

// NewDocument creates an empty document with a "#document" root.
func NewDocument() *Document {
	d := &Document{}
	d.root = &Node{doc: d, tag: "#document"}
	return d
}

// CreateElement creates a detached element owned by this document.
func (d *Document) CreateElement(tag string) dom.Node {
	return &Node{doc: d, tag: tag}
}

// Root returns the document root.
func (d *Document) Root() dom.Node {
	return d.root
}

// WatchRemovals registers fn to receive the root of every subtree removed
// from the live tree by RemoveChild. Moves via AppendChild do not notify.
func (d *Document) WatchRemovals(fn func(removed dom.Node)) (stop func()) {
	d.nextWatchID++
	w := &removalWatcher{id: d.nextWatchID, fn: fn}
	d.watchers = append(d.watchers, w)
	return func() {
		if w.stopped {
			return
		}
		w.stopped = true
		for i, x := range d.watchers {
			if x == w {
				d.watchers = append(d.watchers[:i:i], d.watchers[i+1:]...)
				break
			}
		}
	}
}

// notifyRemoval delivers removed to every watcher registered at call time.
func (d *Document) notifyRemoval(removed *Node) {
	if len(d.watchers) == 0 {
		return
	}
	snapshot := make([]*removalWatcher, len(d.watchers))
	copy(snapshot, d.watchers)
	for _, w := range snapshot {
		if !w.stopped {
			w.fn(removed)
		}
	}
}
