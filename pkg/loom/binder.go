package loom

import (
	"fmt"
	"sort"

	"github.com/go-loom/loom/pkg/dom"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/state"
)

// Binder binds Props onto host elements and owns the cleanup registry for
// the elements bound through it. A Binder watches exactly one document for
// removals; its registry and watcher live until Close.
type Binder struct {
	doc      dom.Document
	cleanups map[dom.Node]func()
	stop     func()
	closed   bool
}

// NewBinder creates a Binder for doc and starts watching it for removals.
func NewBinder(doc dom.Document) *Binder {
	b := &Binder{
		doc:      doc,
		cleanups: make(map[dom.Node]func()),
	}
	b.stop = doc.WatchRemovals(b.onRemoval)
	return b
}

// Close stops the removal watcher and drops all cleanup registrations
// without running them. Close is idempotent; a closed Binder rejects
// further binds.
func (b *Binder) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.stop()
	b.cleanups = nil
}

// New creates an element with the given tag and binds props onto it.
func (b *Binder) New(tag string, props Props) (dom.Node, error) {
	const op = "loom.Binder.New"
	if b.closed {
		return nil, bindingErr(op, fmt.Errorf("binder is closed"))
	}
	return b.bind(b.doc.CreateElement(tag), props, op)
}

// Hydrate binds props onto an existing element.
func (b *Binder) Hydrate(target dom.Node, props Props) (dom.Node, error) {
	const op = "loom.Binder.Hydrate"
	if b.closed {
		return nil, bindingErr(op, fmt.Errorf("binder is closed"))
	}
	if target == nil {
		return nil, bindingErr(op, fmt.Errorf("nil target node"))
	}
	return b.bind(target, props, op)
}

// bind applies props to node in a fixed order: plain properties, event
// listeners, children, ref, cleanup, parent. The element is fully
// constructed before Parent makes it reachable. Within each group keys
// are applied in sorted order.
func (b *Binder) bind(node dom.Node, props Props, op string) (dom.Node, error) {
	var plain, events []Key
	for k := range props {
		if k.reserved() {
			continue
		}
		if _, ok := k.event(); ok {
			events = append(events, k)
		} else {
			plain = append(plain, k)
		}
	}
	sort.Slice(plain, func(i, j int) bool { return plain[i] < plain[j] })
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })

	for _, k := range plain {
		bindProperty(node, string(k), props[k])
	}
	for _, k := range events {
		name, _ := k.event()
		fn, ok := props[k].(func(dom.Event))
		if !ok {
			return nil, bindingErr(op, fmt.Errorf("listener %q wants func(dom.Event), got %T", name, props[k]))
		}
		node.AddEventListener(name, fn)
	}
	if spec, ok := props[Children]; ok {
		if err := b.bindChildren(node, spec, op); err != nil {
			return nil, err
		}
	}
	if v, ok := props[Ref]; ok {
		ref, okRef := v.(*state.Value[dom.Node])
		if !okRef {
			return nil, bindingErr(op, fmt.Errorf("%s wants *state.Value[dom.Node], got %T", Ref, v))
		}
		ref.Set(node)
	}
	if v, ok := props[Cleanup]; ok {
		fn, okFn := v.(func())
		if !okFn {
			return nil, bindingErr(op, fmt.Errorf("%s wants func(), got %T", Cleanup, v))
		}
		b.cleanups[node] = fn
	}
	if v, ok := props[Parent]; ok {
		parent, okParent := v.(dom.Node)
		if !okParent {
			return nil, bindingErr(op, fmt.Errorf("%s wants dom.Node, got %T", Parent, v))
		}
		parent.AppendChild(node)
	}
	return node, nil
}

// bindProperty writes a plain value once; a state object is kept
// live-synchronized by a computed that rewrites the property on every
// upstream change. The computed is pinned by its subscriptions.
func bindProperty(node dom.Node, name string, v any) {
	if !state.Is(v) {
		node.SetProperty(name, v)
		return
	}
	state.NewComputed(func(tr *state.Tracker) any {
		value := tr.Use(v)
		node.SetProperty(name, value)
		return value
	}).SetLabel("bind:" + node.Tag() + "." + name)
}

// onRemoval fires and forgets cleanup registrations for every node in the
// removed subtree, parent first.
func (b *Binder) onRemoval(removed dom.Node) {
	if len(b.cleanups) == 0 {
		return
	}
	b.runCleanups(removed)
}

func (b *Binder) runCleanups(n dom.Node) {
	if fn, ok := b.cleanups[n]; ok {
		delete(b.cleanups, n)
		fn()
	}
	for _, c := range n.Children() {
		b.runCleanups(c)
	}
}

func bindingErr(op string, err error) error {
	return &errors.LoomError{
		Op:   op,
		Kind: errors.KindBinding,
		Err:  err,
	}
}
