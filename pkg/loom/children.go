package loom

import (
	"sort"

	"github.com/go-loom/loom/pkg/dom"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/state"
)

// bindChildren installs the children binding for node. The whole shape is
// walked inside one computed, so a state object read at any level re-runs
// the walk; each successful run swaps the previously bound children for the
// fresh result (whole-structure rebuild, no per-entry diffing).
//
// A shape error on the initial walk fails the bind. On a later walk the
// error goes to the global handler and the previous children are kept: the
// old list is only swapped out after a new walk succeeds.
func (b *Binder) bindChildren(node dom.Node, spec any, op string) error {
	if _, err := collectChildren(nil, spec); err != nil {
		return shapeErr(op, node, err)
	}
	var bound []dom.Node
	state.NewComputed(func(tr *state.Tracker) int {
		fresh, err := collectChildren(tr, spec)
		if err != nil {
			errors.Report(shapeErr(op, node, err))
			return len(bound)
		}
		// Append first: a kept child is moved, not removed, so its
		// cleanup registration survives the rebuild. Then drop the
		// stale ones, which notifies the removal watcher.
		kept := make(map[dom.Node]struct{}, len(fresh))
		for _, c := range fresh {
			kept[c] = struct{}{}
			node.AppendChild(c)
		}
		for _, old := range bound {
			if _, ok := kept[old]; !ok {
				node.RemoveChild(old)
			}
		}
		bound = fresh
		return len(bound)
	}).SetLabel("bind:" + node.Tag() + ".children")
	return nil
}

// collectChildren flattens a child shape into an ordered node list. With a
// tracker every state object met along the way is tracked-read; the
// validation walk passes nil and peeks instead.
func collectChildren(tr *state.Tracker, spec any) ([]dom.Node, error) {
	var out []dom.Node
	if err := walkChildren(tr, spec, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkChildren(tr *state.Tracker, spec any, out *[]dom.Node) error {
	switch c := readSpec(tr, spec).(type) {
	case nil:
	case dom.Node:
		*out = append(*out, c)
	case []dom.Node:
		for _, n := range c {
			if n != nil {
				*out = append(*out, n)
			}
		}
	case []any:
		for _, item := range c {
			if err := walkChildren(tr, item, out); err != nil {
				return err
			}
		}
	case map[string]dom.Node:
		for _, k := range sortedKeys(c) {
			if n := c[k]; n != nil {
				*out = append(*out, n)
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(c) {
			if err := walkChildren(tr, c[k], out); err != nil {
				return err
			}
		}
	default:
		return &errors.ShapeError{
			Op:   "loom.children",
			Want: "dom.Node, []dom.Node, []any, map[string]dom.Node, or map[string]any",
			Got:  c,
		}
	}
	return nil
}

// readSpec resolves one level of the shape: a state object is tracked-read,
// or peeked during the validation walk; anything else passes through.
func readSpec(tr *state.Tracker, v any) any {
	if tr != nil {
		return tr.Use(v)
	}
	if obj, ok := v.(state.Object); ok {
		return state.Peek(obj)
	}
	return v
}

// sortedKeys fixes map enumeration order so keyed children bind
// deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shapeErr(op string, node dom.Node, err error) *errors.LoomError {
	return &errors.LoomError{
		Op:     op,
		Kind:   errors.KindShape,
		Err:    err,
		Object: node.Tag(),
	}
}
