package state

import (
	"time"

	"github.com/go-loom/loom/pkg/errors"
)

// The mapping combinators derive whole structures entry-by-entry. Each one
// builds a Computed whose callback re-derives a brand-new output from the
// whole current source on every change to the source or to any state object
// read inside any mapper invocation. A single changed entry re-derives every
// entry: whole-structure rebuild is the contract, not an oversight.
//
// Sources may be plain mappings/sequences or state objects holding one; the
// tracked read's pass-through makes both uniform. Mappers receive the
// combinator's own Tracker, so state objects they read become live
// dependencies too.

// ForKeys derives a mapping with the same values under remapped keys. The
// source is a map[K]V, a []V (indices as keys, K must be int), or a state
// object holding either. Remapped-key collisions are last-write-wins in
// source enumeration order.
func ForKeys[K comparable, V any, KOut comparable](source any, mapper func(tr *Tracker, key K) KOut) *Computed[map[KOut]V] {
	return NewComputed(func(tr *Tracker) map[KOut]V {
		out := make(map[KOut]V)
		eachSourcePair[K, V](tr, "state.ForKeys", source, func(k K, v V) {
			out[mapper(tr, k)] = v
		})
		return out
	})
}

// ForValues derives a sequence by mapping every element of a source
// sequence, preserving positional order. The source is a []V or a state
// object holding one; for keyed mappings use ForMapValues.
func ForValues[V, VOut any](source any, mapper func(tr *Tracker, value V) VOut) *Computed[[]VOut] {
	return NewComputed(func(tr *Tracker) []VOut {
		src := sourceSeq[V](tr, "state.ForValues", source)
		out := make([]VOut, 0, len(src))
		for _, v := range src {
			out = append(out, mapper(tr, v))
		}
		return out
	})
}

// ForMapValues derives a mapping with the same keys and remapped values.
// The source is a map[K]V or a state object holding one.
func ForMapValues[K comparable, V, VOut any](source any, mapper func(tr *Tracker, value V) VOut) *Computed[map[K]VOut] {
	return NewComputed(func(tr *Tracker) map[K]VOut {
		out := make(map[K]VOut)
		eachSourcePair[K, V](tr, "state.ForMapValues", source, func(k K, v V) {
			out[k] = mapper(tr, v)
		})
		return out
	})
}

// ForPairs derives a keyed mapping by remapping every entry to a new
// key/value pair. The source is a map[K]V, a []V (indices as keys, K must
// be int), or a state object holding either. Remapped-key collisions are
// last-write-wins in source enumeration order.
func ForPairs[K comparable, V any, KOut comparable, VOut any](source any, mapper func(tr *Tracker, key K, value V) (KOut, VOut)) *Computed[map[KOut]VOut] {
	return NewComputed(func(tr *Tracker) map[KOut]VOut {
		out := make(map[KOut]VOut)
		eachSourcePair[K, V](tr, "state.ForPairs", source, func(k K, v V) {
			nk, nv := mapper(tr, k, v)
			out[nk] = nv
		})
		return out
	})
}

// eachSourcePair resolves source through a tracked read and invokes fn for
// every entry. Map iteration order is Go's randomized order; the
// combinators leave keyed enumeration order implementation-defined.
func eachSourcePair[K comparable, V any](tr *Tracker, op string, source any, fn func(K, V)) {
	switch src := tr.Use(source).(type) {
	case nil:
	case map[K]V:
		for k, v := range src {
			fn(k, v)
		}
	case []V:
		for i, v := range src {
			k, ok := any(i).(K)
			if !ok {
				shapePanic(op, "int keys for a sequence source", src)
			}
			fn(k, v)
		}
	default:
		shapePanic(op, "a keyed mapping, a sequence, or a state object holding one", src)
	}
}

// sourceSeq resolves a sequence source through a tracked read.
func sourceSeq[V any](tr *Tracker, op string, source any) []V {
	switch src := tr.Use(source).(type) {
	case nil:
		return nil
	case []V:
		return src
	default:
		shapePanic(op, "a sequence or a state object holding one", src)
		return nil
	}
}

func shapePanic(op, want string, got any) {
	panic(&errors.LoomError{
		Op:         op,
		Kind:       errors.KindShape,
		Err:        &errors.ShapeError{Op: op, Want: want, Got: got},
		StackTrace: errors.CaptureStack(),
		Timestamp:  time.Now(),
	})
}
