package state

import (
	"fmt"
	"time"

	"github.com/go-loom/loom/pkg/errors"
)

// MaxCascadeDepth bounds the synchronous recompute cascade. Direct two-cell
// cycles are rejected eagerly by tracked reads; longer cycles are not, and
// would otherwise recurse until the stack is exhausted. Exceeding the bound
// panics with a KindOverflow error naming the object that tripped it.
const MaxCascadeDepth = 10000

// cascadeDepth counts nested recomputes. Single-threaded by contract.
var cascadeDepth int

// Computed is a derived state object. Its callback runs once at
// construction and again whenever any object it read through the Tracker
// changes; the result becomes the new value and dependents are notified.
type Computed[T any] struct {
	n        *node
	val      T
	callback func(*Tracker) T
}

// NewComputed runs callback once, synchronously, to establish the initial
// value and the initial dependency set. Construction does not emit a
// changed notification.
func NewComputed[T any](callback func(*Tracker) T) *Computed[T] {
	c := &Computed[T]{n: newNode(KindComputed), callback: callback}
	c.n.deps = make(map[*node]struct{})
	if t := activeTracer; t != nil {
		t.ObjectCreated(c.n.info())
	}
	c.val = callback(c.tracker())
	return c
}

// Get returns the value produced by the most recent callback run.
func (c *Computed[T]) Get() T {
	return c.val
}

// Destroy emits the destroyed notification so dependents detach their
// recompute handlers. It does not detach c from its own upstream
// dependencies; those handlers are removed only when the upstream object
// is destroyed.
func (c *Computed[T]) Destroy() {
	c.n.destroy()
}

// SetLabel names the object for tracing and inspection and returns c.
func (c *Computed[T]) SetLabel(label string) *Computed[T] {
	c.n.label = label
	return c
}

// Label returns the tracing label, defaulting to "computed#<id>".
func (c *Computed[T]) Label() string {
	return c.n.info().Label
}

// tracker builds the tracked-read capability for one callback run.
func (c *Computed[T]) tracker() *Tracker {
	return &Tracker{owner: c.n, recompute: c.recompute}
}

// recompute re-runs the callback with a fresh tracker, stores the result,
// and emits changed. Dependents recompute synchronously inside the emit,
// depth-first, in subscription order.
func (c *Computed[T]) recompute() {
	cascadeDepth++
	defer func() { cascadeDepth-- }()
	if cascadeDepth > MaxCascadeDepth {
		panic(&errors.LoomError{
			Op:     "state.Computed.recompute",
			Kind:   errors.KindOverflow,
			Object: c.n.info().Label,
			Err: fmt.Errorf("recompute cascade exceeded %d levels; the graph likely contains a cycle longer than two objects",
				MaxCascadeDepth),
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
	if t := activeTracer; t != nil {
		t.RecomputeStarted(c.n.info())
	}
	c.val = c.callback(c.tracker())
	c.n.events.emit(eventChanged)
	if t := activeTracer; t != nil {
		t.RecomputeFinished(c.n.info())
	}
}

func (c *Computed[T]) stateNode() *node { return c.n }

func (c *Computed[T]) valueAny() any { return c.val }
