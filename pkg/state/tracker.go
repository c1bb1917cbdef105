package state

import (
	"fmt"
	"time"

	"github.com/go-loom/loom/pkg/errors"
)

// Readable is the typed read surface shared by *Value[T] and *Computed[T].
type Readable[T any] interface {
	Object
	Get() T
}

// Tracker is the tracked-read capability handed to a Computed's callback.
// It is valid only for the duration of the callback run it was created for,
// on the graph's goroutine.
type Tracker struct {
	owner     *node
	recompute func()
}

// Use performs a tracked read of v.
//
// If v is not a state object it is returned unchanged, so callbacks can
// treat state and plain values uniformly. If v is a state object it becomes
// a live dependency of the computed this tracker belongs to: the computed
// re-runs whenever v changes, and drops the dependency when v is destroyed.
// The return value is a plain snapshot of v's current value.
//
// Use panics with a KindSelfUse error when a computed reads itself, and
// with a KindCircular error when the read would close a direct two-object
// cycle. Longer cycles are not detected here; they trip the cascade depth
// guard instead.
func (t *Tracker) Use(v any) any {
	obj, ok := v.(Object)
	if !ok {
		return v
	}
	t.track(obj.stateNode())
	return obj.valueAny()
}

// Use is the typed counterpart of Tracker.Use for a known source.
func Use[T any](tr *Tracker, src Readable[T]) T {
	tr.track(src.stateNode())
	return src.Get()
}

// track establishes the dependency relation between the tracker's owner and
// dep, in the order the protocol requires: reject reads without a recompute
// target, reject self-reads, skip already-tracked dependencies, reject
// direct cycles, then subscribe the recompute handler, record the
// dependency, and subscribe the destroy cleanup.
func (t *Tracker) track(dep *node) {
	if t.recompute == nil {
		panic(&errors.LoomError{
			Op:         "state.Tracker.Use",
			Kind:       errors.KindMissingCallback,
			Err:        fmt.Errorf("tracked read through a tracker with no recompute target"),
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
	owner := t.owner
	if dep == owner {
		panic(&errors.LoomError{
			Op:         "state.Tracker.Use",
			Kind:       errors.KindSelfUse,
			Object:     owner.info().Label,
			Err:        fmt.Errorf("%s performed a tracked read of itself", owner.info().Label),
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
	if _, tracked := owner.deps[dep]; tracked {
		return
	}
	if _, mutual := dep.deps[owner]; mutual {
		panic(&errors.LoomError{
			Op:         "state.Tracker.Use",
			Kind:       errors.KindCircular,
			Object:     owner.info().Label,
			Err:        fmt.Errorf("%s and %s each use the other", owner.info().Label, dep.info().Label),
			StackTrace: errors.CaptureStack(),
			Timestamp:  time.Now(),
		})
	}

	recomputeID := dep.events.on(eventChanged, t.recompute)
	owner.deps[dep] = struct{}{}
	var cleanupID int
	cleanupID = dep.events.on(eventDestroyed, func() {
		dep.events.off(eventChanged, recomputeID)
		dep.events.off(eventDestroyed, cleanupID)
		delete(owner.deps, dep)
	})
	if tr := activeTracer; tr != nil {
		tr.DependencyAdded(owner.info(), dep.info())
	}
}
