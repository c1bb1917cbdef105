package state

// ObjectInfo identifies a state object to a Tracer.
type ObjectInfo struct {
	// ID is the object's process-unique sequence number.
	ID uint64
	// Kind is KindValue or KindComputed.
	Kind string
	// Label is the object's SetLabel name, or "<kind>#<id>" when unnamed.
	Label string
}

// Tracer observes state-graph activity. Implementations must be fast and
// must not mutate the graph from inside a hook; they run inline on the
// graph's goroutine. Package inspect and package otelstate provide tracers.
type Tracer interface {
	// ObjectCreated fires when a Value or Computed is constructed.
	ObjectCreated(obj ObjectInfo)
	// ObjectDestroyed fires when an object is destroyed, before its
	// destroyed notification is emitted.
	ObjectDestroyed(obj ObjectInfo)
	// ValueChanged fires after a Set stored the new value and before the
	// changed notification is emitted.
	ValueChanged(obj ObjectInfo)
	// DependencyAdded fires when a tracked read establishes a new
	// dependent → dependency edge.
	DependencyAdded(dependent, dependency ObjectInfo)
	// RecomputeStarted fires before a computed re-runs its callback.
	RecomputeStarted(obj ObjectInfo)
	// RecomputeFinished fires after the recompute's changed notification
	// has returned, so nested pairs expose the cascade structure and the
	// enclosed duration includes downstream recomputes.
	RecomputeFinished(obj ObjectInfo)
}

// activeTracer is read on the graph's goroutine without locking; the core
// is single-threaded by contract.
var activeTracer Tracer

// SetTracer installs the process-wide tracer. Pass nil to remove it. Call
// from the graph's goroutine, before or between graph activity.
func SetTracer(t Tracer) {
	activeTracer = t
}

// MultiTracer returns a Tracer that fans every hook out to each of ts in
// order. Nil entries are skipped.
func MultiTracer(ts ...Tracer) Tracer {
	var m multiTracer
	for _, t := range ts {
		if t != nil {
			m = append(m, t)
		}
	}
	return m
}

type multiTracer []Tracer

func (m multiTracer) ObjectCreated(obj ObjectInfo) {
	for _, t := range m {
		t.ObjectCreated(obj)
	}
}

func (m multiTracer) ObjectDestroyed(obj ObjectInfo) {
	for _, t := range m {
		t.ObjectDestroyed(obj)
	}
}

func (m multiTracer) ValueChanged(obj ObjectInfo) {
	for _, t := range m {
		t.ValueChanged(obj)
	}
}

func (m multiTracer) DependencyAdded(dependent, dependency ObjectInfo) {
	for _, t := range m {
		t.DependencyAdded(dependent, dependency)
	}
}

func (m multiTracer) RecomputeStarted(obj ObjectInfo) {
	for _, t := range m {
		t.RecomputeStarted(obj)
	}
}

func (m multiTracer) RecomputeFinished(obj ObjectInfo) {
	for _, t := range m {
		t.RecomputeFinished(obj)
	}
}
