package inspect

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	eventbus "github.com/jilio/ebu"

	"github.com/go-loom/loom/pkg/state"
)

// Recorder is a state.Tracer that turns graph activity into Events. Every
// event is published on an event bus; the recorder's own subscriber folds
// the stream into a bounded ring, a live-object registry, and per-kind
// counters. Further subscribers (the live websocket feed, user code) attach
// to Bus.
//
// Install with state.SetTracer(rec), or compose with state.MultiTracer.
type Recorder struct {
	bus     *eventbus.EventBus
	session string

	seq uint64

	mu      sync.Mutex
	ring    *eventRing
	objects map[uint64]*ObjectStatus
	order   []uint64
	counts  map[string]uint64

	// recompute start stack; the core is single-threaded and finish
	// hooks nest, so plain LIFO matching holds.
	starts []recomputeStart
}

type recomputeStart struct {
	id    uint64
	began time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapacity sets how many events the ring retains (default 4096).
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		r.ring = newEventRing(n)
	}
}

// NewRecorder creates a Recorder with a fresh session id and its own bus.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		bus:     eventbus.New(),
		session: uuid.NewString(),
		ring:    newEventRing(defaultRingCapacity),
		objects: make(map[uint64]*ObjectStatus),
		counts:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	eventbus.Subscribe(r.bus, r.apply)
	return r
}

// Bus returns the bus every recorded Event is published on.
func (r *Recorder) Bus() *eventbus.EventBus {
	return r.bus
}

// Session returns the recorder's session id.
func (r *Recorder) Session() string {
	return r.session
}

// apply is the recorder's own bus subscriber.
func (r *Recorder) apply(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ring.add(ev)
	r.counts[ev.Kind]++

	switch ev.Kind {
	case EventCreated:
		if _, ok := r.objects[ev.Object.ID]; !ok {
			r.order = append(r.order, ev.Object.ID)
		}
		r.objects[ev.Object.ID] = &ObjectStatus{ObjectRecord: ev.Object, Alive: true}
	case EventDestroyed:
		if st := r.refresh(ev.Object); st != nil {
			st.Alive = false
		}
	case EventDependency:
		st := r.refresh(ev.Object)
		if st == nil || ev.Dependency == nil {
			return
		}
		r.refresh(*ev.Dependency)
		for _, id := range st.Dependencies {
			if id == ev.Dependency.ID {
				return
			}
		}
		st.Dependencies = append(st.Dependencies, ev.Dependency.ID)
	default:
		r.refresh(ev.Object)
	}
}

// refresh re-stamps a registry record with the identity the latest event
// carries. Labels are usually assigned right after construction, so the
// created event still holds the default one; any later activity brings
// the registry up to date.
func (r *Recorder) refresh(obj ObjectRecord) *ObjectStatus {
	st, ok := r.objects[obj.ID]
	if !ok {
		return nil
	}
	st.ObjectRecord = obj
	return st
}

// Objects returns the registry in creation order.
func (r *Recorder) Objects() []ObjectStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ObjectStatus, 0, len(r.order))
	for _, id := range r.order {
		st := r.objects[id]
		cp := *st
		cp.Dependencies = append([]uint64(nil), st.Dependencies...)
		out = append(out, cp)
	}
	return out
}

// Events returns retained events in chronological order. A positive limit
// keeps only the most recent entries; a non-empty kind filters by kind.
func (r *Recorder) Events(limit int, kind string) []Event {
	r.mu.Lock()
	events := r.ring.snapshot()
	r.mu.Unlock()

	if kind != "" {
		filtered := events[:0]
		for _, ev := range events {
			if ev.Kind == kind {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events
}

// Stats summarizes the session so far.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := 0
	for _, st := range r.objects {
		if st.Alive {
			live++
		}
	}
	counts := make(map[string]uint64, len(r.counts))
	for k, v := range r.counts {
		counts[k] = v
	}
	return Stats{
		Session:   r.session,
		Seq:       atomic.LoadUint64(&r.seq),
		Live:      live,
		Total:     len(r.objects),
		Counts:    counts,
		Capacity:  len(r.ring.events),
		Retained:  r.ring.count,
		Overwrote: r.ring.overwrote,
	}
}

func (r *Recorder) publish(kind string, obj state.ObjectInfo, dep *state.ObjectInfo, durationMs float64) {
	ev := Event{
		Seq:        atomic.AddUint64(&r.seq, 1),
		Timestamp:  time.Now().UnixMilli(),
		Kind:       kind,
		Object:     record(obj),
		DurationMs: durationMs,
	}
	if dep != nil {
		d := record(*dep)
		ev.Dependency = &d
	}
	eventbus.Publish(r.bus, ev)
}

func record(info state.ObjectInfo) ObjectRecord {
	return ObjectRecord{ID: info.ID, Kind: info.Kind, Label: info.Label}
}

// ObjectCreated implements state.Tracer.
func (r *Recorder) ObjectCreated(obj state.ObjectInfo) {
	r.publish(EventCreated, obj, nil, 0)
}

// ObjectDestroyed implements state.Tracer.
func (r *Recorder) ObjectDestroyed(obj state.ObjectInfo) {
	r.publish(EventDestroyed, obj, nil, 0)
}

// ValueChanged implements state.Tracer.
func (r *Recorder) ValueChanged(obj state.ObjectInfo) {
	r.publish(EventChanged, obj, nil, 0)
}

// DependencyAdded implements state.Tracer.
func (r *Recorder) DependencyAdded(dependent, dependency state.ObjectInfo) {
	r.publish(EventDependency, dependent, &dependency, 0)
}

// RecomputeStarted implements state.Tracer.
func (r *Recorder) RecomputeStarted(obj state.ObjectInfo) {
	r.starts = append(r.starts, recomputeStart{id: obj.ID, began: time.Now()})
}

// RecomputeFinished implements state.Tracer.
func (r *Recorder) RecomputeFinished(obj state.ObjectInfo) {
	var began time.Time
	for i := len(r.starts) - 1; i >= 0; i-- {
		if r.starts[i].id == obj.ID {
			began = r.starts[i].began
			r.starts = r.starts[:i]
			break
		}
	}
	var ms float64
	if !began.IsZero() {
		ms = float64(time.Since(began)) / float64(time.Millisecond)
	}
	r.publish(EventRecompute, obj, nil, ms)
}
