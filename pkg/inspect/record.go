package inspect

const defaultRingCapacity = 4096

// Event kinds recorded by the Recorder.
const (
	EventCreated    = "created"
	EventDestroyed  = "destroyed"
	EventChanged    = "changed"
	EventDependency = "dependency"
	EventRecompute  = "recompute"
)

// ObjectRecord identifies one state object in recorder output.
type ObjectRecord struct {
	ID    uint64 `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// Event is one recorded state-graph occurrence. Recompute events carry the
// duration of the full callback run including its downstream cascade.
type Event struct {
	Seq        uint64        `json:"seq"`
	Timestamp  int64         `json:"ts"`
	Kind       string        `json:"kind"`
	Object     ObjectRecord  `json:"object"`
	Dependency *ObjectRecord `json:"dependency,omitempty"`
	DurationMs float64       `json:"durationMs,omitempty"`
}

// ObjectStatus is the registry view of one object: its identity, liveness,
// and the ids of the dependencies it has tracked so far.
type ObjectStatus struct {
	ObjectRecord
	Alive        bool     `json:"alive"`
	Dependencies []uint64 `json:"dependencies,omitempty"`
}

// Stats summarizes a recorder session.
type Stats struct {
	Session   string            `json:"session"`
	Seq       uint64            `json:"seq"`
	Live      int               `json:"live"`
	Total     int               `json:"total"`
	Counts    map[string]uint64 `json:"counts"`
	Capacity  int               `json:"capacity"`
	Retained  int               `json:"retained"`
	Overwrote uint64            `json:"overwrote"`
}

// eventRing stores the most recent events in a fixed ring.
type eventRing struct {
	events    []Event
	index     int
	count     int
	overwrote uint64
}

func newEventRing(capacity int) *eventRing {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &eventRing{events: make([]Event, capacity)}
}

func (r *eventRing) add(ev Event) {
	if r.count == len(r.events) {
		r.overwrote++
	}
	r.events[r.index] = ev
	r.index = (r.index + 1) % len(r.events)
	if r.count < len(r.events) {
		r.count++
	}
}

// snapshot returns the retained events in chronological order.
func (r *eventRing) snapshot() []Event {
	if r.count == 0 {
		return nil
	}
	out := make([]Event, r.count)
	if r.count < len(r.events) {
		copy(out, r.events[:r.count])
	} else {
		copy(out, r.events[r.index:])
		copy(out[len(r.events)-r.index:], r.events[:r.index])
	}
	return out
}
