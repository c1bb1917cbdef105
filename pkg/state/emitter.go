package state

// event names the two notifications a state object can emit.
type event uint8

const (
	eventChanged event = iota
	eventDestroyed
	eventCount
)

// handlerEntry is one registered callback. Entries keep a removed flag so an
// in-flight emit can skip handlers deregistered by an earlier handler of the
// same emit.
type handlerEntry struct {
	id      int
	fn      func()
	removed bool
}

// emitter is the minimal event channel behind every state object. Handlers
// are dispatched synchronously, in registration order, at most once per emit.
// Slices rather than maps keep the registration-order guarantee.
type emitter struct {
	nextID   int
	handlers [eventCount][]*handlerEntry
}

// on registers fn for ev and returns its registration id.
func (e *emitter) on(ev event, fn func()) int {
	e.nextID++
	e.handlers[ev] = append(e.handlers[ev], &handlerEntry{id: e.nextID, fn: fn})
	return e.nextID
}

// off deregisters the handler with the given id. Unknown ids are ignored.
func (e *emitter) off(ev event, id int) {
	list := e.handlers[ev]
	for i, h := range list {
		if h.id == id {
			h.removed = true
			e.handlers[ev] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// emit invokes every handler registered at the time of the call, in
// registration order. Handlers removed mid-emit are skipped; handlers added
// mid-emit run on the next emit.
func (e *emitter) emit(ev event) {
	list := e.handlers[ev]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*handlerEntry, len(list))
	copy(snapshot, list)
	for _, h := range snapshot {
		if !h.removed {
			h.fn()
		}
	}
}
