package state

// Observer attaches plain callbacks to a state object's changed
// notification without joining the dependency graph: it takes part in
// neither dependency tracking nor cycle detection.
type Observer struct {
	n *node
}

// NewObserver wraps src. Multiple Observers on one object are independent.
func NewObserver(src Object) *Observer {
	return &Observer{n: src.stateNode()}
}

// OnChange subscribes fn to the object's changed notification and returns
// a disconnect function that removes exactly this registration. Calling
// disconnect more than once is harmless.
func (o *Observer) OnChange(fn func()) (disconnect func()) {
	id := o.n.events.on(eventChanged, fn)
	return func() {
		o.n.events.off(eventChanged, id)
	}
}
