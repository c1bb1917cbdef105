package state

// Value is a mutable leaf state object. Setting it notifies every dependent
// computed and observer synchronously.
type Value[T any] struct {
	n   *node
	val T
}

// NewValue creates a Value holding initial. No dependency tracking occurs.
func NewValue[T any](initial T) *Value[T] {
	v := &Value[T]{n: newNode(KindValue), val: initial}
	if t := activeTracer; t != nil {
		t.ObjectCreated(v.n.info())
	}
	return v
}

// Get returns the current value without establishing a dependency.
func (v *Value[T]) Get() T {
	return v.val
}

// Set unconditionally overwrites the value and emits the changed
// notification. There is no equality check: setting a value equal to the
// current one still notifies every dependent and observer exactly once.
func (v *Value[T]) Set(newValue T) {
	v.val = newValue
	if t := activeTracer; t != nil {
		t.ValueChanged(v.n.info())
	}
	v.n.events.emit(eventChanged)
}

// Destroy emits the destroyed notification so dependents detach their
// recompute handlers, then marks the object destroyed. Destroy is
// idempotent. A Value dropped without Destroy leaks its dependents'
// handlers: the back-reference from dependency to dependent is cleared
// only by the destroyed notification.
func (v *Value[T]) Destroy() {
	v.n.destroy()
}

// SetLabel names the object for tracing and inspection and returns v.
func (v *Value[T]) SetLabel(label string) *Value[T] {
	v.n.label = label
	return v
}

// Label returns the tracing label, defaulting to "value#<id>".
func (v *Value[T]) Label() string {
	return v.n.info().Label
}

func (v *Value[T]) stateNode() *node { return v.n }

func (v *Value[T]) valueAny() any { return v.val }
