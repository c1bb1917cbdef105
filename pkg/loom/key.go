package loom

// Key is a configuration key in a Props map. A plain key names an element
// property. Reserved bracket keys and "@"-prefixed event keys carry special
// meaning; see the package documentation.
type Key string

// Props configures one element binding. Values are interpreted per key:
// plain property values, listener funcs for event keys, and the shapes
// documented on each reserved key.
type Props map[Key]any

// Reserved marker keys. The brackets keep them from ever colliding with a
// real property name.
const (
	// Children binds the element's child list. Accepted shapes: nil,
	// dom.Node, []dom.Node, []any, map[string]dom.Node, map[string]any,
	// recursively, with state objects allowed at any level.
	Children Key = "[children]"

	// Ref captures the bound element into a *state.Value[dom.Node] once,
	// at bind time.
	Ref Key = "[ref]"

	// Cleanup registers a func() to run when the element is removed from
	// the live document tree. It fires exactly once, then the registration
	// is forgotten.
	Cleanup Key = "[cleanup]"

	// Parent appends the element under the given dom.Node immediately
	// after all other keys are bound.
	Parent Key = "[parent]"
)

// On returns the Key that binds a listener for the named host event.
// The "@" prefix keeps On("click") distinct from a plain property key
// "click". Listener values must be func(dom.Event).
func On(event string) Key {
	return Key("@" + event)
}

// reserved reports whether k is one of the marker keys.
func (k Key) reserved() bool {
	switch k {
	case Children, Ref, Cleanup, Parent:
		return true
	}
	return false
}

// event returns the host event name for an "@"-prefixed key.
func (k Key) event() (string, bool) {
	if len(k) > 1 && k[0] == '@' {
		return string(k[1:]), true
	}
	return "", false
}
