// Package loom declaratively binds reactive state onto a display-tree host.
//
// A Binder turns a Props map into live element bindings. Plain keys set
// properties; a property whose value is a state object is rewritten on
// every upstream change. "@"-prefixed keys attach event listeners. Four
// reserved bracket keys cover structure and lifecycle: Children binds the
// child list (rebuilt whole on any change), Ref captures the element into
// a Value, Cleanup runs once when the element leaves the live tree, and
// Parent appends the element under an existing node.
//
//	binder := loom.NewBinder(doc)
//	count := state.NewValue(0)
//	label, err := binder.New("span", loom.Props{
//		"text": state.NewComputed(func(tr *state.Tracker) string {
//			return fmt.Sprintf("count: %d", state.Use(tr, count))
//		}),
//		loom.On("click"): func(dom.Event) { count.Set(count.Get() + 1) },
//		loom.Parent:      doc.Root(),
//	})
//
// Binding failures (bad listener or reserved-key values, unsupported child
// shapes) surface as *errors.LoomError from New and Hydrate. Shape errors
// on a later children rebuild go to the global error handler and the
// previous children stay in place.
package loom
