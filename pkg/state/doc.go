// Package state provides the reactive state graph: first-class value cells,
// derived cells with automatic dependency tracking, external observers, and
// mapping combinators.
//
// This package is the core of Loom. Callers hold values in Value cells,
// derive new cells with Computed, and let changes propagate synchronously
// through the dependency graph. The binding layer (package loom) consumes
// this engine to keep display-tree properties and children in sync.
//
// # Values and Computeds
//
// Value is a mutable leaf cell. Setting it notifies every dependent, with
// no equality check: re-setting an equal value still notifies.
//
//	count := state.NewValue(0)
//	count.Set(count.Get() + 1)
//
// Computed derives a cell from other cells. Its callback receives a Tracker
// whose Use method performs tracked reads; every cell read through the
// tracker becomes a live dependency:
//
//	label := state.NewComputed(func(tr *state.Tracker) string {
//	    return fmt.Sprintf("count: %d", state.Use(tr, count))
//	})
//	count.Set(5) // label recomputes synchronously before Set returns
//
// The callback runs once at construction and again after any dependency
// changes. Dependencies are re-discovered on every run, so conditional
// reads are supported; once established, a dependency is dropped only when
// the depended-upon cell is destroyed.
//
// # Execution Model
//
// The graph is single-threaded and synchronous. A Set cascades depth-first
// through every transitive dependent before it returns, with dependents
// notified in subscription order. There is no locking: the package assumes
// all graph activity happens on one goroutine. A cascade deeper than
// MaxCascadeDepth panics with an overflow error, which almost always means
// the graph contains a dependency cycle longer than the direct two-cell
// cycles Use detects eagerly.
//
// # Observers
//
// Observer attaches plain callbacks to a cell's change notifications
// without joining the dependency graph:
//
//	obs := state.NewObserver(count)
//	disconnect := obs.OnChange(func() { fmt.Println(count.Get()) })
//	defer disconnect()
//
// # Mapping Combinators
//
// ForKeys, ForValues, ForMapValues, and ForPairs derive whole mappings and
// sequences entry-by-entry. They rebuild the entire output structure on
// every upstream change; there is no incremental diffing.
//
//	doubled := state.ForValues(nums, func(tr *state.Tracker, n int) int {
//	    return n * 2
//	})
//
// # Lifecycle
//
// Destroying a cell emits its destroyed notification so dependents detach
// their handlers. A cell dropped without Destroy leaves its dependents'
// recompute handlers registered, pinning them in memory.
//
// # Errors
//
// Graph violations (self-use, direct circular dependency, tracked reads
// without a recompute target, cascade overflow) are programmer errors and
// panic with *errors.LoomError. They are detected at the offending call,
// synchronously.
package state
