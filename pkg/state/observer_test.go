package state

import "testing"

func TestObserverDeliversChanges(t *testing.T) {
	v := NewValue(0)
	calls := 0
	NewObserver(v).OnChange(func() { calls++ })

	v.Set(1)
	v.Set(2)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestObserverDisconnectStopsDelivery(t *testing.T) {
	v := NewValue(0)
	calls := 0
	disconnect := NewObserver(v).OnChange(func() { calls++ })

	v.Set(1)
	disconnect()
	v.Set(2)
	v.Set(3)

	if calls != 1 {
		t.Errorf("calls = %d, want 1: disconnected callbacks must not run", calls)
	}
}

func TestObserverDisconnectIsIdempotent(t *testing.T) {
	v := NewValue(0)
	calls := 0
	disconnect := NewObserver(v).OnChange(func() { calls++ })

	disconnect()
	disconnect()
	v.Set(1)

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestObserverDisconnectRemovesOnlyItsRegistration(t *testing.T) {
	v := NewValue(0)
	obs := NewObserver(v)
	a, b := 0, 0
	disconnectA := obs.OnChange(func() { a++ })
	obs.OnChange(func() { b++ })

	disconnectA()
	v.Set(1)

	if a != 0 {
		t.Errorf("a = %d, want 0", a)
	}
	if b != 1 {
		t.Errorf("b = %d, want 1", b)
	}
}

func TestIndependentObserversOnOneObject(t *testing.T) {
	v := NewValue("x")
	first, second := 0, 0
	d1 := NewObserver(v).OnChange(func() { first++ })
	NewObserver(v).OnChange(func() { second++ })

	v.Set("y")
	d1()
	v.Set("z")

	if first != 1 {
		t.Errorf("first = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("second = %d, want 2", second)
	}
}

func TestObserverOnComputed(t *testing.T) {
	v := NewValue(1)
	c := NewComputed(func(tr *Tracker) int { return Use(tr, v) * 10 })
	var seen []int
	NewObserver(c).OnChange(func() { seen = append(seen, c.Get()) })

	v.Set(2)
	v.Set(3)

	if len(seen) != 2 || seen[0] != 20 || seen[1] != 30 {
		t.Errorf("seen = %v, want [20 30]: the new value must be visible inside the change callback", seen)
	}
}

func TestObserverDoesNotJoinDependencyGraph(t *testing.T) {
	v := NewValue(1)
	c := NewComputed(func(tr *Tracker) int { return Use(tr, v) })
	NewObserver(c).OnChange(func() {})

	if got := len(Dependencies(c)); got != 1 {
		t.Errorf("dependency count = %d, want 1: observers are not dependencies", got)
	}
}
