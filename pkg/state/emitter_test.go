package state

import "testing"

func TestEmitterRegistrationOrder(t *testing.T) {
	var e emitter
	var order []int
	e.on(eventChanged, func() { order = append(order, 1) })
	e.on(eventChanged, func() { order = append(order, 2) })
	e.on(eventChanged, func() { order = append(order, 3) })

	e.emit(eventChanged)

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("handlers ran %d times, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestEmitterOff(t *testing.T) {
	var e emitter
	calls := 0
	id := e.on(eventChanged, func() { calls++ })
	e.emit(eventChanged)
	e.off(eventChanged, id)
	e.emit(eventChanged)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEmitterOffUnknownID(t *testing.T) {
	var e emitter
	e.on(eventChanged, func() {})
	e.off(eventChanged, 999) // must not panic or drop the live handler
	calls := 0
	e.on(eventDestroyed, func() { calls++ })
	e.emit(eventDestroyed)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEmitterRemovalMidEmit(t *testing.T) {
	var e emitter
	var ran []string
	var secondID int
	e.on(eventChanged, func() {
		ran = append(ran, "first")
		e.off(eventChanged, secondID)
	})
	secondID = e.on(eventChanged, func() {
		ran = append(ran, "second")
	})

	e.emit(eventChanged)

	if len(ran) != 1 || ran[0] != "first" {
		t.Errorf("ran = %v, want [first]: a handler removed mid-emit must be skipped", ran)
	}
}

func TestEmitterAdditionMidEmit(t *testing.T) {
	var e emitter
	calls := 0
	e.on(eventChanged, func() {
		if calls == 0 {
			e.on(eventChanged, func() { calls += 100 })
		}
		calls++
	})

	e.emit(eventChanged)
	if calls != 1 {
		t.Fatalf("calls = %d after first emit, want 1: handlers added mid-emit wait for the next emit", calls)
	}

	e.emit(eventChanged)
	if calls != 102 {
		t.Errorf("calls = %d after second emit, want 102", calls)
	}
}

func TestEmitterEventsAreIndependent(t *testing.T) {
	var e emitter
	changed, destroyed := 0, 0
	e.on(eventChanged, func() { changed++ })
	e.on(eventDestroyed, func() { destroyed++ })

	e.emit(eventChanged)
	if changed != 1 || destroyed != 0 {
		t.Errorf("after changed: changed=%d destroyed=%d, want 1 0", changed, destroyed)
	}
	e.emit(eventDestroyed)
	if changed != 1 || destroyed != 1 {
		t.Errorf("after destroyed: changed=%d destroyed=%d, want 1 1", changed, destroyed)
	}
}
