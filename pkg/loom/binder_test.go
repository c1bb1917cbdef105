package loom

import (
	"reflect"
	"testing"

	"github.com/go-loom/loom/pkg/dom"
	"github.com/go-loom/loom/pkg/domtest"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/state"
)

func newTestBinder(t *testing.T) (*domtest.Document, *Binder) {
	t.Helper()
	doc := domtest.NewDocument()
	b := NewBinder(doc)
	t.Cleanup(b.Close)
	return doc, b
}

func wantKind(t *testing.T, err error, kind errors.ErrorKind) *errors.LoomError {
	t.Helper()
	le, ok := err.(*errors.LoomError)
	if !ok {
		t.Fatalf("error = %v (%T), want *errors.LoomError", err, err)
	}
	if le.Kind != kind {
		t.Fatalf("kind = %v, want %v", le.Kind, kind)
	}
	return le
}

type captureHandler struct {
	errs   []*errors.LoomError
	panics []*errors.PanicError
}

func (h *captureHandler) HandleError(e *errors.LoomError)  { h.errs = append(h.errs, e) }
func (h *captureHandler) HandlePanic(p *errors.PanicError) { h.panics = append(h.panics, p) }

func childTags(n dom.Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Tag())
	}
	return out
}

func TestNewSetsPlainProperties(t *testing.T) {
	_, b := newTestBinder(t)
	node, err := b.New("div", Props{"id": "main", "count": 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if node.Tag() != "div" {
		t.Fatalf("tag = %q, want div", node.Tag())
	}
	if v, _ := node.Property("id"); v != "main" {
		t.Errorf("id = %v, want main", v)
	}
	if v, _ := node.Property("count"); v != 3 {
		t.Errorf("count = %v, want 3", v)
	}
}

func TestPropertyTracksValue(t *testing.T) {
	_, b := newTestBinder(t)
	text := state.NewValue("hello")
	node, err := b.New("span", Props{"text": text})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v, _ := node.Property("text"); v != "hello" {
		t.Fatalf("initial text = %v, want hello", v)
	}

	text.Set("bye")
	if v, _ := node.Property("text"); v != "bye" {
		t.Fatalf("text after Set = %v, want bye", v)
	}
}

func TestPropertyTracksComputed(t *testing.T) {
	_, b := newTestBinder(t)
	count := state.NewValue(2)
	doubled := state.NewComputed(func(tr *state.Tracker) int {
		return state.Use(tr, count) * 2
	})
	node, err := b.New("span", Props{"n": doubled})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v, _ := node.Property("n"); v != 4 {
		t.Fatalf("n = %v, want 4", v)
	}

	count.Set(5)
	if v, _ := node.Property("n"); v != 10 {
		t.Fatalf("n after Set = %v, want 10", v)
	}
}

func TestEventKeyDoesNotCollideWithProperty(t *testing.T) {
	_, b := newTestBinder(t)
	var details []any
	node, err := b.New("button", Props{
		"click":     "plain property",
		On("click"): func(ev dom.Event) { details = append(details, ev.Detail) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v, _ := node.Property("click"); v != "plain property" {
		t.Errorf("click property = %v, want the plain value", v)
	}
	if _, ok := node.Property("@click"); ok {
		t.Errorf("listener key leaked into properties")
	}

	node.(*domtest.Node).Dispatch("click", 7)
	if len(details) != 1 || details[0] != 7 {
		t.Fatalf("details = %v, want [7]", details)
	}
}

func TestListenerReceivesEvent(t *testing.T) {
	_, b := newTestBinder(t)
	var got dom.Event
	node, err := b.New("input", Props{
		On("change"): func(ev dom.Event) { got = ev },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	node.(*domtest.Node).Dispatch("change", "typed")
	if got.Type != "change" || got.Target != node || got.Detail != "typed" {
		t.Fatalf("event = %+v", got)
	}
}

func TestChildrenSingleNode(t *testing.T) {
	doc, b := newTestBinder(t)
	child := doc.CreateElement("span")
	node, err := b.New("div", Props{Children: child})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := childTags(node); !reflect.DeepEqual(got, []string{"span"}) {
		t.Fatalf("children = %v, want [span]", got)
	}
}

func TestChildrenSliceSkipsNil(t *testing.T) {
	doc, b := newTestBinder(t)
	node, err := b.New("ul", Props{
		Children: []dom.Node{doc.CreateElement("a"), nil, doc.CreateElement("b")},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := childTags(node); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("children = %v, want [a b]", got)
	}
}

func TestChildrenNestedShapes(t *testing.T) {
	doc, b := newTestBinder(t)
	node, err := b.New("div", Props{
		Children: []any{
			doc.CreateElement("header"),
			[]dom.Node{doc.CreateElement("a"), doc.CreateElement("b")},
			nil,
			map[string]any{
				"2-second": doc.CreateElement("s2"),
				"1-first":  doc.CreateElement("s1"),
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"header", "a", "b", "s1", "s2"}
	if got := childTags(node); !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
}

func TestChildrenMapSortedOrder(t *testing.T) {
	doc, b := newTestBinder(t)
	node, err := b.New("div", Props{
		Children: map[string]dom.Node{
			"b": doc.CreateElement("b"),
			"a": doc.CreateElement("a"),
			"c": doc.CreateElement("c"),
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := childTags(node); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("children = %v, want sorted [a b c]", got)
	}
}

func TestChildrenNilSkipped(t *testing.T) {
	_, b := newTestBinder(t)
	node, err := b.New("div", Props{Children: nil})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(node.Children()) != 0 {
		t.Fatalf("children = %v, want none", childTags(node))
	}
}

func TestChildrenDynamicRebuild(t *testing.T) {
	doc, b := newTestBinder(t)
	a := doc.CreateElement("a")
	bb := doc.CreateElement("b")
	c := doc.CreateElement("c")
	list := state.NewValue([]dom.Node{a, bb})

	node, err := b.New("div", Props{Children: list})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := childTags(node); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("children = %v, want [a b]", got)
	}

	list.Set([]dom.Node{c, a})
	if got := childTags(node); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("children after Set = %v, want [c a]", got)
	}
	if bb.Parent() != nil {
		t.Errorf("stale child still attached")
	}
}

func TestChildrenStateAtInnerLevel(t *testing.T) {
	doc, b := newTestBinder(t)
	header := doc.CreateElement("header")
	slot := state.NewValue(doc.CreateElement("x"))

	node, err := b.New("div", Props{Children: []any{header, slot}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := childTags(node); !reflect.DeepEqual(got, []string{"header", "x"}) {
		t.Fatalf("children = %v, want [header x]", got)
	}

	slot.Set(doc.CreateElement("y"))
	if got := childTags(node); !reflect.DeepEqual(got, []string{"header", "y"}) {
		t.Fatalf("children after Set = %v, want [header y]", got)
	}
}

func TestChildrenBadShapeFailsBind(t *testing.T) {
	_, b := newTestBinder(t)
	_, err := b.New("div", Props{Children: 42})
	le := wantKind(t, err, errors.KindShape)
	if _, ok := le.Err.(*errors.ShapeError); !ok {
		t.Fatalf("wrapped error = %T, want *errors.ShapeError", le.Err)
	}
}

func TestChildrenBadShapeLaterKeepsPrevious(t *testing.T) {
	h := &captureHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	doc, b := newTestBinder(t)
	spec := state.NewValue[any](doc.CreateElement("ok"))
	node, err := b.New("div", Props{Children: spec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	spec.Set(42)
	if got := childTags(node); !reflect.DeepEqual(got, []string{"ok"}) {
		t.Fatalf("children after bad rebuild = %v, want previous [ok]", got)
	}
	if len(h.errs) != 1 || h.errs[0].Kind != errors.KindShape {
		t.Fatalf("reported errors = %+v, want one shape error", h.errs)
	}

	spec.Set(doc.CreateElement("fresh"))
	if got := childTags(node); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Fatalf("children after recovery = %v, want [fresh]", got)
	}
}

func TestRefCapturesNode(t *testing.T) {
	_, b := newTestBinder(t)
	ref := state.NewValue[dom.Node](nil)
	node, err := b.New("div", Props{Ref: ref})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ref.Get() != node {
		t.Fatalf("ref = %v, want the bound node", ref.Get())
	}
}

func TestParentAppends(t *testing.T) {
	doc, b := newTestBinder(t)
	node, err := b.New("div", Props{Parent: doc.Root()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if node.Parent() != doc.Root() {
		t.Fatalf("parent = %v, want document root", node.Parent())
	}
}

func TestCleanupFiresOnceThenForgets(t *testing.T) {
	doc, b := newTestBinder(t)
	cleaned := 0
	node, err := b.New("div", Props{
		Cleanup: func() { cleaned++ },
		Parent:  doc.Root(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc.Root().RemoveChild(node)
	if cleaned != 1 {
		t.Fatalf("cleaned = %d after removal, want 1", cleaned)
	}

	doc.Root().AppendChild(node)
	doc.Root().RemoveChild(node)
	if cleaned != 1 {
		t.Fatalf("cleaned = %d after re-removal, want still 1 (registration forgotten)", cleaned)
	}
}

func TestCleanupFiresForRemovedDescendant(t *testing.T) {
	doc, b := newTestBinder(t)
	cleaned := 0
	child, err := b.New("span", Props{Cleanup: func() { cleaned++ }})
	if err != nil {
		t.Fatalf("New child: %v", err)
	}
	parent, err := b.New("div", Props{Children: child, Parent: doc.Root()})
	if err != nil {
		t.Fatalf("New parent: %v", err)
	}

	doc.Root().RemoveChild(parent)
	if cleaned != 1 {
		t.Fatalf("cleaned = %d, want 1 (descendant walked)", cleaned)
	}
}

func TestChildrenRebuildFiresCleanupOnlyForDropped(t *testing.T) {
	doc, b := newTestBinder(t)
	var cleanedA, cleanedB int
	a, err := b.New("a", Props{Cleanup: func() { cleanedA++ }})
	if err != nil {
		t.Fatal(err)
	}
	bb, err := b.New("b", Props{Cleanup: func() { cleanedB++ }})
	if err != nil {
		t.Fatal(err)
	}
	spec := state.NewValue([]dom.Node{a, bb})
	if _, err := b.New("div", Props{Children: spec, Parent: doc.Root()}); err != nil {
		t.Fatal(err)
	}

	spec.Set([]dom.Node{a})
	if cleanedB != 1 {
		t.Errorf("cleanedB = %d, want 1 (dropped from rebuild)", cleanedB)
	}
	if cleanedA != 0 {
		t.Errorf("cleanedA = %d, want 0 (kept child is moved, not removed)", cleanedA)
	}

	spec.Set(nil)
	if cleanedA != 1 {
		t.Errorf("cleanedA = %d after emptying, want 1", cleanedA)
	}
}

func TestHydrateBindsExistingElement(t *testing.T) {
	doc, b := newTestBinder(t)
	target := doc.CreateElement("main")
	got, err := b.Hydrate(target, Props{"id": "app"})
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if got != target {
		t.Fatalf("Hydrate returned %v, want the target", got)
	}
	if v, _ := target.Property("id"); v != "app" {
		t.Errorf("id = %v, want app", v)
	}
}

func TestHydrateNilTarget(t *testing.T) {
	_, b := newTestBinder(t)
	_, err := b.Hydrate(nil, Props{"id": "x"})
	wantKind(t, err, errors.KindBinding)
}

func TestRejectsBadReservedValues(t *testing.T) {
	cases := []struct {
		name  string
		props Props
	}{
		{"listener", Props{On("click"): 42}},
		{"ref", Props{Ref: "nope"}},
		{"cleanup", Props{Cleanup: 3}},
		{"parent", Props{Parent: "root"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, b := newTestBinder(t)
			_, err := b.New("div", tc.props)
			wantKind(t, err, errors.KindBinding)
		})
	}
}

func TestClosedBinderRejectsBinds(t *testing.T) {
	doc, b := newTestBinder(t)
	cleaned := 0
	node, err := b.New("div", Props{
		Cleanup: func() { cleaned++ },
		Parent:  doc.Root(),
	})
	if err != nil {
		t.Fatal(err)
	}

	b.Close()
	b.Close() // idempotent

	if _, err := b.New("div", nil); err == nil {
		t.Errorf("New on closed binder succeeded")
	}
	if _, err := b.Hydrate(doc.CreateElement("p"), nil); err == nil {
		t.Errorf("Hydrate on closed binder succeeded")
	}

	doc.Root().RemoveChild(node)
	if cleaned != 0 {
		t.Errorf("cleanup ran after Close")
	}
}

func TestBoundPropertyNeverStale(t *testing.T) {
	_, b := newTestBinder(t)
	text := state.NewValue("first")
	node, err := b.New("p", Props{"text": text})
	if err != nil {
		t.Fatal(err)
	}

	for _, next := range []string{"second", "third", "third"} {
		text.Set(next)
		if v, _ := node.Property("text"); v != next {
			t.Fatalf("text = %v immediately after Set(%q)", v, next)
		}
	}
}
