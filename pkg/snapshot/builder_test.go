package snapshot

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/go-drift/axsnap/pkg/errors"
	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/native"
	"github.com/go-drift/axsnap/pkg/native/fixture"
)

func box(l, t, r, b int) []int {
	return []int{l, t, r, b}
}

func tree(root *fixture.Node) *fixture.Node {
	fixture.AssignHandles(root)
	return root
}

func mustBuild(t *testing.T, b *Builder, root native.Node) *Element {
	t.Helper()
	e, err := b.BuildRoot(root)
	if err != nil {
		t.Fatalf("BuildRoot failed: %v", err)
	}
	return e
}

func TestBuildRoot_ThreeLevelTree(t *testing.T) {
	root := tree(&fixture.Node{
		Class:  fixture.String("root"),
		Bounds: box(0, 0, 100, 100),
		Children: []*fixture.Node{
			{Class: fixture.String("a"), Bounds: box(0, 0, 50, 100), Children: []*fixture.Node{
				{Class: fixture.String("a0"), Bounds: box(0, 0, 50, 50)},
			}},
			{Class: fixture.String("b"), Bounds: box(50, 0, 100, 100), Children: []*fixture.Node{
				{Class: fixture.String("b0"), Bounds: box(50, 50, 100, 100)},
			}},
		},
	})

	e := mustBuild(t, NewBuilder(), root)

	if e.Parent() != nil {
		t.Error("root should have no parent")
	}
	if e.Index() != 0 || e.Depth() != 0 {
		t.Errorf("root index/depth = %d/%d, want 0/0", e.Index(), e.Depth())
	}
	if e.ChildCount() != 2 {
		t.Fatalf("root has %d children, want 2", e.ChildCount())
	}
	for i, child := range e.Children() {
		if child.Parent() != e {
			t.Errorf("child %d parent mismatch", i)
		}
		if child.Index() != i {
			t.Errorf("child %d INDEX = %d", i, child.Index())
		}
		if child.ChildCount() != 1 {
			t.Fatalf("child %d has %d children, want 1", i, child.ChildCount())
		}
		grandchild := child.Child(0)
		if grandchild.Parent() != child {
			t.Errorf("grandchild of %d has wrong parent", i)
		}
		if grandchild.Index() != 0 || grandchild.Depth() != 2 {
			t.Errorf("grandchild index/depth = %d/%d, want 0/2", grandchild.Index(), grandchild.Depth())
		}
		if grandchild.ChildCount() != 0 {
			t.Error("leaf should have no children")
		}
	}

	var order []string
	e.Walk(func(el *Element) bool {
		cls, _ := el.Attributes().Text(AttrClass)
		order = append(order, cls)
		return true
	})
	if want := []string{"root", "a", "a0", "b", "b0"}; !slices.Equal(order, want) {
		t.Errorf("walk order = %v, want %v", order, want)
	}
}

func TestVisibleBounds(t *testing.T) {
	tests := []struct {
		name string
		root *fixture.Node
		// path of child indices to the element under test
		path []int
		want geometry.Rect
	}{
		{
			name: "clipped by parent",
			root: &fixture.Node{Bounds: box(0, 0, 100, 100), Children: []*fixture.Node{
				{Bounds: box(10, 10, 200, 200)},
			}},
			path: []int{0},
			want: geometry.RectFromLTRB(10, 10, 100, 100),
		},
		{
			name: "not visible",
			root: &fixture.Node{Bounds: box(0, 0, 100, 100), Children: []*fixture.Node{
				{Bounds: box(10, 10, 50, 50), Hidden: true},
			}},
			path: []int{0},
			want: geometry.Rect{},
		},
		{
			name: "hidden root",
			root: &fixture.Node{Bounds: box(0, 0, 100, 100), Hidden: true},
			want: geometry.Rect{},
		},
		{
			name: "clipped by grandparent past a larger parent",
			root: &fixture.Node{Bounds: box(0, 0, 40, 40), Children: []*fixture.Node{
				{Bounds: box(0, 0, 500, 500), Children: []*fixture.Node{
					{Bounds: box(20, 20, 300, 300)},
				}},
			}},
			path: []int{0, 0},
			want: geometry.RectFromLTRB(20, 20, 40, 40),
		},
		{
			name: "invisible ancestor still clips",
			root: &fixture.Node{Bounds: box(0, 0, 100, 100), Children: []*fixture.Node{
				{Bounds: box(0, 0, 60, 60), Hidden: true, Children: []*fixture.Node{
					{Bounds: box(30, 30, 90, 90)},
				}},
			}},
			path: []int{0, 0},
			want: geometry.RectFromLTRB(30, 30, 60, 60),
		},
		{
			name: "disjoint from an ancestor",
			root: &fixture.Node{Bounds: box(0, 0, 100, 100), Children: []*fixture.Node{
				{Bounds: box(200, 200, 300, 300)},
			}},
			path: []int{0},
			want: geometry.Rect{},
		},
		{
			name: "root keeps its own bounds",
			root: &fixture.Node{Bounds: box(0, 0, 1080, 1920)},
			want: geometry.RectFromLTRB(0, 0, 1080, 1920),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustBuild(t, NewBuilder(), tree(tt.root))
			for _, i := range tt.path {
				e = e.Child(i)
			}
			if got := e.VisibleBounds(); got != tt.want {
				t.Errorf("VisibleBounds() = %v, want %v", got, tt.want)
			}
			if !e.Bounds().Contains(e.VisibleBounds()) {
				t.Errorf("visible %v escapes own bounds %v", e.VisibleBounds(), e.Bounds())
			}
			for a := e.Parent(); a != nil; a = a.Parent() {
				if !a.Bounds().Contains(e.VisibleBounds()) {
					t.Errorf("visible %v escapes ancestor bounds %v", e.VisibleBounds(), a.Bounds())
				}
			}
		})
	}
}

func TestBuildRoot_SkipsMissingChildrenAndCompactsIndex(t *testing.T) {
	root := tree(&fixture.Node{
		Children: []*fixture.Node{
			{Class: fixture.String("first")},
			{Missing: true},
			{Class: fixture.String("second")},
			{Missing: true},
			{Class: fixture.String("third")},
		},
	})

	e := mustBuild(t, NewBuilder(), root)

	if e.ChildCount() != 3 {
		t.Fatalf("ChildCount() = %d, want 3", e.ChildCount())
	}
	for i, want := range []string{"first", "second", "third"} {
		child := e.Child(i)
		if cls, _ := child.Attributes().Text(AttrClass); cls != want {
			t.Errorf("child %d class = %q, want %q", i, cls, want)
		}
		if child.Index() != i {
			t.Errorf("child %d INDEX = %d, want %d", i, child.Index(), i)
		}
	}
}

func TestBuildRoot_NoChildrenIsEmptySequence(t *testing.T) {
	e := mustBuild(t, NewBuilder(), tree(&fixture.Node{}))
	children := e.Children()
	if children == nil {
		t.Error("Children() should be non-nil")
	}
	if len(children) != 0 {
		t.Errorf("len(Children()) = %d, want 0", len(children))
	}
	if e.Child(0) != nil {
		t.Error("Child(0) should be nil")
	}
}

func TestBuildRoot_AllSlotsMissing(t *testing.T) {
	e := mustBuild(t, NewBuilder(), tree(&fixture.Node{
		Children: []*fixture.Node{{Missing: true}, {Missing: true}},
	}))
	if e.ChildCount() != 0 || e.Children() == nil {
		t.Errorf("expected empty non-nil children, got %v", e.Children())
	}
}

func TestBuildRoot_NilRoot(t *testing.T) {
	b := NewBuilder()

	var typedNil *fixture.Node
	for name, root := range map[string]native.Node{"nil": nil, "typed nil": typedNil} {
		t.Run(name, func(t *testing.T) {
			e, err := b.BuildRoot(root)
			if e != nil {
				t.Error("expected no tree")
			}
			if !stderrors.Is(err, errors.ErrNilNode) {
				t.Fatalf("err = %v, want ErrNilNode", err)
			}
			if !errors.IsKind(err, errors.KindPrecondition) {
				t.Errorf("err kind should be precondition: %v", err)
			}
		})
	}
}

func TestBuildRoot_NativePanicYieldsNoTree(t *testing.T) {
	oldHandler := errors.DefaultHandler
	var reported *errors.PanicError
	errors.SetHandler(&recordingHandler{onPanic: func(p *errors.PanicError) { reported = p }})
	defer errors.SetHandler(oldHandler)

	leaf := &fixture.Node{OnRead: func(_ *fixture.Node, property string) {
		if property == "text" {
			panic("node recycled")
		}
	}}
	root := tree(&fixture.Node{Children: []*fixture.Node{{}, {Children: []*fixture.Node{leaf}}}})

	listener := &countingResetter{}
	b := NewBuilder(WithResetListener(listener))
	e, err := b.BuildRoot(root)
	if e != nil {
		t.Error("expected no tree after a native panic")
	}
	if listener.resets != 1 {
		t.Errorf("listener reset %d times for one failed build, want 1", listener.resets)
	}
	if !errors.IsKind(err, errors.KindPanic) {
		t.Fatalf("err = %v, want a panic error", err)
	}
	if reported == nil {
		t.Error("panic should be reported to the global handler")
	}
	if b.Cache().Len() != 0 {
		t.Errorf("cache should be empty after a failed build, has %d", b.Cache().Len())
	}

	leaf.OnRead = nil
	if _, err := b.BuildRoot(root); err != nil {
		t.Errorf("rebuild after recovery failed: %v", err)
	}
}

func TestBuildRoot_SnapshotIsImmutable(t *testing.T) {
	label := &fixture.Node{TextValue: fixture.String("before"), Bounds: box(0, 0, 10, 10)}
	root := tree(&fixture.Node{Bounds: box(0, 0, 100, 100), Children: []*fixture.Node{label}})

	e := mustBuild(t, NewBuilder(), root)

	label.TextValue = fixture.String("after")
	label.Bounds = box(50, 50, 60, 60)
	label.Hidden = true
	root.Children = append(root.Children, &fixture.Node{ID: 99})

	child := e.Child(0)
	if text, _ := child.Attributes().Text(AttrText); text != "before" {
		t.Errorf("text = %q, want snapshot value %q", text, "before")
	}
	if got, want := child.Bounds(), geometry.RectFromLTRB(0, 0, 10, 10); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
	if !child.IsVisibleToUser() {
		t.Error("visibility should be the snapshot value")
	}
	if e.ChildCount() != 1 {
		t.Errorf("ChildCount() = %d, want 1", e.ChildCount())
	}

	children := e.Children()
	children[0] = nil
	if e.Child(0) == nil {
		t.Error("mutating the returned slice must not affect the element")
	}
}

func TestBuildRoot_ReadOrder(t *testing.T) {
	var reads []string
	root := tree(&fixture.Node{
		Bounds: box(0, 0, 10, 10),
		OnRead: func(_ *fixture.Node, property string) { reads = append(reads, property) },
	})

	mustBuild(t, NewBuilder(), root)

	pos := func(property string) int {
		return slices.Index(reads, property)
	}
	if pos("bounds") < 0 || pos("visible") < 0 || pos("child-count") < 0 {
		t.Fatalf("missing reads: %v", reads)
	}
	if !(pos("bounds") < pos("visible") && pos("visible") < pos("child-count")) {
		t.Errorf("reads out of order: %v", reads)
	}
	for _, p := range []string{"bounds", "visible", "text"} {
		n := 0
		for _, r := range reads {
			if r == p {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%s read %d times, want once", p, n)
		}
	}
}

func TestBuildRoot_SkipsCyclicChild(t *testing.T) {
	root := &fixture.Node{ID: 1, Class: fixture.String("root")}
	middle := &fixture.Node{ID: 2, Children: []*fixture.Node{root, {ID: 3}}}
	root.Children = []*fixture.Node{middle}

	e := mustBuild(t, NewBuilder(), root)

	m := e.Child(0)
	if m == nil {
		t.Fatal("expected middle element")
	}
	if m.ChildCount() != 1 {
		t.Fatalf("middle has %d children, want 1 (cyclic slot skipped)", m.ChildCount())
	}
	if m.Child(0).Node().Handle() != 3 {
		t.Errorf("unexpected child handle %d", m.Child(0).Node().Handle())
	}
	if m.Child(0).Index() != 0 {
		t.Errorf("INDEX = %d, want 0", m.Child(0).Index())
	}
}

func TestElement_ClickPointAndString(t *testing.T) {
	root := tree(&fixture.Node{
		Class:  fixture.String("android.widget.FrameLayout"),
		Bounds: box(0, 0, 100, 100),
		Children: []*fixture.Node{
			{Bounds: box(50, 50, 150, 150)},
			{Bounds: box(0, 0, 10, 10), Hidden: true},
		},
	})
	e := mustBuild(t, NewBuilder(), root)

	if got := e.String(); got != "android.widget.FrameLayout[0]" {
		t.Errorf("String() = %q", got)
	}
	if got := e.Child(1).String(); got != "node[1]" {
		t.Errorf("String() without class = %q", got)
	}
	if p, ok := e.Child(0).ClickPoint(); !ok || p != (geometry.Point{X: 75, Y: 75}) {
		t.Errorf("ClickPoint() = %v, %v; want (75,75), true", p, ok)
	}
	if _, ok := e.Child(1).ClickPoint(); ok {
		t.Error("hidden element should have no click point")
	}
}

type recordingHandler struct {
	onError func(*errors.SnapshotError)
	onPanic func(*errors.PanicError)
}

func (h *recordingHandler) HandleError(err *errors.SnapshotError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
