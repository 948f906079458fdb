package pathindex

import (
	"testing"

	"github.com/go-drift/axsnap/pkg/native/fixture"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

func buildScreen(t *testing.T, b *snapshot.Builder) *snapshot.Element {
	t.Helper()
	root := &fixture.Node{
		Class: fixture.String("Frame"),
		Children: []*fixture.Node{
			{Class: fixture.String("List"), Children: []*fixture.Node{
				{Class: fixture.String("Button"), TextValue: fixture.String("one")},
				{Class: fixture.String("Text")},
				{Class: fixture.String("Button"), TextValue: fixture.String("two")},
			}},
			{},
		},
	}
	fixture.AssignHandles(root)
	e, err := b.BuildRoot(root)
	if err != nil {
		t.Fatalf("BuildRoot failed: %v", err)
	}
	return e
}

func TestPath(t *testing.T) {
	idx := New()
	root := buildScreen(t, snapshot.NewBuilder(snapshot.WithResetListener(idx)))
	list := root.Child(0)

	tests := []struct {
		e    *snapshot.Element
		want string
	}{
		{root, "/Frame"},
		{list, "/Frame/List"},
		{list.Child(0), "/Frame/List/Button[1]"},
		{list.Child(1), "/Frame/List/Text"},
		{list.Child(2), "/Frame/List/Button[2]"},
		{root.Child(1), "/Frame/node"},
	}
	for _, tt := range tests {
		if got := idx.Path(tt.e); got != tt.want {
			t.Errorf("Path(%v) = %q, want %q", tt.e, got, tt.want)
		}
	}
	if e, ok := idx.Lookup("/Frame/List/Button[2]"); !ok || e != list.Child(2) {
		t.Error("Lookup should return the memoized element")
	}
}

func TestResolve(t *testing.T) {
	idx := New()
	root := buildScreen(t, snapshot.NewBuilder(snapshot.WithResetListener(idx)))

	e, err := idx.Resolve(root, "/Frame/List/Button[2]")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if text, _ := e.Attributes().Text(snapshot.AttrText); text != "two" {
		t.Errorf("resolved text = %q, want %q", text, "two")
	}
	if _, err := idx.Resolve(root, "/Frame/List/Button[3]"); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestResetInLockStepWithBuilder(t *testing.T) {
	idx := New()
	b := snapshot.NewBuilder(snapshot.WithResetListener(idx))

	first := buildScreen(t, b)
	idx.IndexTree(first)
	if idx.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", idx.Len())
	}

	second := buildScreen(t, b)
	if idx.Len() != 0 {
		t.Errorf("index should be empty after a new generation, has %d", idx.Len())
	}
	e, err := idx.Resolve(second, "/Frame/List")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Generation() != second.Generation() {
		t.Error("resolved element belongs to a previous generation")
	}
}

func TestFailedBuildReleasesEntries(t *testing.T) {
	idx := New()
	b := snapshot.NewBuilder(snapshot.WithResetListener(idx))

	idx.IndexTree(buildScreen(t, b))
	if idx.Len() == 0 {
		t.Fatal("expected indexed paths")
	}
	if _, err := b.BuildRoot(nil); err == nil {
		t.Fatal("expected BuildRoot(nil) to fail")
	}
	if idx.Len() != 0 {
		t.Errorf("index should hold no elements after a failed build, has %d", idx.Len())
	}
}
