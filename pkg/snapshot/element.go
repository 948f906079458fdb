// Package snapshot freezes a live accessibility tree into an immutable
// element tree.
//
// Live native nodes may change between reads, so queries run against
// Elements instead: every property is read exactly once, when the Element is
// built, and never again. A Builder produces one tree per generation and
// reuses one Element per native handle within that generation.
//
//	b := snapshot.NewBuilder(snapshot.WithLogger(logger))
//	root, err := b.BuildRoot(service.RootNode())
//	if err != nil {
//	    // The current UI state cannot be observed right now.
//	}
//	root.Walk(func(e *snapshot.Element) bool {
//	    fmt.Println(e.Attributes().Text(snapshot.AttrClass))
//	    return true
//	})
package snapshot

import (
	"fmt"

	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/native"
)

// Element is an immutable snapshot of one native node.
//
// The parent pointer is a back-reference for upward traversal; an element
// owns only its children.
type Element struct {
	node          native.Node
	attributes    Attributes
	visible       bool
	visibleBounds geometry.Rect
	parent        *Element
	children      []*Element
	depth         int
	generation    string
}

// Node returns the live native node this element was built from. Its
// properties may no longer match the snapshot.
func (e *Element) Node() native.Node {
	return e.node
}

// Parent returns the parent element, or nil for the root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the child elements in native enumeration order. The
// result is never nil.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of child elements.
func (e *Element) ChildCount() int {
	return len(e.children)
}

// Child returns the i-th child, or nil if i is out of range.
func (e *Element) Child(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Attributes returns the snapshotted attributes.
func (e *Element) Attributes() Attributes {
	return e.attributes
}

// Index returns the element's position among its parent's children.
func (e *Element) Index() int {
	i, _ := e.attributes.Int(AttrIndex)
	return i
}

// Bounds returns the element's absolute screen bounds.
func (e *Element) Bounds() geometry.Rect {
	r, _ := e.attributes.Rect(AttrBounds)
	return r
}

// VisibleBounds returns the on-screen region left after clipping by every
// ancestor. It is empty when the element is not visible to the user.
func (e *Element) VisibleBounds() geometry.Rect {
	return e.visibleBounds
}

// IsVisibleToUser reports the native visibility flag at snapshot time.
func (e *Element) IsVisibleToUser() bool {
	return e.visible
}

// Depth returns the number of ancestors.
func (e *Element) Depth() int {
	return e.depth
}

// Generation returns the id of the snapshot generation that built e.
func (e *Element) Generation() string {
	return e.generation
}

// ClickPoint returns the center of the visible bounds, which is where an
// action layer should tap. ok is false when nothing of e is visible.
func (e *Element) ClickPoint() (p geometry.Point, ok bool) {
	if e.visibleBounds.IsEmpty() {
		return geometry.Point{}, false
	}
	return e.visibleBounds.Center(), true
}

// Walk visits e and its descendants in depth-first pre-order. The visitor
// returns false to skip an element's subtree.
func (e *Element) Walk(visit func(*Element) bool) {
	if !visit(e) {
		return
	}
	for _, child := range e.children {
		child.Walk(visit)
	}
}

// String returns a short description such as "android.widget.Button[2]".
func (e *Element) String() string {
	class, ok := e.attributes.Text(AttrClass)
	if !ok {
		class = "node"
	}
	return fmt.Sprintf("%s[%d]", class, e.Index())
}
