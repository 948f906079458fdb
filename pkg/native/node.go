// Package native defines the boundary to a platform accessibility service.
//
// A Node is a live, externally owned view of one UI element. Its properties
// may change between calls, so consumers should read them once and keep the
// copy (see package snapshot).
package native

import "github.com/go-drift/axsnap/pkg/geometry"

// Handle is the opaque identity of a native node. Two Node values with the
// same Handle describe the same underlying UI element.
type Handle uint64

// Node is a live accessibility node.
//
// Text-valued getters return ok=false when the platform reports no value,
// which is distinct from an empty string.
type Node interface {
	// Handle returns the node's identity.
	Handle() Handle

	PackageName() (string, bool)
	ClassName() (string, bool)
	Text() (string, bool)
	ContentDescription() (string, bool)
	ViewIDResourceName() (string, bool)

	IsCheckable() bool
	IsChecked() bool
	IsClickable() bool
	IsEnabled() bool
	IsFocusable() bool
	IsFocused() bool
	IsLongClickable() bool
	IsPassword() bool
	IsScrollable() bool
	IsSelected() bool

	// TextSelectionStart and TextSelectionEnd return -1 when there is no
	// selection.
	TextSelectionStart() int
	TextSelectionEnd() int

	// BoundsInScreen returns the node's bounds in screen coordinates, or the
	// empty rect when unknown.
	BoundsInScreen() geometry.Rect

	IsVisibleToUser() bool

	// ChildCount returns the number of child slots.
	ChildCount() int
	// Child returns the child in slot i, or nil when the slot does not yield a
	// usable node.
	Child(i int) Node
}
