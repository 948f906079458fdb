package snapshot

import (
	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/native"
)

// AbsoluteBounds returns node's bounds in screen coordinates.
func AbsoluteBounds(node native.Node) geometry.Rect {
	return node.BoundsInScreen()
}

// visibleBounds clips e's own bounds by every ancestor's snapshotted bounds.
// It requires e.visible and e.parent to be set already.
func visibleBounds(e *Element) geometry.Rect {
	if !e.visible {
		return geometry.Rect{}
	}
	bounds := e.Bounds()
	if bounds.IsEmpty() {
		return geometry.Rect{}
	}
	for ancestor := e.parent; ancestor != nil; ancestor = ancestor.parent {
		bounds = bounds.Intersect(ancestor.Bounds())
		if bounds.IsEmpty() {
			return geometry.Rect{}
		}
	}
	return bounds
}
