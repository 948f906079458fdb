package snapshot

import "github.com/go-drift/axsnap/pkg/native"

// extractAttributes reads the snapshotted property set off node. Text
// properties the node reports no value for are omitted; flags and bounds are
// always written. The selection pair is written only for a non-empty
// selection.
func extractAttributes(node native.Node, index int) Attributes {
	m := make(map[Attribute]any, numAttributes)

	m[AttrIndex] = index
	putText(m, AttrPackage, node.PackageName)
	putText(m, AttrClass, node.ClassName)
	putText(m, AttrText, node.Text)
	putText(m, AttrContentDesc, node.ContentDescription)
	putText(m, AttrResourceID, node.ViewIDResourceName)
	m[AttrCheckable] = node.IsCheckable()
	m[AttrChecked] = node.IsChecked()
	m[AttrClickable] = node.IsClickable()
	m[AttrEnabled] = node.IsEnabled()
	m[AttrFocusable] = node.IsFocusable()
	m[AttrFocused] = node.IsFocused()
	m[AttrLongClickable] = node.IsLongClickable()
	m[AttrPassword] = node.IsPassword()
	m[AttrScrollable] = node.IsScrollable()
	if start, end := node.TextSelectionStart(), node.TextSelectionEnd(); start >= 0 && start != end {
		m[AttrSelectionStart] = start
		m[AttrSelectionEnd] = end
	}
	m[AttrSelected] = node.IsSelected()
	m[AttrBounds] = AbsoluteBounds(node)

	return Attributes{m: m}
}

func putText(m map[Attribute]any, key Attribute, get func() (string, bool)) {
	if v, ok := get(); ok {
		m[key] = v
	}
}
