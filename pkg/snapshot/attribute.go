package snapshot

import (
	"fmt"
	"iter"

	"github.com/go-drift/axsnap/pkg/geometry"
)

// Attribute identifies one snapshotted property of an element.
type Attribute int

const (
	AttrIndex Attribute = iota
	AttrPackage
	AttrClass
	AttrText
	AttrContentDesc
	AttrResourceID
	AttrCheckable
	AttrChecked
	AttrClickable
	AttrEnabled
	AttrFocusable
	AttrFocused
	AttrLongClickable
	AttrPassword
	AttrScrollable
	AttrSelectionStart
	AttrSelectionEnd
	AttrSelected
	AttrBounds

	numAttributes
)

var attributeNames = [numAttributes]string{
	AttrIndex:          "index",
	AttrPackage:        "package",
	AttrClass:          "class",
	AttrText:           "text",
	AttrContentDesc:    "content-desc",
	AttrResourceID:     "resource-id",
	AttrCheckable:      "checkable",
	AttrChecked:        "checked",
	AttrClickable:      "clickable",
	AttrEnabled:        "enabled",
	AttrFocusable:      "focusable",
	AttrFocused:        "focused",
	AttrLongClickable:  "long-clickable",
	AttrPassword:       "password",
	AttrScrollable:     "scrollable",
	AttrSelectionStart: "selection-start",
	AttrSelectionEnd:   "selection-end",
	AttrSelected:       "selected",
	AttrBounds:         "bounds",
}

// String returns the attribute's hierarchy-dump name, e.g. "content-desc".
func (a Attribute) String() string {
	if a < 0 || a >= numAttributes {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return attributeNames[a]
}

// ParseAttribute returns the attribute with the given dump name.
func ParseAttribute(name string) (Attribute, error) {
	for a, n := range attributeNames {
		if n == name {
			return Attribute(a), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute %q", name)
}

// AllAttributes returns every attribute in declaration order.
func AllAttributes() []Attribute {
	out := make([]Attribute, numAttributes)
	for i := range out {
		out[i] = Attribute(i)
	}
	return out
}

// Attributes is a read-only attribute mapping. A key is present only when
// the native node reported a value for it.
type Attributes struct {
	m map[Attribute]any
}

// Get returns the raw value for key.
func (a Attributes) Get(key Attribute) (any, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Has reports whether key is present.
func (a Attributes) Has(key Attribute) bool {
	_, ok := a.m[key]
	return ok
}

// Text returns a text attribute.
func (a Attributes) Text(key Attribute) (string, bool) {
	v, ok := a.m[key].(string)
	return v, ok
}

// Bool returns a flag attribute.
func (a Attributes) Bool(key Attribute) (bool, bool) {
	v, ok := a.m[key].(bool)
	return v, ok
}

// Int returns an integer attribute.
func (a Attributes) Int(key Attribute) (int, bool) {
	v, ok := a.m[key].(int)
	return v, ok
}

// Rect returns a rectangle attribute.
func (a Attributes) Rect(key Attribute) (geometry.Rect, bool) {
	v, ok := a.m[key].(geometry.Rect)
	return v, ok
}

// Len returns the number of present attributes.
func (a Attributes) Len() int {
	return len(a.m)
}

// Keys returns the present attributes in declaration order.
func (a Attributes) Keys() []Attribute {
	keys := make([]Attribute, 0, len(a.m))
	for k := Attribute(0); k < numAttributes; k++ {
		if _, ok := a.m[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// All iterates present attributes in declaration order.
func (a Attributes) All() iter.Seq2[Attribute, any] {
	return func(yield func(Attribute, any) bool) {
		for _, k := range a.Keys() {
			if !yield(k, a.m[k]) {
				return
			}
		}
	}
}

// Matches reports whether key is present and equal to want. Text values are
// compared as strings, so callers may pass a string for any attribute kind
// using its formatted form (e.g. "true", "3", "[0,0][10,10]").
func (a Attributes) Matches(key Attribute, want any) bool {
	v, ok := a.m[key]
	if !ok {
		return false
	}
	if s, isString := want.(string); isString {
		return FormatValue(v) == s
	}
	return v == want
}

// FormatValue renders an attribute value the way hierarchy dumps do.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case geometry.Rect:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
