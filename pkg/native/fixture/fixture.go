// Package fixture provides an in-memory native.Node tree, loadable from YAML.
//
// Fixtures stand in for a live accessibility service in tests and in the
// axsnap CLI:
//
//	version: v1.0.0
//	root:
//	  class: android.widget.FrameLayout
//	  package: com.example
//	  bounds: [0, 0, 1080, 1920]
//	  children:
//	    - class: android.widget.TextView
//	      text: Hello
//	      bounds: [0, 0, 1080, 100]
//	    - missing: true
package fixture

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/native"
)

// SupportedMajor is the fixture schema major version this package reads.
const SupportedMajor = "v1"

// Tree is a decoded fixture document.
type Tree struct {
	Version string `yaml:"version"`
	Root    *Node  `yaml:"root"`
}

// Node is one fixture node. Unset text fields report no value; unset
// selection offsets report -1.
type Node struct {
	// ID is the node's handle. Zero means "assign one on load"; nodes sharing
	// a non-zero ID describe the same native element.
	ID uint64 `yaml:"id,omitempty"`

	Package     *string `yaml:"package,omitempty"`
	Class       *string `yaml:"class,omitempty"`
	TextValue   *string `yaml:"text,omitempty"`
	ContentDesc *string `yaml:"content-desc,omitempty"`
	ResourceID  *string `yaml:"resource-id,omitempty"`

	Checkable     bool `yaml:"checkable,omitempty"`
	Checked       bool `yaml:"checked,omitempty"`
	Clickable     bool `yaml:"clickable,omitempty"`
	Disabled      bool `yaml:"disabled,omitempty"`
	Focusable     bool `yaml:"focusable,omitempty"`
	Focused       bool `yaml:"focused,omitempty"`
	LongClickable bool `yaml:"long-clickable,omitempty"`
	Password      bool `yaml:"password,omitempty"`
	Scrollable    bool `yaml:"scrollable,omitempty"`
	Selected      bool `yaml:"selected,omitempty"`
	Hidden        bool `yaml:"hidden,omitempty"`

	SelectionStart *int `yaml:"selection-start,omitempty"`
	SelectionEnd   *int `yaml:"selection-end,omitempty"`

	// Bounds is [left, top, right, bottom]; any other length reads as empty.
	Bounds []int `yaml:"bounds,flow,omitempty"`

	// Missing makes this slot yield no usable node from its parent's Child.
	Missing bool `yaml:"missing,omitempty"`

	Children []*Node `yaml:"children,omitempty"`

	// OnRead, when set, is called on every property read. Tests use it to
	// observe or disturb traversal.
	OnRead func(n *Node, property string) `yaml:"-"`
}

var _ native.Node = (*Node)(nil)

// String returns a pointer to s, for building fixtures in code.
func String(s string) *string {
	return &s
}

// Int returns a pointer to i, for building fixtures in code.
func Int(i int) *int {
	return &i
}

// Load decodes a fixture document from r and assigns handles to nodes that
// have none.
func Load(r io.Reader) (*Tree, error) {
	var tree Tree
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("invalid fixture YAML: %w", err)
	}
	if err := tree.validate(); err != nil {
		return nil, err
	}
	AssignHandles(tree.Root)
	return &tree, nil
}

// LoadFile reads a fixture document from path.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tree, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

func (t *Tree) validate() error {
	if t.Version == "" {
		return fmt.Errorf("fixture version is required")
	}
	if !semver.IsValid(t.Version) {
		return fmt.Errorf("fixture version %q is not a valid semantic version", t.Version)
	}
	if major := semver.Major(t.Version); major != SupportedMajor {
		return fmt.Errorf("fixture version %s is not supported (want %s.x.y)", t.Version, SupportedMajor)
	}
	if t.Root == nil {
		return fmt.Errorf("fixture has no root node")
	}
	return validateNode(t.Root, "root")
}

func validateNode(n *Node, path string) error {
	if n.Bounds != nil && len(n.Bounds) != 4 {
		return fmt.Errorf("%s: bounds must have 4 values, got %d", path, len(n.Bounds))
	}
	for i, child := range n.Children {
		if child == nil {
			return fmt.Errorf("%s.children[%d]: empty entry (use missing: true)", path, i)
		}
		if err := validateNode(child, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// AssignHandles gives every node without an ID a unique one, numbered in
// pre-order above the largest explicit ID in the tree.
func AssignHandles(root *Node) {
	if root == nil {
		return
	}
	var maxID uint64
	walk(root, func(n *Node) {
		maxID = max(maxID, n.ID)
	})
	next := maxID
	walk(root, func(n *Node) {
		if n.ID == 0 {
			next++
			n.ID = next
		}
	})
}

func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		if child != nil {
			walk(child, fn)
		}
	}
}

func (n *Node) read(property string) {
	if n.OnRead != nil {
		n.OnRead(n, property)
	}
}

func optional(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// Handle implements native.Node.
func (n *Node) Handle() native.Handle {
	return native.Handle(n.ID)
}

func (n *Node) PackageName() (string, bool) {
	n.read("package")
	return optional(n.Package)
}

func (n *Node) ClassName() (string, bool) {
	n.read("class")
	return optional(n.Class)
}

func (n *Node) Text() (string, bool) {
	n.read("text")
	return optional(n.TextValue)
}

func (n *Node) ContentDescription() (string, bool) {
	n.read("content-desc")
	return optional(n.ContentDesc)
}

func (n *Node) ViewIDResourceName() (string, bool) {
	n.read("resource-id")
	return optional(n.ResourceID)
}

func (n *Node) IsCheckable() bool     { n.read("checkable"); return n.Checkable }
func (n *Node) IsChecked() bool       { n.read("checked"); return n.Checked }
func (n *Node) IsClickable() bool     { n.read("clickable"); return n.Clickable }
func (n *Node) IsEnabled() bool       { n.read("enabled"); return !n.Disabled }
func (n *Node) IsFocusable() bool     { n.read("focusable"); return n.Focusable }
func (n *Node) IsFocused() bool       { n.read("focused"); return n.Focused }
func (n *Node) IsLongClickable() bool { n.read("long-clickable"); return n.LongClickable }
func (n *Node) IsPassword() bool      { n.read("password"); return n.Password }
func (n *Node) IsScrollable() bool    { n.read("scrollable"); return n.Scrollable }
func (n *Node) IsSelected() bool      { n.read("selected"); return n.Selected }

func (n *Node) TextSelectionStart() int {
	n.read("selection-start")
	if n.SelectionStart == nil {
		return -1
	}
	return *n.SelectionStart
}

func (n *Node) TextSelectionEnd() int {
	n.read("selection-end")
	if n.SelectionEnd == nil {
		return -1
	}
	return *n.SelectionEnd
}

func (n *Node) BoundsInScreen() geometry.Rect {
	n.read("bounds")
	if len(n.Bounds) != 4 {
		return geometry.Rect{}
	}
	return geometry.RectFromLTRB(n.Bounds[0], n.Bounds[1], n.Bounds[2], n.Bounds[3])
}

func (n *Node) IsVisibleToUser() bool {
	n.read("visible")
	return !n.Hidden
}

func (n *Node) ChildCount() int {
	n.read("child-count")
	return len(n.Children)
}

// Child returns nil for out-of-range slots and for slots marked Missing.
func (n *Node) Child(i int) native.Node {
	n.read("child")
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	child := n.Children[i]
	if child == nil || child.Missing {
		return nil
	}
	return child
}
