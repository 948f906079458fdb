// Package pathindex maps structural paths to snapshot elements.
//
// A path is the chain of class names from the root, for example
// "/android.widget.FrameLayout/android.widget.LinearLayout[2]/android.widget.Button".
// A segment carries a 1-based [n] suffix only when more than one sibling
// shares its class. Elements without a class use "node".
//
// Entries describe one snapshot generation. Register the Index with the
// builder's identity cache so it is reset together with it:
//
//	idx := pathindex.New()
//	b := snapshot.NewBuilder(snapshot.WithResetListener(idx))
package pathindex

import (
	"fmt"
	"strings"

	"github.com/go-drift/axsnap/pkg/snapshot"
)

// Index memoizes element paths for the current generation.
//
// Unlike the identity cache, Index holds strong references to the elements
// it has memoized, so they stay reachable until Reset. Every BuildRoot
// resets a registered Index, including builds that fail; an Index that is
// not registered must be reset by its owner.
//
// Index is not safe for concurrent use.
type Index struct {
	byPath    map[string]*snapshot.Element
	byElement map[*snapshot.Element]string
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		byPath:    make(map[string]*snapshot.Element),
		byElement: make(map[*snapshot.Element]string),
	}
}

// Reset drops every entry. It implements snapshot.Resetter.
func (x *Index) Reset() {
	clear(x.byPath)
	clear(x.byElement)
}

// Len returns the number of memoized paths.
func (x *Index) Len() int {
	return len(x.byPath)
}

// Path returns e's structural path, memoizing it and its ancestors' paths.
func (x *Index) Path(e *snapshot.Element) string {
	if p, ok := x.byElement[e]; ok {
		return p
	}
	var p string
	if parent := e.Parent(); parent != nil {
		p = x.Path(parent) + "/" + segment(e, parent)
	} else {
		p = "/" + className(e)
	}
	x.byElement[e] = p
	if _, taken := x.byPath[p]; !taken {
		x.byPath[p] = e
	}
	return p
}

// Lookup returns the element memoized under path, if any.
func (x *Index) Lookup(path string) (*snapshot.Element, bool) {
	e, ok := x.byPath[path]
	return e, ok
}

// Resolve finds the element at path under root, indexing the tree as it
// goes.
func (x *Index) Resolve(root *snapshot.Element, path string) (*snapshot.Element, error) {
	if e, ok := x.byPath[path]; ok {
		return e, nil
	}
	var found *snapshot.Element
	root.Walk(func(e *snapshot.Element) bool {
		if found != nil {
			return false
		}
		p := x.Path(e)
		if p == path {
			found = e
			return false
		}
		// Only descend into subtrees whose path is a prefix of the target.
		return strings.HasPrefix(path, p+"/")
	})
	if found == nil {
		return nil, fmt.Errorf("no element at path %q", path)
	}
	return found, nil
}

// IndexTree memoizes the path of every element under root.
func (x *Index) IndexTree(root *snapshot.Element) {
	root.Walk(func(e *snapshot.Element) bool {
		x.Path(e)
		return true
	})
}

func className(e *snapshot.Element) string {
	if cls, ok := e.Attributes().Text(snapshot.AttrClass); ok && cls != "" {
		return cls
	}
	return "node"
}

// segment computes e's path segment among parent's children.
func segment(e, parent *snapshot.Element) string {
	name := className(e)
	idx, total := 0, 0
	for _, sibling := range parent.Children() {
		if className(sibling) != name {
			continue
		}
		total++
		if sibling == e && idx == 0 {
			idx = total
		}
	}
	if total > 1 && idx > 0 {
		return fmt.Sprintf("%s[%d]", name, idx)
	}
	return name
}
