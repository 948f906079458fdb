// Package finder locates elements in a snapshot tree.
//
//	root, _ := builder.BuildRoot(node)
//	ok := finder.Find(root, finder.ByText("Submit")).First()
//	target := finder.HitTest(root, geometry.Point{X: 540, Y: 960})
package finder

import (
	"fmt"
	"strings"

	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

// Finder locates elements in a snapshot tree.
type Finder interface {
	// Evaluate returns all matching elements under root (depth-first pre-order).
	Evaluate(root *snapshot.Element) []*snapshot.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// Find evaluates f against root.
func Find(root *snapshot.Element, f Finder) FinderResult {
	return FinderResult{elements: f.Evaluate(root), finder: f}
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*snapshot.Element
	finder   Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *snapshot.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.description()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *snapshot.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// Last returns the last match in traversal order, or nil if none.
func (r FinderResult) Last() *snapshot.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[len(r.elements)-1]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *snapshot.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.description()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*snapshot.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// --- Concrete finders ---

// attributeFinder matches elements whose attribute equals a value.
type attributeFinder struct {
	key   snapshot.Attribute
	value any
}

func (f *attributeFinder) Evaluate(root *snapshot.Element) []*snapshot.Element {
	return collectMatches(root, func(e *snapshot.Element) bool {
		return e.Attributes().Matches(f.key, f.value)
	})
}

func (f *attributeFinder) Description() string {
	return fmt.Sprintf("ByAttribute(%s=%v)", f.key, f.value)
}

// ByAttribute returns a finder that matches elements whose attribute key is
// present and equal to value. A string value matches the formatted form of
// any attribute kind.
func ByAttribute(key snapshot.Attribute, value any) Finder {
	return &attributeFinder{key: key, value: value}
}

// ByText returns a finder that matches the text attribute exactly.
func ByText(text string) Finder {
	return ByAttribute(snapshot.AttrText, text)
}

// ByResourceID returns a finder that matches the resource-id attribute.
func ByResourceID(id string) Finder {
	return ByAttribute(snapshot.AttrResourceID, id)
}

// ByClass returns a finder that matches the class attribute.
func ByClass(class string) Finder {
	return ByAttribute(snapshot.AttrClass, class)
}

// ByContentDesc returns a finder that matches the content-desc attribute.
func ByContentDesc(desc string) Finder {
	return ByAttribute(snapshot.AttrContentDesc, desc)
}

// textContainingFinder matches elements whose text contains a substring.
type textContainingFinder struct {
	substring string
}

func (f *textContainingFinder) Evaluate(root *snapshot.Element) []*snapshot.Element {
	return collectMatches(root, func(e *snapshot.Element) bool {
		text, ok := e.Attributes().Text(snapshot.AttrText)
		return ok && strings.Contains(text, f.substring)
	})
}

func (f *textContainingFinder) Description() string {
	return fmt.Sprintf("ByTextContaining(%q)", f.substring)
}

// ByTextContaining returns a finder that matches elements whose text
// contains substring.
func ByTextContaining(substring string) Finder {
	return &textContainingFinder{substring: substring}
}

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(*snapshot.Element) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *snapshot.Element) []*snapshot.Element {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(*snapshot.Element) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// pointFinder matches elements whose visible bounds contain a point.
type pointFinder struct {
	p geometry.Point
}

func (f *pointFinder) Evaluate(root *snapshot.Element) []*snapshot.Element {
	var results []*snapshot.Element
	root.Walk(func(e *snapshot.Element) bool {
		if e.VisibleBounds().ContainsPoint(f.p) {
			results = append(results, e)
		}
		// Invisible containers may still hold visible descendants.
		return true
	})
	return results
}

func (f *pointFinder) Description() string {
	return fmt.Sprintf("AtPoint(%d,%d)", f.p.X, f.p.Y)
}

// AtPoint returns a finder that matches elements whose visible bounds
// contain p.
func AtPoint(p geometry.Point) Finder {
	return &pointFinder{p: p}
}

// HitTest returns the deepest element whose visible bounds contain p. Among
// elements at equal depth the later sibling wins, matching draw order.
// Returns nil if nothing visible is at p.
func HitTest(root *snapshot.Element, p geometry.Point) *snapshot.Element {
	var hit *snapshot.Element
	for _, e := range AtPoint(p).Evaluate(root) {
		if hit == nil || e.Depth() >= hit.Depth() {
			hit = e
		}
	}
	return hit
}

// descendantFinder finds elements matching 'matching' that are descendants
// of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *snapshot.Element) []*snapshot.Element {
	ancestors := f.of.Evaluate(root)
	if len(ancestors) == 0 {
		return nil
	}
	var results []*snapshot.Element
	seen := make(map[*snapshot.Element]bool)
	for _, ancestor := range ancestors {
		// Search within each ancestor's subtree (skip the ancestor itself)
		for i := range ancestor.ChildCount() {
			for _, match := range f.matching.Evaluate(ancestor.Child(i)) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches elements satisfying 'matching'
// that are descendants of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds elements matching 'matching' that are ancestors
// of elements matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root *snapshot.Element) []*snapshot.Element {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	candidates := f.matching.Evaluate(root)
	if len(candidates) == 0 {
		return nil
	}
	// Parent links make the upward walk cheap; collect every ancestor once.
	ancestors := make(map[*snapshot.Element]bool)
	for _, d := range descendants {
		for a := d.Parent(); a != nil; a = a.Parent() {
			ancestors[a] = true
		}
	}
	var results []*snapshot.Element
	for _, candidate := range candidates {
		if ancestors[candidate] {
			results = append(results, candidate)
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches elements satisfying 'matching'
// that are ancestors of elements matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting
// elements that satisfy the predicate.
func collectMatches(root *snapshot.Element, predicate func(*snapshot.Element) bool) []*snapshot.Element {
	var results []*snapshot.Element
	root.Walk(func(e *snapshot.Element) bool {
		if predicate(e) {
			results = append(results, e)
		}
		return true
	})
	return results
}
