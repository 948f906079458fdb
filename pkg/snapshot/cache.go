package snapshot

import (
	"weak"

	"github.com/google/uuid"

	"github.com/go-drift/axsnap/pkg/native"
)

// Resetter is implemented by anything that indexes elements and must be
// cleared together with the identity cache.
type Resetter interface {
	Reset()
}

// BuildFunc constructs the element for node.
type BuildFunc func(node native.Node, parent *Element, index int) *Element

// IdentityCache maps native handles to the element built for them during the
// current generation. Entries are weak: the cache never keeps an element
// alive on its own.
//
// IdentityCache is not safe for concurrent use.
type IdentityCache struct {
	entries    map[native.Handle]weak.Pointer[Element]
	listeners  []Resetter
	generation string
}

// NewIdentityCache creates an empty cache with a fresh generation.
func NewIdentityCache() *IdentityCache {
	return &IdentityCache{
		entries:    make(map[native.Handle]weak.Pointer[Element]),
		generation: uuid.NewString(),
	}
}

// OnReset registers r to be reset whenever the cache is.
func (c *IdentityCache) OnReset(r Resetter) {
	c.listeners = append(c.listeners, r)
}

// Reset drops every entry, starts a new generation, and resets registered
// listeners.
func (c *IdentityCache) Reset() {
	c.generation = uuid.NewString()
	c.drop()
	for _, r := range c.listeners {
		r.Reset()
	}
}

// drop drops every entry without starting a new generation. Listeners are
// left alone; they were already reset when the generation started.
func (c *IdentityCache) drop() {
	clear(c.entries)
}

// Generation returns the current generation id.
func (c *IdentityCache) Generation() string {
	return c.generation
}

// Lookup returns the live element registered for h.
func (c *IdentityCache) Lookup(h native.Handle) (*Element, bool) {
	wp, ok := c.entries[h]
	if !ok {
		return nil, false
	}
	e := wp.Value()
	if e == nil {
		delete(c.entries, h)
		return nil, false
	}
	return e, true
}

// LookupOrBuild returns the element registered for node's handle. If there
// is none, it calls build and registers the result. A cached element is
// returned unchanged; parent and index apply only to a new build.
func (c *IdentityCache) LookupOrBuild(node native.Node, parent *Element, index int, build BuildFunc) *Element {
	h := node.Handle()
	if e, ok := c.Lookup(h); ok {
		return e
	}
	e := build(node, parent, index)
	c.entries[h] = weak.Make(e)
	return e
}

// Len returns the number of entries whose element is still alive.
func (c *IdentityCache) Len() int {
	n := 0
	for _, wp := range c.entries {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}
