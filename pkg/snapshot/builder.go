package snapshot

import (
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-drift/axsnap/pkg/errors"
	"github.com/go-drift/axsnap/pkg/native"
)

const opBuildRoot = "snapshot.BuildRoot"

// Builder turns native trees into element trees. It owns the identity cache
// and must be used from one goroutine at a time.
type Builder struct {
	cache  *IdentityCache
	logger *slog.Logger

	// building holds the handles on the current construction path.
	building map[native.Handle]struct{}
	built    int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for debug tracing. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithCache makes the builder use cache instead of a private one.
func WithCache(cache *IdentityCache) Option {
	return func(b *Builder) {
		if cache != nil {
			b.cache = cache
		}
	}
}

// WithResetListener registers r with the builder's identity cache. When
// combined with WithCache, pass it after WithCache.
func WithResetListener(r Resetter) Option {
	return func(b *Builder) {
		b.cache.OnReset(r)
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		cache:    NewIdentityCache(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		building: make(map[native.Handle]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cache returns the builder's identity cache.
func (b *Builder) Cache() *IdentityCache {
	return b.cache
}

// BuildRoot starts a new generation and snapshots the tree under rawRoot.
// The root has no parent and index 0.
//
// On failure no tree is returned and the generation's cache entries are
// discarded. A nil rawRoot is a precondition failure; a panic raised by the
// native layer is returned as a *errors.PanicError.
func (b *Builder) BuildRoot(rawRoot native.Node) (*Element, error) {
	b.cache.Reset()
	generation := b.cache.Generation()

	if isNil(rawRoot) {
		return nil, &errors.SnapshotError{
			Op:         opBuildRoot,
			Kind:       errors.KindPrecondition,
			Err:        errors.ErrNilNode,
			Generation: generation,
			Timestamp:  time.Now(),
		}
	}

	start := time.Now()
	b.built = 0
	b.logger.Debug("snapshot generation started", slog.String("generation", generation))

	root, err := b.buildRoot(rawRoot)
	if err != nil {
		clear(b.building)
		b.cache.drop()
		return nil, err
	}

	b.logger.Debug("snapshot generation built",
		slog.String("generation", generation),
		slog.Int("elements", b.built),
		slog.Duration("elapsed", time.Since(start)),
	)
	return root, nil
}

func (b *Builder) buildRoot(rawRoot native.Node) (root *Element, err error) {
	defer errors.RecoverInto(opBuildRoot, &err)
	return b.cache.LookupOrBuild(rawRoot, nil, 0, b.newElement), nil
}

// Element returns the element for node in the current generation, building
// and registering it if needed.
func (b *Builder) Element(node native.Node, parent *Element, index int) (*Element, error) {
	if isNil(node) {
		return nil, &errors.SnapshotError{
			Op:         "snapshot.Element",
			Kind:       errors.KindPrecondition,
			Err:        errors.ErrNilNode,
			Generation: b.cache.Generation(),
			Timestamp:  time.Now(),
		}
	}
	return b.cache.LookupOrBuild(node, parent, index, b.newElement), nil
}

// newElement snapshots one node. The steps run in a fixed order: the
// visible bounds need the visibility flag and the parent, and children need
// the finished element as their parent.
func (b *Builder) newElement(node native.Node, parent *Element, index int) *Element {
	e := &Element{
		node:       node,
		parent:     parent,
		generation: b.cache.Generation(),
	}
	if parent != nil {
		e.depth = parent.depth + 1
	}

	e.attributes = extractAttributes(node, index)
	e.visible = node.IsVisibleToUser()
	e.visibleBounds = visibleBounds(e)
	e.children = b.buildChildren(node, e)

	b.built++
	return e
}

// buildChildren snapshots node's children in slot order. Slots that yield no
// usable node are skipped, and the remaining children are indexed by their
// position in the result.
func (b *Builder) buildChildren(node native.Node, owner *Element) []*Element {
	count := node.ChildCount()
	if count <= 0 {
		return nil
	}

	h := node.Handle()
	b.building[h] = struct{}{}
	defer delete(b.building, h)

	children := make([]*Element, 0, count)
	for slot := 0; slot < count; slot++ {
		child := node.Child(slot)
		if isNil(child) {
			b.logger.Debug("skipping unusable child slot",
				slog.Any("parent", owner),
				slog.Int("slot", slot),
			)
			continue
		}
		if _, cyclic := b.building[child.Handle()]; cyclic {
			b.logger.Debug("skipping child that is its own ancestor",
				slog.Any("parent", owner),
				slog.Int("slot", slot),
				slog.Uint64("handle", uint64(child.Handle())),
			)
			continue
		}
		children = append(children, b.cache.LookupOrBuild(child, owner, len(children), b.newElement))
	}
	return children
}

// isNil reports whether n is nil or wraps a nil pointer.
func isNil(n native.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
