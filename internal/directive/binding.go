package directive

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/roach88/strand/internal/reactive"
	"github.com/roach88/strand/internal/render"
)

// PendingWork is the render-work counter shared by a template during first
// paint. A binding calls Materialize once per instance built by its initial
// build, and never afterwards.
type PendingWork interface {
	Materialize()
}

// CollectRequest asks the templating context to activate the directives
// inside a freshly built instance.
type CollectRequest struct {
	Element *html.Node
	IsRoot  bool
	Scope   *reactive.Record
}

// Context is the enclosing templating context a binding is created in.
type Context interface {
	// Data is the scope the binding was discovered in. Item scopes delegate
	// lookups to it.
	Data() *reactive.Record
	Queue() PendingWork
	Owners() *render.Owners
	CollectDir(req CollectRequest) error
}

// scopeNames is shared by every binding so item scope names are unique
// across the process.
var scopeNames = reactive.NewClock()

// Option configures a ListBinding.
type Option func(*ListBinding)

// WithTagGenerator sets the owner tag source. Default: UUIDv7Generator.
func WithTagGenerator(g TagGenerator) Option {
	return func(b *ListBinding) { b.tags = g }
}

// WithScopeClock sets the clock item scopes are named from.
func WithScopeClock(c *reactive.Clock) Option {
	return func(b *ListBinding) { b.names = c }
}

// WithLogger sets the binding's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *ListBinding) { b.logger = l }
}

// WithDefaultIndexName overrides the index name used when the directive
// names none.
func WithDefaultIndexName(name string) Option {
	return func(b *ListBinding) { b.defaultIndex = name }
}

// ListBinding renders one instance of a template node per collection element.
//
// The binding owns the instances it renders among the children of its
// anchor parent, and an index-aligned slice of item scopes.
//
// INVARIANTS (hold after every Update returns):
//   - len(scopes) equals the number of owned instances
//   - owned instances appear in collection order
//   - end is captured once at construction and never recomputed
type ListBinding struct {
	raw   string
	expr  Expression
	owner render.OwnerTag

	host   *html.Node // template node, detached after the initial build
	parent *html.Node
	end    *html.Node

	initialized bool
	scopes      []*reactive.Record

	ctx          Context
	tags         TagGenerator
	names        *reactive.Clock
	logger       *slog.Logger
	defaultIndex string
}

// NewListBinding parses raw and binds it to host.
//
// host must sit directly inside an element; a host whose parent is the
// document root (or missing) is rejected. The anchor parent and end anchor
// are captured here, before anything replaces host.
func NewListBinding(host *html.Node, raw string, ctx Context, opts ...Option) (*ListBinding, error) {
	b := &ListBinding{
		raw:          raw,
		host:         host,
		ctx:          ctx,
		tags:         UUIDv7Generator{},
		names:        scopeNames,
		logger:       slog.Default(),
		defaultIndex: DefaultIndexName,
	}
	for _, opt := range opts {
		opt(b)
	}

	expr, err := parseExpression(raw, b.defaultIndex)
	if err != nil {
		return nil, err
	}
	b.expr = expr

	if host == nil || host.Parent == nil || host.Parent.Type != html.ElementNode {
		return nil, &BindingError{
			Code:      ErrCodeRootPlacement,
			Message:   "cannot apply repeated-block binding at the document root",
			Directive: raw,
		}
	}
	b.parent = host.Parent
	b.end = host.NextSibling
	b.owner = render.OwnerTag(b.tags.Generate())

	return b, nil
}

// Alias returns the name bound to each element.
func (b *ListBinding) Alias() string { return b.expr.Alias }

// IndexName returns the name bound to each position.
func (b *ListBinding) IndexName() string { return b.expr.Index }

// Source returns the collection expression.
func (b *ListBinding) Source() string { return b.expr.Source }

// Owner returns the binding's owner tag.
func (b *ListBinding) Owner() render.OwnerTag { return b.owner }

// Initialized reports whether the initial build has run.
func (b *ListBinding) Initialized() bool { return b.initialized }

// Parent returns the anchor parent all instances are rendered into.
func (b *ListBinding) Parent() *html.Node { return b.parent }

// End returns the end anchor, or nil when instances are appended last.
func (b *ListBinding) End() *html.Node { return b.end }

// Scopes returns the item scopes in instance order.
func (b *ListBinding) Scopes() []*reactive.Record {
	out := make([]*reactive.Record, len(b.scopes))
	copy(out, b.scopes)
	return out
}

// Instances returns the owned instances among the anchor parent's children.
func (b *ListBinding) Instances() []*html.Node {
	return b.ctx.Owners().Owned(b.parent, b.owner)
}

// Update reconciles the rendered instances with newValue.
//
// m describes what changed, when the caller knows. Rules, in order:
//   - absent newValue: nothing happens
//   - newValue not collection-shaped: NOT_COLLECTION error
//   - first update: initial build, whatever m says
//   - m.Receiver set and not newValue: stale notification, ignored
//   - no property: full rebuild
//   - index property: point patch at that index
//   - length property: length reconciliation
func (b *ListBinding) Update(newValue any, m *reactive.Mutation) error {
	if reactive.IsAbsent(newValue) {
		return nil
	}
	coll, ok := reactive.AsCollection(newValue)
	if !ok {
		return &BindingError{
			Code:      ErrCodeNotCollection,
			Message:   fmt.Sprintf("binding requires a collection-typed value, got %T", newValue),
			Directive: b.raw,
		}
	}

	if !b.initialized {
		return b.initialBuild(coll)
	}

	if m == nil {
		return b.rebuild(coll)
	}
	if m.Receiver != nil && !reactive.SameRef(m.Receiver, newValue) {
		b.logger.Debug("stale mutation ignored", "source", b.expr.Source, "property", m.Property)
		return nil
	}
	if m.Property == "" {
		return b.rebuild(coll)
	}
	if m.IsLength() {
		n, ok := m.Length()
		if !ok {
			n = coll.Len()
		}
		return b.reconcileLength(n)
	}

	idx, ok := m.Index()
	if !ok {
		b.logger.Warn("unsupported mutation property ignored", "source", b.expr.Source, "property", m.Property)
		return nil
	}
	return b.patch(idx, coll)
}

// initialBuild renders every element into one fragment and swaps it in for
// the template node.
func (b *ListBinding) initialBuild(coll reactive.Collection) error {
	frag, scopes, err := b.buildList(coll)
	if err != nil {
		return err
	}
	if err := render.ReplaceWithFragment(b.host, frag); err != nil {
		b.abandon(frag, scopes)
		return newRenderError(b.raw, "initial build", err)
	}
	b.scopes = append(b.scopes[:0], scopes...)
	b.initialized = true
	for range scopes {
		b.ctx.Queue().Materialize()
	}

	b.logger.Debug("list built", "source", b.expr.Source, "count", len(b.scopes))
	return nil
}

// rebuild renders the collection again and swaps the result in for every
// owned instance and scope. A failed build leaves the current instances.
func (b *ListBinding) rebuild(coll reactive.Collection) error {
	frag, scopes, err := b.buildList(coll)
	if err != nil {
		return err
	}

	old := b.Instances()
	if err := render.InsertFragmentBefore(b.parent, frag, b.end); err != nil {
		b.abandon(frag, scopes)
		return newRenderError(b.raw, "rebuild", err)
	}
	for _, n := range old {
		b.discard(n)
	}
	for _, s := range b.scopes {
		s.Close()
	}
	clear(b.scopes)
	b.scopes = append(b.scopes[:0], scopes...)

	b.logger.Debug("list rebuilt", "source", b.expr.Source, "count", len(b.scopes))
	return nil
}

// patch renders element idx and puts it in place of the instance at idx, or
// before the end anchor when there is no such instance yet.
func (b *ListBinding) patch(idx int, coll reactive.Collection) error {
	owned := b.Instances()
	pos := min(idx, len(owned))
	if idx > len(owned) {
		// Gap writes are not defined; the instance lands last, like a push,
		// and its index names where it landed.
		b.logger.Warn("patch index beyond rendered instances",
			"source", b.expr.Source, "index", idx, "instances", len(owned))
	}

	node, scope, err := b.buildItem(coll.At(idx), pos)
	if err != nil {
		return err
	}

	if pos == len(owned) {
		if err := render.InsertBefore(b.parent, node, b.end); err != nil {
			b.abandonItem(node, scope)
			return newRenderError(b.raw, "patch append", err)
		}
		b.scopes = append(b.scopes, scope)
		return nil
	}

	old := owned[pos]
	if err := render.Replace(old, node); err != nil {
		b.abandonItem(node, scope)
		return newRenderError(b.raw, "patch replace", err)
	}
	b.ctx.Owners().ForgetTree(old)
	b.scopes[pos].Close()
	b.scopes[pos] = scope
	return nil
}

// reconcileLength drops instances and scopes at positions >= n and re-stamps
// the index of the ones that remain.
func (b *ListBinding) reconcileLength(n int) error {
	n = max(n, 0)

	owned := b.Instances()
	for i := n; i < len(owned); i++ {
		b.discard(owned[i])
	}
	if n < len(b.scopes) {
		for _, s := range b.scopes[n:] {
			s.Close()
		}
		clear(b.scopes[n:])
		b.scopes = b.scopes[:n]
	}

	for i, s := range b.scopes {
		if err := s.SetOwn(b.expr.Index, i); err != nil {
			return err
		}
	}
	return nil
}

// buildList renders every element of coll. Nothing is committed to the
// binding: on error the items built so far are released.
func (b *ListBinding) buildList(coll reactive.Collection) (*render.Fragment, []*reactive.Record, error) {
	frag := render.NewFragment()
	scopes := make([]*reactive.Record, 0, coll.Len())
	for i, n := 0, coll.Len(); i < n; i++ {
		node, scope, err := b.buildItem(coll.At(i), i)
		if err != nil {
			b.abandon(frag, scopes)
			return nil, nil, err
		}
		scopes = append(scopes, scope)
		frag.Append(node)
	}
	return frag, scopes, nil
}

// abandon releases a build that never reached the tree.
func (b *ListBinding) abandon(frag *render.Fragment, scopes []*reactive.Record) {
	for i, n := range frag.Nodes() {
		b.abandonItem(n, scopes[i])
	}
}

func (b *ListBinding) abandonItem(n *html.Node, scope *reactive.Record) {
	scope.Close()
	b.ctx.Owners().ForgetTree(n)
}

// buildItem clones the template for item at position pos, creates its scope
// and hands both to the templating context. The caller places the scope.
func (b *ListBinding) buildItem(item any, pos int) (*html.Node, *reactive.Record, error) {
	node := render.Clone(b.host)

	scope := reactive.Wrap(map[string]any{
		b.expr.Alias: item,
		b.expr.Index: pos,
	}, b.names.ScopeName())
	scope.Link(b.ctx.Data())

	if err := b.ctx.Owners().Stamp(node, b.owner); err != nil {
		scope.Close()
		return nil, nil, newRenderError(b.raw, "stamp owner", err)
	}

	if err := b.ctx.CollectDir(CollectRequest{Element: node, IsRoot: true, Scope: scope}); err != nil {
		b.abandonItem(node, scope)
		return nil, nil, err
	}
	return node, scope, nil
}

func (b *ListBinding) discard(n *html.Node) {
	render.Remove(n)
	b.ctx.Owners().ForgetTree(n)
}
