package view

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/net/html"

	"github.com/roach88/strand/internal/directive"
	"github.com/roach88/strand/internal/reactive"
	"github.com/roach88/strand/internal/render"
)

// DefaultPrefix is the attribute prefix directives are recognised by.
const DefaultPrefix = "s-"

// ErrAlreadyMounted is returned by a second call to Mount.
var ErrAlreadyMounted = errors.New("view: already mounted")

// View is a parsed template bound to a data scope.
//
// A view discovers directives in its template, owns the render tree and the
// ownership table shared by every list binding in it, and counts render
// units during first paint.
type View struct {
	root   *html.Node
	data   *reactive.Record
	queue  *RenderQueue
	owners *render.Owners
	names  *reactive.Clock

	prefix string
	tags   directive.TagGenerator
	logger *slog.Logger

	lists   []*directive.ListBinding
	texts   int
	mounted bool
}

// Option configures a View.
type Option func(*View)

// WithDirectivePrefix sets the directive attribute prefix. Default: "s-".
func WithDirectivePrefix(prefix string) Option {
	return func(v *View) { v.prefix = prefix }
}

// WithLogger sets the logger used by the view and its bindings.
func WithLogger(l *slog.Logger) Option {
	return func(v *View) { v.logger = l }
}

// WithTagGenerator sets the owner tag source for list bindings.
func WithTagGenerator(g directive.TagGenerator) Option {
	return func(v *View) { v.tags = g }
}

// New parses template and prepares it for mounting against data.
func New(template string, data *reactive.Record, opts ...Option) (*View, error) {
	root, err := render.ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = reactive.Wrap(nil, "$data")
	}

	v := &View{
		root:   root,
		data:   data,
		owners: render.NewOwners(),
		names:  reactive.NewClock(),
		prefix: DefaultPrefix,
		tags:   directive.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.queue = NewRenderQueue(v.logger)
	return v, nil
}

// Root returns the document node holding the rendered template.
func (v *View) Root() *html.Node { return v.root }

// Data returns the root data scope.
func (v *View) Data() *reactive.Record { return v.data }

// Queue returns the view's render queue.
func (v *View) Queue() *RenderQueue { return v.queue }

// Owners returns the ownership table shared by the view's list bindings.
func (v *View) Owners() *render.Owners { return v.owners }

// Bindings returns the live list bindings in discovery order. A binding
// inside a discarded instance is dropped when the instance's scope closes.
func (v *View) Bindings() []*directive.ListBinding {
	out := make([]*directive.ListBinding, len(v.lists))
	copy(out, v.lists)
	return out
}

// TextBindings returns the number of interpolated text nodes bound so far.
func (v *View) TextBindings() int { return v.texts }

// Mount activates every directive in the template.
//
// One render unit is held for the duration of the mount so nested builds
// cannot drain the queue early.
func (v *View) Mount() error {
	if v.mounted {
		return ErrAlreadyMounted
	}
	v.mounted = true

	v.queue.Reserve(1)
	defer v.queue.Release(1)

	if err := v.collectChildren(v.root, v.data); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	v.logger.Debug("view mounted", "lists", len(v.lists), "texts", v.texts)
	return nil
}

// HTML renders the current tree.
func (v *View) HTML() (string, error) {
	return render.Render(v.root)
}

func (v *View) forAttr() string { return v.prefix + "for" }

// collectDir activates the directives at and below req.Element.
func (v *View) collectDir(req directive.CollectRequest) error {
	if req.IsRoot {
		return v.collect(req.Element, req.Scope)
	}
	return v.collectChildren(req.Element, req.Scope)
}

func (v *View) collect(n *html.Node, scope *reactive.Record) error {
	switch n.Type {
	case html.ElementNode:
		if raw, ok := render.Attr(n, v.forAttr()); ok {
			return v.bindList(n, raw, scope)
		}
	case html.TextNode:
		parts := parseInterpolation(n.Data)
		if !hasInterpolation(parts) {
			return nil
		}
		return v.bindText(n, parts, scope)
	}
	return v.collectChildren(n, scope)
}

func (v *View) collectChildren(n *html.Node, scope *reactive.Record) error {
	for c := n.FirstChild; c != nil; {
		// c may be replaced by the instances of a list binding
		next := c.NextSibling
		if err := v.collect(c, scope); err != nil {
			return err
		}
		c = next
	}
	return nil
}

func (v *View) bindText(n *html.Node, parts []textPart, scope *reactive.Record) error {
	t := &textBinding{node: n, parts: parts, scope: scope}
	scope.OnClose(t.unsubscribe)
	v.texts++
	return t.render()
}

func (v *View) bindList(n *html.Node, raw string, scope *reactive.Record) error {
	render.RemoveAttr(n, v.forAttr())
	v.ensureAnchor(n)

	b, err := directive.NewListBinding(n, raw, &scopedContext{view: v, scope: scope},
		directive.WithTagGenerator(v.tags),
		directive.WithScopeClock(v.names),
		directive.WithLogger(v.logger),
	)
	if err != nil {
		return err
	}
	v.lists = append(v.lists, b)

	w := &listWatch{view: v, binding: b, scope: scope}
	scope.OnClose(func() {
		w.stop()
		v.lists = slices.DeleteFunc(v.lists, func(x *directive.ListBinding) bool { return x == b })
	})
	return w.refresh()
}

// ensureAnchor gives a list host whose next sibling is another list host a
// comment of its own to use as end anchor. The neighbour is replaced by its
// instances on its first build and could not serve as a stable boundary.
func (v *View) ensureAnchor(n *html.Node) {
	next := n.NextSibling
	if n.Parent == nil || n.Parent.Type != html.ElementNode || next == nil {
		return
	}
	if next.Type != html.ElementNode {
		return
	}
	if _, ok := render.Attr(next, v.forAttr()); !ok {
		return
	}
	n.Parent.InsertBefore(&html.Node{Type: html.CommentNode}, next)
}

// scopedContext is the directive.Context handed to a list binding: the view
// seen from the scope the binding was discovered in.
type scopedContext struct {
	view  *View
	scope *reactive.Record
}

func (c *scopedContext) Data() *reactive.Record       { return c.scope }
func (c *scopedContext) Queue() directive.PendingWork { return c.view.queue }
func (c *scopedContext) Owners() *render.Owners       { return c.view.owners }
func (c *scopedContext) CollectDir(req directive.CollectRequest) error {
	return c.view.collectDir(req)
}

// listWatch dispatches changes of a list binding's source to the binding.
//
// Reassigning any record field on the source path triggers a full update
// (no mutation descriptor). Mutations of the current collection are passed
// through with their descriptor.
type listWatch struct {
	view    *View
	binding *directive.ListBinding
	scope   *reactive.Record

	current    any
	cancelList func()
	cancels    []func()
}

// refresh evaluates the source again and hands the value to the binding.
func (w *listWatch) refresh() error {
	val, d, err := evaluate(w.scope, w.binding.Source())
	if err != nil {
		return &directive.BindingError{
			Code:      directive.ErrCodeSource,
			Message:   "cannot evaluate source expression",
			Directive: w.binding.Source(),
			Err:       err,
		}
	}
	w.resubscribe(d)
	w.track(val)
	return w.update(val, nil)
}

func (w *listWatch) update(val any, m *reactive.Mutation) error {
	if !w.binding.Initialized() && !reactive.IsAbsent(val) {
		if coll, ok := reactive.AsCollection(val); ok {
			w.view.queue.Reserve(coll.Len())
		}
	}
	return w.binding.Update(val, m)
}

func (w *listWatch) resubscribe(d deps) {
	w.unsubscribe()
	onChange := func(any) error { return w.refresh() }
	for _, f := range d.fields {
		w.cancels = append(w.cancels, f.rec.Watch(f.key, onChange))
	}
	for _, l := range d.lists {
		w.cancels = append(w.cancels, l.Subscribe(func(reactive.Mutation) error { return w.refresh() }))
	}
}

// track subscribes to val when it is an observed list.
func (w *listWatch) track(val any) {
	if w.cancelList != nil && reactive.SameRef(val, w.current) {
		return
	}
	if w.cancelList != nil {
		w.cancelList()
		w.cancelList = nil
	}
	w.current = val
	if l, ok := val.(*reactive.List); ok && l != nil {
		w.cancelList = l.Subscribe(func(m reactive.Mutation) error {
			return w.update(w.current, &m)
		})
	}
}

func (w *listWatch) unsubscribe() {
	for _, cancel := range w.cancels {
		cancel()
	}
	w.cancels = w.cancels[:0]
}

func (w *listWatch) stop() {
	w.unsubscribe()
	if w.cancelList != nil {
		w.cancelList()
		w.cancelList = nil
	}
}
