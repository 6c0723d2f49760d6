package reactive

import "errors"

// WatchFunc is called with the new value of a watched key.
type WatchFunc func(value any) error

type watcher struct {
	id int
	fn WatchFunc
}

// Record is a reactive keyed scope.
//
// A record may be linked to a parent. Get falls through to the parent chain
// on a local miss; the link is a lookup relation only. Set on a key owned by
// an ancestor writes through to that ancestor, so every scope reading the key
// sees the same value. Keys owned nowhere in the chain are created locally.
type Record struct {
	name     string
	fields   map[string]any
	keys     []string
	parent   *Record
	watchers map[string][]watcher
	nextID   int

	// cancels for watches registered on ancestors on behalf of this record
	delegated []func()
	cleanups  []func()
	children  map[*Record]struct{}
	closed    bool
}

// Wrap creates a record holding a copy of raw under the given name.
// Keys are kept in sorted order so iteration is deterministic.
func Wrap(raw map[string]any, name string) *Record {
	r := &Record{
		name:     name,
		fields:   make(map[string]any, len(raw)),
		watchers: make(map[string][]watcher),
	}
	for _, k := range sortedKeys(raw) {
		r.fields[k] = raw[k]
		r.keys = append(r.keys, k)
	}
	return r
}

// Name returns the unique name the record was wrapped under.
func (r *Record) Name() string { return r.name }

// Link sets the record consulted when a lookup misses locally.
// Closing parent also closes r.
func (r *Record) Link(parent *Record) {
	if r.parent != nil {
		delete(r.parent.children, r)
	}
	r.parent = parent
	if parent == nil {
		return
	}
	if parent.children == nil {
		parent.children = make(map[*Record]struct{})
	}
	parent.children[r] = struct{}{}
}

// Parent returns the linked parent record, or nil.
func (r *Record) Parent() *Record { return r.parent }

// Keys returns the record's own keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Own returns a field stored on this record, ignoring the parent chain.
func (r *Record) Own(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Get looks key up locally, then along the parent chain.
func (r *Record) Get(key string) (any, bool) {
	if owner := r.owner(key); owner != nil {
		return owner.fields[key], true
	}
	return nil, false
}

// Owner returns the nearest record in the chain that stores key, or nil.
func (r *Record) Owner(key string) *Record {
	return r.owner(key)
}

func (r *Record) owner(key string) *Record {
	for cur := r; cur != nil; cur = cur.parent {
		if _, ok := cur.fields[key]; ok {
			return cur
		}
	}
	return nil
}

// Set stores value under key and notifies the key's watchers.
func (r *Record) Set(key string, value any) error {
	owner := r.owner(key)
	if owner == nil {
		owner = r
	}
	return owner.store(key, value)
}

// SetOwn stores value on this record even when an ancestor owns key,
// shadowing the inherited field.
func (r *Record) SetOwn(key string, value any) error {
	return r.store(key, value)
}

func (r *Record) store(key string, value any) error {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
	return r.notify(key, value)
}

func (r *Record) notify(key string, value any) error {
	current := append([]watcher(nil), r.watchers[key]...)
	var errs []error
	for _, w := range current {
		if err := w.fn(value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch registers fn for changes of key as seen from this record.
//
// When an ancestor owns key the watch is registered on that ancestor and is
// released by Close. The returned func cancels the watch.
func (r *Record) Watch(key string, fn WatchFunc) func() {
	if r.closed {
		return func() {}
	}
	if owner := r.owner(key); owner != nil && owner != r {
		cancel := owner.Watch(key, fn)
		r.delegated = append(r.delegated, cancel)
		return cancel
	}

	r.nextID++
	id := r.nextID
	r.watchers[key] = append(r.watchers[key], watcher{id: id, fn: fn})
	return func() {
		ws := r.watchers[key]
		for i, w := range ws {
			if w.id == id {
				r.watchers[key] = append(ws[:i:i], ws[i+1:]...)
				return
			}
		}
	}
}

// OnClose registers fn to run when the record is closed.
func (r *Record) OnClose(fn func()) {
	if r.closed {
		fn()
		return
	}
	r.cleanups = append(r.cleanups, fn)
}

// Close drops every watcher registered on or through this record, runs the
// OnClose hooks and closes every record linked to it.
// A closed record keeps its fields but accepts no new watches.
func (r *Record) Close() {
	if r.closed {
		return
	}
	r.closed = true

	children := make([]*Record, 0, len(r.children))
	for child := range r.children {
		children = append(children, child)
	}
	for _, child := range children {
		child.Close()
	}
	r.children = nil

	for _, cancel := range r.delegated {
		cancel()
	}
	r.delegated = nil
	for _, fn := range r.cleanups {
		fn()
	}
	r.cleanups = nil
	r.watchers = make(map[string][]watcher)

	if r.parent != nil {
		delete(r.parent.children, r)
	}
}

// Linked returns the number of open records linked to r.
func (r *Record) Linked() int { return len(r.children) }

// Closed reports whether Close has been called.
func (r *Record) Closed() bool { return r.closed }
