package reactive

import (
	"errors"
	"fmt"
)

// SubscribeFunc receives mutations of a List.
type SubscribeFunc func(m Mutation) error

type subscriber struct {
	id int
	fn SubscribeFunc
}

// List is an observed ordered collection.
//
// Writes are reported the way a proxied array reports them: element writes
// first, then a length write when the size changed.
type List struct {
	items  []any
	subs   []subscriber
	nextID int
}

// NewList creates a list holding items.
func NewList(items ...any) *List {
	l := &List{items: make([]any, len(items))}
	copy(l.items, items)
	return l
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns element i, or nil when i is out of range.
func (l *List) At(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Items returns a copy of the elements.
func (l *List) Items() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// Subscribe registers fn for every subsequent mutation. The returned func
// cancels the subscription.
func (l *List) Subscribe(fn SubscribeFunc) func() {
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (l *List) Subscribers() int { return len(l.subs) }

func (l *List) emit(ms ...Mutation) error {
	for _, m := range ms {
		current := append([]subscriber(nil), l.subs...)
		var errs []error
		for _, s := range current {
			if err := s.fn(m); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	return nil
}

// Set writes element i. Writing past the end grows the list with nil
// elements; only the element write is reported.
func (l *List) Set(i int, v any) error {
	if i < 0 {
		return fmt.Errorf("list index %d out of range", i)
	}
	for len(l.items) <= i {
		l.items = append(l.items, nil)
	}
	l.items[i] = v
	return l.emit(indexMutation(l, i, v))
}

// Push appends values, reporting each element write and then the new length.
func (l *List) Push(values ...any) error {
	if len(values) == 0 {
		return nil
	}
	ms := make([]Mutation, 0, len(values)+1)
	for _, v := range values {
		l.items = append(l.items, v)
		ms = append(ms, indexMutation(l, len(l.items)-1, v))
	}
	ms = append(ms, lengthMutation(l, len(l.items)))
	return l.emit(ms...)
}

// Truncate sets the list length to n. Growing pads with nil elements.
func (l *List) Truncate(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid list length %d", n)
	}
	if n < len(l.items) {
		clear(l.items[n:])
		l.items = l.items[:n]
	}
	for len(l.items) < n {
		l.items = append(l.items, nil)
	}
	return l.emit(lengthMutation(l, n))
}

// Splice removes deleteCount elements at start and inserts items in their
// place. Every position from start whose element changed is reported, then
// the length if it changed. The removed elements are returned.
func (l *List) Splice(start, deleteCount int, items ...any) ([]any, error) {
	if start < 0 || start > len(l.items) {
		return nil, fmt.Errorf("splice start %d out of range [0,%d]", start, len(l.items))
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > len(l.items) {
		deleteCount = len(l.items) - start
	}

	old := l.items
	removed := append([]any(nil), old[start:start+deleteCount]...)

	next := make([]any, 0, len(old)-deleteCount+len(items))
	next = append(next, old[:start]...)
	next = append(next, items...)
	next = append(next, old[start+deleteCount:]...)
	l.items = next

	var ms []Mutation
	for i := start; i < len(next); i++ {
		if i < len(old) && SameRef(old[i], next[i]) {
			continue
		}
		ms = append(ms, indexMutation(l, i, next[i]))
	}
	if len(next) != len(old) {
		ms = append(ms, lengthMutation(l, len(next)))
	}
	return removed, l.emit(ms...)
}
