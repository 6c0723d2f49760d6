package reactive

import (
	"reflect"
	"strconv"
)

// LengthProperty is the Mutation.Property reported when a collection's size changes.
const LengthProperty = "length"

// Mutation describes one change to an observed collection.
//
// Property is empty when the whole value was replaced, LengthProperty when
// the size changed (Value holds the new length), and a decimal index for a
// single element write (Value holds the new element).
type Mutation struct {
	Receiver any
	Property string
	Value    any
}

// IsLength reports whether m describes a size change.
func (m Mutation) IsLength() bool {
	return m.Property == LengthProperty
}

// Index returns the element index carried by m.
// The second result is false for whole-value and length mutations and for
// properties that are not decimal integers.
func (m Mutation) Index() (int, bool) {
	if m.Property == "" || m.IsLength() {
		return 0, false
	}
	i, err := strconv.Atoi(m.Property)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Length returns the new length carried by a length mutation.
func (m Mutation) Length() (int, bool) {
	if !m.IsLength() {
		return 0, false
	}
	switch n := m.Value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func indexMutation(receiver any, i int, value any) Mutation {
	return Mutation{Receiver: receiver, Property: strconv.Itoa(i), Value: value}
}

func lengthMutation(receiver any, n int) Mutation {
	return Mutation{Receiver: receiver, Property: LengthProperty, Value: n}
}

// Collection is the shape a list binding iterates over.
// At returns nil for indices outside [0, Len()).
type Collection interface {
	Len() int
	At(i int) any
}

// AsCollection adapts v to a Collection.
// Collections pass through; Go slices and arrays are wrapped. Anything else
// is not collection-shaped.
func AsCollection(v any) (Collection, bool) {
	if c, ok := v.(Collection); ok {
		return c, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceCollection{rv: rv}, true
	}
	return nil, false
}

type sliceCollection struct {
	rv reflect.Value
}

func (s sliceCollection) Len() int { return s.rv.Len() }

func (s sliceCollection) At(i int) any {
	if i < 0 || i >= s.rv.Len() {
		return nil
	}
	return s.rv.Index(i).Interface()
}

// SameRef reports whether a and b are the same reference.
// Pointers, maps, slices, channels and funcs compare by address (slices also
// by length); other comparable values compare with ==.
func SameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}

// IsAbsent reports whether v counts as "no value": nil, a typed nil, false,
// the empty string or numeric zero.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}
	return false
}
