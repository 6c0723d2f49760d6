package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutation_Classification(t *testing.T) {
	tests := []struct {
		name      string
		m         Mutation
		wantIdx   int
		isIndex   bool
		isLength  bool
		wantLen   int
		lengthArg bool
	}{
		{name: "whole value", m: Mutation{}},
		{name: "index", m: Mutation{Property: "4"}, wantIdx: 4, isIndex: true},
		{name: "length", m: Mutation{Property: LengthProperty, Value: 2}, isLength: true, wantLen: 2, lengthArg: true},
		{name: "length without number", m: Mutation{Property: LengthProperty, Value: "x"}, isLength: true},
		{name: "non-numeric property", m: Mutation{Property: "push"}},
		{name: "negative index", m: Mutation{Property: "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := tt.m.Index()
			assert.Equal(t, tt.isIndex, ok)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.isLength, tt.m.IsLength())
			n, ok := tt.m.Length()
			assert.Equal(t, tt.lengthArg, ok)
			assert.Equal(t, tt.wantLen, n)
		})
	}
}

func TestAsCollection(t *testing.T) {
	l := NewList("a")
	c, ok := AsCollection(l)
	assert.True(t, ok)
	assert.Same(t, l, c)

	c, ok = AsCollection([]string{"x", "y"})
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "y", c.At(1))
	assert.Nil(t, c.At(2))

	for _, v := range []any{"abc", 3, map[string]any{}, struct{}{}} {
		_, ok := AsCollection(v)
		assert.False(t, ok, "%T is not collection-shaped", v)
	}
}

func TestSameRef(t *testing.T) {
	a := NewList()
	b := NewList()
	s := []any{1, 2}

	assert.True(t, SameRef(a, a))
	assert.False(t, SameRef(a, b))
	assert.True(t, SameRef(s, s))
	assert.False(t, SameRef(s, s[:1]))
	assert.False(t, SameRef(s, []any{1, 2}))
	assert.True(t, SameRef("x", "x"))
	assert.False(t, SameRef(a, "x"))
	assert.True(t, SameRef(nil, nil))
	assert.False(t, SameRef(a, nil))
}

func TestIsAbsent(t *testing.T) {
	var nilList *List
	absent := []any{nil, nilList, false, "", 0, int64(0), 0.0, []any(nil)}
	for _, v := range absent {
		assert.True(t, IsAbsent(v), "%#v should be absent", v)
	}
	present := []any{NewList(), []any{}, "a", 1, true, map[string]any{}}
	for _, v := range present {
		assert.False(t, IsAbsent(v), "%#v should be present", v)
	}
}
