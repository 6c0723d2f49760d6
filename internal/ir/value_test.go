package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNative(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "x", String("x")},
		{"bool", true, Bool(true)},
		{"int", 3, Int(3)},
		{"int64", int64(-4), Int(-4)},
		{"uint8", uint8(7), Int(7)},
		{"integral float", 2.0, Int(2)},
		{"strings", []string{"a"}, Array{String("a")}},
		{"ints", []int{1, 2}, Array{Int(1), Int(2)}},
		{"nested", map[string]any{"a": []any{1, "b", nil}}, Object{"a": Array{Int(1), String("b"), Null{}}}},
		{"value passthrough", Int(9), Int(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromNative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromNative_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"fraction", 1.5},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"overflow", uint64(math.MaxUint64)},
		{"struct", struct{}{}},
		{"nested fraction", map[string]any{"k": []any{0.25}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNative(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 but after it in UTF-8.
	obj := Object{"\uff61": Null{}, "\U0001F600": Null{}, "b": Null{}, "a": Null{}}
	assert.Equal(t, []string{"a", "b", "\U0001F600", "\uff61"}, obj.SortedKeys())
}

func TestToNative(t *testing.T) {
	v := Object{"s": String("x"), "n": Int(1), "b": Bool(false), "a": Array{Null{}}}
	assert.Equal(t, map[string]any{
		"s": "x", "n": int64(1), "b": false, "a": []any{nil},
	}, ToNative(v))
}
