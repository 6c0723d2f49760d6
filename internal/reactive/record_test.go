package reactive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_TwoLevelLookup(t *testing.T) {
	root := Wrap(map[string]any{"title": "Todo", "item": "shadowed"}, "root")
	child := Wrap(map[string]any{"item": "a", "$index": 0}, "child")
	child.Link(root)

	v, ok := child.Get("item")
	require.True(t, ok)
	assert.Equal(t, "a", v, "local field wins")

	v, ok = child.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Todo", v, "miss falls through to parent")

	_, ok = child.Own("title")
	assert.False(t, ok, "inherited field is not owned")

	_, ok = child.Get("missing")
	assert.False(t, ok)
}

func TestRecord_SetWritesThroughToOwner(t *testing.T) {
	root := Wrap(map[string]any{"title": "Todo"}, "root")
	child := Wrap(map[string]any{"item": "a"}, "child")
	child.Link(root)

	require.NoError(t, child.Set("title", "Done"))

	v, _ := root.Get("title")
	assert.Equal(t, "Done", v)
	_, owned := child.Own("title")
	assert.False(t, owned, "write-through does not create a shadow")

	require.NoError(t, child.Set("fresh", 1))
	_, owned = child.Own("fresh")
	assert.True(t, owned, "unknown key is created locally")
	_, ok := root.Get("fresh")
	assert.False(t, ok)

	require.NoError(t, child.SetOwn("title", "Mine"))
	v, _ = child.Get("title")
	assert.Equal(t, "Mine", v)
	v, _ = root.Get("title")
	assert.Equal(t, "Done", v)
}

func TestRecord_WatchAndClose(t *testing.T) {
	root := Wrap(map[string]any{"title": "Todo"}, "root")
	child := Wrap(map[string]any{"item": "a"}, "child")
	child.Link(root)

	var seen []any
	child.Watch("title", func(v any) error {
		seen = append(seen, v)
		return nil
	})
	cancelItem := child.Watch("item", func(v any) error {
		seen = append(seen, v)
		return nil
	})

	require.NoError(t, root.Set("title", "one"))
	require.NoError(t, child.Set("item", "b"))
	assert.Equal(t, []any{"one", "b"}, seen)

	cancelItem()
	require.NoError(t, child.Set("item", "c"))
	assert.Equal(t, []any{"one", "b"}, seen)

	child.Close()
	assert.True(t, child.Closed())
	require.NoError(t, root.Set("title", "two"))
	assert.Equal(t, []any{"one", "b"}, seen, "delegated watch released by Close")
}

func TestRecord_WatchErrorsAreJoined(t *testing.T) {
	r := Wrap(map[string]any{"k": 1}, "r")
	errA := errors.New("a")
	errB := errors.New("b")
	r.Watch("k", func(any) error { return errA })
	r.Watch("k", func(any) error { return errB })

	err := r.Set("k", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestRecord_KeysAreSortedThenInsertionOrdered(t *testing.T) {
	r := Wrap(map[string]any{"b": 1, "a": 2}, "r")
	require.NoError(t, r.Set("c", 3))
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())
	assert.Equal(t, "r", r.Name())
}

func TestObserveAndSnapshot(t *testing.T) {
	clock := NewClock()
	data := map[string]any{
		"title": "Todo",
		"items": []any{"a", map[string]any{"name": "b"}},
	}

	observed := Observe(data, clock.ScopeName)

	rec, ok := observed.(*Record)
	require.True(t, ok)
	items, ok := rec.Get("items")
	require.True(t, ok)
	list, ok := items.(*List)
	require.True(t, ok)
	require.Equal(t, 2, list.Len())
	_, ok = list.At(1).(*Record)
	assert.True(t, ok)

	assert.Equal(t, data, Snapshot(observed))
	assert.Equal(t, int64(2), clock.Current(), "one name per record")
}

func TestRecord_CloseCascadesToLinkedRecords(t *testing.T) {
	root := Wrap(map[string]any{"title": "Todo"}, "root")
	instance := Wrap(map[string]any{"item": "a"}, "instance")
	instance.Link(root)
	nested := Wrap(map[string]any{"tag": "x"}, "nested")
	nested.Link(instance)

	calls := 0
	nested.Watch("title", func(any) error {
		calls++
		return nil
	})
	cleaned := false
	nested.OnClose(func() { cleaned = true })
	require.Equal(t, 1, root.Linked())

	instance.Close()

	assert.True(t, nested.Closed())
	assert.True(t, cleaned)
	assert.Equal(t, 0, root.Linked(), "closed record unlinks from its parent")
	require.NoError(t, root.Set("title", "x"))
	assert.Equal(t, 0, calls)

	ran := false
	nested.OnClose(func() { ran = true })
	assert.True(t, ran, "hook on a closed record runs immediately")
}
