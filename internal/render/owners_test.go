package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwners_StampIsWriteOnce(t *testing.T) {
	root := mustParse(t, `<ul><li>a</li></ul>`)
	li := root.FirstChild.FirstChild
	owners := NewOwners()

	require.NoError(t, owners.Stamp(li, "tag-1"))
	require.NoError(t, owners.Stamp(li, "tag-1"), "restamping with the same tag is allowed")
	assert.ErrorIs(t, owners.Stamp(li, "tag-2"), ErrAlreadyOwned)

	tag, ok := owners.Tag(li)
	require.True(t, ok)
	assert.Equal(t, OwnerTag("tag-1"), tag)

	owners.Forget(li)
	_, ok = owners.Tag(li)
	assert.False(t, ok)
	assert.Equal(t, 0, owners.Len())
}

func TestOwners_OwnedFiltersAmongSiblings(t *testing.T) {
	root := mustParse(t, `<ul><li>a1</li><li>static</li><li>b1</li><li>a2</li></ul>`)
	ul := root.FirstChild
	owners := NewOwners()

	var kids []string
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c.FirstChild.Data)
	}
	require.Equal(t, []string{"a1", "static", "b1", "a2"}, kids)

	a1 := ul.FirstChild
	b1 := a1.NextSibling.NextSibling
	a2 := b1.NextSibling
	require.NoError(t, owners.Stamp(a1, "a"))
	require.NoError(t, owners.Stamp(b1, "b"))
	require.NoError(t, owners.Stamp(a2, "a"))

	owned := owners.Owned(ul, "a")
	require.Len(t, owned, 2)
	assert.Same(t, a1, owned[0])
	assert.Same(t, a2, owned[1])

	assert.Len(t, owners.Owned(ul, "b"), 1)
	assert.Empty(t, owners.Owned(ul, "c"))
	assert.Empty(t, owners.Owned(ul, ""), "empty tag never matches untagged nodes")
}

func TestOwners_ForgetTree(t *testing.T) {
	root := mustParse(t, `<ul><li><ol><li>x</li></ol></li></ul>`)
	outer := root.FirstChild.FirstChild
	inner := outer.FirstChild.FirstChild
	owners := NewOwners()

	require.NoError(t, owners.Stamp(outer, "outer"))
	require.NoError(t, owners.Stamp(inner, "inner"))
	require.Equal(t, 2, owners.Len())

	owners.ForgetTree(outer)
	assert.Equal(t, 0, owners.Len())
}
