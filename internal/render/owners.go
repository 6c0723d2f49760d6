package render

import (
	"errors"
	"sync"

	"golang.org/x/net/html"
)

// ErrAlreadyOwned is returned when a node carrying one owner tag is stamped
// with a different one.
var ErrAlreadyOwned = errors.New("render: node already owned by another binding")

// OwnerTag identifies the binding that rendered a node.
type OwnerTag string

// Owners is a side table from render-tree nodes to their owner tags.
//
// One table is shared by every binding of a template. Tags are write-once:
// a node keeps the tag it was first stamped with until it is forgotten.
type Owners struct {
	mu   sync.RWMutex
	tags map[*html.Node]OwnerTag
}

// NewOwners creates an empty ownership table.
func NewOwners() *Owners {
	return &Owners{tags: make(map[*html.Node]OwnerTag)}
}

// Stamp records tag as the owner of n.
func (o *Owners) Stamp(n *html.Node, tag OwnerTag) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.tags[n]; ok && existing != tag {
		return ErrAlreadyOwned
	}
	o.tags[n] = tag
	return nil
}

// Tag returns the owner tag of n, if any.
func (o *Owners) Tag(n *html.Node) (OwnerTag, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	tag, ok := o.tags[n]
	return tag, ok
}

// Forget drops the entry for n. Called when an instance leaves the tree for good.
func (o *Owners) Forget(n *html.Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.tags, n)
}

// Len returns the number of stamped nodes.
func (o *Owners) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.tags)
}

// Owned returns the direct children of parent owned by tag, in tree order.
func (o *Owners) Owned(parent *html.Node, tag OwnerTag) []*html.Node {
	if tag == "" {
		return nil
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	var owned []*html.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if o.tags[c] == tag {
			owned = append(owned, c)
		}
	}
	return owned
}

// ForgetTree drops the entries for n and every node below it.
func (o *Owners) ForgetTree(n *html.Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	forgetTree(o.tags, n)
}

func forgetTree(tags map[*html.Node]OwnerTag, n *html.Node) {
	delete(tags, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		forgetTree(tags, c)
	}
}
