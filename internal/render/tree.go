package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrDetachedAnchor is returned when an insertion reference node is not a
// child of the parent it is used with.
var ErrDetachedAnchor = errors.New("render: anchor node is not a child of parent")

// ErrDetachedNode is returned when a node expected to be in the tree has no parent.
var ErrDetachedNode = errors.New("render: node has no parent")

// Fragment is a detached, ordered group of sibling nodes.
//
// Moving a fragment into the tree is a single structural change: every child
// is moved in order and the fragment is left empty.
type Fragment struct {
	holder *html.Node
}

// NewFragment creates an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{holder: &html.Node{Type: html.DocumentNode}}
}

// Append adds a detached node to the end of the fragment.
func (f *Fragment) Append(n *html.Node) {
	f.holder.AppendChild(n)
}

// Len returns the number of top-level nodes in the fragment.
func (f *Fragment) Len() int {
	count := 0
	for c := f.holder.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Nodes returns the fragment's top-level nodes in order.
func (f *Fragment) Nodes() []*html.Node {
	var nodes []*html.Node
	for c := f.holder.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	dup := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		dup.Attr = make([]html.Attribute, len(n.Attr))
		copy(dup.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dup.AppendChild(Clone(c))
	}
	return dup
}

// InsertFragmentBefore moves every node of f into parent, immediately before ref.
// A nil ref appends to the end of parent.
func InsertFragmentBefore(parent *html.Node, f *Fragment, ref *html.Node) error {
	if ref != nil && ref.Parent != parent {
		return ErrDetachedAnchor
	}
	for _, n := range f.Nodes() {
		f.holder.RemoveChild(n)
		parent.InsertBefore(n, ref)
	}
	return nil
}

// InsertBefore inserts a detached node into parent before ref.
// A nil ref appends to the end of parent.
func InsertBefore(parent, n, ref *html.Node) error {
	if ref != nil && ref.Parent != parent {
		return ErrDetachedAnchor
	}
	parent.InsertBefore(n, ref)
	return nil
}

// ReplaceWithFragment replaces old with the contents of f, keeping old's position.
func ReplaceWithFragment(old *html.Node, f *Fragment) error {
	parent := old.Parent
	if parent == nil {
		return ErrDetachedNode
	}
	if err := InsertFragmentBefore(parent, f, old); err != nil {
		return err
	}
	parent.RemoveChild(old)
	return nil
}

// Replace swaps old for the detached node n at the same position.
func Replace(old, n *html.Node) error {
	parent := old.Parent
	if parent == nil {
		return ErrDetachedNode
	}
	parent.InsertBefore(n, old)
	parent.RemoveChild(old)
	return nil
}

// Remove detaches n from its parent. Detached nodes are left untouched.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// RemoveAttr deletes the named attribute from n.
func RemoveAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// ParseTemplate parses an HTML fragment and returns a document node holding
// the parsed nodes as its children. Top-level nodes therefore sit directly
// under the document root.
func ParseTemplate(src string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// Render serialises the children of root as HTML.
func Render(root *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render: %w", err)
		}
	}
	return buf.String(), nil
}
