// Package render provides the render-tree primitives used by list bindings.
//
// The render tree is a golang.org/x/net/html node tree. This package adds the
// operations a binding needs on top of it:
//   - Clone: deep copy of a template subtree
//   - Fragment: detached container moved into the tree in a single call
//   - Owners: side table mapping nodes to the binding that rendered them
//
// Ownership is never inferred from position. A binding finds its instances
// by scanning the direct children of its anchor parent and keeping the nodes
// whose owner tag matches its own.
package render
