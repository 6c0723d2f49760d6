// Package directive implements the repeated-block ("for") binding.
//
// A ListBinding renders one cloned instance of a template node per element of
// a collection and keeps the instances in step with later mutations. The
// binding chooses its strategy from the mutation descriptor it is given:
//
//   - first update: initial build, replacing the template node with a fragment
//   - no property: full rebuild before the end anchor
//   - index property: point patch of a single instance
//   - length property: truncation and index re-stamping
//
// Cost is proportional to the size of the change for point-like mutations.
// Reconciliation is index based; there is no keyed diffing.
package directive
