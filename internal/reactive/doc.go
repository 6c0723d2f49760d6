// Package reactive is the observable data layer behind templates.
//
// It has two kinds of observed values:
//   - Record: a keyed scope. Records form delegation chains; a lookup that
//     misses locally falls through to the linked parent record.
//   - List: an ordered collection. Every change is described by a Mutation
//     {Receiver, Property, Value} delivered to subscribers in the order the
//     writes happened.
//
// Nothing in this package is safe for concurrent use. Updates run
// synchronously and to completion on the caller's goroutine, and errors
// returned by subscribers are handed back to the caller that made the write.
package reactive
