// Package view mounts a template against observed data.
//
// Mounting walks the parsed template, binds interpolated text nodes and
// hands every element carrying the list directive (s-for by default) to a
// directive.ListBinding. Changes of the observed data are dispatched to the
// bindings that read them: reassigning a field triggers a full update of the
// list bound to it, mutating a list passes the mutation descriptor through.
//
// The RenderQueue counts instances expected during first paint so a caller
// can wait for the initial render to settle.
package view
