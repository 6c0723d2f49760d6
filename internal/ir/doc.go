// Package ir provides the constrained value model used for render traces.
//
// Traces are compared byte for byte against golden files and fingerprinted,
// so every value is converted into a closed set of types (no floats) and
// serialised with MarshalCanonical. ir imports nothing internal.
package ir
