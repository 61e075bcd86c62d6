// Package kernel holds the primitives shared by every aggregate of the dispatch core:
// identifiers, money amounts and the identity of the caller.
//
// Values in this package are immutable and safe for concurrent use. Zero values are
// invalid and are reported by Validate.
package kernel
