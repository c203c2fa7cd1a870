// Package conv converts and combines integers read from mapped regions
// without silent wrap-around. Every failure wraps ErrOverflow.
//
// Offsets and lengths in a region are untrusted uint64 values; these helpers
// turn them into ints for slicing and compute run sizes (count * body size)
// safely. Conversions that are provably safe by construction use plain casts.
package conv
