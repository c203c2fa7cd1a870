// Package testutil provides testing utilities for mapstruct.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Values
//
//	rng := testutil.NewRNG(seed)
//	vals := rng.Values(1000, 13) // each value fits in 13 bits
//
// # Contexts
//
//	m := testutil.NewContext(t)       // in-memory, closed on cleanup
//	m2 := testutil.Reopen(t, m)       // copy of the image, reopened
package testutil
