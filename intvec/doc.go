// Package intvec provides compact unsigned integer vectors over a
// mapping.Context: IntVector with byte-aligned entries, PackedVector with
// entries of any bit width, and PagedVector which splits a packed vector into
// fixed-size pages. ArrayContext and EntryRef expose single entries of any of
// them through a value-like proxy.
package intvec
