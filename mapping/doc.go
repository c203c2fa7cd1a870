// Package mapping lays typed data structures over a flat byte region.
//
// A Context formats a region.Region with a small header and bump-allocates
// 8-byte aligned bodies behind it. Every structure refers to others by offset
// relative to the region base, so the region can be remapped, written to a
// file, copied, or loaded in another process without fixups. Offset 0 is the
// header and therefore never a valid body: it serves as the null offset.
//
// Reference types (Value, Ptr, OffsetPtr, OffsetTo, Vector, and the integer
// vectors in package intvec) are small values holding a *Context and an
// offset. They satisfy the Ref constraint, which lets generic containers size
// and construct their elements:
//
//	ctx, _ := mapping.Create(region.NewMemory(0))
//	vec, _ := mapping.NewVector[mapping.Int32Ref](ctx)
//	_ = vec.Resize(3)
//	first, _ := vec.At(0)
//	first.Set(10)
//
// All multi-byte scalars are stored big-endian.
//
// A Context and the references derived from it are not safe for concurrent
// mutation. Any allocation may grow and remap the region, so raw byte slices
// obtained from Bytes or Slice must not be held across allocations.
package mapping
