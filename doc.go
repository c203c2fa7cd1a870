// Package mapstruct stores pointer-linked data structures in a flat,
// relocatable byte image that can live in a memory-mapped file.
//
// Every structure is addressed by an offset from the start of the image, so
// a file written by one process can be mapped by another and used in place.
//
// # Quick Start
//
//	s, _ := mapstruct.Create("./data.ms")
//	defer s.Close()
//
//	v, _ := intvec.NewPackedVector(s.Context(), 5)
//	_ = v.Append(17)
//	s.Context().SetRoot(v.Offset())
//	_ = s.Flush()
//
// Reopen and find the vector again through the root:
//
//	s, _ := mapstruct.Open("./data.ms")
//	v := mapping.Wrap[intvec.PackedVector](s.Context(), s.Context().Root())
//
// # Packages
//
//   - endian: big-endian scalar codec.
//   - mapping: the context allocator, offset pointers, and mapped vectors.
//   - intvec: bit-packed and paged integer vectors.
//   - region: memory and mmap-backed byte regions.
//   - snapshot: compressed images for backup and transfer.
//   - blobstore: local, S3 and MinIO storage for snapshots.
//
// # Snapshots
//
//	store := blobstore.NewLocalStore("./backups")
//	_, _ = s.Snapshot(ctx, store, "daily.snap")
//	restored, _ := mapstruct.Restore(ctx, store, "daily.snap")
//
// Offsets are never reclaimed while a store is open. Shrinking a vector only
// lowers its size; the bytes stay allocated until the image is rewritten.
package mapstruct
