// Package mmap provides memory-mapped file access for mapped regions.
//
// # Usage
//
//	m, err := mmap.OpenFile("graph.db", 4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()        // read and write in place
//	_ = m.Resize(2 * 4096)   // grow the file and remap it
//	_ = m.Sync(0, 4096)      // flush dirty pages
//
// Read-only mappings are created with Open and are used to read stored blobs
// without copying them through kernel buffers.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2), madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile/FlushViewOfFile (advise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Resize invalidates every
// slice previously returned by Bytes, so callers must not hold on to them.
package mmap
