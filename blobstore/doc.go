// Package blobstore stores named immutable blobs, which is where context
// snapshots are kept.
//
// # Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: files below a directory, written atomically
//   - CachingStore: in-memory LRU in front of another Store
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3
//
// Every implementation reports missing blobs with an error matching ErrNotFound.
package blobstore
