package blobstore

import (
	"context"

	"github.com/hupe1980/mapstruct/internal/cache"
	"github.com/hupe1980/mapstruct/internal/resource"
)

// CachingStore keeps recently read blobs of an inner store in memory.
// Blobs are immutable once written, so only Put and Delete invalidate.
type CachingStore struct {
	inner Store
	cache *cache.LRU
}

// NewCachingStore wraps inner with a cache of at most capacity bytes.
// rc may be nil.
func NewCachingStore(inner Store, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacity, rc),
	}
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Delete(name)
	return s.inner.Put(ctx, name, data)
}

// Get returns a private copy of the blob.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return append([]byte(nil), data...), nil
	}
	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(name, append([]byte(nil), data...))
	return data, nil
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Delete(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the cache hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
