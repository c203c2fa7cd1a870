package mapstruct

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hupe1980/mapstruct/blobstore"
	"github.com/hupe1980/mapstruct/internal/resource"
	"github.com/hupe1980/mapstruct/mapping"
	"github.com/hupe1980/mapstruct/region"
	"github.com/hupe1980/mapstruct/snapshot"
)

// Store owns a mapping context and the region behind it.
//
// A Store is not safe for concurrent use.
type Store struct {
	m      *mapping.Context
	path   string
	opts   options
	rc     *resource.Controller
	logger *Logger
}

// Create creates a new file-backed store at path. The file must not exist.
func Create(path string, optFns ...Option) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return openFile(path, true, optFns)
}

// Open opens an existing file-backed store.
func Open(path string, optFns ...Option) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return openFile(path, false, optFns)
}

func openFile(path string, create bool, optFns []Option) (*Store, error) {
	s := newStore(path, optFns)

	fopts := []region.FileOption{
		region.WithAccessPattern(s.opts.accessPattern),
		region.WithFileLogger(s.logger.Logger),
	}
	if s.opts.maxSize > 0 {
		fopts = append(fopts, region.WithFileLimit(s.opts.maxSize))
	}
	if s.opts.initialSize > 0 {
		fopts = append(fopts, region.WithInitialSize(s.opts.initialSize))
	}

	r, err := region.OpenFile(path, fopts...)
	if err != nil {
		s.logger.LogOpen(context.Background(), create, 0, err)
		return nil, err
	}
	if err := s.attach(r, create); err != nil {
		if create {
			_ = os.Remove(path)
		}
		return nil, err
	}
	return s, nil
}

// NewInMemory creates a store backed by process memory.
func NewInMemory(optFns ...Option) (*Store, error) {
	s := newStore("", optFns)

	var mopts []region.MemoryOption
	if s.opts.maxSize > 0 {
		mopts = append(mopts, region.WithMemoryLimit(s.opts.maxSize))
	}
	if err := s.attach(region.NewMemory(s.opts.initialSize, mopts...), true); err != nil {
		return nil, err
	}
	return s, nil
}

// Restore creates an in-memory store from the snapshot stored under name.
func Restore(ctx context.Context, bs blobstore.Store, name string, optFns ...Option) (*Store, error) {
	s := newStore("", optFns)

	m, err := snapshot.Load(ctx, bs, name, s.mappingOptions()...)
	s.logger.LogRestore(ctx, name, sizeOf(m), err)
	if err != nil {
		return nil, err
	}
	s.m = m
	return s, nil
}

// RestoreFile writes the snapshot stored under name into a new file-backed
// store at path.
func RestoreFile(ctx context.Context, bs blobstore.Store, name, path string, optFns ...Option) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	s := newStore(path, optFns)

	r, err := region.OpenFile(path,
		region.WithAccessPattern(s.opts.accessPattern),
		region.WithFileLogger(s.logger.Logger),
	)
	if err != nil {
		return nil, err
	}
	m, err := snapshot.Restore(ctx, bs, name, r, s.mappingOptions()...)
	s.logger.LogRestore(ctx, name, sizeOf(m), err)
	if err != nil {
		_ = r.Close()
		_ = os.Remove(path)
		return nil, err
	}
	s.m = m
	return s, nil
}

func newStore(path string, optFns []Option) *Store {
	o := applyOptions(optFns)
	logger := o.logger
	if path != "" {
		logger = logger.WithPath(path)
	}
	return &Store{
		path:   path,
		opts:   o,
		rc:     o.controller(),
		logger: logger,
	}
}

func (s *Store) mappingOptions() []mapping.Option {
	mopts := []mapping.Option{
		mapping.WithLogger(s.logger.Logger),
		mapping.WithGrowHook(s.opts.metricsCollector.RecordGrow),
	}
	if s.opts.maxSize > 0 {
		mopts = append(mopts, mapping.WithMaxSize(s.opts.maxSize))
	}
	if s.rc.MemoryLimit() > 0 {
		mopts = append(mopts, mapping.WithMemoryAcquirer(s.rc))
	}
	return mopts
}

func (s *Store) attach(r region.Region, create bool) error {
	var (
		m   *mapping.Context
		err error
	)
	if create {
		m, err = mapping.Create(r, s.mappingOptions()...)
	} else {
		m, err = mapping.Open(r, s.mappingOptions()...)
	}
	s.logger.LogOpen(context.Background(), create, sizeOf(m), err)
	if err != nil {
		_ = r.Close()
		return err
	}
	s.m = m
	return nil
}

func sizeOf(m *mapping.Context) uint64 {
	if m == nil {
		return 0
	}
	return m.Size()
}

// Context returns the mapping context. References created from it stay
// valid until the store is closed.
func (s *Store) Context() *mapping.Context {
	return s.m
}

// Path returns the backing file, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Stats returns the context's allocation statistics.
func (s *Store) Stats() mapping.Stats {
	return s.m.Stats()
}

// Flush persists pending writes of a file-backed store.
func (s *Store) Flush() error {
	start := time.Now()
	err := s.m.Flush()
	s.opts.metricsCollector.RecordFlush(time.Since(start), err)
	s.logger.LogFlush(context.Background(), s.m.Size(), err)
	return err
}

// Snapshot saves a compressed image of the store to bs under name.
func (s *Store) Snapshot(ctx context.Context, bs blobstore.Store, name string) (snapshot.Stats, error) {
	stats, err := snapshot.Save(ctx, bs, name, s.m,
		snapshot.WithCompression(s.opts.compression),
		snapshot.WithController(s.rc),
		snapshot.WithLogger(s.logger.Logger),
	)
	s.opts.metricsCollector.RecordSnapshot(stats.RawBytes, stats.StoredBytes, stats.Duration, err)
	s.logger.LogSnapshot(ctx, name, stats, err)
	return stats, err
}

// Close flushes and releases the store. It is safe to call more than once.
func (s *Store) Close() error {
	return s.m.Close()
}
