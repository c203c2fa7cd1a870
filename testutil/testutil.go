package testutil

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/hupe1980/mapstruct/mapping"
	"github.com/hupe1980/mapstruct/region"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint64N returns a pseudo-random number in [0,n).
func (r *RNG) Uint64N(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64N(n)
}

// Values returns n pseudo-random values that each fit in width bits.
func (r *RNG) Values(n int, width uint) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	mask := ^uint64(0)
	if width < 64 {
		mask = 1<<width - 1
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.rand.Uint64() & mask
	}
	return out
}

// NewContext creates an in-memory context that is closed when the test ends.
func NewContext(tb testing.TB, opts ...mapping.Option) *mapping.Context {
	tb.Helper()

	m, err := mapping.Create(region.NewMemory(0), opts...)
	if err != nil {
		tb.Fatalf("create context: %v", err)
	}
	tb.Cleanup(func() { _ = m.Close() })
	return m
}

// Reopen copies the used image of m into a fresh region and opens it, the
// way a second process would see the file.
func Reopen(tb testing.TB, m *mapping.Context) *mapping.Context {
	tb.Helper()

	image := slices.Clone(m.Bytes()[:m.Size()])
	again, err := mapping.Open(region.NewMemoryFromBytes(image))
	if err != nil {
		tb.Fatalf("reopen context: %v", err)
	}
	tb.Cleanup(func() { _ = again.Close() })
	return again
}
