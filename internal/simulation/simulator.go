// Package simulation draws GBM samples: multi-step price paths for forecasting
// and single-step terminal prices for Monte Carlo option pricing.
package simulation

import (
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

const defaultChunkSize = 8192

// Config controls randomness and parallelism of a Simulator.
type Config struct {
	Seed      uint64 // 0 = sembrar con el reloj
	Workers   int    // goroutines por operación batch (0 = NumCPU)
	ChunkSize int    // draws por unidad de trabajo (0 = 8192)
}

// Simulator owns a seedable master generator. Every batch operation takes one
// child seed per chunk from the master stream, in chunk order, so results
// depend only on the seed and the call sequence, never on scheduling.
// Safe for concurrent use.
type Simulator struct {
	cfg    Config
	seed   uint64
	mu     sync.Mutex
	master *rand.Rand
}

// New creates a Simulator. A zero seed is replaced with the current time.
func New(cfg Config) *Simulator {
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	return &Simulator{
		cfg:    cfg,
		seed:   cfg.Seed,
		master: newRand(cfg.Seed),
	}
}

// Seed returns the seed the simulator was created with.
func (s *Simulator) Seed() uint64 {
	return s.seed
}

// childSeeds reserves n consecutive seeds from the master stream.
func (s *Simulator) childSeeds(n int) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = s.master.Uint64()
	}
	return seeds
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
