package random

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Max is the largest value a Generator draw can produce.
const Max = math.MaxInt32

// Generator is a goroutine-safe handle over one pseudo-random stream.
//
// Every draw is serialized behind a mutex so a single stream can be shared
// by many flips and rolls.
type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// New creates a generator whose stream is fully determined by seed.
func New(seed int64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Draw returns the next value of the stream in [0, Max].
func (g *Generator) Draw() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int(g.rng.Int31())
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
	clock       = time.Now
)

// Default returns the process-wide generator, seeding it from the wall clock
// on first use.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = New(SeedFromTime(clock()))
	})
	return defaultGen
}
