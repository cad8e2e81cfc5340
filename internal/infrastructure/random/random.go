// Package random abstracts the randomness source behind an interface
// so resolution outcomes are scriptable in tests.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source supplies the uniform draws the engine needs.
type Source interface {
	// Float64 returns a uniform draw in [0.0, 1.0).
	Float64() float64
	// IntN returns a uniform draw in [0, n).
	IntN(n int) int
	// Int64Between returns a uniform draw in [min, max] inclusive.
	Int64Between(min, max int64) int64
	// FloatBetween returns a uniform draw in [min, max).
	FloatBetween(min, max float64) float64
}

// locked is a mutex-guarded PCG source.
type locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a seeded concurrent-safe source.
func NewSource(seed1, seed2 uint64) Source {
	return &locked{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *locked) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *locked) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *locked) Int64Between(min, max int64) int64 {
	if min >= max {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Int64N(max-min+1)
}

func (s *locked) FloatBetween(min, max float64) float64 {
	if min >= max {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Float64()*(max-min)
}
