package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the uniform random generator the game engines draw from
type Source interface {
	// Intn returns a uniform value in [0, n). n must be positive.
	Intn(n int) int
}

// Roller provides seeded random numbers
type Roller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new roller
func New(cfg *Config) *Roller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Roller{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a uniform value in [0, n)
func (r *Roller) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(n)
}

// Roll generates a random dice roll with the specified number of sides
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		sides = 6 // Default to 6-sided die
	}
	return r.Intn(sides) + 1
}

// Sequence replays fixed values, wrapping each into [0, n). Used to script
// deals and dealer choice in tests.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequence returns a Source that yields values in order and then zeros
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// Intn returns the next scripted value modulo n
func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0
	}
	v := s.values[s.next] % n
	s.next++
	if v < 0 {
		v += n
	}
	return v
}
