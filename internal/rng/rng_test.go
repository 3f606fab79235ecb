package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollerSeedIsReproducible(t *testing.T) {
	a := New(&Config{Seed: 42})
	b := New(&Config{Seed: 42})

	for n := 0; n < 20; n++ {
		assert.Equal(t, a.Intn(52), b.Intn(52))
	}
}

func TestRollStaysInRange(t *testing.T) {
	r := New(&Config{Seed: 7})

	for n := 0; n < 200; n++ {
		v := r.Roll(6)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
	}

	// Non-positive sides fall back to a d6
	for n := 0; n < 50; n++ {
		assert.LessOrEqual(t, r.Roll(0), 6)
	}
}

func TestSequence(t *testing.T) {
	s := NewSequence(3, 9, -1)

	assert.Equal(t, 3, s.Intn(5))
	assert.Equal(t, 4, s.Intn(5))
	assert.Equal(t, 4, s.Intn(5))
	assert.Equal(t, 0, s.Intn(5), "exhausted sequences yield zero")
}
