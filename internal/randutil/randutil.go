// Package randutil provides the seedable random source used by the
// evolutionary optimizers and classifiers. Keeping randomness behind an
// injected *RNG makes every stochastic algorithm reproducible in tests.
package randutil

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 { return r.rand.Float64() }

// Intn returns a pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int { return r.rand.Intn(n) }

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int { return r.rand.Perm(n) }

// Shuffle pseudo-randomizes the order of n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) { r.rand.Shuffle(n, swap) }

// NormFloat64 returns a normally distributed float64 with mean 0, stddev 1.
func (r *RNG) NormFloat64() float64 { return r.rand.NormFloat64() }

// Bits generates a random bitmask of length n where each bit is set with
// probability p.
func (r *RNG) Bits(n int, p float64) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = r.rand.Float64() < p
	}
	return bits
}
