package dice

import (
	"math/rand"
	"sync"
)

// seededSource is a deterministic Source for reproducible battles.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a Source backed by math/rand seeded with seed.
// A zero seed is replaced by 1 so that "unset" still yields a fixed sequence.
//
// Postcondition: Two sources built from the same seed produce the same sequence.
func NewSeededSource(seed int64) Source {
	if seed == 0 {
		seed = 1
	}
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
