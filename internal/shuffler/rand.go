package shuffler

import (
	"math/rand/v2"
	"sync"
	"time"
)

// seedMix derives the second PCG word from the seed.
const seedMix = 0x9e3779b97f4a7c15

// Rand is the random source the shuffler draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a PCG source seeded with seed, or with the clock when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // clock value is always positive
	}
	return rand.New(rand.NewPCG(seed, seed^seedMix)) //nolint:gosec // Shuffling doesn't require crypto-secure randomness
}

// lockedRand serializes access to a Rand shared by concurrent callers.
type lockedRand struct {
	mu  sync.Mutex
	src Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.src.Shuffle(n, swap)
}
