package game

import (
	"math/rand"
	"sync"
	"time"
)

// RNG is the randomness the engines draw from. *rand.Rand satisfies it;
// tests pass seeded or scripted sources.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

// LockedRand is a *rand.Rand safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRNG returns a concurrency-safe source. A zero seed seeds from the clock.
func NewRNG(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform int in [0, n).
func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Float64 returns a uniform float in [0, 1).
func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Perm returns a random permutation of [0, n).
func Perm(rng RNG, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
