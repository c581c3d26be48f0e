package engine

import (
	"math/rand/v2"
	"time"
)

// Clock supplies the current time. Pure functions never read the wall
// clock themselves; the engine asks its Clock once per call.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Random returns pseudo-random numbers in [0, 1). *rand.Rand satisfies it,
// so tests inject rand.New(rand.NewPCG(seed, seq)).
type Random interface {
	Float64() float64
}

// globalRandom draws from the math/rand/v2 top-level source.
type globalRandom struct{}

func (globalRandom) Float64() float64 {
	return rand.Float64()
}

// intN returns a value in [0, n) drawn from r. n must be positive.
func intN(r Random, n int) int {
	return min(int(r.Float64()*float64(n)), n-1)
}

// shuffle permutes xs in place (Fisher-Yates).
func shuffle[T any](r Random, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := intN(r, i+1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
