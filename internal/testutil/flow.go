package testutil

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// SequenceGenerator produces ids "<prefix>-1", "<prefix>-2", ... without
// ever running out, unlike engine.FixedGenerator.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence at 1.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// SeededRand returns a deterministic PCG-backed source.
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ScriptedRandom returns the given values in order, cycling when it runs
// out. It lets tests pin every random decision the engine makes.
type ScriptedRandom struct {
	mu     sync.Mutex
	values []float64
	idx    int
}

// NewScriptedRandom creates a source returning values in a loop. With no
// values it always returns 0.
func NewScriptedRandom(values ...float64) *ScriptedRandom {
	return &ScriptedRandom{values: values}
}

// Float64 returns the next scripted value.
func (r *ScriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.idx%len(r.values)]
	r.idx++
	return v
}
