// Package urgency orders review candidates by how close they are to being
// forgotten.
package urgency

import (
	"cmp"
	"slices"
)

// Candidate is anything that can be ranked: an identifier plus its current
// retrievability.
type Candidate struct {
	ID             string
	Retrievability float64
}

// Rank returns a sorted copy of cs: ascending retrievability (most forgotten
// first), ties broken by ID so the order is deterministic.
func Rank(cs []Candidate) []Candidate {
	out := slices.Clone(cs)
	slices.SortStableFunc(out, compare)
	return out
}

// MostUrgent returns the lowest-retrievability candidate strictly below
// cutoff. A cutoff >= 1 accepts every candidate.
func MostUrgent(cs []Candidate, cutoff float64) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	for _, c := range cs {
		if c.Retrievability >= cutoff && cutoff < 1 {
			continue
		}
		if !found || compare(c, best) < 0 {
			best, found = c, true
		}
	}
	return best, found
}

func compare(a, b Candidate) int {
	if c := cmp.Compare(a.Retrievability, b.Retrievability); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
