// Package memory implements the per-card memory model used by every exercise.
//
// A Card carries three numbers: Difficulty (1..10), Stability (days, > 0)
// and Interval (days, >= 1). Retrievability follows the power forgetting
// curve
//
//	R(t, S) = (1 + t/(9·S))^-1
//
// so R is 1 at t = 0, decays monotonically, and decays more slowly for
// larger S. With that curve the interval at which R drops to 0.9 equals S,
// which is why Interval is simply round(S).
//
// Cards are values. NewCard and GradeCard never modify their inputs.
package memory
