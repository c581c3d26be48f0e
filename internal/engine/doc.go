// Package engine ties the scheduling packages together into the
// question/answer loop an exercise drives.
//
// ARCHITECTURE:
//
// The engine holds only injected collaborators: a Clock, a Random source,
// an IDGenerator for history entries and a logger. Learner progress is a
// State value the caller threads through every call:
//
//	st, err := eng.Load(ctx, snaps)
//	st, q, err := eng.Next(st)
//	st, events, err := eng.Answer(st, Response{Question: q, Correct: true, Attempt: 1})
//	err = eng.Save(ctx, snaps, st)
//
// Nothing is mutated in place and no goroutines are started. Concurrent
// writers to the same snapshot are not supported; the contract is load
// once, compute, save once per user action.
//
// Persisted state is wrapped in a versioned, checksummed envelope. A
// snapshot that fails to decode, fails its checksum, carries another
// schema version or belongs to another curriculum is replaced by the
// initial state and logged at WARN. Only storage I/O errors are returned.
package engine
