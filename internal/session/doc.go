// Package session plans study sessions: which cards to introduce, which to
// review, how likely a repeat is at a given moment, and when to interleave
// ordering drills.
//
// Everything here is a pure function of its inputs. Callers thread the
// returned values through and persist them.
package session
