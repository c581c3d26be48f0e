package engine

import (
	"time"

	"github.com/roach88/eartrain/internal/memory"
)

// DeriveGrade maps an answer to a memory grade: wrong is Again, correct on
// a retry is Hard, correct on the first attempt is Good, or Easy when the
// response came faster than easy. A zero easy disables Easy.
func DeriveGrade(correct bool, attempt int, response, easy time.Duration) memory.Grade {
	switch {
	case !correct:
		return memory.Again
	case attempt > 1:
		return memory.Hard
	case easy > 0 && response > 0 && response < easy:
		return memory.Easy
	default:
		return memory.Good
	}
}
