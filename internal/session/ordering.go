package session

import (
	"slices"

	"github.com/roach88/eartrain/internal/curriculum"
)

// Mode is the ordering-drill state.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeScheduled  Mode = "scheduled"
	ModeStruggling Mode = "struggling"
	ModeActive     Mode = "active"
)

// Ordering interleaves ordering drills with regular questions. A drill is
// scheduled every OrderingInterval questions, or sooner when accuracy over
// the last StrugglingWindow first attempts drops below StrugglingAccuracy.
// Once a drill is issued the mode stays active until OrderingExitStreak
// consecutive drills are answered fully correct.
type Ordering struct {
	Mode        Mode   `json:"mode"`
	Since       int    `json:"since"`
	Consecutive int    `json:"consecutive"`
	Recent      []bool `json:"recent,omitempty"`
}

// Pending reports whether the next question should be an ordering drill.
func (o Ordering) Pending() bool {
	return o.Mode == ModeScheduled || o.Mode == ModeStruggling || o.Mode == ModeActive
}

// Observe records a regular answer. Only first attempts count.
func (o Ordering) Observe(p curriculum.Policy, correct, counted bool) Ordering {
	if !counted {
		return o
	}
	o.Since++
	o.Recent = append(slices.Clip(o.Recent), correct)
	if over := len(o.Recent) - p.StrugglingWindow; over > 0 {
		o.Recent = slices.Clone(o.Recent[over:])
	}
	if o.Mode == "" {
		o.Mode = ModeNormal
	}
	if o.Mode != ModeNormal {
		return o
	}
	switch {
	case o.struggling(p):
		o.Mode = ModeStruggling
	case o.Since >= p.OrderingInterval:
		o.Mode = ModeScheduled
	}
	return o
}

func (o Ordering) struggling(p curriculum.Policy) bool {
	if len(o.Recent) < p.StrugglingWindow {
		return false
	}
	correct := 0
	for _, ok := range o.Recent {
		if ok {
			correct++
		}
	}
	return float64(correct)/float64(len(o.Recent)) < p.StrugglingAccuracy
}

// Issue marks an ordering drill as asked.
func (o Ordering) Issue() Ordering {
	if o.Pending() {
		o.Mode = ModeActive
	}
	return o
}

// ObserveOrdering records a drill result. A mistake resets the run of
// correct drills without leaving the mode. Leaving resets the question
// counter and the accuracy window.
func (o Ordering) ObserveOrdering(p curriculum.Policy, correct bool) Ordering {
	if o.Mode != ModeActive {
		return o
	}
	if !correct {
		o.Consecutive = 0
		return o
	}
	o.Consecutive++
	if o.Consecutive >= p.OrderingExitStreak {
		return Ordering{Mode: ModeNormal}
	}
	return o
}
