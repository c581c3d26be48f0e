package session

import (
	"time"
)

// Repeat probability curve.
const (
	// MinRepeat is the repeat probability when returning with no gap.
	MinRepeat = 0.5
	// MaxRepeat is reached once the gap since the previous session is
	// FullGap or longer.
	MaxRepeat = 1.0
	// RepeatFloor is where the curve settles after WarmUp of session time.
	RepeatFloor = 0.1

	FullGap = 24 * time.Hour
	WarmUp  = 15 * time.Minute
)

// Session tracks the current study session. PreviousEnd is zero for the
// first session ever.
type Session struct {
	StartedAt    time.Time `json:"started_at"`
	PreviousEnd  time.Time `json:"previous_end,omitzero"`
	LastActivity time.Time `json:"last_activity"`
}

// Touch records activity at now. When more than gap has passed since the
// last activity, or no session has started yet, the session is replaced
// wholesale and started reports true.
func Touch(s Session, now time.Time, gap time.Duration) (next Session, started bool) {
	switch {
	case s.StartedAt.IsZero():
		return Session{StartedAt: now, LastActivity: now}, true
	case now.Sub(s.LastActivity) > gap:
		return Session{StartedAt: now, PreviousEnd: s.LastActivity, LastActivity: now}, true
	default:
		s.LastActivity = now
		return s, false
	}
}

// Gap returns the time between the previous session's end and this
// session's start, or zero for the first session.
func (s Session) Gap() time.Duration {
	if s.PreviousEnd.IsZero() || s.StartedAt.Before(s.PreviousEnd) {
		return 0
	}
	return s.StartedAt.Sub(s.PreviousEnd)
}

// RepeatProbability is the chance of re-asking a seen card rather than
// moving on to fresh material. It starts between MinRepeat and MaxRepeat
// depending on how long the learner was away and falls linearly to
// RepeatFloor over the first WarmUp of the session.
func RepeatProbability(s Session, now time.Time) float64 {
	start := MinRepeat + (MaxRepeat-MinRepeat)*min(float64(s.Gap())/float64(FullGap), 1)

	elapsed := now.Sub(s.StartedAt)
	if elapsed <= 0 {
		return start
	}
	frac := min(float64(elapsed)/float64(WarmUp), 1)
	return max(start-(start-RepeatFloor)*frac, RepeatFloor)
}
