package engine

import (
	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/session"
	"github.com/roach88/eartrain/internal/urgency"
)

// Status summarizes a state at the engine's current time.
type Status struct {
	Curriculum        string       `json:"curriculum"`
	Vocabulary        []string     `json:"vocabulary"`
	Unlocked          int          `json:"unlocked"`
	Introduced        int          `json:"introduced"`
	Retired           int          `json:"retired"`
	Pending           int          `json:"pending"`
	Answered          int          `json:"answered"`
	GlobalStreak      int          `json:"global_streak"`
	Mode              session.Mode `json:"mode"`
	RepeatProbability float64      `json:"repeat_probability"`
	// Complete is true once every unlocked card has been introduced.
	Complete bool `json:"complete"`
	// MostUrgent is the least retrievable active card, if any.
	MostUrgent     cards.ID `json:"most_urgent,omitempty"`
	Retrievability float64  `json:"retrievability,omitempty"`
}

// Status reports on st.
func (e *Engine) Status(st State) Status {
	now := e.clock.Now()
	s := Status{
		Curriculum:   st.Curriculum,
		Vocabulary:   st.Progress.Vocabulary,
		Unlocked:     len(st.Progress.Unlocked),
		Pending:      len(st.Progress.Pending),
		Answered:     len(st.Deck.History),
		GlobalStreak: st.Progress.Streaks.Global,
		Mode:         st.Ordering.Mode,
		Complete:     session.IsComplete(st.Deck, st.Progress.Unlocked),
	}
	if !st.Session.StartedAt.IsZero() {
		s.RepeatProbability = session.RepeatProbability(st.Session, now)
	}

	var cs []urgency.Candidate
	for _, d := range cards.DueCards(st.Deck, now) {
		cs = append(cs, urgency.Candidate{ID: string(d.Entry.ID), Retrievability: d.Retrievability})
	}
	for _, en := range st.Deck.All() {
		if en.Introduced() {
			s.Introduced++
		}
		if en.Retired {
			s.Retired++
		}
	}
	if c, ok := urgency.MostUrgent(cs, 1); ok {
		s.MostUrgent = cards.ID(c.ID)
		s.Retrievability = c.Retrievability
	}
	return s
}
