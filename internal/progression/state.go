// Package progression decides what the learner may study next: it grows
// the vocabulary, unlocks harder variants and retires prerequisite cards
// as answers come in.
//
// Four mechanisms run on every answer, always in this order:
//
//  1. pair streak: consecutive first-attempt correct answers on a group
//     unlock the group's next variant;
//  2. mastery window: a high enough score over the last answers on
//     mastery variants appends the next unit to the vocabulary;
//  3. acceleration: while the global streak is above its threshold every
//     correct answer unlocks one more pending item;
//  4. retirement: prerequisite cards whose final forms are all reliably
//     learned are retired.
//
// Each mechanism unlocks at most one item per answer.
package progression

import (
	"maps"
	"slices"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
)

// Streaks holds the correct-answer counters. All are non-negative.
type Streaks struct {
	// Target is the card most recently answered and Current the run of
	// correct answers on it.
	Target  cards.ID       `json:"target,omitempty"`
	Current int            `json:"current"`
	Global  int            `json:"global"`
	Groups  map[string]int `json:"groups,omitempty"`
}

// State is the learner's progression. Values are replaced, never mutated.
type State struct {
	Vocabulary []string   `json:"vocabulary"`
	Unlocked   []cards.ID `json:"unlocked"`
	// Pending lists unlocked cards that have not been introduced yet, in
	// unlock order. A card appears at most once.
	Pending     []cards.ID `json:"pending,omitempty"`
	Streaks     Streaks    `json:"streaks"`
	Window      []bool     `json:"window,omitempty"`
	SinceUnlock int        `json:"since_unlock"`
}

// Initial returns the starting state for c: the seed units as vocabulary
// and the initial variant of every seed group unlocked. The returned deck
// holds an unreviewed entry per unlocked card.
func Initial(c *curriculum.Curriculum) (State, cards.Deck) {
	s := State{
		Vocabulary: slices.Clone(c.Seeds),
		Streaks:    Streaks{Groups: map[string]int{}},
	}
	d := cards.NewDeck()
	for _, g := range c.BootstrapGroups() {
		s, d, _ = Unlock(s, d, c.VariantCards(g)[0])
	}
	return s, d
}

// IsUnlocked reports whether id has been unlocked.
func (s State) IsUnlocked(id cards.ID) bool {
	return slices.Contains(s.Unlocked, id)
}

// HasUnit reports whether unit is in the vocabulary.
func (s State) HasUnit(unit string) bool {
	return slices.Contains(s.Vocabulary, unit)
}

// Unlock adds id to the unlocked set and the pending queue and creates its
// deck entry. It reports false, changing nothing, when id is already
// unlocked.
func Unlock(s State, d cards.Deck, id cards.ID) (State, cards.Deck, bool) {
	if s.IsUnlocked(id) {
		return s, d, false
	}
	s = s.clone()
	s.Unlocked = append(s.Unlocked, id)
	if !d.Has(id) || !d.Entries[id].Introduced() {
		s.Pending = append(s.Pending, id)
	}
	return s, d.Add(id), true
}

// Introduce removes introduced cards from the pending queue.
func Introduce(s State, d cards.Deck) State {
	if !slices.ContainsFunc(s.Pending, func(id cards.ID) bool { return d.Entries[id].Introduced() }) {
		return s
	}
	s = s.clone()
	s.Pending = slices.DeleteFunc(s.Pending, func(id cards.ID) bool {
		return d.Entries[id].Introduced()
	})
	return s
}

func (s State) clone() State {
	out := s
	out.Vocabulary = slices.Clip(s.Vocabulary)
	out.Unlocked = slices.Clip(s.Unlocked)
	out.Pending = slices.Clone(s.Pending)
	out.Window = slices.Clip(s.Window)
	out.Streaks.Groups = make(map[string]int, len(s.Streaks.Groups)+1)
	maps.Copy(out.Streaks.Groups, s.Streaks.Groups)
	return out
}
