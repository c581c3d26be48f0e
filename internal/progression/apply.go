package progression

import (
	"maps"
	"slices"
	"time"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
)

// Mechanism names the rule that produced an event.
type Mechanism string

const (
	PairStreak    Mechanism = "pair_streak"
	MasteryWindow Mechanism = "mastery_window"
	Acceleration  Mechanism = "acceleration"
	Retirement    Mechanism = "retirement"
)

// EventKind says what changed.
type EventKind string

const (
	VariantUnlocked EventKind = "variant_unlocked"
	UnitUnlocked    EventKind = "unit_unlocked"
	CardRetired     EventKind = "card_retired"
)

// Event records one unlock or retirement.
type Event struct {
	Kind      EventKind `json:"kind"`
	Mechanism Mechanism `json:"mechanism"`
	Card      cards.ID  `json:"card,omitempty"`
	Unit      string    `json:"unit,omitempty"`
}

// Events is the ordered list of changes one answer produced.
type Events []Event

// Cards returns the card ids of events of the given kind.
func (es Events) Cards(kind EventKind) []cards.ID {
	var ids []cards.ID
	for _, e := range es {
		if e.Kind == kind && e.Card != "" {
			ids = append(ids, e.Card)
		}
	}
	return ids
}

// Answer is one answered question as seen by the policy.
type Answer struct {
	Card    cards.ID
	Group   string
	Variant string
	Correct bool
	// Counted is true for a first attempt. Retries never move streaks,
	// the mastery window or the cooldown.
	Counted bool
}

// Apply runs the four mechanisms for one answer. d must already contain
// the review of a.Card; the returned deck has entries for newly unlocked
// cards and retirements applied.
func Apply(s State, c *curriculum.Curriculum, d cards.Deck, a Answer, now time.Time) (State, cards.Deck, Events) {
	st := &step{c: c, s: Introduce(s, d).clone(), d: d}
	if a.Counted {
		st.s.Streaks.observe(a)
		st.pairStreak(a)
		st.masteryWindow(a)
		st.accelerate(a)
	}
	st.retire(now)
	return st.s, st.d, st.events
}

func (s *Streaks) observe(a Answer) {
	switch {
	case !a.Correct:
		s.Current = 0
	case a.Card == s.Target:
		s.Current++
	default:
		s.Current = 1
	}
	s.Target = a.Card
}

type step struct {
	c      *curriculum.Curriculum
	s      State
	d      cards.Deck
	events Events
}

func (st *step) unlock(id cards.ID, m Mechanism) bool {
	var ok bool
	st.s, st.d, ok = Unlock(st.s, st.d, id)
	if ok {
		st.events = append(st.events, Event{Kind: VariantUnlocked, Mechanism: m, Card: id})
	}
	return ok
}

// nextVariant returns the first card of group, in variant order, that is
// not unlocked yet.
func (st *step) nextVariant(group string) (cards.ID, bool) {
	for _, id := range st.c.VariantCards(group) {
		if !st.s.IsUnlocked(id) {
			return id, true
		}
	}
	return "", false
}

// unlockNextUnit appends the next curriculum unit missing from the
// vocabulary and seeds the initial variant of each group it forms.
func (st *step) unlockNextUnit(m Mechanism) bool {
	i := slices.IndexFunc(st.c.Units, func(u string) bool { return !st.s.HasUnit(u) })
	if i < 0 {
		return false
	}
	unit := st.c.Units[i]
	groups := st.c.NewGroups(st.s.Vocabulary, unit)
	st.s.Vocabulary = append(st.s.Vocabulary, unit)
	st.events = append(st.events, Event{Kind: UnitUnlocked, Mechanism: m, Unit: unit})
	for _, g := range groups {
		st.unlock(st.c.VariantCards(g)[0], m)
	}
	return true
}

func (st *step) pairStreak(a Answer) {
	if a.Group == "" {
		return
	}
	// A family is not a group; family answers build no pair streak.
	if v, ok := st.c.Variant(a.Variant); ok && v.Scope == curriculum.ScopeFamily {
		return
	}
	if !all(curriculum.GroupUnits(a.Group), st.s.HasUnit) {
		return
	}
	if !a.Correct {
		st.s.Streaks.Groups[a.Group] = 0
		return
	}
	threshold := st.c.Policy.PairStreakThreshold
	n := st.s.Streaks.Groups[a.Group] + 1
	if n < threshold {
		st.s.Streaks.Groups[a.Group] = n
		return
	}
	if id, ok := st.nextVariant(a.Group); ok {
		st.unlock(id, PairStreak)
		st.s.Streaks.Groups[a.Group] = 0
		return
	}
	// Every variant is unlocked; hold at the threshold.
	st.s.Streaks.Groups[a.Group] = threshold
}

func (st *step) masteryWindow(a Answer) {
	p := st.c.Policy
	st.s.SinceUnlock++
	if v, ok := st.c.Variant(a.Variant); ok && v.Mastery {
		st.s.Window = append(st.s.Window, a.Correct)
		if over := len(st.s.Window) - p.WindowSize; over > 0 {
			st.s.Window = slices.Clone(st.s.Window[over:])
		}
	}
	if len(st.s.Window) < p.WindowSize || st.s.SinceUnlock < p.UnlockCooldown {
		return
	}
	correct := 0
	for _, ok := range st.s.Window {
		if ok {
			correct++
		}
	}
	if float64(correct)/float64(p.WindowSize) < p.WindowThreshold {
		return
	}
	if st.unlockNextUnit(MasteryWindow) {
		st.s.SinceUnlock = 0
	}
}

func (st *step) accelerate(a Answer) {
	if !a.Correct {
		st.s.Streaks.Global = 0
		return
	}
	st.s.Streaks.Global++
	if st.s.Streaks.Global <= st.c.Policy.AccelerationThreshold {
		return
	}
	for _, g := range st.c.Groups(st.s.Vocabulary) {
		if id, ok := st.nextVariant(g); ok {
			st.unlock(id, Acceleration)
			return
		}
	}
	st.unlockNextUnit(Acceleration)
}

// retire retires every introduced prerequisite whose final-form cards are
// all reliably learned at now.
func (st *step) retire(now time.Time) {
	sub := st.c.Subsumption()
	threshold := st.c.Policy.ReliableThreshold
	for _, pre := range slices.Sorted(maps.Keys(sub)) {
		e, ok := st.d.Get(pre)
		if !ok || !e.Introduced() || e.Retired {
			continue
		}
		learned := func(id cards.ID) bool {
			fe, ok := st.d.Get(id)
			return ok && cards.IsReliablyLearned(fe, now, threshold)
		}
		if !all(sub[pre], learned) {
			continue
		}
		st.d = st.d.Retire(pre)
		st.events = append(st.events, Event{Kind: CardRetired, Mechanism: Retirement, Card: pre})
	}
}

func all[T any](xs []T, pred func(T) bool) bool {
	for _, x := range xs {
		if !pred(x) {
			return false
		}
	}
	return true
}
