package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/memory"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func builtin(t *testing.T, name string) *curriculum.Curriculum {
	t.Helper()
	c, err := curriculum.Builtin(name)
	require.NoError(t, err)
	return c
}

// answer records a review of id and applies the policy, the way the
// engine does.
func answer(c *curriculum.Curriculum, s State, d cards.Deck, id cards.ID, correct, counted bool, at time.Time) (State, cards.Deck, Events) {
	g := memory.Good
	if !correct {
		g = memory.Again
	}
	d = cards.RecordReview(memory.Default(), d, cards.Review{CardID: id, Grade: g, At: at, Correct: correct, Counted: counted})
	group, variant, _ := curriculum.ParseCardKey(id)
	return Apply(s, c, d, Answer{Card: id, Group: group, Variant: variant, Correct: correct, Counted: counted}, at)
}

func window(correct, total int) []bool {
	w := make([]bool, total)
	for i := range correct {
		w[i] = true
	}
	return w
}

func TestInitial_SeedsInitialVariantsOnly(t *testing.T) {
	s, d := Initial(builtin(t, "tone-pairs"))

	assert.Equal(t, []string{"C4", "G4"}, s.Vocabulary)
	assert.Equal(t, []cards.ID{"C4|G4:compare-0"}, s.Unlocked)
	assert.Equal(t, []cards.ID{"C4|G4:compare-0"}, s.Pending)
	assert.True(t, d.Has("C4|G4:compare-0"))
	assert.Equal(t, 1, d.Len())

	s, _ = Initial(builtin(t, "note-identification"))
	assert.Equal(t, []cards.ID{"C4:octave", "G4:octave", "E4:octave"}, s.Unlocked)
}

func TestUnlock_Deduplicates(t *testing.T) {
	s, d := Initial(builtin(t, "tone-pairs"))

	s, d, ok := Unlock(s, d, "C4|G4:compare-1")
	require.True(t, ok)
	s2, d2, ok := Unlock(s, d, "C4|G4:compare-1")
	assert.False(t, ok)

	assert.Equal(t, s, s2)
	assert.Equal(t, d, d2)
	assert.Equal(t, []cards.ID{"C4|G4:compare-0", "C4|G4:compare-1"}, s2.Pending)
}

func TestApply_IntroducedCardsLeavePending(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	s, _, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)

	assert.Empty(t, s.Pending)
	assert.Equal(t, []cards.ID{"C4|G4:compare-0"}, s.Unlocked)
}

func TestPairStreak_ThresholdUnlocksNextVariant(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	var evs Events
	for i := range 3 {
		s, d, evs = answer(c, s, d, "C4|G4:compare-0", true, true, t0.Add(time.Duration(i)*time.Minute))
		assert.Empty(t, evs)
	}
	assert.Equal(t, 3, s.Streaks.Groups["C4|G4"])

	s, _, evs = answer(c, s, d, "C4|G4:compare-0", true, true, t0.Add(3*time.Minute))

	assert.Equal(t, Events{{Kind: VariantUnlocked, Mechanism: PairStreak, Card: "C4|G4:compare-1"}}, evs)
	assert.Zero(t, s.Streaks.Groups["C4|G4"])
	assert.True(t, s.IsUnlocked("C4|G4:compare-1"))
	assert.Equal(t, []cards.ID{"C4|G4:compare-1"}, s.Pending)
}

func TestPairStreak_SharedAcrossVariants(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	s, d, _ = Unlock(s, d, "C4|G4:compare-1")

	s, d, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	s, d, _ = answer(c, s, d, "C4|G4:compare-1", true, true, t0)
	s, d, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	_, _, evs := answer(c, s, d, "C4|G4:compare-1", true, true, t0)

	assert.Equal(t, []cards.ID{"C4|G4:compare-2"}, evs.Cards(VariantUnlocked))
}

func TestPairStreak_WrongAnswerResetsWithoutUnlocking(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	for range 3 {
		s, d, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	}
	s, d, evs := answer(c, s, d, "C4|G4:compare-0", false, true, t0)
	assert.Empty(t, evs)
	assert.Zero(t, s.Streaks.Groups["C4|G4"])

	for range 3 {
		s, d, evs = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
		assert.Empty(t, evs)
	}
	assert.False(t, s.IsUnlocked("C4|G4:compare-1"))
}

func TestPairStreak_RetriesDoNotCount(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	for range 5 {
		s, d, _ = answer(c, s, d, "C4|G4:compare-0", true, false, t0)
	}

	assert.Zero(t, s.Streaks.Groups["C4|G4"])
	assert.Zero(t, s.Streaks.Global)
	assert.Zero(t, s.SinceUnlock)
	assert.False(t, s.IsUnlocked("C4|G4:compare-1"))
}

func TestPairStreak_SaturatedGroupHoldsAtThreshold(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	for _, id := range c.VariantCards("C4|G4")[1:] {
		s, d, _ = Unlock(s, d, id)
	}
	s.Streaks.Groups["C4|G4"] = 3

	s, _, evs := answer(c, s, d, "C4|G4:single", true, true, t0)

	assert.Empty(t, evs)
	assert.Equal(t, 4, s.Streaks.Groups["C4|G4"])
}

func TestMasteryWindow(t *testing.T) {
	tests := []struct {
		name        string
		window      []bool
		sinceUnlock int
		wantUnit    bool
	}{
		{name: "18 of 20 unlocks", window: window(17, 19), sinceUnlock: 10, wantUnit: true},
		{name: "16 of 20 does not", window: window(15, 19), sinceUnlock: 10},
		{name: "cooldown not elapsed", window: window(17, 19), sinceUnlock: 3},
		{name: "window not full", window: window(17, 17), sinceUnlock: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := builtin(t, "tone-pairs")
			s, d := Initial(c)
			s.Window = tt.window
			s.SinceUnlock = tt.sinceUnlock

			next, _, evs := answer(c, s, d, "C4|G4:single", true, true, t0)

			if !tt.wantUnit {
				assert.Empty(t, evs)
				assert.Equal(t, []string{"C4", "G4"}, next.Vocabulary)
				assert.Equal(t, tt.sinceUnlock+1, next.SinceUnlock)
				return
			}
			assert.Equal(t, Events{
				{Kind: UnitUnlocked, Mechanism: MasteryWindow, Unit: "E4"},
				{Kind: VariantUnlocked, Mechanism: MasteryWindow, Card: "C4|E4:compare-0"},
				{Kind: VariantUnlocked, Mechanism: MasteryWindow, Card: "G4|E4:compare-0"},
			}, evs)
			assert.Equal(t, []string{"C4", "G4", "E4"}, next.Vocabulary)
			assert.Zero(t, next.SinceUnlock)
			assert.Len(t, next.Window, 20, "window is kept across unlocks")
		})
	}
}

func TestMasteryWindow_OnlyMasteryVariantsFillWindow(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	s, _, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)

	assert.Empty(t, s.Window)
	assert.Equal(t, 1, s.SinceUnlock)
}

func TestMasteryWindow_SkipsUnitsAlreadyInVocabulary(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	s.Vocabulary = append(s.Vocabulary, "E4")
	s.Window = window(19, 19)
	s.SinceUnlock = 10

	s, _, evs := answer(c, s, d, "C4|G4:single", true, true, t0)

	require.NotEmpty(t, evs)
	assert.Equal(t, "A4", evs[0].Unit)
	assert.Equal(t, []string{"C4", "G4", "E4", "A4"}, s.Vocabulary)
}

func TestAcceleration(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	s.Streaks.Global = 10

	s, d, evs := answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	assert.Equal(t, Events{{Kind: VariantUnlocked, Mechanism: Acceleration, Card: "C4|G4:compare-1"}}, evs)
	assert.Equal(t, 11, s.Streaks.Global)

	s, d, evs = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	assert.Equal(t, []cards.ID{"C4|G4:compare-2"}, evs.Cards(VariantUnlocked))

	s, _, evs = answer(c, s, d, "C4|G4:compare-0", false, true, t0)
	assert.Empty(t, evs)
	assert.Zero(t, s.Streaks.Global)
}

func TestAcceleration_UnlocksUnitWhenGroupsSaturated(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	for _, id := range c.VariantCards("C4|G4")[1:] {
		s, d, _ = Unlock(s, d, id)
	}
	s.Streaks.Global = 10

	s, _, evs := answer(c, s, d, "C4|G4:compare-0", true, true, t0)

	assert.Equal(t, Events{
		{Kind: UnitUnlocked, Mechanism: Acceleration, Unit: "E4"},
		{Kind: VariantUnlocked, Mechanism: Acceleration, Card: "C4|E4:compare-0"},
		{Kind: VariantUnlocked, Mechanism: Acceleration, Card: "G4|E4:compare-0"},
	}, evs)
	assert.Equal(t, []string{"C4", "G4", "E4"}, s.Vocabulary)
}

func TestPrecedence_PairStreakBeforeAcceleration(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	s.Streaks.Groups["C4|G4"] = 3
	s.Streaks.Global = 10

	s, _, evs := answer(c, s, d, "C4|G4:compare-0", true, true, t0)

	assert.Equal(t, Events{
		{Kind: VariantUnlocked, Mechanism: PairStreak, Card: "C4|G4:compare-1"},
		{Kind: VariantUnlocked, Mechanism: Acceleration, Card: "C4|G4:compare-2"},
	}, evs)
	assert.Zero(t, s.Streaks.Groups["C4|G4"])
}

func TestStreaks_CurrentTarget(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	s, d, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	s, d, _ = answer(c, s, d, "C4|G4:compare-0", true, true, t0)
	assert.Equal(t, cards.ID("C4|G4:compare-0"), s.Streaks.Target)
	assert.Equal(t, 2, s.Streaks.Current)

	s, d, _ = answer(c, s, d, "C4|G4:single", true, true, t0)
	assert.Equal(t, 1, s.Streaks.Current)

	s, _, _ = answer(c, s, d, "C4|G4:single", false, true, t0)
	assert.Zero(t, s.Streaks.Current)
}

func TestRetirement_SingleUnitPrerequisite(t *testing.T) {
	c := builtin(t, "note-identification")
	s, d := Initial(c)

	s, d, _ = answer(c, s, d, "C4:octave", true, true, t0)
	_, d, evs := answer(c, s, d, "C4:full", true, true, t0.Add(time.Minute))

	assert.Equal(t, []cards.ID{"C4:octave"}, evs.Cards(CardRetired))
	e, _ := d.Get("C4:octave")
	assert.True(t, e.Retired)
}

func TestRetirement_NotWhileFinalFormWrong(t *testing.T) {
	c := builtin(t, "note-identification")
	s, d := Initial(c)

	s, d, _ = answer(c, s, d, "C4:octave", true, true, t0)
	_, d, evs := answer(c, s, d, "C4:full", false, true, t0)

	assert.Empty(t, evs.Cards(CardRetired))
	e, _ := d.Get("C4:octave")
	assert.False(t, e.Retired)
}

func TestRetirement_UnintroducedPrerequisiteStays(t *testing.T) {
	c := builtin(t, "note-identification")
	s, d := Initial(c)

	_, d, evs := answer(c, s, d, "G4:full", true, true, t0)

	assert.Empty(t, evs.Cards(CardRetired))
	e, _ := d.Get("G4:octave")
	assert.False(t, e.Retired)
}

func TestRetirement_FamilyNeedsEveryMember(t *testing.T) {
	c := builtin(t, "note-identification")
	s, d := Initial(c)

	s, d, _ = answer(c, s, d, "C:family", true, true, t0)
	s, d, evs := answer(c, s, d, "C4:full", true, true, t0)
	assert.Empty(t, evs.Cards(CardRetired))

	s, d, evs = answer(c, s, d, "C5:full", true, true, t0)
	assert.Empty(t, evs.Cards(CardRetired))
	e, _ := d.Get("C:family")
	assert.False(t, e.Retired)

	_, d, evs = answer(c, s, d, "C3:full", true, true, t0)
	assert.Equal(t, []cards.ID{"C:family"}, evs.Cards(CardRetired))
	e, _ = d.Get("C:family")
	assert.True(t, e.Retired)
}

func TestPairStreak_FamilyAnswersBuildNoStreak(t *testing.T) {
	c := builtin(t, "note-identification")
	s, d := Initial(c)

	var evs Events
	for range c.Policy.PairStreakThreshold + 1 {
		s, d, evs = answer(c, s, d, "C:family", true, true, t0)
		assert.Empty(t, evs.Cards(VariantUnlocked))
	}
	assert.Zero(t, s.Streaks.Groups["C"])
	assert.False(t, s.IsUnlocked("C:octave"))
}

func TestPairStreak_GroupOutsideVocabularyBuildsNoStreak(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)

	var evs Events
	for range c.Policy.PairStreakThreshold {
		s, d, evs = answer(c, s, d, "C4|B4:compare-0", true, true, t0)
		assert.Empty(t, evs.Cards(VariantUnlocked))
	}
	assert.Zero(t, s.Streaks.Groups["C4|B4"])
	assert.False(t, s.IsUnlocked("C4|B4:compare-1"))
	assert.Equal(t, []string{"C4", "G4"}, s.Vocabulary)
}

func TestRetirement_RequiresCurrentRetrievability(t *testing.T) {
	c := builtin(t, "note-identification")
	s, d := Initial(c)
	s, d, _ = answer(c, s, d, "C4:octave", true, true, t0)
	d = cards.RecordReview(memory.Default(), d, cards.Review{CardID: "C4:full", Grade: memory.Good, At: t0})

	// A Good first review has a stability of a few days, so a year later
	// the final form is no longer reliably learned.
	_, d, evs := Apply(s, c, d, Answer{Card: "C4:octave", Group: "C4", Variant: "octave", Correct: true}, t0.AddDate(1, 0, 0))

	assert.Empty(t, evs.Cards(CardRetired))
	e, _ := d.Get("C4:octave")
	assert.False(t, e.Retired)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	c := builtin(t, "tone-pairs")
	s, d := Initial(c)
	s.Streaks.Groups["C4|G4"] = 3
	s.Window = window(19, 19)
	s.SinceUnlock = 10

	before := State{
		Vocabulary:  append([]string(nil), s.Vocabulary...),
		Unlocked:    append([]cards.ID(nil), s.Unlocked...),
		Pending:     append([]cards.ID(nil), s.Pending...),
		Streaks:     Streaks{Groups: map[string]int{"C4|G4": 3}},
		Window:      append([]bool(nil), s.Window...),
		SinceUnlock: 10,
	}

	answer(c, s, d, "C4|G4:single", true, true, t0)

	assert.Equal(t, before, s)
}
