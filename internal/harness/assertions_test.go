package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/engine"
	"github.com/roach88/eartrain/internal/memory"
	"github.com/roach88/eartrain/internal/progression"
	"github.com/roach88/eartrain/internal/session"
	"github.com/roach88/eartrain/internal/testutil"
)

func sampleState() engine.State {
	d := cards.NewDeck("C4|G4:compare-0", "C4|G4:compare-1")
	d = cards.RecordReview(memory.Default(), d, cards.Review{CardID: "C4|G4:compare-0", Grade: memory.Good, At: testutil.Epoch, Correct: true})
	d = d.Retire("C4|G4:compare-0")
	return engine.State{
		Curriculum: "tone-pairs",
		Progress: progression.State{
			Vocabulary: []string{"C4", "G4"},
			Unlocked:   []cards.ID{"C4|G4:compare-0", "C4|G4:compare-1"},
			Pending:    []cards.ID{"C4|G4:compare-1"},
			Streaks:    progression.Streaks{Global: 5},
		},
		Deck:     d,
		Ordering: session.Ordering{Mode: session.ModeActive},
	}
}

func TestEvaluateAssertions(t *testing.T) {
	st := sampleState()

	tests := []struct {
		name      string
		assertion Assertion
		pass      bool
	}{
		{"vocabulary match", Assertion{Type: AssertVocabulary, Units: []string{"C4", "G4"}}, true},
		{"vocabulary order matters", Assertion{Type: AssertVocabulary, Units: []string{"G4", "C4"}}, false},
		{"unlocked", Assertion{Type: AssertUnlockedContains, Cards: []string{"C4|G4:compare-1"}}, true},
		{"not unlocked", Assertion{Type: AssertUnlockedContains, Cards: []string{"C4|G4:single"}}, false},
		{"retired", Assertion{Type: AssertRetiredContains, Cards: []string{"C4|G4:compare-0"}}, true},
		{"not retired", Assertion{Type: AssertRetiredContains, Cards: []string{"C4|G4:compare-1"}}, false},
		{"unknown card not retired", Assertion{Type: AssertRetiredContains, Cards: []string{"X:y"}}, false},
		{"pending", Assertion{Type: AssertPendingCount, Count: 1}, true},
		{"pending mismatch", Assertion{Type: AssertPendingCount, Count: 2}, false},
		{"global streak", Assertion{Type: AssertGlobalStreak, Count: 5}, true},
		{"history", Assertion{Type: AssertHistoryCount, Count: 1}, true},
		{"mode", Assertion{Type: AssertMode, Mode: "active"}, true},
		{"mode mismatch", Assertion{Type: AssertMode, Mode: "normal"}, false},
		{"unknown type", Assertion{Type: "bogus"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(NewResult(), []Assertion{tt.assertion}, st)
			if tt.pass {
				assert.Empty(t, errs)
			} else {
				assert.Len(t, errs, 1)
			}
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	res := NewResult()
	res.AddTrace(TraceEvent{Kind: "card", Card: "C4|G4:compare-0", Correct: true})

	errs := EvaluateAssertions(res, []Assertion{{Type: AssertGlobalStreak, Count: 9}}, sampleState())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: global_streak")
	assert.Contains(t, errs[0], "Expected: 9")
	assert.Contains(t, errs[0], "Actual: 5")
	assert.Contains(t, errs[0], "[1] card C4|G4:compare-0 correct=true")
}

func TestResult_AddError(t *testing.T) {
	res := NewResult()
	assert.True(t, res.Pass)

	res.AddError("boom")
	assert.False(t, res.Pass)
	assert.Equal(t, []string{"boom"}, res.Errors)
}
