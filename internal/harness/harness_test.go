package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAndRun(t *testing.T, name string) *Result {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	res, err := Run(s)
	require.NoError(t, err)
	return res
}

func TestRun_ScriptedUnlocks(t *testing.T) {
	res := loadAndRun(t, "tone_pairs_unlocks")

	assert.True(t, res.Pass, "errors: %v", res.Errors)
	require.Len(t, res.Trace, 13)
	assert.Equal(t, 1, res.Trace[0].Seq)
	assert.Equal(t, "good", res.Trace[0].Grade)
	assert.Equal(t, "again", res.Trace[12].Grade)
	assert.Len(t, res.Trace[11].Events, 3)
}

func TestRun_Retirement(t *testing.T) {
	res := loadAndRun(t, "note_identification_retirement")

	assert.True(t, res.Pass, "errors: %v", res.Errors)
	last := res.Trace[len(res.Trace)-1]
	require.Len(t, last.Events, 1)
	assert.Equal(t, "C4:octave", string(last.Events[0].Card))
}

func TestRun_OrderingDrillCycle(t *testing.T) {
	res := loadAndRun(t, "ordering_drill_cycle")

	assert.True(t, res.Pass, "errors: %v", res.Errors)
	require.Len(t, res.Trace, 30)
	for i, ev := range res.Trace {
		want := "card"
		if i >= 25 && i < 28 {
			want = "ordering"
		}
		assert.Equal(t, want, ev.Kind, "question %d", i+1)
	}
}

func TestRun_Deterministic(t *testing.T) {
	a := loadAndRun(t, "ordering_drill_cycle")
	b := loadAndRun(t, "ordering_drill_cycle")
	assert.Equal(t, a.Trace, b.Trace)
}

func TestRun_FailingAssertion(t *testing.T) {
	s := &Scenario{
		Name:        "failing",
		Description: "expects an unlock that never happens",
		Curriculum:  "tone-pairs",
		Flow:        []Step{{Card: "C4|G4:compare-0"}},
		Assertions: []Assertion{
			{Type: AssertUnlockedContains, Cards: []string{"C4|G4:compare-1"}},
			{Type: AssertHistoryCount, Count: 1},
		},
	}

	res, err := Run(s)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "unlocked_contains")
	assert.Contains(t, res.Errors[0], "C4|G4:compare-1")
}

func TestRun_UnknownCardFails(t *testing.T) {
	s := &Scenario{
		Name:        "unknown",
		Description: "answers a card the curriculum does not define",
		Curriculum:  "tone-pairs",
		Flow:        []Step{{Card: "C4|G4:compare-9"}},
		Assertions:  []Assertion{{Type: AssertHistoryCount}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flow step 0")
}

func TestRun_UnknownCurriculum(t *testing.T) {
	s := &Scenario{
		Name:        "nocurriculum",
		Description: "d",
		Curriculum:  "no-such-curriculum",
		Flow:        []Step{{Advance: "1m"}},
		Assertions:  []Assertion{{Type: AssertHistoryCount}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load curriculum")
}

func TestRun_CurriculumFileRelativeToScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(`name: tiny
group_size: 1
units: [A4, B4, C5]
seeds: [A4, B4]
variants:
  - name: full
    single: true
    mastery: true
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s.yaml"), []byte(`name: tiny_run
description: "custom curriculum next to the scenario"
curriculum: tiny.yaml
flow:
  - card: "A4:full"
    repeat: 3
assertions:
  - type: vocabulary
    units: [A4, B4]
  - type: history_count
    count: 3
`), 0o644))

	s, err := LoadScenario(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)
	res, err := Run(s)
	require.NoError(t, err)
	assert.True(t, res.Pass, "errors: %v", res.Errors)
}
