package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/tone_pairs_unlocks.yaml")
	require.NoError(t, err)

	assert.Equal(t, "tone_pairs_unlocks", s.Name)
	assert.Equal(t, "tone-pairs", s.Curriculum)
	require.Len(t, s.Flow, 4)
	assert.Equal(t, "C4|G4:compare-0", s.Flow[0].Card)
	assert.Equal(t, 4, s.Flow[0].Times())
	assert.True(t, s.Flow[0].IsCorrect())
	assert.False(t, s.Flow[3].IsCorrect())
	assert.Equal(t, 1, s.Flow[3].Times())

	d, err := s.Flow[0].Step()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
	assert.Len(t, s.Assertions, 6)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/invalid_unknown_field.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFlow(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/invalid_missing_flow.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flow list is required")
}

func TestValidateScenario(t *testing.T) {
	base := func() Scenario {
		return Scenario{
			Name:        "s",
			Description: "d",
			Curriculum:  "tone-pairs",
			Flow:        []Step{{Advance: "1h"}},
			Assertions:  []Assertion{{Type: AssertHistoryCount}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
		errMsg string
	}{
		{"valid", func(*Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"missing curriculum", func(s *Scenario) { s.Curriculum = "" }, "curriculum is required"},
		{"no assertions", func(s *Scenario) { s.Assertions = nil }, "assertions list is required"},
		{"card and next", func(s *Scenario) { s.Flow = []Step{{Card: "x", Next: true}} }, "mutually exclusive"},
		{"empty step", func(s *Scenario) { s.Flow = []Step{{}} }, "one of card, next or advance"},
		{"negative repeat", func(s *Scenario) { s.Flow = []Step{{Next: true, Repeat: -1}} }, "repeat must be non-negative"},
		{"bad duration", func(s *Scenario) { s.Flow = []Step{{Advance: "soon"}} }, "advance"},
		{"negative duration", func(s *Scenario) { s.Flow = []Step{{Advance: "-1m"}} }, "must not be negative"},
		{"unknown assertion", func(s *Scenario) { s.Assertions = []Assertion{{Type: "trace_contains"}} }, "unknown assertion type"},
		{"missing type", func(s *Scenario) { s.Assertions = []Assertion{{}} }, "type is required"},
		{"vocabulary without units", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertVocabulary}} }, "units list is required"},
		{"retired without cards", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertRetiredContains}} }, "cards list is required"},
		{"mode without mode", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertMode}} }, "mode is required"},
		{"negative count", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertPendingCount, Count: -1}} }, "count must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			err := validateScenario(&s)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCurriculumRef(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: s
description: d
curriculum: custom.yaml
flow:
  - advance: 1m
assertions:
  - type: history_count
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom.yaml"), s.curriculumRef())

	s.Curriculum = "tone-pairs"
	assert.Equal(t, "tone-pairs", s.curriculumRef())
}
