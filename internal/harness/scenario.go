package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted learner session.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Curriculum is a built-in curriculum name or a path to a curriculum
	// file, relative to the scenario file.
	Curriculum string `yaml:"curriculum"`

	// Seed seeds the random source. Scripted card steps do not consume
	// randomness; next steps do.
	Seed uint64 `yaml:"seed,omitempty"`

	// Flow is the ordered list of steps.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory of the scenario file, for resolving paths.
	dir string
}

// Step answers one or more questions, or only moves the clock.
type Step struct {
	// Card answers this card directly, bypassing selection.
	Card string `yaml:"card,omitempty"`

	// Next answers whatever question the engine chooses.
	Next bool `yaml:"next,omitempty"`

	// Correct is the answer's correctness. Defaults to true.
	Correct *bool `yaml:"correct,omitempty"`

	// Attempt is the attempt number; 0 and 1 both mean a first attempt.
	Attempt int `yaml:"attempt,omitempty"`

	// ResponseMs is the response time of the answer.
	ResponseMs int `yaml:"response_ms,omitempty"`

	// Repeat runs the step this many times. Defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`

	// Advance moves the clock after each repetition (Go duration syntax).
	Advance string `yaml:"advance,omitempty"`
}

// IsCorrect returns the step's correctness, defaulting to true.
func (s Step) IsCorrect() bool {
	return s.Correct == nil || *s.Correct
}

// Times returns how many times the step runs.
func (s Step) Times() int {
	return max(s.Repeat, 1)
}

// Step returns the clock advance per repetition.
func (s Step) Step() (time.Duration, error) {
	if s.Advance == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Advance)
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type; see the package documentation.
	Type string `yaml:"type"`

	// Units is the expected vocabulary (used by vocabulary).
	Units []string `yaml:"units,omitempty"`

	// Cards are card ids (used by unlocked_contains, retired_contains).
	Cards []string `yaml:"cards,omitempty"`

	// Count is the expected number (used by the *_count and global_streak
	// assertions).
	Count int `yaml:"count,omitempty"`

	// Mode is the expected ordering mode (used by mode).
	Mode string `yaml:"mode,omitempty"`
}

// Assertion type constants.
const (
	AssertVocabulary       = "vocabulary"
	AssertUnlockedContains = "unlocked_contains"
	AssertRetiredContains  = "retired_contains"
	AssertPendingCount     = "pending_count"
	AssertGlobalStreak     = "global_streak"
	AssertHistoryCount     = "history_count"
	AssertMode             = "mode"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// curriculumRef resolves a curriculum path against the scenario file's
// directory. Built-in names are returned unchanged.
func (s *Scenario) curriculumRef() string {
	ref := s.Curriculum
	if s.dir == "" || filepath.IsAbs(ref) || filepath.Ext(ref) == "" {
		return ref
	}
	return filepath.Join(s.dir, ref)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Curriculum == "" {
		return fmt.Errorf("curriculum is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Card != "" && step.Next {
			return fmt.Errorf("flow[%d]: card and next are mutually exclusive", i)
		}
		if step.Card == "" && !step.Next && step.Advance == "" {
			return fmt.Errorf("flow[%d]: one of card, next or advance is required", i)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("flow[%d]: repeat must be non-negative", i)
		}
		if d, err := step.Step(); err != nil {
			return fmt.Errorf("flow[%d]: advance: %w", i, err)
		} else if d < 0 {
			return fmt.Errorf("flow[%d]: advance must not be negative", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertVocabulary:
		if len(a.Units) == 0 {
			return fmt.Errorf("assertions[%d]: units list is required for vocabulary", index)
		}
	case AssertUnlockedContains, AssertRetiredContains:
		if len(a.Cards) == 0 {
			return fmt.Errorf("assertions[%d]: cards list is required for %s", index, a.Type)
		}
	case AssertPendingCount, AssertGlobalStreak, AssertHistoryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertMode:
		if a.Mode == "" {
			return fmt.Errorf("assertions[%d]: mode is required for mode", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
