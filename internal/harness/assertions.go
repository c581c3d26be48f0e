package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s correct=%t\n", event.Seq, event.Kind, event.Card, event.Correct)
		}
	}

	return buf.String()
}

// assertVocabulary checks the vocabulary, order included.
func assertVocabulary(trace []TraceEvent, st engine.State, a Assertion) error {
	if slices.Equal(st.Progress.Vocabulary, a.Units) {
		return nil
	}
	return &AssertionError{
		Type:     AssertVocabulary,
		Expected: fmt.Sprint(a.Units),
		Actual:   fmt.Sprint(st.Progress.Vocabulary),
		Trace:    trace,
	}
}

// assertCards checks that every listed card satisfies has.
func assertCards(trace []TraceEvent, a Assertion, has func(cards.ID) bool) error {
	var missing []string
	for _, id := range a.Cards {
		if !has(cards.ID(id)) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprint(a.Cards),
		Actual:   fmt.Sprintf("missing %v", missing),
		Trace:    trace,
	}
}

// assertCount compares an observed number against the assertion's count.
func assertCount(trace []TraceEvent, a Assertion, actual int) error {
	if actual == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprint(a.Count),
		Actual:   fmt.Sprint(actual),
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, st engine.State) []string {
	var errors []string

	retired := func(id cards.ID) bool {
		e, ok := st.Deck.Get(id)
		return ok && e.Retired
	}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertVocabulary:
			err = assertVocabulary(result.Trace, st, assertion)
		case AssertUnlockedContains:
			err = assertCards(result.Trace, assertion, st.Progress.IsUnlocked)
		case AssertRetiredContains:
			err = assertCards(result.Trace, assertion, retired)
		case AssertPendingCount:
			err = assertCount(result.Trace, assertion, len(st.Progress.Pending))
		case AssertGlobalStreak:
			err = assertCount(result.Trace, assertion, st.Progress.Streaks.Global)
		case AssertHistoryCount:
			err = assertCount(result.Trace, assertion, len(st.Deck.History))
		case AssertMode:
			if string(st.Ordering.Mode) != assertion.Mode {
				err = &AssertionError{
					Type:     AssertMode,
					Expected: assertion.Mode,
					Actual:   string(st.Ordering.Mode),
					Trace:    result.Trace,
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
