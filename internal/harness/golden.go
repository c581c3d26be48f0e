package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/eartrain/internal/engine"
)

// Render formats a trace and its final state as stable plain text, one
// line per answer with indented progression events.
func Render(name string, result *Result, st engine.State) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario %s\n", name)
	for _, ev := range result.Trace {
		card := ev.Card
		if ev.Kind == string(engine.KindOrdering) {
			card = "(ordering)"
		}
		mark := "wrong"
		if ev.Correct {
			mark = "right"
		}
		fmt.Fprintf(&buf, "%3d %s %s", ev.Seq, card, mark)
		if ev.Grade != "" {
			fmt.Fprintf(&buf, " %s", ev.Grade)
		}
		buf.WriteByte('\n')
		for _, e := range ev.Events {
			target := string(e.Card)
			if target == "" {
				target = e.Unit
			}
			fmt.Fprintf(&buf, "    + %s %s %s\n", e.Kind, e.Mechanism, target)
		}
	}

	var retired []string
	for _, e := range st.Deck.All() {
		if e.Retired {
			retired = append(retired, string(e.ID))
		}
	}

	fmt.Fprintf(&buf, "vocabulary %s\n", list(st.Progress.Vocabulary))
	fmt.Fprintf(&buf, "unlocked %d\n", len(st.Progress.Unlocked))
	for _, id := range st.Progress.Unlocked {
		fmt.Fprintf(&buf, "  %s\n", id)
	}
	fmt.Fprintf(&buf, "retired %s\n", list(retired))
	fmt.Fprintf(&buf, "pending %d\n", len(st.Progress.Pending))
	fmt.Fprintf(&buf, "global_streak %d\n", st.Progress.Streaks.Global)
	fmt.Fprintf(&buf, "mode %s\n", st.Ordering.Mode)
	return []byte(buf.String())
}

func list(xs []string) string {
	if len(xs) == 0 {
		return "-"
	}
	return strings.Join(xs, " ")
}

// RunWithGolden executes a scenario and compares its rendering against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the rendering doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, final, err := RunFinal(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result, final)
	return result, nil
}

// AssertGolden compares an already computed result and final state against
// the golden file for scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result, st engine.State) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Render(scenarioName, result, st))
}
