package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/engine"
	"github.com/roach88/eartrain/internal/store"
	"github.com/roach88/eartrain/internal/testutil"
)

// Harness is the scenario execution engine.
// It drives one engine with a deterministic clock, ids and randomness.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.FakeClock
	logger *slog.Logger
	state  engine.State
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Resolve the curriculum and build a deterministic engine
// 2. Execute flow steps, recording every answer in the trace
// 3. Save the final state and load it back through the store
// 4. Evaluate assertions against the reloaded state
func Run(scenario *Scenario) (*Result, error) {
	res, _, err := RunFinal(scenario)
	return res, err
}

// RunFinal is Run that also returns the final state as reloaded from the
// store.
func RunFinal(scenario *Scenario) (*Result, engine.State, error) {
	c, err := curriculum.Resolve(scenario.curriculumRef())
	if err != nil {
		return nil, engine.State{}, fmt.Errorf("failed to load curriculum: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, engine.State{}, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewFakeClock(testutil.Epoch)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng := engine.New(c,
		engine.WithClock(clock),
		engine.WithRandom(testutil.SeededRand(scenario.Seed)),
		engine.WithIDGenerator(testutil.NewSequenceGenerator("h")),
		engine.WithLogger(logger),
	)

	h := &Harness{
		engine: eng,
		clock:  clock,
		logger: logger,
		state:  eng.Initial(),
	}

	result := NewResult()
	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, engine.State{}, fmt.Errorf("failed to execute flow: %w", err)
	}

	ctx := context.Background()
	if err := eng.Save(ctx, st, h.state); err != nil {
		return nil, engine.State{}, err
	}
	final, err := eng.Load(ctx, st)
	if err != nil {
		return nil, engine.State{}, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, final) {
		result.AddError(msg)
	}
	return result, final, nil
}

// executeFlow runs all flow steps in order.
func (h *Harness) executeFlow(flow []Step, result *Result) error {
	for i, step := range flow {
		advance, err := step.Step()
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		times := step.Times()
		if step.Card == "" && !step.Next {
			// Clock-only step.
			h.clock.Advance(advance * time.Duration(times))
			continue
		}

		for range times {
			if err := h.answer(step, result); err != nil {
				return fmt.Errorf("flow step %d: %w", i, err)
			}
			h.clock.Advance(advance)
		}
	}
	return nil
}

// answer asks or scripts one question and records the response.
func (h *Harness) answer(step Step, result *Result) error {
	var q engine.Question
	if step.Next {
		var err error
		h.state, q, err = h.engine.Next(h.state)
		if err != nil {
			return err
		}
	} else {
		q = engine.Question{Kind: engine.KindCard, Card: cards.ID(step.Card)}
	}

	resp := engine.Response{
		Question: q,
		Correct:  step.IsCorrect(),
		Attempt:  step.Attempt,
	}
	if step.ResponseMs > 0 {
		resp.Timings = []time.Duration{time.Duration(step.ResponseMs) * time.Millisecond}
	}

	next, events, err := h.engine.Answer(h.state, resp)
	if err != nil {
		return err
	}
	h.state = next

	ev := TraceEvent{
		Kind:    string(q.Kind),
		Card:    string(q.Card),
		Correct: resp.Correct,
		Events:  events,
	}
	if q.Kind == engine.KindCard {
		hist := next.Deck.History
		ev.Grade = hist[len(hist)-1].Grade.String()
	}
	result.AddTrace(ev)

	h.logger.Info("answer recorded",
		"kind", ev.Kind,
		"card", ev.Card,
		"correct", ev.Correct,
		"events", len(events),
	)
	return nil
}
