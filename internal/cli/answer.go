package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/engine"
	"github.com/roach88/eartrain/internal/memory"
	"github.com/roach88/eartrain/internal/progression"
)

// AnswerOptions holds flags for the answer command.
type AnswerOptions struct {
	*RootOptions
	Wrong      bool
	Attempt    int
	ResponseMs int
	Grade      string
}

// AnswerOutput reports what an answer changed.
type AnswerOutput struct {
	Card         cards.ID           `json:"card,omitempty"`
	Correct      bool               `json:"correct"`
	Grade        string             `json:"grade,omitempty"`
	Events       progression.Events `json:"events"`
	GlobalStreak int                `json:"global_streak"`
}

// NewAnswerCommand creates the answer command.
func NewAnswerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnswerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "answer <card|ordering>",
		Short: "Record an answer",
		Long: `Record the learner's answer to a card, or to an ordering drill.

The grade is derived from correctness, the attempt number and the
response time unless --grade is given.

Example:
  eartrain answer "C4|G4:compare-0"
  eartrain answer "C4|G4:single" --wrong
  eartrain answer "C4|G4:compare-1" --attempt 2
  eartrain answer ordering`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnswer(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Wrong, "wrong", false, "the answer was wrong")
	cmd.Flags().IntVar(&opts.Attempt, "attempt", 1, "attempt number, 1 for the first try")
	cmd.Flags().IntVar(&opts.ResponseMs, "response-ms", 0, "response time in milliseconds")
	cmd.Flags().StringVar(&opts.Grade, "grade", "", "explicit grade (again|hard|good|easy)")

	return cmd
}

func runAnswer(opts *AnswerOptions, target string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	resp := engine.Response{Correct: !opts.Wrong, Attempt: opts.Attempt}
	if target == string(engine.KindOrdering) {
		resp.Question = engine.Question{Kind: engine.KindOrdering}
	} else {
		resp.Question = engine.Question{Kind: engine.KindCard, Card: cards.ID(target)}
	}
	if opts.ResponseMs > 0 {
		resp.Timings = []time.Duration{time.Duration(opts.ResponseMs) * time.Millisecond}
	}
	if opts.Grade != "" {
		g, err := memory.ParseGrade(opts.Grade)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeValidation, err)
		}
		resp.Grade = g
	}

	ws, err := opts.openWorkspace(ctx, cmd, f)
	if err != nil {
		return err
	}
	defer ws.Close()

	var events progression.Events
	ws.state, events, err = ws.engine.Answer(ws.state, resp)
	if engine.IsCardLocked(err) {
		return f.Fail(ExitCommandError, ErrCodeCardLocked, err)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeUnknownCard, err)
	}
	if err := ws.save(ctx, f); err != nil {
		return err
	}

	out := AnswerOutput{
		Card:         resp.Question.Card,
		Correct:      resp.Correct,
		Events:       events,
		GlobalStreak: ws.state.Progress.Streaks.Global,
	}
	if resp.Question.Kind == engine.KindCard {
		hist := ws.state.Deck.History
		out.Grade = hist[len(hist)-1].Grade.String()
	}
	if out.Events == nil {
		out.Events = progression.Events{}
	}
	return f.Success(out, func(w io.Writer) { writeAnswer(w, out) })
}

func writeAnswer(w io.Writer, out AnswerOutput) {
	mark := "✓"
	if !out.Correct {
		mark = "✗"
	}
	if out.Card == "" {
		fmt.Fprintf(w, "%s ordering drill\n", mark)
	} else {
		fmt.Fprintf(w, "%s %s (%s)\n", mark, out.Card, out.Grade)
	}
	for _, ev := range out.Events {
		target := string(ev.Card)
		if target == "" {
			target = ev.Unit
		}
		fmt.Fprintf(w, "  + %s %s (%s)\n", ev.Kind, target, ev.Mechanism)
	}
	fmt.Fprintf(w, "streak %d\n", out.GlobalStreak)
}
