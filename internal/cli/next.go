package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/engine"
)

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Choose the next question",
		Long: `Choose the next question for the learner and print it.

The session clock is touched, so the first question after a long break
starts a new session. Answer the question with "eartrain answer".

Example:
  eartrain next
  eartrain next --curriculum note-identification --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(rootOpts, cmd)
		},
	}
}

// QuestionOutput is a question with the pitch of every item.
type QuestionOutput struct {
	engine.Question
	Frequencies []float64 `json:"frequencies"`
}

func runNext(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	ws, err := opts.openWorkspace(ctx, cmd, f)
	if err != nil {
		return err
	}
	defer ws.Close()

	var q engine.Question
	ws.state, q, err = ws.engine.Next(ws.state)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeUnknownCard, err)
	}
	if err := ws.save(ctx, f); err != nil {
		return err
	}

	out := QuestionOutput{Question: q, Frequencies: make([]float64, len(q.Items))}
	for i, u := range q.Items {
		out.Frequencies[i] = curriculum.Frequency(u)
	}
	return f.Success(out, func(w io.Writer) { writeQuestion(w, out) })
}

func writeQuestion(w io.Writer, q QuestionOutput) {
	if q.Kind == engine.KindOrdering {
		fmt.Fprintf(w, "Ordering drill: sort %s from low to high\n", strings.Join(q.Items, " "))
		fmt.Fprintf(w, "Answer with: eartrain answer ordering [--wrong]\n")
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", q.Card, q.Source)
	for i, u := range q.Items {
		fmt.Fprintf(w, "  play %-4s %7.2f Hz\n", u, q.Frequencies[i])
	}
	if len(q.Choices) > 0 {
		fmt.Fprintf(w, "  choices: %s\n", strings.Join(q.Choices, " "))
	}
	fmt.Fprintf(w, "Answer with: eartrain answer %q [--wrong]\n", string(q.Card))
}
