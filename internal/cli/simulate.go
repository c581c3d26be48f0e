package cli

import (
	"fmt"
	"io"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/engine"
	"github.com/roach88/eartrain/internal/progression"
	"github.com/roach88/eartrain/internal/store"
	"github.com/roach88/eartrain/internal/testutil"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Questions int
	Accuracy  float64
	Interval  time.Duration
}

// SimulationOutput summarizes a simulated run.
type SimulationOutput struct {
	Questions  int            `json:"questions"`
	Drills     int            `json:"drills"`
	Correct    int            `json:"correct"`
	Mechanisms map[string]int `json:"mechanisms"`
	Status     engine.Status  `json:"status"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated learner",
		Long: `Run a simulated learner against a curriculum in a throwaway
in-memory database and report how far it got. The learner answers
each question right with the given probability; the clock advances by
--interval after every answer. Saved progress is never touched.

Example:
  eartrain simulate --questions 500 --accuracy 0.9 --seed 7
  eartrain simulate --curriculum note-identification --interval 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Questions, "questions", "n", 200, "number of questions to answer")
	cmd.Flags().Float64Var(&opts.Accuracy, "accuracy", 0.85, "probability of a right answer")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 20*time.Second, "time between answers")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	if opts.Questions < 1 || opts.Accuracy < 0 || opts.Accuracy > 1 || opts.Interval < 0 {
		return f.Fail(ExitCommandError, ErrCodeValidation,
			fmt.Errorf("need --questions >= 1, --accuracy in [0,1] and a non-negative --interval"))
	}

	c, err := curriculum.Resolve(opts.Curriculum)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCurriculum, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	defer st.Close()

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	clock := testutil.NewFakeClock(testutil.Epoch)
	learner := rand.New(rand.NewPCG(seed, ^seed))
	eng := engine.New(c,
		engine.WithClock(clock),
		engine.WithRandom(rand.New(rand.NewPCG(seed, seed))),
		engine.WithIDGenerator(testutil.NewSequenceGenerator("sim")),
		engine.WithLogger(opts.logger(cmd)),
	)

	state, err := eng.Load(ctx, st)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}

	out := SimulationOutput{Mechanisms: map[string]int{}}
	for range opts.Questions {
		var q engine.Question
		if state, q, err = eng.Next(state); err != nil {
			return f.Fail(ExitCommandError, ErrCodeUnknownCard, err)
		}
		correct := learner.Float64() < opts.Accuracy
		resp := engine.Response{
			Question: q,
			Correct:  correct,
			Timings:  []time.Duration{time.Duration(800+learner.IntN(2400)) * time.Millisecond},
		}
		var events progression.Events
		if state, events, err = eng.Answer(state, resp); err != nil {
			return f.Fail(ExitCommandError, ErrCodeUnknownCard, err)
		}

		out.Questions++
		if q.Kind == engine.KindOrdering {
			out.Drills++
		}
		if correct {
			out.Correct++
		}
		for _, ev := range events {
			out.Mechanisms[string(ev.Mechanism)]++
		}
		clock.Advance(opts.Interval)
	}

	if err := eng.Save(ctx, st, state); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	f.VerboseLog("simulated %d questions with seed %d", out.Questions, seed)

	out.Status = eng.Status(state)
	return f.Success(out, func(w io.Writer) { writeSimulation(w, out) })
}

func writeSimulation(w io.Writer, out SimulationOutput) {
	fmt.Fprintf(w, "questions   %d (%d ordering drills, %d right)\n", out.Questions, out.Drills, out.Correct)
	fmt.Fprintf(w, "vocabulary  %s\n", strings.Join(out.Status.Vocabulary, " "))
	fmt.Fprintf(w, "cards       %d unlocked, %d retired\n", out.Status.Unlocked, out.Status.Retired)
	for _, m := range slices.Sorted(maps.Keys(out.Mechanisms)) {
		fmt.Fprintf(w, "  %-15s %d\n", m, out.Mechanisms[m])
	}
}
