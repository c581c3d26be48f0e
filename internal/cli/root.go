package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/engine"
	"github.com/roach88/eartrain/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DB         string
	Curriculum string
	Seed       uint64

	configErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Global flag defaults come from
// EARTRAIN_* environment variables.
func NewRootCommand() *cobra.Command {
	cfg, err := LoadConfig()
	opts := &RootOptions{configErr: err}
	if err != nil {
		cfg = Config{DB: "eartrain.db", Curriculum: "tone-pairs", Format: "text"}
	}

	cmd := &cobra.Command{
		Use:   "eartrain",
		Short: "eartrain - adaptive ear training",
		Long: `An adaptive ear-training scheduler.

eartrain decides which listening question to ask next, records answers
with a spaced-repetition memory model and grows the vocabulary of notes
as the learner improves. Progress is kept in a SQLite database, one
snapshot per curriculum.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", opts.configErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", cfg.Format, "output format (json|text) [EARTRAIN_FORMAT]")
	flags.StringVar(&opts.DB, "db", cfg.DB, "path to SQLite database [EARTRAIN_DB]")
	flags.StringVarP(&opts.Curriculum, "curriculum", "c", cfg.Curriculum, "built-in curriculum name or file [EARTRAIN_CURRICULUM]")
	flags.Uint64Var(&opts.Seed, "seed", cfg.Seed, "random seed, 0 for a random one [EARTRAIN_SEED]")

	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewAnswerCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCurriculaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger writes to stderr; --verbose lowers the level to Debug.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// engineOptions builds the engine collaborators shared by all commands.
func (o *RootOptions) engineOptions(cmd *cobra.Command) []engine.Option {
	opts := []engine.Option{engine.WithLogger(o.logger(cmd))}
	if o.Seed != 0 {
		opts = append(opts, engine.WithRandom(rand.New(rand.NewPCG(o.Seed, o.Seed))))
	}
	return opts
}

// workspace is an engine bound to the learner's persisted state.
type workspace struct {
	engine *engine.Engine
	store  *store.Store
	state  engine.State
}

// openWorkspace resolves the curriculum, opens the database and loads the
// learner's state.
func (o *RootOptions) openWorkspace(ctx context.Context, cmd *cobra.Command, f *OutputFormatter, extra ...engine.Option) (*workspace, error) {
	c, err := curriculum.Resolve(o.Curriculum)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeCurriculum, err)
	}
	f.VerboseLog("curriculum %s (%d units, %d variants)", c.Name, len(c.Units), len(c.Variants))

	st, err := store.Open(o.DB)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err)
	}

	eng := engine.New(c, append(o.engineOptions(cmd), extra...)...)
	state, err := eng.Load(ctx, st)
	if err != nil {
		st.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	return &workspace{engine: eng, store: st, state: state}, nil
}

func (w *workspace) save(ctx context.Context, f *OutputFormatter) error {
	if err := w.engine.Save(ctx, w.store, w.state); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	return nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}
