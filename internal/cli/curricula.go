package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/store"
)

// CurriculaOutput lists built-in curricula and saved progress.
type CurriculaOutput struct {
	Builtin []string             `json:"builtin"`
	Saved   []store.SnapshotInfo `json:"saved"`
}

// NewCurriculaCommand creates the curricula command.
func NewCurriculaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "curricula",
		Short: "List built-in curricula and saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurricula(rootOpts, cmd)
		},
	}
}

func runCurricula(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	out := CurriculaOutput{Builtin: curriculum.BuiltinNames(), Saved: []store.SnapshotInfo{}}

	// A missing database has no saved progress; don't create one.
	if _, err := os.Stat(opts.DB); err == nil {
		st, err := store.Open(opts.DB)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err)
		}
		defer st.Close()
		saved, err := st.Snapshots(cmd.Context())
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err)
		}
		out.Saved = append(out.Saved, saved...)
	}

	return f.Success(out, func(w io.Writer) {
		fmt.Fprintln(w, "built-in:")
		for _, name := range out.Builtin {
			fmt.Fprintf(w, "  %s\n", name)
		}
		if len(out.Saved) == 0 {
			return
		}
		fmt.Fprintln(w, "saved:")
		for _, s := range out.Saved {
			fmt.Fprintf(w, "  %-22s revision %d, %d bytes, %s\n", s.Curriculum, s.Revision, s.Size, s.UpdatedAt)
		}
	})
}
