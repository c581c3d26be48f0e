package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all progress for the curriculum",
		Long: `Clear all progress, history included, for the selected curriculum.
Other curricula in the same database are not touched.

Example:
  eartrain reset --yes
  eartrain reset --curriculum note-identification --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm the reset")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	if !opts.Yes {
		return f.Fail(ExitCommandError, ErrCodeValidation, fmt.Errorf("reset needs --yes"))
	}

	ws, err := opts.openWorkspace(ctx, cmd, f)
	if err != nil {
		return err
	}
	defer ws.Close()

	if ws.state, err = ws.engine.Reset(ctx, ws.store); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	resets, err := ws.store.ResetCount(ctx, ws.state.Curriculum)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err)
	}

	data := map[string]any{"curriculum": ws.state.Curriculum, "resets": resets}
	return f.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s reset (%d so far)\n", ws.state.Curriculum, resets)
	})
}
