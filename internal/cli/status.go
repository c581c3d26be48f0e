package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/engine"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show learner progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ws, err := opts.openWorkspace(cmd.Context(), cmd, f)
	if err != nil {
		return err
	}
	defer ws.Close()

	s := ws.engine.Status(ws.state)
	return f.Success(s, func(w io.Writer) { writeStatus(w, s) })
}

func writeStatus(w io.Writer, s engine.Status) {
	fmt.Fprintf(w, "curriculum  %s\n", s.Curriculum)
	fmt.Fprintf(w, "vocabulary  %s\n", strings.Join(s.Vocabulary, " "))
	fmt.Fprintf(w, "cards       %d unlocked, %d introduced, %d retired, %d pending\n",
		s.Unlocked, s.Introduced, s.Retired, s.Pending)
	fmt.Fprintf(w, "answered    %d (streak %d)\n", s.Answered, s.GlobalStreak)
	fmt.Fprintf(w, "ordering    %s\n", s.Mode)
	if s.MostUrgent != "" {
		fmt.Fprintf(w, "most urgent %s (R=%.2f)\n", s.MostUrgent, s.Retrievability)
	}
	if s.Complete {
		fmt.Fprintln(w, "✓ every unlocked card introduced")
	}
}
