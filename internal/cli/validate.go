package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/eartrain/internal/curriculum"
)

// ValidationError describes one curriculum file that failed to load.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Curriculums []string          `json:"curricula,omitempty"`
	Errors      []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate curriculum files",
		Long: `Validate YAML or CUE curriculum files without touching any progress.

CUE files are unified with the built-in curriculum schema first, so
schema violations are reported with their line. Built-in curriculum
names are accepted too.

Example:
  eartrain validate ./intervals.yaml
  eartrain validate ./intervals.cue ./chords.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	var result ValidationResult
	for _, file := range files {
		f.VerboseLog("Validating %s", file)
		c, err := curriculum.Resolve(file)
		if err != nil {
			result.Errors = append(result.Errors, validationError(file, err))
			continue
		}
		result.Curriculums = append(result.Curriculums, c.Name)
	}
	result.Valid = len(result.Errors) == 0

	if result.Valid {
		return f.Success(result, func(w io.Writer) {
			fmt.Fprintf(w, "✓ %d curriculum file(s) valid\n", len(files))
		})
	}
	return outputValidationErrors(f, result)
}

func validationError(file string, err error) ValidationError {
	ve := ValidationError{File: file, Message: err.Error()}
	var le *curriculum.LoadError
	if errors.As(err, &le) && le.Pos.IsValid() {
		ve.Line = le.Pos.Line()
	}
	return ve
}

// outputValidationErrors reports every failed file. Validation failures
// exit with ExitFailure.
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))

	if f.JSON() {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeValidation, Message: result.Errors[0].Message},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "%s line %d\n", e.File, e.Line)
		} else {
			fmt.Fprintln(f.Writer, e.File)
		}
		fmt.Fprintf(f.Writer, "  %s\n\n", e.Message)
	}
	return NewExitError(ExitFailure, msg)
}
