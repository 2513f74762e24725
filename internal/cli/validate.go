package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sif/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Functions int                        `json:"functions"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program>",
		Short: "Validate a program without translating it",
		Long: `Check that a CUE program decodes and meets the structural rules for
translation: identifiers, types, reserved names, call arity, loop placement of
break, continue and Invariant. All errors are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	loaded, err := loadOrFail(f, path)
	if err != nil {
		return err
	}

	for _, fn := range loaded.Program.Functions {
		f.VerboseLog("Validating function: %s", fn.Name)
	}
	if errs := compiler.ValidateProgram(loaded.Program); len(errs) > 0 {
		return outputValidationErrors(f, errs)
	}

	if f.JSON() {
		return f.Success(ValidationResult{Valid: true, Functions: len(loaded.Program.Functions)})
	}
	fmt.Fprintf(f.Writer, "✓ Program valid (%d functions)\n", len(loaded.Program.Functions))
	return nil
}

// outputValidationErrors reports validation failures. Exit code 1.
func outputValidationErrors(f *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	if f.JSON() {
		if err := f.Failure(errs[0].Code, errs[0].Message, ValidationResult{Valid: false, Errors: errs}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
