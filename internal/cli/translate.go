package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sif/internal/compiler"
	"github.com/roach88/sif/internal/engine"
	"github.com/roach88/sif/internal/store"
	"github.com/roach88/sif/internal/translator"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Mode           string
	Database       string
	Output         string
	KeepGoing      bool
	SkipValidation bool
}

// MemberOutput is one translated member.
type MemberOutput struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Hash  string `json:"hash,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// TranslateResult is the output of the translate command.
type TranslateResult struct {
	RunID       string         `json:"run_id"`
	Mode        string         `json:"mode"`
	ProgramHash string         `json:"program_hash,omitempty"`
	Recorded    bool           `json:"recorded"`
	Members     []MemberOutput `json:"members"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <program>",
		Short: "Translate a program to IR",
		Long: `Translate a CUE program (a .cue file or a directory) to IR text.

The program is validated first. In sif mode every impure function becomes a
dual-execution method; pure functions become single-execution functions.
With --db the run is recorded for history and replay.

Exit codes:
  0 - All members translated
  1 - Validation or translation failed
  2 - Command error (bad path, unreadable program, database error)

Examples:
  sif translate ./programs/branch.cue
  sif translate ./programs --mode base
  sif translate ./programs/branch.cue --db ./sif.db -o branch.vpr
  sif translate ./programs/branch.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", string(translator.ModeSIF), "translation mode (sif|base)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write IR text to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "translate remaining members after a failure")
	cmd.Flags().BoolVar(&opts.SkipValidation, "skip-validation", false, "translate without validating first")

	return cmd
}

func runTranslate(ctx context.Context, opts *TranslateOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadOrFail(f, path)
	if err != nil {
		return err
	}

	if !opts.SkipValidation {
		if errs := compiler.ValidateProgram(loaded.Program); len(errs) > 0 {
			return outputValidationErrors(f, errs)
		}
	}

	engOpts := []engine.Option{
		engine.WithMode(translator.Mode(opts.Mode)),
		engine.WithKeepGoing(opts.KeepGoing),
		engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())),
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return commandError(f, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err))
		}
		defer st.Close()
		engOpts = append(engOpts, engine.WithStore(st))
	}
	eng, err := engine.New(ctx, engOpts...)
	if err != nil {
		return commandError(f, ErrCodeGeneric, err.Error())
	}

	res, terr := eng.Translate(ctx, loaded.Program, loaded.Source)
	if terr != nil && !engine.IsTranslationError(terr) {
		return WrapExitError(ExitCommandError, "translation aborted", terr)
	}

	out := TranslateResult{
		RunID:       res.RunID,
		Mode:        string(res.Mode),
		ProgramHash: res.ProgramHash,
		Recorded:    res.Recorded,
		Members:     make([]MemberOutput, 0, len(res.Members)),
	}
	var texts []string
	for _, m := range res.Members {
		mo := MemberOutput{Name: m.Name, Kind: m.Kind, Hash: m.Hash, Text: m.Text}
		if m.Err != nil {
			mo.Error = m.Err.Error()
		} else {
			texts = append(texts, m.Text)
		}
		out.Members = append(out.Members, mo)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(strings.Join(texts, "\n")), 0o644); err != nil {
			return commandError(f, ErrCodeGeneric, fmt.Sprintf("failed to write output: %v", err))
		}
		f.VerboseLog("Wrote %d member(s) to %s", len(texts), opts.Output)
	}

	if terr != nil {
		return outputTranslateFailure(f, out, terr)
	}

	if f.JSON() {
		return f.Success(out)
	}
	if opts.Output == "" {
		fmt.Fprint(f.Writer, strings.Join(texts, "\n"))
	}
	if out.Recorded {
		f.VerboseLog("Recorded run %s", out.RunID)
	}
	return nil
}

func outputTranslateFailure(f *OutputFormatter, out TranslateResult, err error) error {
	if f.JSON() {
		if encErr := f.Failure(ErrCodeTranslation, err.Error(), out); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintln(f.Writer, "✗ Translation failed")
		fmt.Fprintln(f.Writer)
		for _, m := range out.Members {
			if m.Error != "" {
				fmt.Fprintf(f.Writer, "  %s: %s\n", m.Name, m.Error)
			}
		}
	}
	return WrapExitError(ExitFailure, ErrCodeTranslation, err)
}
