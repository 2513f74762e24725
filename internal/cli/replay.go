package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sif/internal/engine"
	"github.com/roach88/sif/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <program>",
		Short: "Re-translate a program and compare it with a recorded run",
		Long: `Re-translate a program in the mode of a recorded run and compare every
member hash with the log. The stored IR is re-hashed as well, so a modified
database is reported even when the program is unchanged. Nothing is written.

Exit codes:
  0 - Replay matches the recorded run
  1 - Differences detected
  2 - Command error (database not found, unknown run, etc.)

Examples:
  sif replay ./programs/branch.cue --db ./sif.db --run <run-id>
  sif replay ./programs --db ./sif.db --run <run-id> --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to replay (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadOrFail(f, path)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(f, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	eng, err := engine.New(ctx,
		engine.WithStore(st),
		engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())),
	)
	if err != nil {
		return commandError(f, ErrCodeDatabase, err.Error())
	}

	report, err := eng.Replay(ctx, opts.RunID, loaded.Program)
	switch {
	case engine.IsRunNotFound(err):
		return commandError(f, ErrCodeRunNotFound, fmt.Sprintf("run %q not found", opts.RunID))
	case err != nil && !engine.IsReplayMismatch(err):
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if f.JSON() {
		if report.OK() {
			return f.Success(report)
		}
		if encErr := f.Failure(ErrCodeReplay, err.Error(), report); encErr != nil {
			return encErr
		}
		return WrapExitError(ExitFailure, ErrCodeReplay, err)
	}

	if report.OK() {
		fmt.Fprintf(f.Writer, "✓ Run %s replays identically (%s mode)\n", report.RunID, report.Mode)
		return nil
	}

	fmt.Fprintf(f.Writer, "✗ Run %s differs\n", report.RunID)
	for _, m := range report.Integrity {
		fmt.Fprintf(f.Writer, "  stored IR of %s no longer matches its hash\n", m.Name)
	}
	for _, d := range report.Diffs {
		switch {
		case d.Stored == "":
			fmt.Fprintf(f.Writer, "  %s: new member\n", d.Name)
		case d.Replayed == "":
			fmt.Fprintf(f.Writer, "  %s: missing from replay\n", d.Name)
		default:
			fmt.Fprintf(f.Writer, "  %s: %s -> %s\n", d.Name, short(d.Stored), short(d.Replayed))
		}
	}
	return WrapExitError(ExitFailure, ErrCodeReplay, err)
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
