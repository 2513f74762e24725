package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sif/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database    string
	RunID       string
	ProgramHash string
	MemberHash  string
	Limit       int
	ShowText    bool
}

// RunDetail is a run with its members.
type RunDetail struct {
	Run     store.Run      `json:"run"`
	Members []store.Member `json:"members"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded translation runs",
		Long: `List the runs recorded by translate --db, oldest first.

With --run, show one run and the hash of each member; add --text to print
the stored IR text as well.

Examples:
  sif history --db ./sif.db
  sif history --db ./sif.db --limit 10
  sif history --db ./sif.db --program <hash>
  sif history --db ./sif.db --hash <member-hash>
  sif history --db ./sif.db --run <run-id> --text`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run")
	cmd.Flags().StringVar(&opts.ProgramHash, "program", "", "only runs that produced this program hash")
	cmd.Flags().StringVar(&opts.MemberHash, "hash", "", "only runs that produced a member with this hash")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N runs")
	cmd.Flags().BoolVar(&opts.ShowText, "text", false, "print member IR text (with --run)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(f, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	if opts.RunID != "" {
		return showRun(ctx, f, st, opts)
	}

	var runs []store.Run
	switch {
	case opts.ProgramHash != "":
		runs, err = st.RunsForProgram(ctx, opts.ProgramHash)
	case opts.MemberHash != "":
		runs, err = st.RunsWithMember(ctx, opts.MemberHash)
	default:
		runs, err = st.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		return commandError(f, ErrCodeDatabase, err.Error())
	}

	if f.JSON() {
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs found in database.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "%6d  %s  %-4s  %-6s  %s\n", r.Seq, r.ID, r.Mode, r.Status, r.Source)
		if r.Error != "" && f.Verbose {
			fmt.Fprintf(f.Writer, "        %s\n", r.Error)
		}
	}
	return nil
}

func showRun(ctx context.Context, f *OutputFormatter, st *store.Store, opts *HistoryOptions) error {
	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return commandError(f, ErrCodeRunNotFound, fmt.Sprintf("run %q not found", opts.RunID))
	}
	if err != nil {
		return commandError(f, ErrCodeDatabase, err.Error())
	}
	members, err := st.ReadMembers(ctx, opts.RunID)
	if err != nil {
		return commandError(f, ErrCodeDatabase, err.Error())
	}

	if f.JSON() {
		return f.Success(RunDetail{Run: run, Members: members})
	}

	w := f.Writer
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Seq:      %d\n", run.Seq)
	fmt.Fprintf(w, "Mode:     %s\n", run.Mode)
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	if run.Source != "" {
		fmt.Fprintf(w, "Source:   %s\n", run.Source)
	}
	if run.ProgramHash != "" {
		fmt.Fprintf(w, "Program:  %s\n", run.ProgramHash)
	}
	fmt.Fprintf(w, "Versions: ir %s, translator %s\n", run.IRVersion, run.EngineVersion)
	if run.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", run.Error)
	}
	fmt.Fprintln(w)
	for _, m := range members {
		fmt.Fprintf(w, "  %-8s %-20s %s\n", m.Kind, m.Name, m.Hash)
	}
	if opts.ShowText {
		for _, m := range members {
			fmt.Fprintln(w)
			fmt.Fprint(w, m.Text)
		}
	}
	return nil
}
