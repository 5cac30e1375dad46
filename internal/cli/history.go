package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/uncalc/internal/ir"
	"github.com/roach88/uncalc/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - list sessions when empty
	Seq       int64  // optional - single evaluation of SessionID
	Status    string
	ErrorCode string
	Hash      string
	Limit     int
}

// HistoryResult holds the listing of the history command.
type HistoryResult struct {
	Sessions    []store.SessionSummary `json:"sessions,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
	Evaluations []ir.Evaluation        `json:"evaluations,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded evaluations",
		Long: `Show the evaluation history recorded by 'uncalc repl --db'.

Without --session, every recorded session is listed with its number of
lines and seq range. With --session, the lines of that session are shown
in order. Adding --seq shows a single evaluation with its program.

--status, --code, --hash and --limit search the evaluations of every
session (or of --session only) instead.

Exit codes:
  0 - History shown
  1 - Session or evaluation not found
  2 - Command error (database not found, etc.)

Examples:
  uncalc history --db ./uncalc.db
  uncalc history --db ./uncalc.db --session 0192f3c4-...
  uncalc history --db ./uncalc.db --session 0192f3c4-... --seq 3 --format json
  uncalc history --db ./uncalc.db --status arithmetic_error
  uncalc history --db ./uncalc.db --code DIVISION_BY_ZERO --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "show the lines of one session")
	cmd.Flags().Int64Var(&opts.Seq, "seq", 0, "show one evaluation of --session")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only evaluations with this status (ok|syntax_error|arithmetic_error)")
	cmd.Flags().StringVar(&opts.ErrorCode, "code", "", "only evaluations with this error code")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "only evaluations of this program hash")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many evaluations")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	if opts.Seq != 0 && opts.SessionID == "" {
		return NewExitError(ExitCommandError, "--seq requires --session")
	}

	filter := store.Filter{
		Status:      ir.EvaluationStatus(opts.Status),
		ErrorCode:   opts.ErrorCode,
		ProgramHash: opts.Hash,
		Limit:       opts.Limit,
	}
	if err := filter.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}
	searching := !filter.IsZero()
	if searching && opts.Seq != 0 {
		return NewExitError(ExitCommandError, "--seq cannot be combined with filters")
	}
	filter.SessionID = opts.SessionID

	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case searching:
		evals, err := st.Query(ctx, filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to search history", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(HistoryResult{SessionID: opts.SessionID, Evaluations: evals})
		}
		writeMatches(formatter, evals)
		return nil

	case opts.SessionID == "":
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(HistoryResult{Sessions: sessions})
		}
		writeSessions(formatter.Writer, sessions)
		return nil

	case opts.Seq != 0:
		ev, err := st.ReadEvaluation(ctx, opts.SessionID, opts.Seq)
		if errors.Is(err, sql.ErrNoRows) {
			msg := fmt.Sprintf("no evaluation %d in session %s", opts.Seq, opts.SessionID)
			_ = formatter.Error(ErrCodeNotFound, msg, nil)
			return NewExitError(ExitFailure, msg)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read evaluation", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(ev)
		}
		writeEvaluation(formatter, ev)
		return nil

	default:
		evals, err := st.ReadSession(ctx, opts.SessionID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		if len(evals) == 0 {
			msg := fmt.Sprintf("session %s not found", opts.SessionID)
			_ = formatter.Error(ErrCodeNotFound, msg, nil)
			return NewExitError(ExitFailure, msg)
		}
		if formatter.Format == "json" {
			return formatter.Success(HistoryResult{SessionID: opts.SessionID, Evaluations: evals})
		}
		writeSession(formatter, evals)
		return nil
	}
}

// openHistory opens an existing history database. Unlike store.Open it
// never creates one.
func openHistory(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func writeSessions(w io.Writer, sessions []store.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tLINES\tSEQ")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%d\t%d-%d\n", s.SessionID, s.Evaluations, s.FirstSeq, s.LastSeq)
	}
	tw.Flush()
}

func writeSession(f *OutputFormatter, evals []ir.Evaluation) {
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tEXPR\tRESULT")
	for _, ev := range evals {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", ev.Seq, ev.Source, resultText(ev))
	}
	tw.Flush()
}

func writeMatches(f *OutputFormatter, evals []ir.Evaluation) {
	if len(evals) == 0 {
		fmt.Fprintln(f.Writer, "No evaluations found.")
		return
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSESSION\tEXPR\tRESULT")
	for _, ev := range evals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ev.Seq, ev.SessionID, ev.Source, resultText(ev))
	}
	tw.Flush()
}

func writeEvaluation(f *OutputFormatter, ev ir.Evaluation) {
	w := f.Writer
	fmt.Fprintf(w, "session: %s\n", ev.SessionID)
	fmt.Fprintf(w, "seq:     %d\n", ev.Seq)
	fmt.Fprintf(w, "expr:    %s\n", ev.Source)
	if ev.Program != nil {
		fmt.Fprintf(w, "postfix: %s\n", ev.Program.String())
		fmt.Fprintf(w, "hash:    %s\n", ev.ProgramHash)
	}
	fmt.Fprintf(w, "status:  %s\n", ev.Status)
	fmt.Fprintf(w, "result:  %s\n", resultText(ev))
	fmt.Fprintf(w, "engine:  %s (ir %s)\n", ev.EngineVersion, ev.IRVersion)
}

// resultText renders a recorded outcome the way the REPL printed it.
func resultText(ev ir.Evaluation) string {
	switch ev.Status {
	case ir.StatusOK:
		return fmt.Sprintf("%d", ev.Value)
	case ir.StatusSyntaxError:
		return "UnCalc: " + ev.ErrorMessage
	default:
		return ev.ErrorMessage
	}
}
