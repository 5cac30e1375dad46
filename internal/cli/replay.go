package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []*engine.ReplayReport `json:"sessions"`
	TotalSessions    int                    `json:"total_sessions"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded sessions and verify determinism",
		Long: `Replay the evaluation history to verify determinism.

Every recorded line is compiled again from its source and its stored
program is validated and evaluated again. The status, program hash, value
and error code must all match what was recorded.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (differences detected) or session not found
  2 - Command error (database not found, etc.)

Examples:
  uncalc replay --db ./uncalc.db
  uncalc replay --db ./uncalc.db --session 0192f3c4-...
  uncalc replay --db ./uncalc.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	reports, err := replayReports(ctx, st, opts.SessionID, logger)
	if err != nil {
		return err
	}
	if reports == nil {
		msg := fmt.Sprintf("session %s not found", opts.SessionID)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	result := ReplayResult{
		Sessions:         reports,
		TotalSessions:    len(reports),
		AllDeterministic: true,
	}
	for _, r := range reports {
		formatter.VerboseLog("Replayed session %s: %d evaluation(s)", r.SessionID, r.Evaluations)
		if !r.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayReports replays one session or all of them. It returns nil reports
// when a requested session has no records.
func replayReports(ctx context.Context, st *store.Store, sessionID string, logger *slog.Logger) ([]*engine.ReplayReport, error) {
	if sessionID == "" {
		reports, err := st.ReplayAll(ctx, logger)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to replay history", err)
		}
		return reports, nil
	}

	report, err := st.Replay(ctx, sessionID, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", sessionID), err)
	}
	if report.Evaluations == 0 {
		return nil, nil
	}
	return []*engine.ReplayReport{report}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeNonDeterministic,
			Message: "determinism verification failed",
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, r := range result.Sessions {
		status := formatter.Green("✓")
		if !r.Deterministic {
			status = formatter.Red("✗")
		}

		fmt.Fprintf(w, "%s Session: %s\n", status, r.SessionID)
		fmt.Fprintf(w, "  Evaluations: %d\n", r.Evaluations)

		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "  seq %d %q: %s recorded %q, replayed %q\n",
				m.Seq, m.Source, m.Field, m.Recorded, m.Replayed)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintf(w, "%s All sessions verified deterministic\n", formatter.Green("✓"))
		return nil
	}

	fmt.Fprintf(w, "%s Determinism verification failed\n", formatter.Red("✗"))
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
