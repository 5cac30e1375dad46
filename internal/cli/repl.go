package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/store"
)

// REPLOptions holds flags for the repl command.
type REPLOptions struct {
	*RootOptions
	Database string
	Postfix  bool

	// SessionIDs allows overriding the session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionIDs engine.SessionIDGenerator

	// IsTerminal decides whether the prompt is shown (for testing).
	// If nil, the prompt is shown only when stdin is a terminal.
	IsTerminal func(io.Reader) bool
}

// NewREPLCommand creates the repl command.
func NewREPLCommand(rootOpts *RootOptions) *cobra.Command {
	return newREPLCommand(&REPLOptions{RootOptions: rootOpts})
}

func newREPLCommand(opts *REPLOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive calculator",
		Long: `Read expressions line by line and print each result.

Syntax errors are printed as "UnCalc: <message>", arithmetic errors as the
bare message. Every output is followed by a blank line. A bad line never
ends the session; it runs until end of input.

With --db (or history.db in the config file) every line is recorded to a
SQLite history that 'uncalc history' and 'uncalc replay' can read.

Examples:
  uncalc repl
  uncalc repl --postfix
  uncalc repl --db ./uncalc.db
  echo "2+3*4" | uncalc repl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record evaluations to this SQLite database")
	cmd.Flags().BoolVar(&opts.Postfix, "postfix", false, "print the compiled postfix program before each result")

	return cmd
}

func runREPL(opts *REPLOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := opts.config()
	logger := opts.logger(cmd.ErrOrStderr())
	formatter := opts.formatter(cmd)
	formatter.Format = "text"

	ids := opts.SessionIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	sessionOpts := []engine.SessionOption{engine.WithLogger(logger)}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.HistoryDB
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		// Continue the numbering of an existing history.
		last, err := st.LastSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read history", err)
		}
		sessionOpts = append(sessionOpts,
			engine.WithRecorder(st),
			engine.WithClock(engine.NewClockAt(last)))
	}

	session := engine.NewSession(ids, sessionOpts...)
	logger.Info("session started", "session_id", session.ID(), "history", dbPath)

	interactive := opts.IsTerminal
	if interactive == nil {
		interactive = func(r io.Reader) bool { return isTerminal(r) }
	}

	in := cmd.InOrStdin()
	loop := &replLoop{
		session:     session,
		formatter:   formatter,
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
		prompt:      cfg.Prompt,
		interactive: interactive(in),
		postfix:     opts.Postfix || cfg.ShowPostfix,
	}

	lines, err := loop.run(ctx, in)
	logger.Info("session ended", "session_id", session.ID(), "lines", lines)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading input", err)
	}
	return nil
}

type replLoop struct {
	session     *engine.Session
	formatter   *OutputFormatter
	out         io.Writer
	errOut      io.Writer
	prompt      string
	interactive bool
	postfix     bool
}

// run evaluates lines from in until EOF and returns the number of lines read.
func (l *replLoop) run(ctx context.Context, in io.Reader) (int, error) {
	reader := bufio.NewReader(in)
	lines := 0

	for {
		if err := ctx.Err(); err != nil {
			return lines, nil
		}
		if l.interactive {
			fmt.Fprint(l.out, l.prompt)
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return lines, err
		}
		// The last line may end without a newline.
		if err != nil && line == "" {
			if l.interactive {
				fmt.Fprintln(l.out)
			}
			return lines, nil
		}

		lines++
		l.eval(ctx, strings.TrimRight(line, "\r\n"))

		if err != nil {
			return lines, nil
		}
	}
}

func (l *replLoop) eval(ctx context.Context, line string) {
	out, err := l.session.Eval(ctx, line)
	if err != nil {
		// The result is still shown; only the history write failed.
		fmt.Fprintf(l.errOut, "%s: %v\n", l.formatter.Red("history"), err)
	}

	writeOutcome(l.out, l.formatter, out, l.postfix)
	fmt.Fprintln(l.out)
}

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
