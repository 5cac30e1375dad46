package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Postfix bool
	Trace   bool

	// SessionIDs allows overriding the session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionIDs engine.SessionIDGenerator
}

// EvalResult is the outcome of one expression.
type EvalResult struct {
	Expr         string        `json:"expr"`
	Seq          int64         `json:"seq"`
	Status       string        `json:"status"`
	Value        *int64        `json:"value,omitempty"`
	Postfix      string        `json:"postfix,omitempty"`
	ProgramHash  string        `json:"program_hash,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Column       int           `json:"column,omitempty"`
	Instruction  *int          `json:"instruction,omitempty"`
	Steps        []engine.Step `json:"steps,omitempty"`
}

// EvalReport holds the results of an eval invocation.
type EvalReport struct {
	SessionID string       `json:"session_id"`
	Results   []EvalResult `json:"results"`
	Failed    int          `json:"failed"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	return newEvalCommand(&EvalOptions{RootOptions: rootOpts})
}

func newEvalCommand(opts *EvalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expr>...",
		Short: "Evaluate expressions",
		Long: `Evaluate one or more expressions and print their values.

Each argument is compiled and evaluated independently, in order, within one
session. A failing expression does not stop the ones after it.

Exit codes:
  0 - All expressions evaluated
  1 - At least one expression had a syntax or arithmetic error

Examples:
  uncalc eval "2+3*4"
  uncalc eval "2^10" "7/0" --postfix
  uncalc eval "(1+2)*3" --trace
  uncalc eval "-(3-5)^2" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Postfix, "postfix", false, "print the compiled postfix program")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print the value stack after every instruction")

	return cmd
}

func runEval(opts *EvalOptions, exprs []string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	ids := opts.SessionIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	session := engine.NewSession(ids, engine.WithLogger(opts.logger(cmd.ErrOrStderr())))

	report := EvalReport{
		SessionID: session.ID(),
		Results:   make([]EvalResult, 0, len(exprs)),
	}

	w := cmd.OutOrStdout()
	for _, expr := range exprs {
		out, err := session.Eval(ctx, expr)
		if err != nil {
			return WrapExitError(ExitCommandError, "evaluation failed", err)
		}

		result := newEvalResult(out)
		if opts.Trace && out.Program != nil {
			// The error, if any, is already in the outcome.
			result.Steps, _, _ = engine.Trace(out.Program)
		}
		if out.Status != ir.StatusOK {
			report.Failed++
		}
		report.Results = append(report.Results, result)

		if opts.Format != "json" {
			writeSteps(w, result.Steps)
			writeOutcome(w, f, out, opts.Postfix)
		}
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: report}
		if report.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    failedCode(report.Results),
				Message: fmt.Sprintf("%d expression(s) failed", report.Failed),
			}
		}
		if err := f.JSON(resp); err != nil {
			return err
		}
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d expression(s) failed", report.Failed))
	}
	return nil
}

func newEvalResult(out engine.Outcome) EvalResult {
	r := EvalResult{
		Expr:         out.Source,
		Seq:          out.Seq,
		Status:       string(out.Status),
		ProgramHash:  out.ProgramHash,
		ErrorCode:    out.ErrorCode,
		ErrorMessage: out.ErrorMessage,
	}
	if out.Program != nil {
		r.Postfix = out.Program.String()
	}
	if out.Status == ir.StatusOK {
		v := out.Value
		r.Value = &v
	}
	if se, ok := compiler.AsSyntaxError(out.Err); ok {
		r.Column = se.Column
	}
	if ae, ok := engine.AsArithmeticError(out.Err); ok {
		i := ae.Index
		r.Instruction = &i
	}
	return r
}

// failedCode picks the CLI code of the first failed result.
func failedCode(results []EvalResult) string {
	for _, r := range results {
		switch r.Status {
		case string(ir.StatusSyntaxError):
			return ErrCodeSyntax
		case string(ir.StatusArithmeticError):
			return ErrCodeArithmetic
		}
	}
	return ""
}

// writeOutcome prints one outcome the way the REPL shows it: the value, or
// "UnCalc: <message>" for syntax errors, or the bare message for arithmetic
// errors.
func writeOutcome(w io.Writer, f *OutputFormatter, out engine.Outcome, postfix bool) {
	if postfix && out.Program != nil {
		fmt.Fprintln(w, f.Faint(out.Program.String()))
	}

	switch out.Status {
	case ir.StatusOK:
		fmt.Fprintln(w, out.Value)
	case ir.StatusSyntaxError:
		fmt.Fprintln(w, f.Red("UnCalc: "+out.ErrorMessage))
	default:
		fmt.Fprintln(w, f.Red(out.ErrorMessage))
	}
}

func writeSteps(w io.Writer, steps []engine.Step) {
	for _, s := range steps {
		fmt.Fprintf(w, "  %3d  %-9s %v\n", s.Index, s.Token, s.Stack)
	}
}
