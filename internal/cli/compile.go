package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds a compiled expression.
type CompilationResult struct {
	Source      string      `json:"source"`
	Postfix     string      `json:"postfix"`
	ProgramHash string      `json:"program_hash"`
	Program     *ir.Program `json:"program"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <expr>",
		Short: "Compile an expression to a postfix program",
		Long: `Compile an expression to its postfix program without evaluating it.

The program is printed in postfix notation, with unary minus shown as '#'.
With --output the program is written as canonical JSON, which can be
checked with 'uncalc validate'.

Exit codes:
  0 - Expression compiled
  1 - Syntax error
  2 - Command error (output file not writable, etc.)

Examples:
  uncalc compile "2+3*4"
  uncalc compile "-(1+2)^2" -o program.json
  uncalc compile "(1+2" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the program as canonical JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, expr string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	program, err := compiler.Compile(expr)
	if err != nil {
		return outputCompileError(formatter, expr, err)
	}
	formatter.VerboseLog("Compiled %q to %d instruction(s)", expr, program.Len())

	hash, err := ir.ProgramHash(program)
	if err != nil {
		return WrapExitError(ExitCommandError, "hashing program", err)
	}

	result := &CompilationResult{
		Source:      program.Source,
		Postfix:     program.String(),
		ProgramHash: hash,
		Program:     program,
	}

	if opts.Output != "" {
		if err := writeProgramToFile(program, opts.Output); err != nil {
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		formatter.VerboseLog("Wrote program to %s", opts.Output)
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs a successful compilation.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Compiled %q\n", formatter.Green("✓"), result.Source)
	fmt.Fprintf(w, "  postfix:      %s\n", result.Postfix)
	fmt.Fprintf(w, "  instructions: %d\n", result.Program.Len())
	fmt.Fprintf(w, "  hash:         %s\n", result.ProgramHash)

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote program to %s\n", outputFile)
	}
	return nil
}

// outputCompileError reports a syntax error. Syntax errors are input
// failures (exit code 1).
func outputCompileError(formatter *OutputFormatter, expr string, err error) error {
	se, ok := compiler.AsSyntaxError(err)
	if !ok {
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeSyntax, se.Message, map[string]any{
			"expr":   expr,
			"code":   string(se.Code),
			"column": se.Column,
		})
		return NewExitError(ExitFailure, se.Error())
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Compilation failed\n", formatter.Red("✗"))
	if se.Column > 0 {
		fmt.Fprintf(w, "  %s\n", expr)
		fmt.Fprintf(w, "  %*s\n", se.Column, "^")
	}
	fmt.Fprintf(w, "  %s: %s (%s)\n", ErrCodeSyntax, se.Message, se.Code)

	return NewExitError(ExitFailure, se.Error())
}

// writeProgramToFile writes the program in canonical JSON.
func writeProgramToFile(p *ir.Program, filename string) error {
	data, err := ir.MarshalCanonical(p)
	if err != nil {
		return fmt.Errorf("marshaling program: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
