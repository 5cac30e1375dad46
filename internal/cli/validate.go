package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Eval bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Postfix string                     `json:"postfix,omitempty"`
	Value   *int64                     `json:"value,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <program.json>",
		Short: "Validate a compiled program",
		Long: `Validate a program file written by 'uncalc compile --output'.

Checks that every instruction is known, every literal is in range, no
operator pops from a short stack, and the program leaves exactly one value.
With --eval a valid program is also evaluated.

Exit codes:
  0 - Program is valid (and evaluated, with --eval)
  1 - Validation or arithmetic failure
  2 - Command error (file not found, malformed JSON, etc.)

Examples:
  uncalc validate program.json
  uncalc validate program.json --eval`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Eval, "eval", false, "evaluate the program if it is valid")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	program, err := loadProgramFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeProgramFile, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load program", err)
	}
	formatter.VerboseLog("Loaded %d instruction(s) from %s", program.Len(), path)

	if errs := compiler.Validate(program); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	result := ValidationResult{Valid: true, Postfix: program.String()}

	if opts.Eval {
		value, err := engine.Evaluate(program)
		if err != nil {
			details := map[string]any{"postfix": result.Postfix}
			if ae, ok := engine.AsArithmeticError(err); ok {
				details["code"] = string(ae.Code)
				details["instruction"] = ae.Index
			}
			_ = formatter.Error(ErrCodeArithmetic, err.Error(), details)
			return NewExitError(ExitFailure, err.Error())
		}
		result.Value = &value
	}

	return outputValidateSuccess(formatter, result)
}

// loadProgramFile decodes a program written by the compile command.
func loadProgramFile(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	var p ir.Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &p, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s Program valid: %s\n", formatter.Green("✓"), result.Postfix)
	if result.Value != nil {
		fmt.Fprintln(formatter.Writer, *result.Value)
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    ErrCodeInvalidProgram,
				Message: errs[0].Message,
			},
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n", formatter.Red("✗"))
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n", err.Field)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
