package compiler

import (
	"fmt"

	"github.com/roach88/uncalc/internal/ir"
)

// Validation error codes (E120-E129)
const (
	ErrUnknownInstruction = "E120" // instruction kind not in the registry
	ErrLiteralRange       = "E121" // literal outside 0..ir.MaxOperand
	ErrStackUnderflow     = "E122" // operator would pop from a short stack
	ErrUnbalancedProgram  = "E123" // program leaves more than one value
	ErrEmptyProgram       = "E124" // program has no instructions
)

// ValidationError represents a structural problem in a program.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the stack-safety invariant of a program.
// Returns all errors found (does not fail-fast).
//
// Programs returned by Compile always validate. Validate exists for
// programs read back from files or the history store.
func Validate(p *ir.Program) []ValidationError {
	if p == nil || len(p.Instructions) == 0 {
		return []ValidationError{{
			Field:   "instructions",
			Message: "program has no instructions",
			Code:    ErrEmptyProgram,
		}}
	}

	var errs []ValidationError
	depth := 0

	for i, in := range p.Instructions {
		field := fmt.Sprintf("instructions[%d]", i)

		if in.Kind == ir.KindLiteral {
			if in.Value < 0 || in.Value > ir.MaxOperand {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("literal %d outside 0..%d", in.Value, ir.MaxOperand),
					Code:    ErrLiteralRange,
				})
			}
			depth++
			continue
		}

		info, ok := ir.KindInfo(in.Kind)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown instruction kind %d", uint8(in.Kind)),
				Code:    ErrUnknownInstruction,
			})
			continue
		}

		if depth < info.Arity {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q needs %d operand(s), stack has %d", info.Symbol, info.Arity, depth),
				Code:    ErrStackUnderflow,
			})
			// Keep going as if the missing operands were present.
			depth = info.Arity
		}
		depth -= info.Arity - 1
	}

	if depth != 1 {
		errs = append(errs, ValidationError{
			Field:   "instructions",
			Message: fmt.Sprintf("program leaves %d values on the stack, expected 1", depth),
			Code:    ErrUnbalancedProgram,
		})
	}

	return errs
}
