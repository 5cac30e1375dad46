package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/uncalc/internal/ir"
)

// Step records the value stack after one instruction.
type Step struct {
	Index int     `json:"index"`
	Token string  `json:"token"`
	Stack []int64 `json:"stack"`
}

// Evaluate executes a program and returns its single result.
// Returns an *ArithmeticError on the first failing operator.
func Evaluate(p *ir.Program) (int64, error) {
	return run(p, nil)
}

// Trace is like Evaluate but also returns the stack after every
// instruction that completed. On error, the steps up to the failing
// instruction are returned with the error.
func Trace(p *ir.Program) ([]Step, int64, error) {
	var steps []Step
	v, err := run(p, func(i int, in ir.Instruction, stack []int64) {
		steps = append(steps, Step{
			Index: i,
			Token: in.Token(),
			Stack: slices.Clone(stack),
		})
	})
	return steps, v, err
}

func run(p *ir.Program, observe func(int, ir.Instruction, []int64)) (int64, error) {
	if p == nil || len(p.Instructions) == 0 {
		return 0, fmt.Errorf("evaluate: empty program")
	}

	stack := make([]int64, 0, len(p.Instructions))
	var args [2]int64

	for i, in := range p.Instructions {
		if in.Kind == ir.KindLiteral {
			stack = append(stack, in.Value)
			if observe != nil {
				observe(i, in, stack)
			}
			continue
		}

		info, ok := ir.KindInfo(in.Kind)
		apply := lookupApply(in.Kind)
		if !ok || apply == nil {
			return 0, fmt.Errorf("evaluate: unknown instruction kind %d at %d", uint8(in.Kind), i)
		}

		// Operands were pushed left to right; the right operand is on top.
		n := info.Arity
		base := len(stack) - n
		copy(args[:n], stack[base:])
		stack = stack[:base]

		v, code := apply(args[:n])
		if code != "" {
			return 0, &ArithmeticError{
				Code:    code,
				Message: arithmeticMessages[code],
				Index:   i,
				Token:   in.Token(),
			}
		}

		stack = append(stack, v)
		if observe != nil {
			observe(i, in, stack)
		}
	}

	return stack[len(stack)-1], nil
}
