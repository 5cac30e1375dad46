package ir

import (
	"slices"
	"strings"
)

// Program is a compiled expression: instructions in evaluation order.
//
// A Program produced by the compiler satisfies the stack-safety invariant:
// evaluating it left to right against an empty stack never underflows and
// leaves exactly one value. Programs decoded from JSON should be checked
// with compiler.Validate before evaluation.
type Program struct {
	Source       string        `json:"source,omitempty"`
	Instructions []Instruction `json:"instructions"`
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Instructions)
}

// Equal reports whether two programs have the same instruction sequence.
// Source text is not compared.
func (p *Program) Equal(other *Program) bool {
	if p == nil || other == nil {
		return p == other
	}
	return slices.Equal(p.Instructions, other.Instructions)
}

// String renders the program in postfix notation.
func (p *Program) String() string {
	return Format(p)
}

// Format renders a program as space-separated postfix tokens.
//
//	Format(Compile("2+3*4")) == "2 3 4 * +"
//	Format(Compile("-5"))    == "5 #"
func Format(p *Program) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	for i, in := range p.Instructions {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(in.Token())
	}
	return sb.String()
}
