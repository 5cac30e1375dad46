package compiler

import (
	"github.com/roach88/uncalc/internal/ir"
)

// Compile parses an infix expression into a postfix program.
// Returns a *SyntaxError on the first malformed token.
//
//	p, err := Compile("2+3*4")
//	p.String() // "2 3 4 * +"
func Compile(text string) (*ir.Program, error) {
	parser := NewParser()
	for _, r := range text {
		if err := parser.Feed(r); err != nil {
			return nil, err
		}
	}
	return parser.Finish()
}

// MustCompile is like Compile but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCompile(text string) *ir.Program {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}
