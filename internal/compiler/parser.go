package compiler

import (
	"errors"
	"strings"
	"unicode"

	"github.com/roach88/uncalc/internal/ir"
)

// stackEntry is either an open-paren marker or a pending operator.
type stackEntry struct {
	paren bool

	// saved is the enclosing operand counter, restored at ')'.
	saved int

	op ir.OperatorInfo
}

// Parser compiles an expression incrementally.
//
// Call Feed for every rune of the input, then Finish. The first error
// aborts compilation; every later call returns the same error.
//
// Parser state is owned by a single compilation and is not safe for
// concurrent use.
type Parser struct {
	out   []ir.Instruction
	stack []stackEntry

	// operands counts values available at the current parenthesis level.
	operands int

	// afterValue is true when the last token produced a value
	// (a number or a closing parenthesis).
	afterValue bool

	digits      []byte
	digitsStart int

	column int
	source strings.Builder

	err      error
	finished bool
}

// NewParser creates a parser for a single expression.
func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one rune of input.
func (p *Parser) Feed(r rune) error {
	if p.finished {
		return ErrParserFinished
	}
	if p.err != nil {
		return p.err
	}

	p.column++
	p.source.WriteRune(r)

	if err := p.feed(r); err != nil {
		p.err = err
		return err
	}
	return nil
}

func (p *Parser) feed(r rune) error {
	if isDigit(r) {
		if len(p.digits) == 0 {
			p.digitsStart = p.column
		}
		p.digits = append(p.digits, byte(r))
		return nil
	}

	// A number ends at the first non-digit.
	if err := p.flushOperand(); err != nil {
		return err
	}

	switch {
	case unicode.IsSpace(r):
		return nil
	case r == ')':
		if err := p.closeParen(false); err != nil {
			return err
		}
		p.afterValue = true
		return nil
	case r == '(':
		return p.openParen()
	default:
		return p.operator(r)
	}
}

// Finish flushes pending input and returns the compiled program.
func (p *Parser) Finish() (*ir.Program, error) {
	if p.finished {
		return nil, ErrParserFinished
	}
	if p.err != nil {
		return nil, p.err
	}
	p.finished = true

	if err := p.flushOperand(); err != nil {
		p.err = err
		return nil, err
	}

	// Drain the stack as if closing an implicit outermost parenthesis.
	if err := p.closeParen(true); err != nil {
		p.err = err
		return nil, err
	}

	if len(p.out) == 0 {
		p.err = newSyntaxError(ErrCodeEmptyExpression, 0)
		return nil, p.err
	}

	return &ir.Program{
		Source:       p.source.String(),
		Instructions: p.out,
	}, nil
}

// flushOperand turns the digit buffer into a literal.
func (p *Parser) flushOperand() error {
	if len(p.digits) == 0 {
		return nil
	}

	if p.afterValue {
		return newSyntaxError(ErrCodeMissingOperator, p.digitsStart)
	}

	lit, err := ir.NewLiteral(string(p.digits))
	if err != nil {
		if errors.Is(err, ir.ErrOperandTooBig) {
			return newSyntaxError(ErrCodeOperandTooBig, p.digitsStart)
		}
		return err
	}

	p.out = append(p.out, lit)
	p.digits = p.digits[:0]
	p.operands++
	p.afterValue = true
	return nil
}

func (p *Parser) openParen() error {
	if p.afterValue {
		return newSyntaxError(ErrCodeMissingOperatorBeforeParen, p.column)
	}

	p.stack = append(p.stack, stackEntry{paren: true, saved: p.operands})
	p.operands = 0
	p.afterValue = false
	return nil
}

// closeParen emits operators down to the nearest '('.
// With final set it drains the whole stack for Finish, where any
// remaining '(' is unbalanced.
func (p *Parser) closeParen(final bool) error {
	column := p.column
	if final {
		column = 0
	}

	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		if top.paren {
			if final {
				return newSyntaxError(ErrCodeMissingCloseParen, 0)
			}
			if p.operands < 1 {
				return newSyntaxError(ErrCodeMissingOperandBeforeParen, column)
			}
			// The group counts as one value at the enclosing level.
			p.operands = top.saved + 1
			return nil
		}

		if err := p.emit(top.op, column); err != nil {
			return err
		}
	}

	if !final {
		return newSyntaxError(ErrCodeMissingOpenParen, column)
	}
	return nil
}

func (p *Parser) operator(r rune) error {
	// '#' is internal; it is not accepted from input.
	if r == ir.SymbolUnaryMinus {
		return newSyntaxError(ErrCodeUnknownOperator, p.column)
	}

	prefix := false
	if r == '-' && !p.afterValue {
		r = ir.SymbolUnaryMinus
		prefix = true
	}

	info, ok := ir.LookupOperator(r)
	if !ok {
		return newSyntaxError(ErrCodeUnknownOperator, p.column)
	}
	p.afterValue = false

	// A prefix operator follows another operator or '(' whose operand
	// is still missing, so nothing on the stack is complete yet.
	for !prefix && len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if top.paren || top.op.Precedence < info.Precedence {
			break
		}
		p.stack = p.stack[:len(p.stack)-1]
		if err := p.emit(top.op, p.column); err != nil {
			return err
		}
	}

	p.stack = append(p.stack, stackEntry{op: info})
	return nil
}

// emit appends an operator and charges its operands against the counter.
// An operator of arity n consumes n values and produces one.
func (p *Parser) emit(op ir.OperatorInfo, column int) error {
	p.operands -= op.Arity - 1
	if p.operands <= 0 {
		return newSyntaxError(ErrCodeMissingOperand, column)
	}
	p.out = append(p.out, ir.Op(op.Kind))
	return nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
