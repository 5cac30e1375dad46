package compiler

import (
	"errors"
	"fmt"
)

// SyntaxErrorCode categorizes compile errors.
type SyntaxErrorCode string

const (
	// ErrCodeOperandTooBig indicates a literal above ir.MaxOperand.
	ErrCodeOperandTooBig SyntaxErrorCode = "OPERAND_TOO_BIG"

	// ErrCodeMissingOperator indicates two values with nothing between them.
	ErrCodeMissingOperator SyntaxErrorCode = "MISSING_OPERATOR"

	// ErrCodeMissingOperand indicates an operator without enough operands.
	ErrCodeMissingOperand SyntaxErrorCode = "MISSING_OPERAND"

	// ErrCodeMissingOperatorBeforeParen indicates a value directly before '('.
	ErrCodeMissingOperatorBeforeParen SyntaxErrorCode = "MISSING_OPERATOR_BEFORE_PAREN"

	// ErrCodeMissingOperandBeforeParen indicates an empty group "()".
	ErrCodeMissingOperandBeforeParen SyntaxErrorCode = "MISSING_OPERAND_BEFORE_PAREN"

	// ErrCodeMissingOpenParen indicates a ')' without a matching '('.
	ErrCodeMissingOpenParen SyntaxErrorCode = "MISSING_OPEN_PAREN"

	// ErrCodeMissingCloseParen indicates a '(' that is never closed.
	ErrCodeMissingCloseParen SyntaxErrorCode = "MISSING_CLOSE_PAREN"

	// ErrCodeUnknownOperator indicates a character that is not part of the grammar.
	ErrCodeUnknownOperator SyntaxErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeEmptyExpression indicates input with no tokens.
	ErrCodeEmptyExpression SyntaxErrorCode = "EMPTY_EXPRESSION"
)

// messages are the human-readable texts shown by the REPL.
var messages = map[SyntaxErrorCode]string{
	ErrCodeOperandTooBig:              "operand too big",
	ErrCodeMissingOperator:            "Missing operator",
	ErrCodeMissingOperand:             "Missing operand",
	ErrCodeMissingOperatorBeforeParen: "Missing operator before '('",
	ErrCodeMissingOperandBeforeParen:  "Missing operand before ')'",
	ErrCodeMissingOpenParen:           "Missing '('",
	ErrCodeMissingCloseParen:          "Missing ')'",
	ErrCodeUnknownOperator:            "Unknown operator",
	ErrCodeEmptyExpression:            "empty expression",
}

// SyntaxError is returned by Compile and the Parser.
// Callers distinguish kinds by Code, never by Message.
type SyntaxError struct {
	// Code identifies the error category.
	Code SyntaxErrorCode

	// Message is a human-readable description.
	Message string

	// Column is the 1-based rune position that triggered the error.
	// Zero when the error was detected at end of input.
	Column int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s: %s (column %d)", e.Code, e.Message, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newSyntaxError(code SyntaxErrorCode, column int) *SyntaxError {
	return &SyntaxError{Code: code, Message: messages[code], Column: column}
}

// IsSyntaxError reports whether err is a SyntaxError with the given code.
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error, code SyntaxErrorCode) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// AsSyntaxError extracts a SyntaxError from err.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	ok := errors.As(err, &se)
	return se, ok
}

// ErrParserFinished is returned when a Parser is used after Finish.
var ErrParserFinished = errors.New("parser already finished")
