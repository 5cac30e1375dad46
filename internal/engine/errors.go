package engine

import (
	"errors"
	"fmt"
)

// ArithmeticError represents a failure while evaluating a program.
// It is never produced by the compiler.
type ArithmeticError struct {
	// Code identifies the error category.
	Code ArithmeticErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the position of the failing instruction in the program.
	Index int

	// Token is the failing instruction as rendered by ir.Format.
	Token string
}

// ArithmeticErrorCode categorizes arithmetic errors.
type ArithmeticErrorCode string

const (
	// ErrCodeDivisionByZero indicates '/' with a zero divisor.
	ErrCodeDivisionByZero ArithmeticErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeModuloByZero indicates '%' with a zero divisor.
	ErrCodeModuloByZero ArithmeticErrorCode = "MODULO_BY_ZERO"

	// ErrCodeOverflow indicates a result outside the int64 range.
	ErrCodeOverflow ArithmeticErrorCode = "OVERFLOW"
)

// Error implements the error interface.
func (e *ArithmeticError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (instruction %d %q)", e.Code, e.Message, e.Index, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDivisionByZero returns true for both '/' and '%' by zero.
// Uses errors.As to handle wrapped errors.
func IsDivisionByZero(err error) bool {
	var ae *ArithmeticError
	if errors.As(err, &ae) {
		return ae.Code == ErrCodeDivisionByZero || ae.Code == ErrCodeModuloByZero
	}
	return false
}

// IsOverflow returns true if the error is an integer overflow.
func IsOverflow(err error) bool {
	var ae *ArithmeticError
	if errors.As(err, &ae) {
		return ae.Code == ErrCodeOverflow
	}
	return false
}

// AsArithmeticError extracts an ArithmeticError from err.
func AsArithmeticError(err error) (*ArithmeticError, bool) {
	var ae *ArithmeticError
	ok := errors.As(err, &ae)
	return ae, ok
}

var arithmeticMessages = map[ArithmeticErrorCode]string{
	ErrCodeDivisionByZero: "divided by zero",
	ErrCodeModuloByZero:   "modulo by zero",
	ErrCodeOverflow:       "integer overflow",
}
