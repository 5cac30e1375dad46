// Package engine evaluates compiled postfix programs.
//
// Evaluate runs a program against a fresh value stack. It trusts the
// stack-safety invariant established by the compiler and does not re-check
// operand counts; programs from untrusted sources must pass
// compiler.Validate first.
//
// Session wraps compile and evaluate for interactive use: every line gets a
// sequence number from a logical clock, is logged, and is optionally handed
// to a Recorder (the history store).
//
// ARITHMETIC:
//
// Values are int64. Division truncates toward zero and the remainder takes
// the sign of the dividend. A zero divisor fails with DIVISION_BY_ZERO or
// MODULO_BY_ZERO. Any result outside int64 fails with OVERFLOW instead of
// wrapping. A negative exponent yields 0, not a fraction.
package engine
