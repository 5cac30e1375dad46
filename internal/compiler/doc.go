// Package compiler turns infix arithmetic text into a postfix ir.Program.
//
// Compilation is a single streaming pass (shunting-yard). The parser is fed
// one rune at a time, keeps an operator stack and a per-parenthesis operand
// counter, and emits instructions as soon as their operands are known. The
// operand counter is the only bookkeeping that guarantees the program can be
// evaluated without stack underflow; the engine does not re-check it.
//
// Grammar:
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/'|'%') factor)*
//	factor := power ('^' power)*
//	power  := ('-')* atom
//	atom   := NUMBER | '(' expr ')'
//	NUMBER := digit+            (value <= 99,999,999)
//
// Whitespace between tokens is ignored. '^' is left-associative.
package compiler
