package ir

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxOperand is the largest literal accepted in an expression.
// Intermediate results are bounded by int64, not by MaxOperand.
const MaxOperand int64 = 99_999_999

// ErrOperandTooBig is returned when a literal exceeds MaxOperand.
var ErrOperandTooBig = errors.New("operand too big")

// Kind tags a postfix instruction.
type Kind uint8

const (
	// KindLiteral pushes Instruction.Value.
	KindLiteral Kind = iota
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMod
	KindPow
	// KindNeg is unary minus. It is never typed directly; the compiler
	// produces it for a '-' that does not follow a value.
	KindNeg
)

// kindNames are the JSON names of each kind.
var kindNames = [...]string{
	KindLiteral: "lit",
	KindAdd:     "add",
	KindSub:     "sub",
	KindMul:     "mul",
	KindDiv:     "div",
	KindMod:     "mod",
	KindPow:     "pow",
	KindNeg:     "neg",
}

// String returns the JSON name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// IsOperator reports whether k consumes operands.
func (k Kind) IsOperator() bool {
	return k != KindLiteral && k.Valid()
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown instruction kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown instruction kind %q", text)
	}
	*k = kind
	return nil
}

// ParseKind returns the kind with the given JSON name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Instruction is a single postfix step.
// Value is only meaningful for KindLiteral.
type Instruction struct {
	Kind  Kind  `json:"op"`
	Value int64 `json:"value,omitempty"`
}

// Literal returns an instruction that pushes v.
func Literal(v int64) Instruction {
	return Instruction{Kind: KindLiteral, Value: v}
}

// Op returns an operator instruction of the given kind.
func Op(kind Kind) Instruction {
	return Instruction{Kind: kind}
}

// NewLiteral converts a run of ASCII digits into a literal instruction.
//
// The bound is checked before every digit is accumulated and once more at
// the end, so arbitrarily long inputs are rejected without overflowing.
func NewLiteral(digits string) (Instruction, error) {
	if digits == "" {
		return Instruction{}, fmt.Errorf("literal: empty digit string")
	}

	var v int64
	for i := 0; i < len(digits); i++ {
		d := digits[i]
		if d < '0' || d > '9' {
			return Instruction{}, fmt.Errorf("literal: invalid digit %q", d)
		}
		if v > MaxOperand {
			return Instruction{}, ErrOperandTooBig
		}
		v = v*10 + int64(d-'0')
	}
	if v > MaxOperand {
		return Instruction{}, ErrOperandTooBig
	}

	return Literal(v), nil
}

// Arity returns the number of operands the instruction consumes.
// Literals consume none.
func (in Instruction) Arity() int {
	if in.Kind == KindLiteral {
		return 0
	}
	info, ok := KindInfo(in.Kind)
	if !ok {
		return 0
	}
	return info.Arity
}

// Token returns the diagnostic text of the instruction.
// Unary minus is rendered as '#' so it is distinct from subtraction.
func (in Instruction) Token() string {
	if in.Kind == KindLiteral {
		return strconv.FormatInt(in.Value, 10)
	}
	if info, ok := KindInfo(in.Kind); ok {
		return string(info.Symbol)
	}
	return "?"
}
