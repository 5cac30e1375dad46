package engine

import (
	"math"

	"github.com/roach88/uncalc/internal/ir"
)

// applyFunc computes one operator. args are in source order (left first).
// A non-empty code reports failure.
type applyFunc func(args []int64) (int64, ArithmeticErrorCode)

// applyTable is the compute half of the operator registry; arity and
// precedence live in ir. Indexed by ir.Kind.
var applyTable = [...]applyFunc{
	ir.KindAdd: func(a []int64) (int64, ArithmeticErrorCode) { return addChecked(a[0], a[1]) },
	ir.KindSub: func(a []int64) (int64, ArithmeticErrorCode) { return subChecked(a[0], a[1]) },
	ir.KindMul: func(a []int64) (int64, ArithmeticErrorCode) { return mulChecked(a[0], a[1]) },
	ir.KindDiv: divide,
	ir.KindMod: modulo,
	ir.KindPow: func(a []int64) (int64, ArithmeticErrorCode) { return power(a[0], a[1]) },
	ir.KindNeg: negate,
}

func lookupApply(k ir.Kind) applyFunc {
	if int(k) < len(applyTable) {
		return applyTable[k]
	}
	return nil
}

func addChecked(a, b int64) (int64, ArithmeticErrorCode) {
	r := a + b
	if (a > 0 && b > 0 && r < 0) || (a < 0 && b < 0 && r >= 0) {
		return 0, ErrCodeOverflow
	}
	return r, ""
}

func subChecked(a, b int64) (int64, ArithmeticErrorCode) {
	r := a - b
	if (a >= 0 && b < 0 && r < 0) || (a < 0 && b > 0 && r >= 0) {
		return 0, ErrCodeOverflow
	}
	return r, ""
}

func mulChecked(a, b int64) (int64, ArithmeticErrorCode) {
	if a == 0 || b == 0 {
		return 0, ""
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrCodeOverflow
	}
	r := a * b
	if r/b != a {
		return 0, ErrCodeOverflow
	}
	return r, ""
}

// divide truncates toward zero.
func divide(a []int64) (int64, ArithmeticErrorCode) {
	if a[1] == 0 {
		return 0, ErrCodeDivisionByZero
	}
	if a[0] == math.MinInt64 && a[1] == -1 {
		return 0, ErrCodeOverflow
	}
	return a[0] / a[1], ""
}

// modulo takes the sign of the dividend.
func modulo(a []int64) (int64, ArithmeticErrorCode) {
	if a[1] == 0 {
		return 0, ErrCodeModuloByZero
	}
	return a[0] % a[1], ""
}

func negate(a []int64) (int64, ArithmeticErrorCode) {
	if a[0] == math.MinInt64 {
		return 0, ErrCodeOverflow
	}
	return -a[0], ""
}

// power multiplies base by itself exp times starting from 1.
// A negative exponent yields 0, not a fraction.
func power(base, exp int64) (int64, ArithmeticErrorCode) {
	if exp < 0 {
		return 0, ""
	}

	// These bases never overflow; answer them without looping up to
	// ir.MaxOperand times.
	switch base {
	case 0:
		if exp == 0 {
			return 1, ""
		}
		return 0, ""
	case 1:
		return 1, ""
	case -1:
		if exp%2 == 0 {
			return 1, ""
		}
		return -1, ""
	}

	// |base| >= 2 overflows within 63 iterations.
	result := int64(1)
	for ; exp > 0; exp-- {
		var code ArithmeticErrorCode
		result, code = mulChecked(result, base)
		if code != "" {
			return 0, code
		}
	}
	return result, ""
}
