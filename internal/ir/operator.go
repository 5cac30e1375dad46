package ir

// SymbolUnaryMinus is the internal symbol of unary minus.
// It never appears in user input; the compiler rewrites '-' to it.
const SymbolUnaryMinus = '#'

// OperatorInfo is the static metadata of an operator.
type OperatorInfo struct {
	Symbol     rune
	Kind       Kind
	Precedence int // higher binds tighter
	Arity      int // 1 or 2
}

// operators is the operator registry, indexed by symbol.
// It is built once and never mutated.
var operators = map[rune]OperatorInfo{
	'+':              {Symbol: '+', Kind: KindAdd, Precedence: 1, Arity: 2},
	'-':              {Symbol: '-', Kind: KindSub, Precedence: 1, Arity: 2},
	'*':              {Symbol: '*', Kind: KindMul, Precedence: 2, Arity: 2},
	'/':              {Symbol: '/', Kind: KindDiv, Precedence: 2, Arity: 2},
	'%':              {Symbol: '%', Kind: KindMod, Precedence: 2, Arity: 2},
	'^':              {Symbol: '^', Kind: KindPow, Precedence: 3, Arity: 2},
	SymbolUnaryMinus: {Symbol: SymbolUnaryMinus, Kind: KindNeg, Precedence: 4, Arity: 1},
}

// byKind mirrors operators for lookups from an instruction.
var byKind = func() map[Kind]OperatorInfo {
	m := make(map[Kind]OperatorInfo, len(operators))
	for _, info := range operators {
		m[info.Kind] = info
	}
	return m
}()

// LookupOperator returns the operator registered for symbol r.
func LookupOperator(r rune) (OperatorInfo, bool) {
	info, ok := operators[r]
	return info, ok
}

// KindInfo returns the operator metadata for an operator kind.
// Returns false for KindLiteral and unknown kinds.
func KindInfo(k Kind) (OperatorInfo, bool) {
	info, ok := byKind[k]
	return info, ok
}

// Operators returns a copy of the registry, ordered by kind.
func Operators() []OperatorInfo {
	out := make([]OperatorInfo, 0, len(byKind))
	for k := KindAdd; k <= KindNeg; k++ {
		if info, ok := byKind[k]; ok {
			out = append(out, info)
		}
	}
	return out
}
