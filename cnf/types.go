package cnf

import "strconv"

// A Var is a variable, numbered from 0: DIMACS variable v is Var(v-1).
type Var int32

// A Lit is a literal. Its variable is stored in the high bits and its polarity in the
// lowest bit, set for negative literals: DIMACS literal -3 is Lit(5).
// A literal and its negation only differ by their lowest bit.
type Lit int32

// IntToLit converts a DIMACS literal to a Lit.
// 0 is not a literal: IntToLit(0) is negative, as is its Var.
func IntToLit(i int) Lit {
	if i < 0 {
		return Lit((-i-1)<<1 | 1)
	}
	return Lit((i - 1) << 1)
}

// SignedLit returns the negative literal of v if neg is true, the positive one else.
func (v Var) SignedLit(neg bool) Lit {
	l := Lit(v << 1)
	if neg {
		l |= 1
	}
	return l
}

// Int returns the DIMACS number of v.
func (v Var) Int() int32 {
	return int32(v) + 1
}

// Var returns the variable of l.
func (l Lit) Var() Var {
	return Var(l >> 1)
}

// Int returns the DIMACS value of l.
func (l Lit) Int() int32 {
	if l&1 == 1 {
		return -l.Var().Int()
	}
	return l.Var().Int()
}

// IsPositive is true iff l is a positive literal.
func (l Lit) IsPositive() bool {
	return l&1 == 0
}

// Negation returns the literal of opposite polarity.
func (l Lit) Negation() Lit {
	return l ^ 1
}

func (l Lit) String() string {
	return strconv.Itoa(int(l.Int()))
}
