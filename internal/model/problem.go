package model

import (
	"fmt"
	"math"
	"strconv"
)

// Operator is one of the symbols accepted in an operator spec
type Operator string

const (
	OpPlus   Operator = "+"
	OpMinus  Operator = "-"
	OpStar   Operator = "*"
	OpSlash  Operator = "/"
	OpBullet Operator = "•" // Multiply synonym
	OpTimes  Operator = "×" // Multiply synonym
	OpObelus Operator = "÷" // Divide synonym
)

const intEpsilon = 1e-12

// OpKind is the canonical arithmetic operation behind an operator symbol
type OpKind int

const (
	KindUnknown OpKind = iota
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
)

func (k OpKind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindSubtract:
		return "subtract"
	case KindMultiply:
		return "multiply"
	case KindDivide:
		return "divide"
	default:
		return "unknown"
	}
}

// Kind maps the symbol to its canonical operation
func (o Operator) Kind() OpKind {
	switch o {
	case OpPlus:
		return KindAdd
	case OpMinus:
		return KindSubtract
	case OpStar, OpBullet, OpTimes:
		return KindMultiply
	case OpSlash, OpObelus:
		return KindDivide
	default:
		return KindUnknown
	}
}

// Valid reports whether the symbol belongs to the operator vocabulary
func (o Operator) Valid() bool {
	return o.Kind() != KindUnknown
}

// NumberSet is an ordered set of distinct operand values
type NumberSet []float64

// OperatorSet is an ordered operator list; repeated symbols weight sampling
type OperatorSet []Operator

// Problem is a single arithmetic exercise
type Problem struct {
	A  float64  `json:"a"`
	Op Operator `json:"op"`
	B  float64  `json:"b"`
}

// Answer computes the exact result. Division is always real division.
func (p Problem) Answer() float64 {
	switch p.Op.Kind() {
	case KindAdd:
		return p.A + p.B
	case KindSubtract:
		return p.A - p.B
	case KindMultiply:
		return p.A * p.B
	case KindDivide:
		return p.A / p.B
	default:
		return math.NaN()
	}
}

// String renders the problem without the answer, e.g. "7 × 3"
func (p Problem) String() string {
	return fmt.Sprintf("%s %s %s", FormatNumber(p.A), p.Op, FormatNumber(p.B))
}

// IsIntLike reports whether x is within 1e-12 of an integer
func IsIntLike(x float64) bool {
	return math.Abs(x-math.RoundToEven(x)) <= intEpsilon
}

// FormatNumber renders operands and answers: integers without a decimal point,
// everything else with 12 significant digits.
func FormatNumber(x float64) string {
	if IsIntLike(x) {
		r := math.RoundToEven(x)
		if r == 0 {
			r = 0 // drop the sign of -0
		}
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(x, 'g', 12, 64)
}
