// Package sampler draws arithmetic problems that satisfy the worksheet
// constraints by rejection sampling with a fixed attempt budget.
package sampler

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/random"
)

// MaxAttempts is the number of rejected draws after which Sample gives up
const MaxAttempts = 50_000

// quotientEpsilon is how close a quotient must be to an integer
const quotientEpsilon = 1e-9

// ErrUnsatisfiable is matched by every GenerationError
var ErrUnsatisfiable = errors.New("constraints cannot be satisfied")

// ErrEmptyInput is returned when a set passed to Sample is empty
var ErrEmptyInput = errors.New("operand and operator sets must be non-empty")

// GenerationError reports an exhausted attempt budget
type GenerationError struct {
	Attempts int
}

func (e *GenerationError) Error() string {
	return "Could not generate problems with these constraints.\n" +
		"Try widening a/b, disabling integer division, or removing some operators."
}

// Unwrap lets callers match ErrUnsatisfiable
func (e *GenerationError) Unwrap() error {
	return ErrUnsatisfiable
}

// Options are the acceptance constraints
type Options struct {
	AvoidNegative   bool // Reject subtraction with a negative result
	IntegerDivision bool // Reject division with a non-integer quotient
}

// Sampler draws problems from one Source. It is not safe for concurrent use
// because the Source usually is not.
type Sampler struct {
	src         random.Source
	opts        Options
	maxAttempts int
}

// New creates a sampler with the default attempt budget
func New(src random.Source, opts Options) *Sampler {
	return &Sampler{
		src:         src,
		opts:        opts,
		maxAttempts: MaxAttempts,
	}
}

// Sample draws one problem: operator, then A, then B, each uniformly.
// Repeated operators in ops are drawn proportionally more often.
func (s *Sampler) Sample(a, b model.NumberSet, ops model.OperatorSet) (model.Problem, error) {
	if len(a) == 0 || len(b) == 0 || len(ops) == 0 {
		return model.Problem{}, ErrEmptyInput
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		op := ops[s.src.Intn(len(ops))]
		x := a[s.src.Intn(len(a))]
		y := b[s.src.Intn(len(b))]

		if s.accept(x, op, y) {
			return model.Problem{A: x, Op: op, B: y}, nil
		}
	}

	return model.Problem{}, &GenerationError{Attempts: s.maxAttempts}
}

// SampleN draws n problems, stopping at the first failure
func (s *Sampler) SampleN(n int, a, b model.NumberSet, ops model.OperatorSet) ([]model.Problem, error) {
	problems := make([]model.Problem, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.Sample(a, b, ops)
		if err != nil {
			return nil, fmt.Errorf("problem %d: %w", i+1, err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func (s *Sampler) accept(a float64, op model.Operator, b float64) bool {
	switch op.Kind() {
	case model.KindDivide:
		return DivisionOK(a, b, s.opts.IntegerDivision)
	case model.KindSubtract:
		return !s.opts.AvoidNegative || a-b >= 0
	default:
		return true
	}
}

// DivisionOK reports whether a / b is allowed on a worksheet
func DivisionOK(a, b float64, requireInt bool) bool {
	if b == 0 {
		return false
	}
	if !requireInt {
		return true
	}
	q := a / b
	return math.Abs(q-math.RoundToEven(q)) <= quotientEpsilon
}
