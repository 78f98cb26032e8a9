package sampler

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/random"
)

// countingSource wraps a Source and counts draws
type countingSource struct {
	src   random.Source
	draws int
}

func (c *countingSource) Intn(n int) int {
	c.draws++
	return c.src.Intn(n)
}

// scriptedSource replays fixed indexes
type scriptedSource struct {
	picks []int
	pos   int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.picks[s.pos%len(s.picks)] % n
	s.pos++
	return v
}

func numbers(from, to int) model.NumberSet {
	var out model.NumberSet
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}

func TestSample_IntegerDivision(t *testing.T) {
	s := New(random.New(1), Options{IntegerDivision: true})
	ops := model.OperatorSet{model.OpSlash, model.OpObelus}

	for i := 0; i < 2000; i++ {
		p, err := s.Sample(numbers(-20, 20), numbers(-5, 5), ops)
		require.NoError(t, err)
		require.NotZero(t, p.B)
		q := p.A / p.B
		assert.InDelta(t, math.Round(q), q, 1e-9, "problem %s", p)
	}
}

func TestSample_RealDivisionNeverByZero(t *testing.T) {
	s := New(random.New(2), Options{})
	for i := 0; i < 2000; i++ {
		p, err := s.Sample(numbers(0, 3), numbers(0, 3), model.OperatorSet{model.OpSlash})
		require.NoError(t, err)
		assert.NotZero(t, p.B)
	}
}

func TestSample_AvoidNegative(t *testing.T) {
	s := New(random.New(3), Options{AvoidNegative: true})
	for i := 0; i < 2000; i++ {
		p, err := s.Sample(numbers(0, 10), numbers(0, 10), model.OperatorSet{model.OpMinus, model.OpPlus})
		require.NoError(t, err)
		if p.Op == model.OpMinus {
			assert.GreaterOrEqual(t, p.A-p.B, 0.0, "problem %s", p)
		}
	}
}

func TestSample_NegativeAllowedByDefault(t *testing.T) {
	s := New(random.New(4), Options{})
	sawNegative := false
	for i := 0; i < 500 && !sawNegative; i++ {
		p, err := s.Sample(numbers(0, 3), numbers(5, 9), model.OperatorSet{model.OpMinus})
		require.NoError(t, err)
		sawNegative = p.Answer() < 0
	}
	assert.True(t, sawNegative)
}

func TestSample_Unsatisfiable(t *testing.T) {
	src := &countingSource{src: random.New(5)}
	s := New(src, Options{IntegerDivision: true})

	_, err := s.Sample(model.NumberSet{1}, model.NumberSet{0}, model.OperatorSet{model.OpSlash})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsatisfiable))

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, MaxAttempts, genErr.Attempts)
	assert.Equal(t, 50_000, genErr.Attempts)

	// operator, A and B are drawn once per attempt
	assert.Equal(t, 3*MaxAttempts, src.draws)
	assert.Contains(t, err.Error(), "Try widening a/b")
}

func TestSample_DrawOrder(t *testing.T) {
	// op index 1, A index 2, B index 0
	src := &scriptedSource{picks: []int{1, 2, 0}}
	s := New(src, Options{})

	p, err := s.Sample(model.NumberSet{10, 20, 30}, model.NumberSet{4, 5}, model.OperatorSet{model.OpPlus, model.OpTimes})
	require.NoError(t, err)
	assert.Equal(t, model.Problem{A: 30, Op: model.OpTimes, B: 4}, p)
}

func TestSample_RejectsThenAccepts(t *testing.T) {
	// First attempt divides by zero, second divides 6 by 3
	src := &scriptedSource{picks: []int{0, 0, 0, 0, 0, 1}}
	s := New(src, Options{IntegerDivision: true})

	p, err := s.Sample(model.NumberSet{6}, model.NumberSet{0, 3}, model.OperatorSet{model.OpSlash})
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.B)
	assert.Equal(t, 6, src.pos)
}

func TestSample_DuplicateOperatorsBias(t *testing.T) {
	s := New(random.New(6), Options{})
	ops := model.OperatorSet{model.OpPlus, model.OpPlus, model.OpMinus}

	counts := map[model.Operator]int{}
	const draws = 30000
	for i := 0; i < draws; i++ {
		p, err := s.Sample(numbers(0, 5), numbers(0, 5), ops)
		require.NoError(t, err)
		counts[p.Op]++
	}

	ratio := float64(counts[model.OpPlus]) / float64(counts[model.OpMinus])
	assert.InDelta(t, 2.0, ratio, 0.15)
}

func TestSample_EmptyInput(t *testing.T) {
	s := New(random.New(7), Options{})
	_, err := s.Sample(nil, model.NumberSet{1}, model.OperatorSet{model.OpPlus})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSampleN(t *testing.T) {
	s := New(random.New(8), Options{})
	problems, err := s.SampleN(model.ProblemsPerPage, numbers(0, 10), numbers(0, 10), model.OperatorSet{model.OpPlus})
	require.NoError(t, err)
	assert.Len(t, problems, 60)

	_, err = s.SampleN(3, model.NumberSet{1}, model.NumberSet{0}, model.OperatorSet{model.OpSlash})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "problem 1")
	assert.ErrorIs(t, err, ErrUnsatisfiable)
}

func TestDivisionOK(t *testing.T) {
	tests := []struct {
		a, b       float64
		requireInt bool
		want       bool
	}{
		{1, 0, false, false},
		{0, 0, true, false},
		{7, 2, false, true},
		{7, 2, true, false},
		{8, 2, true, true},
		{-9, 3, true, true},
		{0.3, 0.1, true, true}, // 2.9999999999999996
		{0, 5, true, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DivisionOK(tt.a, tt.b, tt.requireInt), "DivisionOK(%v, %v, %v)", tt.a, tt.b, tt.requireInt)
	}
}

func TestSample_Deterministic(t *testing.T) {
	draw := func() []model.Problem {
		s := New(random.New(99), Options{IntegerDivision: true})
		out, err := s.SampleN(60, numbers(0, 12), numbers(0, 12), model.OperatorSet{"+", "-", "×", "÷"})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, draw(), draw())
}
