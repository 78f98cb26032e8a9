// Package spec parses the loosely formatted operand and operator specs
// typed by users into canonical sets.
//
// Number specs mix inclusive integer ranges and scalars:
//
//	0-10
//	-10--5
//	6-10, 100, -99, .1
//
// Operator specs are either comma separated symbols ("/, ×") or a run of
// symbol characters ("+-*"). Repeated operators are kept.
package spec

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/mathsheet/internal/model"
)

// MaxRangeSize caps how many values one range token may expand to
const MaxRangeSize = 1_000_000

const numberPattern = `[+-]?(?:\d+(?:\.\d*)?|\.\d+)`

var (
	numberRe    = regexp.MustCompile(`^` + numberPattern + `$`)
	rangeRe     = regexp.MustCompile(`^\s*(` + numberPattern + `)\s*-\s*(` + numberPattern + `)\s*$`)
	separatorRe = regexp.MustCompile(`[,\s]+`)
)

// ParseNumberSet parses a number spec into a deduplicated, order-preserving set
func ParseNumberSet(input string) (model.NumberSet, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, newParseError(input, "Empty number specification.")
	}

	var values []float64
	for _, tok := range separatorRe.Split(s, -1) {
		if strings.TrimSpace(tok) == "" {
			continue
		}

		if m := rangeRe.FindStringSubmatch(tok); m != nil {
			expanded, err := expandRange(input, tok, m[1], m[2])
			if err != nil {
				return nil, err
			}
			values = append(values, expanded...)
			continue
		}

		v, err := parseNumber(input, tok)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	set := dedupe(values)
	if len(set) == 0 {
		return nil, newParseError(input, "No valid numbers parsed.")
	}
	return set, nil
}

func parseNumber(input, tok string) (float64, error) {
	t := strings.TrimSpace(tok)
	if !numberRe.MatchString(t) {
		return 0, newParseError(input, "Invalid number: %q", tok)
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, newParseError(input, "Invalid number: %q", tok)
	}
	return v, nil
}

// expandRange expands "X-Y" inclusively, counting down when Y < X
func expandRange(input, tok, lo, hi string) ([]float64, error) {
	from, err := parseNumber(input, lo)
	if err != nil {
		return nil, err
	}
	to, err := parseNumber(input, hi)
	if err != nil {
		return nil, err
	}
	if !model.IsIntLike(from) || !model.IsIntLike(to) {
		return nil, newParseError(input, "Ranges require integer endpoints: %q", tok)
	}

	if math.Abs(to-from)+1 > MaxRangeSize || math.Abs(from) > 1<<53 || math.Abs(to) > 1<<53 {
		return nil, newParseError(input, "Range too large: %q (at most %d values)", tok, MaxRangeSize)
	}

	a := int64(math.RoundToEven(from))
	b := int64(math.RoundToEven(to))
	step := int64(1)
	if b < a {
		step = -1
	}

	out := make([]float64, 0, (b-a)*step+1)
	for i := a; ; i += step {
		out = append(out, float64(i))
		if i == b {
			break
		}
	}
	return out, nil
}

// dedupe keeps the first occurrence of values equal at 12 decimal places
func dedupe(values []float64) model.NumberSet {
	seen := make(map[float64]bool, len(values))
	out := make(model.NumberSet, 0, len(values))
	for _, v := range values {
		key := math.RoundToEven(v*1e12) / 1e12
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
