package spec

import (
	"strings"

	"github.com/ppiankov/mathsheet/internal/model"
)

// ParseOperatorSet parses an operator spec. An empty spec means addition only.
func ParseOperatorSet(input string) (model.OperatorSet, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return model.OperatorSet{model.OpPlus}, nil
	}

	var candidates []string
	if strings.Contains(s, ",") {
		for _, piece := range strings.Split(s, ",") {
			if p := strings.TrimSpace(piece); p != "" {
				candidates = append(candidates, p)
			}
		}
	} else {
		for _, r := range s {
			candidates = append(candidates, string(r))
		}
	}

	var ops model.OperatorSet
	for _, c := range candidates {
		if op := model.Operator(c); op.Valid() {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return nil, newParseError(input, "No valid operators.")
	}
	return ops, nil
}
