package model

import (
	"strconv"
	"strings"
)

// Layout and generation limits shared by the builder and renderer
const (
	Columns         = 3
	RowsPerColumn   = 20
	ProblemsPerPage = Columns * RowsPerColumn

	MinPages = 1
	MaxPages = 100
)

// System defaults; DefaultASpec, DefaultBSpec and DefaultOpsSpec always parse
const (
	DefaultASpec   = "0-10"
	DefaultBSpec   = "0-10"
	DefaultOpsSpec = "+"
	DefaultPages   = 1
	DefaultHeader  = "Math worksheet"
)

// PageKind distinguishes a problems page from its answer key
type PageKind string

const (
	PageProblems PageKind = "problems"
	PageAnswers  PageKind = "answers"
)

// Page is one worksheet page: exactly ProblemsPerPage problems plus its header
type Page struct {
	Number   int       `json:"number"`
	Header   string    `json:"header"`
	Kind     PageKind  `json:"kind"`
	Set      int       `json:"set"` // 1-based worksheet index the page belongs to
	Problems []Problem `json:"problems"`
}

// GenerationConfig holds everything one generation call depends on
type GenerationConfig struct {
	ASpec   string `json:"a" yaml:"a"`
	BSpec   string `json:"b" yaml:"b"`
	OpsSpec string `json:"ops" yaml:"ops"`
	Pages   int    `json:"pages" yaml:"pages"`
	Header  string `json:"header" yaml:"title"`

	ShowAnswers     bool `json:"answers" yaml:"answers"`
	Numbered        bool `json:"numbered" yaml:"numbered"`
	AvoidNegative   bool `json:"avoid_negative" yaml:"avoid_negative"`
	IntegerDivision bool `json:"integer_division" yaml:"integer_division"`
}

// DefaultGenerationConfig returns the out-of-the-box worksheet settings
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		ASpec:           DefaultASpec,
		BSpec:           DefaultBSpec,
		OpsSpec:         DefaultOpsSpec,
		Pages:           DefaultPages,
		Header:          DefaultHeader,
		ShowAnswers:     true,
		Numbered:        true,
		AvoidNegative:   false,
		IntegerDivision: true,
	}
}

// ClampPages returns n when it is a valid page count, DefaultPages otherwise
func ClampPages(n int) int {
	if n < MinPages || n > MaxPages {
		return DefaultPages
	}
	return n
}

// ParsePages converts raw page-count input, falling back to DefaultPages
// for anything that is not an integer in [MinPages, MaxPages].
func ParsePages(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPages
	}
	return ClampPages(n)
}

// ResolveHeader trims the header, using DefaultHeader when nothing is left
func ResolveHeader(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultHeader
	}
	return s
}
