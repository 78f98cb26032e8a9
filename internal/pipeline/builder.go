package pipeline

import (
	"fmt"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/random"
	"github.com/ppiankov/mathsheet/internal/sampler"
	"github.com/ppiankov/mathsheet/internal/spec"
)

// answersSuffix separates the header from the answer-key marker
const answersSuffix = " – Answers"

// Fallback records a spec field that was replaced by its default
type Fallback struct {
	Field   string // "a", "b" or "ops"
	Input   string // Rejected input
	Default string // Spec used instead
	Err     error  // Parse failure
}

// Worksheet is the output of Build: every page in document order
type Worksheet struct {
	Pages     []model.Page
	Header    string // Resolved base header
	Sets      int    // Number of worksheets (problem pages)
	Fallbacks []Fallback
}

// Builder turns a GenerationConfig into worksheet pages
type Builder struct {
	src random.Source
}

// NewBuilder creates a builder drawing from src
func NewBuilder(src random.Source) *Builder {
	return &Builder{src: src}
}

// Build parses the specs (each field falls back to its default on its own),
// draws ProblemsPerPage problems per worksheet and assigns headers and global
// page numbers. A sampling failure aborts the whole build.
func (b *Builder) Build(cfg model.GenerationConfig) (*Worksheet, error) {
	var fallbacks []Fallback

	aSet, fb := numberSetOrDefault("a", cfg.ASpec, model.DefaultASpec)
	if fb != nil {
		fallbacks = append(fallbacks, *fb)
	}
	bSet, fb := numberSetOrDefault("b", cfg.BSpec, model.DefaultBSpec)
	if fb != nil {
		fallbacks = append(fallbacks, *fb)
	}
	ops, fb := operatorSetOrDefault(cfg.OpsSpec)
	if fb != nil {
		fallbacks = append(fallbacks, *fb)
	}

	sets := model.ClampPages(cfg.Pages)
	header := model.ResolveHeader(cfg.Header)

	s := sampler.New(b.src, sampler.Options{
		AvoidNegative:   cfg.AvoidNegative,
		IntegerDivision: cfg.IntegerDivision,
	})

	pagesPerSet := 1
	if cfg.ShowAnswers {
		pagesPerSet = 2
	}

	ws := &Worksheet{
		Pages:     make([]model.Page, 0, sets*pagesPerSet),
		Header:    header,
		Sets:      sets,
		Fallbacks: fallbacks,
	}

	pageNum := 0
	for set := 1; set <= sets; set++ {
		problems, err := s.SampleN(model.ProblemsPerPage, aSet, bSet, ops)
		if err != nil {
			return nil, fmt.Errorf("worksheet %d: %w", set, err)
		}

		pageNum++
		ws.Pages = append(ws.Pages, model.Page{
			Number:   pageNum,
			Header:   ProblemsHeader(header, set, sets),
			Kind:     model.PageProblems,
			Set:      set,
			Problems: problems,
		})

		if cfg.ShowAnswers {
			pageNum++
			ws.Pages = append(ws.Pages, model.Page{
				Number:   pageNum,
				Header:   AnswersHeader(header, set, sets),
				Kind:     model.PageAnswers,
				Set:      set,
				Problems: problems,
			})
		}
	}

	return ws, nil
}

// ProblemsHeader is the header of worksheet set out of total
func ProblemsHeader(header string, set, total int) string {
	if total == 1 {
		return header
	}
	return fmt.Sprintf("%s (Set %d)", header, set)
}

// AnswersHeader is the header of the answer key for worksheet set out of total
func AnswersHeader(header string, set, total int) string {
	if total == 1 {
		return header + answersSuffix
	}
	return fmt.Sprintf("%s%s (Set %d)", header, answersSuffix, set)
}

func numberSetOrDefault(field, input, def string) (model.NumberSet, *Fallback) {
	set, err := spec.ParseNumberSet(input)
	if err == nil {
		return set, nil
	}
	set, defErr := spec.ParseNumberSet(def)
	if defErr != nil {
		panic(fmt.Sprintf("default %s spec %q does not parse: %v", field, def, defErr))
	}
	return set, &Fallback{Field: field, Input: input, Default: def, Err: err}
}

func operatorSetOrDefault(input string) (model.OperatorSet, *Fallback) {
	ops, err := spec.ParseOperatorSet(input)
	if err == nil {
		return ops, nil
	}
	ops, defErr := spec.ParseOperatorSet(model.DefaultOpsSpec)
	if defErr != nil {
		panic(fmt.Sprintf("default ops spec %q does not parse: %v", model.DefaultOpsSpec, defErr))
	}
	return ops, &Fallback{Field: "ops", Input: input, Default: model.DefaultOpsSpec, Err: err}
}
