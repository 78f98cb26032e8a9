// Package render lays worksheet pages out on a fixed A4 grid.
//
// A Layout is a flat list of positioned text runs in PDF user space
// (points, origin bottom-left). It depends only on its inputs, so the same
// problems always land in the same cells.
package render

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ppiankov/mathsheet/internal/model"
)

// Page geometry in points
const (
	PageWidth  = 595.2755905511812 // A4, 210mm
	PageHeight = 841.8897637795277 // A4, 297mm

	MarginLeft   = 50.0
	MarginRight  = 50.0
	MarginTop    = 48.0
	MarginBottom = 50.0

	ColumnGap = 30.0
	HeaderGap = 32.0 // Header baseline to first problem row
	FooterY   = 28.0
)

// Font sizes in points
const (
	HeaderSize  = 14.0
	FooterSize  = 9.0
	ProblemSize = 13.0
	AnswerSize  = 12.0
)

// Font names one of the standard PDF faces
type Font string

const (
	FontRegular Font = "Courier"
	FontBold    Font = "Courier-Bold"
)

// ErrProblemCount signals a page that does not hold exactly
// model.ProblemsPerPage problems. It is a caller bug, not bad user input.
var ErrProblemCount = errors.New("internal error: expected exactly 60 problems per page")

// Align selects which end of a run X refers to
type Align int

const (
	AlignLeft  Align = iota // X is the start of the text
	AlignRight              // X is the end of the text; the writer measures it
)

// TextRun is one string drawn at a baseline position
type TextRun struct {
	Font  Font
	Size  float64
	X     float64
	Y     float64
	Align Align
	Text  string
}

// Layout is a fully positioned page
type Layout struct {
	Width  float64
	Height float64
	Runs   []TextRun
}

// Cell locates one problem on the grid
type Cell struct {
	Column int
	Row    int
	X      float64
	Y      float64
}

// ColumnWidth is the width of each of the equal problem columns
func ColumnWidth() float64 {
	usable := PageWidth - MarginLeft - MarginRight - ColumnGap*(model.Columns-1)
	return usable / model.Columns
}

// CellFor returns the grid cell of problem index idx (0-based, column-major)
func CellFor(idx int) Cell {
	col := idx / model.RowsPerColumn
	row := idx % model.RowsPerColumn

	startY := PageHeight - MarginTop - HeaderGap
	rowHeight := (startY - MarginBottom) / model.RowsPerColumn

	return Cell{
		Column: col,
		Row:    row,
		X:      MarginLeft + float64(col)*(ColumnWidth()+ColumnGap),
		Y:      startY - float64(row)*rowHeight,
	}
}

// RenderProblemsPage lays out a problems page: "A op B = " per cell
func RenderProblemsPage(problems []model.Problem, header string, numbered bool, dateStamp string, pageNumber int) (*Layout, error) {
	return renderPage(problems, header, numbered, dateStamp, pageNumber, ProblemSize, false)
}

// RenderAnswersPage lays out the answer key: "A op B = answer" per cell
func RenderAnswersPage(problems []model.Problem, header string, numbered bool, dateStamp string, pageNumber int) (*Layout, error) {
	return renderPage(problems, header, numbered, dateStamp, pageNumber, AnswerSize, true)
}

// RenderPage dispatches on the page kind
func RenderPage(page model.Page, numbered bool, dateStamp string) (*Layout, error) {
	switch page.Kind {
	case model.PageAnswers:
		return RenderAnswersPage(page.Problems, page.Header, numbered, dateStamp, page.Number)
	case model.PageProblems:
		return RenderProblemsPage(page.Problems, page.Header, numbered, dateStamp, page.Number)
	default:
		return nil, fmt.Errorf("unknown page kind %q", page.Kind)
	}
}

func renderPage(problems []model.Problem, header string, numbered bool, dateStamp string, pageNumber int, bodySize float64, answers bool) (*Layout, error) {
	if len(problems) != model.ProblemsPerPage {
		return nil, fmt.Errorf("%w (got %d)", ErrProblemCount, len(problems))
	}

	layout := &Layout{
		Width:  PageWidth,
		Height: PageHeight,
		Runs:   make([]TextRun, 0, len(problems)+3),
	}

	layout.Runs = append(layout.Runs, headerRun(header))
	layout.Runs = append(layout.Runs, footerRuns(dateStamp, pageNumber)...)

	for idx, p := range problems {
		cell := CellFor(idx)
		layout.Runs = append(layout.Runs, TextRun{
			Font: FontRegular,
			Size: bodySize,
			X:    cell.X,
			Y:    cell.Y,
			Text: ProblemLine(idx, p, numbered, answers),
		})
	}

	return layout, nil
}

// ProblemLine renders the text of one cell
func ProblemLine(idx int, p model.Problem, numbered bool, withAnswer bool) string {
	prefix := ""
	if numbered {
		prefix = fmt.Sprintf("%2d) ", idx+1)
	}
	line := prefix + p.String() + " = "
	if withAnswer {
		line += model.FormatNumber(p.Answer())
	}
	return line
}

func headerRun(header string) TextRun {
	return TextRun{
		Font: FontBold,
		Size: HeaderSize,
		X:    MarginLeft,
		Y:    PageHeight - MarginTop,
		Text: header,
	}
}

// footerRuns places the date stamp at the left and the page number flush right
func footerRuns(dateStamp string, pageNumber int) []TextRun {
	num := strconv.Itoa(pageNumber)
	return []TextRun{
		{Font: FontRegular, Size: FooterSize, X: MarginLeft, Y: FooterY, Text: dateStamp},
		{Font: FontRegular, Size: FooterSize, X: PageWidth - MarginRight, Y: FooterY, Align: AlignRight, Text: num},
	}
}
