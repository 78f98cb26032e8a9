package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/mathsheet/internal/model"
)

func sixty() []model.Problem {
	problems := make([]model.Problem, model.ProblemsPerPage)
	for i := range problems {
		problems[i] = model.Problem{A: float64(i), Op: model.OpTimes, B: 2}
	}
	return problems
}

func TestRenderProblemsPage_WrongCount(t *testing.T) {
	for _, n := range []int{0, 59, 61} {
		_, err := RenderProblemsPage(make([]model.Problem, n), "h", true, "2026-01-01", 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrProblemCount))

		_, err = RenderAnswersPage(make([]model.Problem, n), "h", true, "2026-01-01", 1)
		assert.True(t, errors.Is(err, ErrProblemCount))
	}
}

func TestRenderProblemsPage_HeaderAndFooter(t *testing.T) {
	layout, err := RenderProblemsPage(sixty(), "Math worksheet", true, "2026-10-19", 12)
	require.NoError(t, err)
	require.Len(t, layout.Runs, 63)

	header := layout.Runs[0]
	assert.Equal(t, FontBold, header.Font)
	assert.Equal(t, 14.0, header.Size)
	assert.Equal(t, 50.0, header.X)
	assert.InDelta(t, PageHeight-48, header.Y, 1e-9)
	assert.Equal(t, "Math worksheet", header.Text)

	date, page := layout.Runs[1], layout.Runs[2]
	assert.Equal(t, "2026-10-19", date.Text)
	assert.Equal(t, 50.0, date.X)
	assert.Equal(t, 28.0, date.Y)
	assert.Equal(t, 9.0, date.Size)

	assert.Equal(t, "12", page.Text)
	// right edge of the page number sits on the right margin
	assert.Equal(t, AlignRight, page.Align)
	assert.InDelta(t, PageWidth-50, page.X, 1e-9)
	assert.Equal(t, AlignLeft, date.Align)
	assert.Equal(t, AlignLeft, header.Align)
}

func TestRenderProblemsPage_ColumnMajorGrid(t *testing.T) {
	layout, err := RenderProblemsPage(sixty(), "h", true, "d", 1)
	require.NoError(t, err)
	body := layout.Runs[3:]

	// problems 1-20 share column 0, 21-40 column 1, 41-60 column 2
	for idx, run := range body {
		cell := CellFor(idx)
		assert.Equal(t, idx/20, cell.Column)
		assert.Equal(t, idx%20, cell.Row)
		assert.Equal(t, cell.X, run.X)
		assert.Equal(t, cell.Y, run.Y)
		assert.Equal(t, 13.0, run.Size)
	}

	assert.Equal(t, body[0].X, body[19].X)
	assert.Equal(t, body[0].Y, body[20].Y)
	assert.Greater(t, body[20].X, body[19].X)
	assert.Greater(t, body[0].Y, body[1].Y)

	assert.InDelta(t, PageHeight-48-32, body[0].Y, 1e-9)
	assert.InDelta(t, 50+2*(ColumnWidth()+30), body[40].X, 1e-9)
	assert.InDelta(t, (PageWidth-100-60)/3, ColumnWidth(), 1e-9)

	// last row stays above the bottom margin
	assert.Greater(t, body[19].Y, MarginBottom)
}

func TestRenderProblemsPage_Numbering(t *testing.T) {
	numbered, err := RenderProblemsPage(sixty(), "h", true, "d", 1)
	require.NoError(t, err)
	assert.Equal(t, " 1) 0 × 2 = ", numbered.Runs[3].Text)
	assert.Equal(t, "60) 59 × 2 = ", numbered.Runs[62].Text)

	plain, err := RenderProblemsPage(sixty(), "h", false, "d", 1)
	require.NoError(t, err)
	assert.Equal(t, "0 × 2 = ", plain.Runs[3].Text)
}

func TestRenderAnswersPage_RoundTrip(t *testing.T) {
	problems := sixty()
	problems[5] = model.Problem{A: 7, Op: model.OpSlash, B: 2}
	problems[6] = model.Problem{A: 0.1, Op: model.OpPlus, B: 0.2}

	questions, err := RenderProblemsPage(problems, "h", true, "d", 1)
	require.NoError(t, err)
	answers, err := RenderAnswersPage(problems, "h – Answers", true, "d", 2)
	require.NoError(t, err)

	for idx, p := range problems {
		q := questions.Runs[3+idx]
		a := answers.Runs[3+idx]

		assert.Equal(t, q.X, a.X)
		assert.Equal(t, q.Y, a.Y)
		assert.Equal(t, 12.0, a.Size)
		require.True(t, strings.HasPrefix(a.Text, q.Text))
		assert.Equal(t, model.FormatNumber(p.Answer()), strings.TrimPrefix(a.Text, q.Text))
	}

	assert.Equal(t, " 6) 7 / 2 = 3.5", answers.Runs[3+5].Text)
	assert.Equal(t, " 7) 0.1 + 0.2 = 0.3", answers.Runs[3+6].Text)
}

func TestRenderProblemsPage_Deterministic(t *testing.T) {
	a, err := RenderProblemsPage(sixty(), "h", true, "d", 3)
	require.NoError(t, err)
	b, err := RenderProblemsPage(sixty(), "h", true, "d", 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderPage_Dispatch(t *testing.T) {
	page := model.Page{Number: 2, Header: "x", Kind: model.PageAnswers, Problems: sixty()}
	layout, err := RenderPage(page, false, "d")
	require.NoError(t, err)
	assert.Equal(t, "0 × 2 = 0", layout.Runs[3].Text)

	page.Kind = "bogus"
	_, err = RenderPage(page, false, "d")
	assert.Error(t, err)
}
