package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/mathsheet/internal/render"
)

var created = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func testLayout(text string) *render.Layout {
	return &render.Layout{
		Width:  render.PageWidth,
		Height: render.PageHeight,
		Runs: []render.TextRun{
			{Font: render.FontBold, Size: 14, X: 50, Y: 793.89, Text: "Header – Answers"},
			{Font: render.FontRegular, Size: 13, X: 50, Y: 761.89, Text: text},
			{Font: render.FontRegular, Size: 9, X: render.PageWidth - 50, Y: 28, Align: render.AlignRight, Text: "12"},
		},
	}
}

func TestDocument_Structure(t *testing.T) {
	doc := NewDocument(Options{Title: "Math worksheet", Created: created})
	require.NoError(t, doc.AddPage(testLayout(" 1) 3 × 4 = ")))
	require.NoError(t, doc.AddPage(testLayout(" 1) 3 × 4 = 12")))

	out, err := doc.Bytes()
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "%PDF-1."))
	assert.Contains(t, s, "%%EOF")
	assert.Contains(t, s, "/Count 2")
	assert.Contains(t, s, "/BaseFont /Courier\n")
	assert.Contains(t, s, "/BaseFont /Courier-Bold\n")
	assert.Contains(t, s, "/MediaBox [0 0 595.28 841.89]")
	assert.Contains(t, s, "/Title (")
	assert.Contains(t, s, "/Producer (mathsheet)")
	assert.Contains(t, s, "D:20261019083000")
}

func TestDocument_TextPlacementAndEncoding(t *testing.T) {
	doc := NewDocument(Options{})
	require.NoError(t, doc.AddPage(testLayout("12 ÷ 3 = 4 (•) \\ ✓")))

	out, err := doc.Bytes()
	require.NoError(t, err)
	s := string(out)

	// cp1252: ÷ 0xF7, • 0x95, – 0x96; ✓ has no mapping
	assert.Contains(t, s, "50.00 761.89 Td (12 \xf7 3 = 4 \\(\x95\\) \\\\ ?) Tj")
	assert.Contains(t, s, "50.00 793.89 Td (Header \x96 Answers) Tj")
	// "12" in Courier 9 is 10.8pt wide, ending on the right margin
	assert.Contains(t, s, "534.48 28.00 Td (12) Tj")
}

func TestDocument_Compressed(t *testing.T) {
	doc := NewDocument(Options{Compress: true})
	require.NoError(t, doc.AddPage(testLayout("1 + 1 = ")))
	out, err := doc.Bytes()
	require.NoError(t, err)

	assert.Contains(t, string(out), "/Filter /FlateDecode")
	assert.NotContains(t, string(out), "(1 + 1 = ) Tj")
}

func TestDocument_Deterministic(t *testing.T) {
	build := func() []byte {
		doc := NewDocument(Options{Title: "T", Created: created, Compress: true})
		require.NoError(t, doc.AddPage(testLayout("7 × 8 = 56")))
		out, err := doc.Bytes()
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, build(), build())
}

func TestDocument_BytesTwice(t *testing.T) {
	doc := NewDocument(Options{Created: created})
	require.NoError(t, doc.AddPage(testLayout("x")))

	first, err := doc.Bytes()
	require.NoError(t, err)
	second, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Error(t, doc.AddPage(testLayout("y")))
}

func TestDocument_Errors(t *testing.T) {
	doc := NewDocument(Options{})
	_, err := doc.Bytes()
	assert.ErrorIs(t, err, ErrNoPages)

	assert.Error(t, doc.AddPage(nil))

	bad := testLayout("x")
	bad.Runs[0].Font = "Helvetica"
	assert.Error(t, doc.AddPage(bad))
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "3 \xd7 4", encode("3 × 4"))
	assert.Equal(t, "a?b", encode("a✓b"))
}
