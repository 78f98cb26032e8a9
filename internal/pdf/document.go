// Package pdf turns laid-out pages into a PDF file using fpdf.
//
// Only the standard Courier faces are used, so no font data is embedded.
// Text is converted to cp1252 (WinAnsi), which covers the ×, ÷, • and –
// glyphs the worksheets print.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/ppiankov/mathsheet/internal/render"
)

// Producer is written to the Info dictionary
const Producer = "mathsheet"

// ErrNoPages is returned by Bytes for an empty document
var ErrNoPages = errors.New("document has no pages")

// Options configures document metadata and encoding
type Options struct {
	Title    string
	Created  time.Time // Zero means the time Bytes is called
	Compress bool      // FlateDecode content streams
}

// Document accumulates pages and writes the final file
type Document struct {
	pdf   *fpdf.Fpdf
	pages int
	out   []byte
}

// NewDocument creates an empty document
func NewDocument(opts Options) *Document {
	f := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: render.PageWidth, Ht: render.PageHeight},
	})
	f.SetCompression(opts.Compress)
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	f.SetCatalogSort(true)
	f.SetProducer(Producer, false)
	if opts.Title != "" {
		f.SetTitle(opts.Title, true)
	}
	if !opts.Created.IsZero() {
		f.SetCreationDate(opts.Created.UTC())
		f.SetModificationDate(opts.Created.UTC())
	}

	return &Document{pdf: f}
}

// AddPage appends a laid-out page. Layout coordinates have their origin at
// the bottom left; fpdf measures y from the top.
func (d *Document) AddPage(layout *render.Layout) error {
	if layout == nil {
		return fmt.Errorf("add page: nil layout")
	}
	if d.out != nil {
		return fmt.Errorf("add page: document already written")
	}

	for _, run := range layout.Runs {
		if _, _, err := fontStyle(run.Font); err != nil {
			return fmt.Errorf("add page %d: %w", d.pages+1, err)
		}
	}

	f := d.pdf
	f.AddPageFormat("P", fpdf.SizeType{Wd: layout.Width, Ht: layout.Height})

	for _, run := range layout.Runs {
		family, style, _ := fontStyle(run.Font)
		f.SetFont(family, style, run.Size)

		text := encode(run.Text)
		x := run.X
		if run.Align == render.AlignRight {
			x -= f.GetStringWidth(text)
		}
		f.Text(x, layout.Height-run.Y, text)
	}

	if err := f.Error(); err != nil {
		return fmt.Errorf("add page %d: %w", d.pages+1, err)
	}
	d.pages++
	return nil
}

// Bytes closes the document and returns the file. Later calls return the
// same bytes.
func (d *Document) Bytes() ([]byte, error) {
	if d.out != nil {
		return d.out, nil
	}
	if d.pages == 0 {
		return nil, ErrNoPages
	}

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	d.out = buf.Bytes()
	return d.out, nil
}

// encode converts s to cp1252 for the core fonts. Characters outside
// cp1252 become "?".
func encode(s string) string {
	var sb strings.Builder
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func fontStyle(f render.Font) (family, style string, err error) {
	switch f {
	case render.FontRegular:
		return "Courier", "", nil
	case render.FontBold:
		return "Courier", "B", nil
	default:
		return "", "", fmt.Errorf("unsupported font %q", f)
	}
}
