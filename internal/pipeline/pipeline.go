package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/mathsheet/internal/cache"
	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/pdf"
	"github.com/ppiankov/mathsheet/internal/random"
	"github.com/ppiankov/mathsheet/internal/render"
)

// Pipeline orchestrates parse, sample, build, render and PDF encoding
type Pipeline struct {
	config *model.Config
	cache  cache.Cache // Optional, nil disables document reuse
	now    func() time.Time
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithCache enables reuse of seeded documents
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithClock replaces time.Now for date stamps and file names
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	p := &Pipeline{
		config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request is one generation call
type Request struct {
	Config model.GenerationConfig
	Seed   int64 // 0 picks a fresh random seed
}

// Document is a finished worksheet file
type Document struct {
	Bytes     []byte
	FileName  string // Suggested name, e.g. worksheet_20261019_083000.pdf
	Seed      int64  // Seed that reproduces the document
	Pages     int
	Fallbacks []Fallback
	Cached    bool
}

// Generate produces the complete PDF for req. It is all-or-nothing: any
// failure returns an error and no document.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := req.Seed
	explicitSeed := seed != 0
	if !explicitSeed {
		s, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		seed = s
	}

	now := p.now()
	dateStamp := now.Format(p.dateFormat())
	doc := &Document{
		FileName: FileName(now),
		Seed:     seed,
	}

	var key string
	if explicitSeed && p.cache != nil {
		k, err := documentKey(req.Config, seed, dateStamp)
		if err != nil {
			return nil, fmt.Errorf("cache key: %w", err)
		}
		key = k
		if data, ok := p.cache.Get(key); ok {
			var entry cachedDocument
			if err := json.Unmarshal(data, &entry); err == nil {
				doc.Bytes = entry.PDF
				doc.Pages = entry.Pages
				doc.Fallbacks = entry.fallbacks()
				doc.Cached = true
				return doc, nil
			}
		}
	}

	ws, err := NewBuilder(random.New(seed)).Build(req.Config)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := p.renderPDF(ws, req.Config.Numbered, dateStamp, now)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	doc.Bytes = out
	doc.Pages = len(ws.Pages)
	doc.Fallbacks = ws.Fallbacks

	if key != "" {
		entry := newCachedDocument(doc)
		if data, err := json.Marshal(entry); err == nil {
			// A failed cache write only costs a regeneration next time
			_ = p.cache.Set(key, data, 0)
		}
	}

	return doc, nil
}

// renderPDF lays out every page and encodes the document
func (p *Pipeline) renderPDF(ws *Worksheet, numbered bool, dateStamp string, created time.Time) ([]byte, error) {
	doc := pdf.NewDocument(pdf.Options{
		Title:    ws.Header,
		Created:  created,
		Compress: true,
	})

	for _, page := range ws.Pages {
		layout, err := render.RenderPage(page, numbered, dateStamp)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.Number, err)
		}
		if err := doc.AddPage(layout); err != nil {
			return nil, err
		}
	}

	return doc.Bytes()
}

// WriteDocument writes doc to path, or to dir/doc.FileName when path is empty,
// and returns the path written.
func (p *Pipeline) WriteDocument(doc *Document, dir, path string) (string, error) {
	if path == "" {
		if dir == "" {
			dir = p.config.Output.Dir
		}
		path = filepath.Join(dir, doc.FileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, doc.Bytes, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (p *Pipeline) dateFormat() string {
	if p.config.Output.DateFormat == "" {
		return "2006-01-02"
	}
	return p.config.Output.DateFormat
}

// FileName is the suggested download name for a document generated at t
func FileName(t time.Time) string {
	return fmt.Sprintf("worksheet_%s.pdf", t.Format("20060102_150405"))
}
