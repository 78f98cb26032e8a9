package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/pipeline"
)

// Generator produces and stores worksheet documents
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*pipeline.Document, error)
	WriteDocument(doc *pipeline.Document, dir, path string) (string, error)
}

// BatchFile is the YAML layout of a batch job file
type BatchFile struct {
	Jobs []BatchJob `yaml:"jobs"`
}

// BatchJob describes one worksheet. Unset fields take the batch defaults.
type BatchJob struct {
	Name            string  `yaml:"name"`
	A               *string `yaml:"a"`
	B               *string `yaml:"b"`
	Ops             *string `yaml:"ops"`
	Pages           *int    `yaml:"pages"`
	Title           *string `yaml:"title"`
	Answers         *bool   `yaml:"answers"`
	Numbered        *bool   `yaml:"numbered"`
	AvoidNegative   *bool   `yaml:"avoid_negative"`
	IntegerDivision *bool   `yaml:"integer_division"`
	Seed            int64   `yaml:"seed"`
}

// Config merges the job over defaults
func (j BatchJob) Config(defaults model.GenerationConfig) model.GenerationConfig {
	cfg := defaults
	if j.A != nil {
		cfg.ASpec = *j.A
	}
	if j.B != nil {
		cfg.BSpec = *j.B
	}
	if j.Ops != nil {
		cfg.OpsSpec = *j.Ops
	}
	if j.Pages != nil {
		cfg.Pages = *j.Pages
	}
	if j.Title != nil {
		cfg.Header = *j.Title
	}
	if j.Answers != nil {
		cfg.ShowAnswers = *j.Answers
	}
	if j.Numbered != nil {
		cfg.Numbered = *j.Numbered
	}
	if j.AvoidNegative != nil {
		cfg.AvoidNegative = *j.AvoidNegative
	}
	if j.IntegerDivision != nil {
		cfg.IntegerDivision = *j.IntegerDivision
	}
	return cfg
}

// WorksheetJob generates one document and writes it to Path
type WorksheetJob struct {
	Index     int
	Name      string
	Path      string
	Request   pipeline.Request
	Generator Generator
	Limiter   *Limiter // Optional
}

// Execute generates and writes the document
func (j *WorksheetJob) Execute(ctx context.Context) Result {
	res := &JobResult{Index: j.Index, Name: j.Name}

	doc, err := j.Generator.Generate(ctx, j.Request)
	if err != nil {
		res.Error = err
		return res
	}
	res.Document = doc

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Path); err != nil {
			res.Error = fmt.Errorf("wait for write slot: %w", err)
			return res
		}
	}

	path, err := j.Generator.WriteDocument(doc, "", j.Path)
	if err != nil {
		res.Error = err
		return res
	}
	res.Path = path
	return res
}

// JobResult is the outcome of one WorksheetJob
type JobResult struct {
	Index    int
	Name     string
	Path     string
	Document *pipeline.Document
	Error    error
}

// GetError returns the job error
func (r *JobResult) GetError() error {
	return r.Error
}

// BatchProcessor runs worksheet jobs concurrently
type BatchProcessor struct {
	generator   Generator
	concurrency int
	limiter     *Limiter
	defaults    model.GenerationConfig
}

// NewBatchProcessor creates a processor. writesPerSecond and burst configure
// the per-directory write limiter; a non-positive rate disables it.
func NewBatchProcessor(generator Generator, concurrency int, writesPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		generator:   generator,
		concurrency: concurrency,
		defaults:    model.DefaultGenerationConfig(),
	}
	if writesPerSecond > 0 {
		b.limiter = NewLimiter(writesPerSecond, burst)
	}
	return b
}

// WithDefaults sets the config that job fields are merged over
func (b *BatchProcessor) WithDefaults(cfg model.GenerationConfig) *BatchProcessor {
	b.defaults = cfg
	return b
}

// ProcessJobs runs jobs and returns one result per job in input order. Jobs
// that never ran because ctx ended report the context error.
func (b *BatchProcessor) ProcessJobs(ctx context.Context, jobs []BatchJob, outputDir string) []*JobResult {
	if len(jobs) == 0 {
		return []*JobResult{}
	}

	names := uniqueNames(jobs)
	work := make([]Job, len(jobs))
	for i, job := range jobs {
		work[i] = &WorksheetJob{
			Index:     i,
			Name:      names[i],
			Path:      filepath.Join(outputDir, names[i]+".pdf"),
			Request:   pipeline.Request{Config: job.Config(b.defaults), Seed: job.Seed},
			Generator: b.generator,
			Limiter:   b.limiter,
		}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	results := pool.Run(work)

	out := make([]*JobResult, len(jobs))
	for _, r := range results {
		jr := r.(*JobResult)
		out[jr.Index] = jr
	}
	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &JobResult{Index: i, Name: names[i], Error: fmt.Errorf("not run: %w", err)}
		}
	}

	return out
}

// ProcessFile reads a batch file and runs its jobs
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath, outputDir string) ([]*JobResult, error) {
	jobs, err := ReadJobsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}

	return b.ProcessJobs(ctx, jobs, outputDir), nil
}

// ReadJobsFromFile parses a YAML batch file
func ReadJobsFromFile(filePath string) ([]BatchJob, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	if len(file.Jobs) == 0 {
		return nil, fmt.Errorf("%s: no jobs", filePath)
	}

	return file.Jobs, nil
}

// uniqueNames gives every job a distinct file-safe name. A suffixed name
// never takes a name that a later job asks for explicitly.
func uniqueNames(jobs []BatchJob) []string {
	names := make([]string, len(jobs))
	bases := make([]string, len(jobs))
	used := make(map[string]bool)
	claimed := make(map[string]bool)

	for i, job := range jobs {
		base := SanitizeFilename(job.Name)
		if base == "" {
			base = fmt.Sprintf("worksheet-%d", i+1)
		}
		bases[i] = base
		claimed[base] = true
	}

	for i, base := range bases {
		name := base
		for n := 2; used[name] || (name != base && claimed[name]); n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}

	return names
}

// SanitizeFilename reduces s to a safe file name stem
func SanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)

	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")

	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}

	return s
}
