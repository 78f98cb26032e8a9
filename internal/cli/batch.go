package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/pipeline"
	"github.com/ppiankov/mathsheet/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Generate many worksheets from a YAML job file in parallel",
	Long: `Batch generates one PDF per job listed in a YAML file:
- Each job may set a, b, ops, pages, title, answers, numbered,
  avoid_negative, integer_division and seed
- Unset fields take the configured worksheet defaults
- Jobs run in parallel with a configurable worker count
- Output goes to <output-dir>/<job name>.pdf

Job file:
  jobs:
    - name: times-tables
      a: "1-12"
      b: "1-12"
      ops: "×"
      pages: 3
    - name: division
      ops: "÷"
      seed: 42

Example:
  mathsheet batch jobs.yaml
  mathsheet batch jobs.yaml --concurrency 8 --output-dir ./worksheets`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config, else CPU count)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for PDFs (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the document cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	dir := batchOutputDir(outputDir, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Mathsheet Batch Generation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Job file:     %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithCache(documentCache(cfg)))

	processor := worker.NewBatchProcessor(p, workers, cfg.RateLimiting.WritesPerSecond, cfg.RateLimiting.BurstSize).
		WithDefaults(cfg.Worksheet.GenerationConfig())

	fmt.Fprintf(os.Stderr, "⚙️  Generating worksheets with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file, dir)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	pageCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Name, result.Error)
			continue
		}

		successCount++
		pageCount += result.Document.Pages

		if cfg.Output.Verbose {
			for _, fb := range result.Document.Fallbacks {
				fmt.Fprintf(os.Stderr, "  ⚠️  %s: %s: %v; using %q\n", result.Name, fb.Field, fb.Err, fb.Default)
			}
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d pages, seed %d)\n", result.Path, result.Document.Pages, result.Document.Seed)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d jobs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Pages:     %d\n", pageCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", dir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d jobs failed", failureCount, len(results))
	}
	return nil
}

// batchOutputDir prefers the flag, then output.dir from config
func batchOutputDir(flag string, cfg *model.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return "."
}
