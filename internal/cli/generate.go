package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/pipeline"
	"github.com/ppiankov/mathsheet/internal/sampler"
)

var (
	aSpec           string
	bSpec           string
	opsSpec         string
	pagesRaw        string
	title           string
	showAnswers     bool
	numbered        bool
	avoidNegative   bool
	integerDivision bool
	seed            int64
	outPath         string
	genOutputDir    string
	genTimeout      time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a worksheet PDF",
	Long: `Generate draws 60 problems per page from the operand and operator sets and
writes a PDF with one problems page per worksheet, each optionally followed by
its answer key.

An operand or operator set that cannot be parsed falls back to its default
(a: 0-10, b: 0-10, ops: +). Use --verbose to see when that happens.

Example:
  mathsheet generate
  mathsheet generate --a 0-12 --b 1-12 --ops "×÷" --pages 5
  mathsheet generate --a 10-99 --b 0-9 --ops - --avoid-negative --out quiz.pdf
  mathsheet generate --seed 42 --title "Friday quiz"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	defaults := model.DefaultGenerationConfig()

	// Problem flags
	generateCmd.Flags().StringVar(&aSpec, "a", defaults.ASpec, `left operand set, e.g. "0-10, 15"`)
	generateCmd.Flags().StringVar(&bSpec, "b", defaults.BSpec, "right operand set")
	generateCmd.Flags().StringVar(&opsSpec, "ops", defaults.OpsSpec, `operators, e.g. "+-" or "×, ÷"`)
	generateCmd.Flags().StringVar(&pagesRaw, "pages", fmt.Sprint(defaults.Pages), "number of worksheets (1-100)")
	generateCmd.Flags().StringVar(&title, "title", defaults.Header, "page header")
	generateCmd.Flags().BoolVar(&showAnswers, "answers", defaults.ShowAnswers, "add an answer key page after each worksheet")
	generateCmd.Flags().BoolVar(&numbered, "numbered", defaults.Numbered, "number the problems")
	generateCmd.Flags().BoolVar(&avoidNegative, "avoid-negative", defaults.AvoidNegative, "reject subtractions with a negative result")
	generateCmd.Flags().BoolVar(&integerDivision, "integer-division", defaults.IntegerDivision, "only allow divisions with a whole-number result")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible worksheet (0 picks one)")

	// Output flags
	generateCmd.Flags().StringVar(&outPath, "out", "", "output PDF path (default: <output-dir>/worksheet_<timestamp>.pdf)")
	generateCmd.Flags().StringVar(&genOutputDir, "output-dir", "", "output directory (default from config)")
	generateCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the document cache")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", time.Minute, "generation timeout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gen := generationConfig(cmd, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), genTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Generating: %d worksheet(s), answers %v\n", model.ClampPages(gen.Pages), gen.ShowAnswers)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled && !noCache)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithCache(documentCache(cfg)))

	doc, err := p.Generate(ctx, pipeline.Request{Config: gen, Seed: seed})
	if err != nil {
		pagesInput := fmt.Sprint(gen.Pages)
		if cmd.Flags().Changed("pages") {
			pagesInput = pagesRaw
		}
		printFailure(os.Stderr, err, gen, pagesInput)
		return &reportedError{err: fmt.Errorf("generate failed: %w", err)}
	}

	if cfg.Output.Verbose {
		for _, fb := range doc.Fallbacks {
			fmt.Fprintf(os.Stderr, "⚠️  %s: %v; using %q\n", fb.Field, fb.Err, fb.Default)
		}
		fmt.Fprintf(os.Stderr, "✓ Seed %d\n", doc.Seed)
		fmt.Fprintf(os.Stderr, "✓ Rendered %d page(s)\n", doc.Pages)
		if doc.Cached {
			fmt.Fprintf(os.Stderr, "✓ Reused cached document\n")
		}
	}

	path, err := p.WriteDocument(doc, genOutputDir, outPath)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}

// generationConfig starts from the configured defaults and applies only the
// flags the user actually set.
func generationConfig(cmd *cobra.Command, cfg *model.Config) model.GenerationConfig {
	gen := cfg.Worksheet.GenerationConfig()
	flags := cmd.Flags()

	if flags.Changed("a") {
		gen.ASpec = aSpec
	}
	if flags.Changed("b") {
		gen.BSpec = bSpec
	}
	if flags.Changed("ops") {
		gen.OpsSpec = opsSpec
	}
	if flags.Changed("pages") {
		gen.Pages = model.ParsePages(pagesRaw)
	}
	if flags.Changed("title") {
		gen.Header = title
	}
	if flags.Changed("answers") {
		gen.ShowAnswers = showAnswers
	}
	if flags.Changed("numbered") {
		gen.Numbered = numbered
	}
	if flags.Changed("avoid-negative") {
		gen.AvoidNegative = avoidNegative
	}
	if flags.Changed("integer-division") {
		gen.IntegerDivision = integerDivision
	}

	return gen
}

// reportedError marks an error that was already explained on stderr
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err has already been printed for the user
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// printFailure explains a failed generation and echoes the inputs as given,
// so they can be adjusted and retried.
func printFailure(w io.Writer, err error, gen model.GenerationConfig, pages string) {
	var genErr *sampler.GenerationError
	if errors.As(err, &genErr) {
		fmt.Fprintf(w, "✗ %s\n", genErr.Error())
	} else {
		fmt.Fprintf(w, "✗ %v\n", err)
	}

	fmt.Fprintf(w, "\nYour inputs:\n")
	fmt.Fprintf(w, "  a:                %s\n", gen.ASpec)
	fmt.Fprintf(w, "  b:                %s\n", gen.BSpec)
	fmt.Fprintf(w, "  ops:              %s\n", gen.OpsSpec)
	fmt.Fprintf(w, "  pages:            %s\n", pages)
	fmt.Fprintf(w, "  title:            %s\n", gen.Header)
	fmt.Fprintf(w, "  answers:          %v\n", gen.ShowAnswers)
	fmt.Fprintf(w, "  numbered:         %v\n", gen.Numbered)
	fmt.Fprintf(w, "  avoid negative:   %v\n", gen.AvoidNegative)
	fmt.Fprintf(w, "  integer division: %v\n", gen.IntegerDivision)
	fmt.Fprintln(w)
}
