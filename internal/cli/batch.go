package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/ppiankov/nifrel/internal/metric"
	"github.com/ppiankov/nifrel/internal/pipeline"
	"github.com/ppiankov/nifrel/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	metricsAddr  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|list-file>",
	Short: "Extract relations from many NIF documents concurrently",
	Long: `Batch runs extraction over every .ttl and .nt file below a directory, or over
the paths listed in a file (one per line, # for comments).

Each document with a relation gets "<name>.rel.ttl" (or .rel.nt) in the output
directory. Documents without a relation produce no file.

Example:
  nifrel batch ./corpus --output-dir ./relations
  nifrel batch inputs.txt --concurrency 8 --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./nifrel-relations", "output directory for relation documents")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	batchCmd.Flags().StringVar(&extractFormat, "format", "", "output format: turtle or ntriples (default from config)")
	batchCmd.Flags().StringSliceVar(&extractRelations, "relations", nil, "relation phrases in priority order (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := extractSettings(cmd, cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  nifrel Batch Extraction\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", input)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Format:       %s\n", format)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	m := metric.New()
	stopMetrics := serveMetrics(cfg.Metrics.Addr, m)
	defer stopMetrics()

	p := pipeline.NewPipelineFromConfig(cfg, pipeline.WithLogger(logger), pipeline.WithMetrics(m))
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Listing documents...\n")
	paths, err := worker.ListInputs(input)
	if err != nil {
		return fmt.Errorf("list inputs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d documents\n", len(paths))
	fmt.Fprintf(os.Stderr, "\n")

	results := processor.ProcessFiles(ctx, paths)
	renderer := pipeline.NewRenderer(os.Stdout)
	writeFailures := 0

	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		if !result.Result.Found() {
			if verbose {
				fmt.Fprintf(os.Stderr, "· %s: no relation\n", result.Path)
			}
			continue
		}

		outPath := pipeline.OutputPath(outputDir, result.Path, format)
		if _, err := renderer.Render(result.Result, outPath, format); err != nil {
			writeFailures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		a := result.Result.Assertion
		fmt.Fprintf(os.Stderr, "✓ %s: %s -[%s]-> %s\n", result.Path, a.Subject, a.Relation, a.Object)
	}

	summary := worker.Summarize(results)
	skipped := len(paths) - len(results)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d documents\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Relations:   %d\n", summary.Found-writeFailures)
	fmt.Fprintf(os.Stderr, "  None found:  %d\n", summary.Empty)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", summary.Failed+writeFailures)
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Not run:     %d (cancelled)\n", skipped)
	}
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	return nil
}
