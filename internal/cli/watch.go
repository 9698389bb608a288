package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ppiankov/nifrel/internal/graph"
	"github.com/ppiankov/nifrel/internal/metric"
	"github.com/ppiankov/nifrel/internal/pipeline"
	"github.com/ppiankov/nifrel/internal/watch"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract relations from NIF documents as they appear in a directory",
	Long: `Watch runs extraction on every .ttl or .nt file created or rewritten in a
directory, once the file has been quiet for the debounce interval. Results are
written to the output directory exactly as batch writes them.

Example:
  nifrel watch ./inbox --output-dir ./relations
  nifrel watch ./inbox --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&outputDir, "output-dir", "./nifrel-relations", "output directory for relation documents")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet time before a changed file is processed")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().StringVar(&extractFormat, "format", "", "output format: turtle or ntriples (default from config)")
	watchCmd.Flags().StringSliceVar(&extractRelations, "relations", nil, "relation phrases in priority order (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := extractSettings(cmd, cfg)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	m := metric.New()
	stopMetrics := serveMetrics(cfg.Metrics.Addr, m)
	defer stopMetrics()

	p := pipeline.NewPipelineFromConfig(cfg, pipeline.WithLogger(logger), pipeline.WithMetrics(m))
	renderer := pipeline.NewRenderer(os.Stdout)

	handle := func(ctx context.Context, path string) {
		result, err := p.ExtractFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			return
		}
		if !result.Found() {
			fmt.Fprintf(os.Stderr, "· %s: no relation\n", path)
			return
		}
		outPath := pipeline.OutputPath(outputDir, path, format)
		if _, err := renderer.Render(result, outPath, format); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			return
		}
		a := result.Assertion
		fmt.Fprintf(os.Stderr, "✓ %s: %s -[%s]-> %s\n", path, a.Subject, a.Relation, a.Object)
	}

	w, err := watch.New(dir, watchDebounce, handle, logger)
	if err != nil {
		return err
	}
	w.Ignore(isRelationOutput)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Watching %s (output: %s). Press Ctrl+C to stop.\n", dir, outputDir)
	return w.Run(ctx)
}

// isRelationOutput reports whether path is a file written by batch or watch
func isRelationOutput(path string) bool {
	name := filepath.Base(path)
	for _, f := range []graph.Format{graph.FormatTurtle, graph.FormatNTriples} {
		if strings.HasSuffix(name, ".rel"+f.Extension()) {
			return true
		}
	}
	return false
}
