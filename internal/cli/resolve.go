package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ppiankov/nifrel/internal/worker"
	"github.com/spf13/cobra"
)

var (
	resolveFile     string
	resolveCache    string
	resolveEndpoint string
	resolveTimeout  time.Duration
	resolveNoFlush  bool
	resolveWorkers  int
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [iri...]",
	Short: "Resolve resource IRIs to Wiki page IDs",
	Long: `Resolve looks each resource IRI up in the identifier cache and, on a miss,
asks the SPARQL endpoint for its dbo:wikiPageID. Unknown resources resolve to -1
and are cached as such.

Results are printed as "iri<TAB>id". The cache file is written once at the end
unless --no-flush is given.

Example:
  nifrel resolve http://dbpedia.org/resource/Berlin
  nifrel resolve --file refs.txt --cache ids.ttl
  nifrel resolve http://dbpedia.org/resource/Honolulu --endpoint http://localhost:8890/sparql`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFile, "file", "f", "", "read IRIs from a file (one per line)")
	resolveCmd.Flags().StringVar(&resolveCache, "cache", "", "identifier cache file (default from config)")
	resolveCmd.Flags().StringVar(&resolveEndpoint, "endpoint", "", "SPARQL endpoint URL (default from config)")
	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 0, "per-request timeout (default from config)")
	resolveCmd.Flags().BoolVar(&resolveNoFlush, "no-flush", false, "do not write the cache file")
	resolveCmd.Flags().IntVar(&resolveWorkers, "concurrency", 0, "concurrent lookups (default from config)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Path = resolveCache
	}
	if resolveEndpoint != "" {
		cfg.Endpoint.URL = resolveEndpoint
	}
	if resolveTimeout > 0 {
		cfg.Endpoint.Timeout = resolveTimeout
	}
	if resolveWorkers > 0 {
		cfg.Concurrency.Workers = resolveWorkers
	}

	refs := append([]string(nil), args...)
	if resolveFile != "" {
		fromFile, err := worker.ReadLines(resolveFile)
		if err != nil {
			return fmt.Errorf("read IRIs: %w", err)
		}
		refs = append(refs, fromFile...)
	}
	if len(refs) == 0 {
		return fmt.Errorf("no IRIs given (pass them as arguments or with --file)")
	}

	svc, err := newResolveService(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if verbose {
		fmt.Fprintf(os.Stderr, "Resolving %d IRIs against %s\n", len(refs), cfg.Endpoint.URL)
		fmt.Fprintf(os.Stderr, "Cache: %s (%d entries)\n", displayPath(cfg.Cache.Path), svc.Cache().Len())
	}

	failures := 0
	for _, r := range svc.ResolveAll(ctx, refs, cfg.Concurrency.Workers) {
		fmt.Println(r.String())
		if r.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Reference, r.Err)
		}
	}

	if !resolveNoFlush {
		if err := svc.Flush(); err != nil {
			return fmt.Errorf("flush cache: %w", err)
		}
		if verbose && cfg.Cache.Path != "" {
			fmt.Fprintf(os.Stderr, "✓ Wrote cache: %s\n", cfg.Cache.Path)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d IRIs could not be resolved", failures, len(refs))
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "memory only"
	}
	return path
}
