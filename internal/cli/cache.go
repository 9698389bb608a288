package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/nifrel/internal/cache"
	"github.com/spf13/cobra"
)

var cacheShowPath string

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the identifier cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every cached IRI and Wiki page ID",
	Long: `Print the persisted identifier cache as "iri<TAB>id" lines, sorted by IRI.
Entries with id -1 are cached misses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("cache") {
			cfg.Cache.Path = cacheShowPath
		}
		if cfg.Cache.Path == "" {
			return fmt.Errorf("no cache file configured")
		}

		c, err := cache.Open(cfg.Cache.Path, cache.WithLogger(logger))
		if err != nil {
			return err
		}

		known := 0
		for _, e := range c.Entries() {
			fmt.Printf("%s\t%d\n", e.Reference, e.ID)
			if e.Known() {
				known++
			}
		}

		fmt.Fprintf(os.Stderr, "\n%d entries (%d known, %d misses) in %s\n", c.Len(), known, c.Len()-known, cfg.Cache.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)

	cacheShowCmd.Flags().StringVar(&cacheShowPath, "cache", "", "identifier cache file (default from config)")
}
