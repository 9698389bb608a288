package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/nifrel/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the nifrel release
const Version = "v0.2.0"

var (
	cfgFile string
	verbose bool

	logger    = slog.Default()
	logCloser io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nifrel",
	Short: "nifrel - Wiki ID resolution and heuristic relation extraction for NIF documents",
	Long: `nifrel works with NIF-annotated RDF documents.

It resolves knowledge-base resources (e.g. DBpedia IRIs) to Wiki page IDs,
answering from a local Turtle cache first and a SPARQL endpoint second.

It also finds the first pair of annotated entity mentions in a sentence whose
enclosed text contains a known relation phrase, and writes that relation back
as RDF.

nifrel matches substrings. It does not understand language.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, logCloser = setupLogger(cfg.Log)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of nifrel.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("nifrel " + Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.nifrel/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("log.file", flags.Lookup("log-file"))

	setDefaults(model.DefaultConfig())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// setDefaults registers every config key so env variables and Unmarshal see it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("endpoint.url", cfg.Endpoint.URL)
	viper.SetDefault("endpoint.timeout", cfg.Endpoint.Timeout)
	viper.SetDefault("endpoint.user_agent", cfg.Endpoint.UserAgent)
	viper.SetDefault("endpoint.max_retries", cfg.Endpoint.MaxRetries)
	viper.SetDefault("endpoint.requests_per_second", cfg.Endpoint.RequestsPerSecond)
	viper.SetDefault("endpoint.burst", cfg.Endpoint.Burst)
	viper.SetDefault("endpoint.respect_robots", cfg.Endpoint.RespectRobots)
	viper.SetDefault("endpoint.http_proxy", cfg.Endpoint.HTTPProxy)
	viper.SetDefault("endpoint.https_proxy", cfg.Endpoint.HTTPSProxy)
	viper.SetDefault("endpoint.no_proxy", cfg.Endpoint.NoProxy)

	viper.SetDefault("cache.path", cfg.Cache.Path)
	viper.SetDefault("cache.auto_flush", cfg.Cache.AutoFlush)

	viper.SetDefault("extract.relations", cfg.Extract.Relations)
	viper.SetDefault("extract.output_format", cfg.Extract.OutputFormat)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
	viper.SetDefault("log.file", cfg.Log.File)
	viper.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	viper.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	viper.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)

	viper.SetDefault("metrics.addr", cfg.Metrics.Addr)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".nifrel"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match NIFREL_*, e.g. NIFREL_ENDPOINT_URL
	viper.SetEnvPrefix("NIFREL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, env and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Endpoint.Timeout <= 0 {
		cfg.Endpoint.Timeout = 30 * time.Second
	}
	return cfg, nil
}
