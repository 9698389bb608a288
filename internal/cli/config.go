package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/nifrel/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "NIFREL"

// sectionNotes head each top-level section of a generated config file
var sectionNotes = map[string]string{
	"endpoint":    "SPARQL endpoint queried for dbo:wikiPageID on a cache miss",
	"cache":       "Turtle file of reference -> Wiki ID mappings; -1 marks a known miss",
	"extract":     "Relation phrases, tried in order; the first one found in a window wins",
	"concurrency": "Parallel lookups (resolve) and documents (batch)",
	"log":         "level: debug|info|warn|error, format: text|json; file enables rotation",
	"metrics":     "Prometheus listener for batch and watch, e.g. :9090",
}

var (
	showEnv   bool
	initForce bool
	initPath  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the nifrel config file",
	Long: `Every setting is read from, in order of precedence:
  command flags, NIFREL_* environment variables, ~/.nifrel/config.yaml, built-in defaults.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration nifrel would run with, as YAML.

With --env, print each key with the environment variable that overrides it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "# from %s\n", used)
		} else {
			fmt.Fprintln(os.Stderr, "# no config file, defaults and environment only")
		}

		if showEnv {
			return printEnvKeys(cmd.OutOrStdout(), viper.AllKeys())
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initPath
		if path == "" {
			var err error
			if path, err = defaultConfigPath(); err != nil {
				return err
			}
		}

		if err := writeConfigFile(path, model.DefaultConfig(), initForce); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
		return nil
	},
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".nifrel", "config.yaml"), nil
}

// envVar names the environment variable overriding a config key
func envVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func printEnvKeys(w io.Writer, keys []string) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		if _, err := fmt.Fprintf(w, "%-28s %-36s %v\n", key, envVar(key), viper.Get(key)); err != nil {
			return err
		}
	}
	return nil
}

// renderConfig encodes cfg as YAML with a note above each section
func renderConfig(cfg *model.Config) ([]byte, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, err
	}
	mapping := &root
	if mapping.Kind == yaml.DocumentNode && len(mapping.Content) > 0 {
		mapping = mapping.Content[0]
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		if note, ok := sectionNotes[key.Value]; ok {
			key.HeadComment = note
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# nifrel configuration. Any key can be overridden by NIFREL_<SECTION>_<KEY>.\n\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeConfigFile writes cfg to path, refusing to replace an existing file unless force is set
func writeConfigFile(path string, cfg *model.Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to replace it)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := renderConfig(cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func init() {
	configShowCmd.Flags().BoolVar(&showEnv, "env", false, "list keys with their environment variables")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing file")
	configInitCmd.Flags().StringVar(&initPath, "path", "", "where to write (default: $HOME/.nifrel/config.yaml)")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
