package model

import "time"

// Config is the complete nifrel configuration
type Config struct {
	Endpoint    EndpointConfig    `yaml:"endpoint" mapstructure:"endpoint"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// EndpointConfig configures the remote SPARQL endpoint
type EndpointConfig struct {
	URL               string        `yaml:"url" mapstructure:"url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the identifier cache
type CacheConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`             // Turtle file, empty for memory only
	AutoFlush bool   `yaml:"auto_flush" mapstructure:"auto_flush"` // Flush after every newly learned mapping
}

// ExtractConfig configures relation extraction
type ExtractConfig struct {
	Relations    []string `yaml:"relations" mapstructure:"relations"`         // Ordered relation phrases
	OutputFormat string   `yaml:"output_format" mapstructure:"output_format"` // turtle or ntriples
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// MetricsConfig configures the Prometheus listener
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:               "https://dbpedia.org/sparql",
			Timeout:           30 * time.Second,
			UserAgent:         "nifrel/0.1 (+https://github.com/ppiankov/nifrel)",
			MaxRetries:        3,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			Path: "dbpediaids.ttl",
		},
		Extract: ExtractConfig{
			Relations:    DefaultRelations(),
			OutputFormat: "turtle",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultRelations returns the built-in relation phrases, in match priority order
func DefaultRelations() []string {
	return []string{
		"born in",
		"died in",
		"married to",
		"wife of",
		"husband of",
		"son of",
		"daughter of",
		"founded",
		"founder of",
		"president of",
		"ceo of",
		"member of",
		"works for",
		"capital of",
		"located in",
		"part of",
		"author of",
		"wrote",
		"directed",
		"plays for",
	}
}
