package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Resolver    ResolverConfig   `toml:"resolver"`
	Dedup       DedupConfig      `toml:"dedup"`
	Extraction  ExtractionConfig `toml:"extraction"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Alerts      AlertsConfig     `toml:"alerts"`
	Paper       PaperConfig      `toml:"paper"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// PipelineConfig bounds one batch run of the engine
type PipelineConfig struct {
	Sources       []string `toml:"sources"`        // Collector feeds to run; empty = all configured
	FeedDir       string   `toml:"feed_dir"`       // Directory of pre-collected feed files, one per source
	RunTimeout    string   `toml:"run_timeout"`    // Global timeout for a whole run, e.g. "5m"
	LookupTimeout string   `toml:"lookup_timeout"` // Per external call timeout, e.g. "10s"
	LookupRetries int      `toml:"lookup_retries"` // Bounded retries for transient lookup failures
	LookupBackoff string   `toml:"lookup_backoff"` // Initial backoff between retries, e.g. "500ms"
	MinConfidence int      `toml:"min_confidence"` // Signals below this are still emitted but not alerted
}

// ResolverConfig tunes the three ticker resolution tiers
type ResolverConfig struct {
	MinSimilarity float64 `toml:"min_similarity"` // Fuzzy tier acceptance threshold (default 0.6)
	CacheTTL      string  `toml:"cache_ttl"`      // TTL for resolution cache entries, e.g. "1h"
	LookupURL     string  `toml:"lookup_url"`     // External entity lookup endpoint
	LookupRate    int     `toml:"lookup_rate"`    // Requests per second to the lookup collaborator
}

// DedupConfig controls signal merging
type DedupConfig struct {
	MergeWindow string `toml:"merge_window"` // e.g. "72h"
}

// ExtractionConfig selects the NLP strategy producing extracted fields
type ExtractionConfig struct {
	Mode string `toml:"mode"` // "regex", "claude" or "gemini"
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// AlertsConfig configures the webhook alerter
type AlertsConfig struct {
	Enabled       bool   `toml:"enabled"`
	WebhookURL    string `toml:"webhook_url"`
	MinConfidence int    `toml:"min_confidence"` // Only alert signals at or above this confidence
	RatePerSecond int    `toml:"rate_per_second"`
}

// PaperConfig configures the paper trading simulator
type PaperConfig struct {
	Enabled       bool    `toml:"enabled"`
	StartingCash  float64 `toml:"starting_cash"`
	TradeQuantity int     `toml:"trade_quantity"`
	MinConfidence int     `toml:"min_confidence"`
}

// SchedulerConfig configures cron-triggered pipeline runs
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// DefaultConfig returns the baseline configuration before file and
// environment overrides are applied
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/medsignals",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Pipeline: PipelineConfig{
			FeedDir:       "./data/feeds",
			RunTimeout:    "5m",
			LookupTimeout: "10s",
			LookupRetries: 3,
			LookupBackoff: "500ms",
			MinConfidence: 50,
		},
		Resolver: ResolverConfig{
			MinSimilarity: 0.6,
			CacheTTL:      "1h",
			LookupURL:     "https://query.wikidata.org/sparql",
			LookupRate:    5,
		},
		Dedup: DedupConfig{
			MergeWindow: "72h",
		},
		Extraction: ExtractionConfig{
			Mode: "regex",
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Temperature: 0.1,
			Timeout:     "60s",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.1,
			Timeout:     "60s",
		},
		Alerts: AlertsConfig{
			MinConfidence: 70,
			RatePerSecond: 1,
		},
		Paper: PaperConfig{
			StartingCash:  100000,
			TradeQuantity: 100,
			MinConfidence: 60,
		},
		Scheduler: SchedulerConfig{
			Schedule: "0 */4 * * *",
		},
	}
}

// LoadFromFiles loads configuration with the precedence
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// ones; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies MEDSIGNALS_* environment variables
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEDSIGNALS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MEDSIGNALS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("MEDSIGNALS_WEBHOOK_URL"); v != "" {
		cfg.Alerts.WebhookURL = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(cfg *Config, port int, host string, sources []string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if len(sources) > 0 {
		cfg.Pipeline.Sources = sources
	}
}

// validateConfig rejects configurations the engine cannot run with
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Resolver.MinSimilarity < 0 || cfg.Resolver.MinSimilarity > 1 {
		return fmt.Errorf("resolver min_similarity must be in [0,1], got %v", cfg.Resolver.MinSimilarity)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"pipeline.run_timeout", cfg.Pipeline.RunTimeout},
		{"pipeline.lookup_timeout", cfg.Pipeline.LookupTimeout},
		{"pipeline.lookup_backoff", cfg.Pipeline.LookupBackoff},
		{"resolver.cache_ttl", cfg.Resolver.CacheTTL},
		{"dedup.merge_window", cfg.Dedup.MergeWindow},
	} {
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", field.name, field.value)
		}
	}
	switch cfg.Extraction.Mode {
	case "regex", "claude", "gemini":
	default:
		return fmt.Errorf("invalid extraction mode %q: must be 'regex', 'claude' or 'gemini'", cfg.Extraction.Mode)
	}
	return nil
}

// MergeWindow returns the parsed dedup merge window
func (c *Config) MergeWindow() time.Duration {
	d, err := time.ParseDuration(c.Dedup.MergeWindow)
	if err != nil {
		return 72 * time.Hour
	}
	return d
}

// RunTimeout returns the parsed global run timeout
func (c *Config) RunTimeout() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.RunTimeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
