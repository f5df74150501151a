package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Strategy modes accepted by Scraper.StrategyMode
const (
	StrategyAuto     = "auto"
	StrategyInterval = "interval"
	StrategyProfile  = "profile"
)

// Retry backoff kinds accepted by Retry.Backoff
const (
	BackoffExponential = "exponential"
	BackoffLinear      = "linear"
	BackoffConstant    = "constant"
)

// MaxConcurrency is the hard cap on simultaneously running scraper processes
const MaxConcurrency = 8

// Config holds all configuration options for a harvest job. It is resolved once
// at job start and treated as read-only afterwards.
type Config struct {
	// External scraper invocation
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Auto-strategy profile probe
	Probe ProbeConfig `yaml:"probe" json:"probe"`

	// Per-task retry policy
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Where normalized records go
	Output OutputConfig `yaml:"output" json:"output"`

	// Progress notifications
	Progress ProgressConfig `yaml:"progress" json:"progress"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScraperConfig controls how the external scraper is run
type ScraperConfig struct {
	StrategyMode string `yaml:"strategy" json:"strategy"`
	Executable   string `yaml:"executable" json:"executable"`
	Concurrency  int    `yaml:"concurrency" json:"concurrency"`
	ScratchDir   string `yaml:"scratch_dir" json:"scratch_dir"`
}

// ProbeConfig controls the profile page probe used by the auto strategy
type ProbeConfig struct {
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	Threshold         int           `yaml:"threshold" json:"threshold"`
	CountSelectors    []string      `yaml:"count_selectors" json:"count_selectors"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	// Burst lets that many probes go out back to back before pacing applies
	Burst int `yaml:"burst" json:"burst"`
	// Headers are sent with every probe on top of the browser defaults
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// RetryConfig holds the retry policy for scraper tasks
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Backoff     string        `yaml:"backoff" json:"backoff"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// OutputConfig holds output configuration. An empty Path means stdout.
type OutputConfig struct {
	Path string `yaml:"path" json:"path"`
}

// ProgressConfig holds progress reporting preferences
type ProgressConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Step    int  `yaml:"step" json:"step"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			StrategyMode: StrategyAuto,
			Executable:   "twint",
			Concurrency:  MaxConcurrency,
			ScratchDir:   os.TempDir(),
		},
		Probe: ProbeConfig{
			BaseURL:   "https://twitter.com",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:   15 * time.Second,
			Threshold: 3100,
			CountSelectors: []string{
				`[data-nav="tweets"] .ProfileNav-value`,
				`.profile-stat-num`,
			},
			RequestsPerMinute: 30,
			Burst:             1,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Backoff:     BackoffExponential,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
		},
		Progress: ProgressConfig{
			Enabled: true,
			Step:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if mode := os.Getenv("TWHARVEST_STRATEGY"); mode != "" {
		c.Scraper.StrategyMode = strings.ToLower(mode)
	}
	if exe := os.Getenv("TWHARVEST_EXECUTABLE"); exe != "" {
		c.Scraper.Executable = exe
	}
	if dir := os.Getenv("TWHARVEST_SCRATCH_DIR"); dir != "" {
		c.Scraper.ScratchDir = dir
	}
	if concurrency := os.Getenv("TWHARVEST_CONCURRENCY"); concurrency != "" {
		val, err := strconv.Atoi(concurrency)
		if err != nil {
			return fmt.Errorf("invalid TWHARVEST_CONCURRENCY %q: %w", concurrency, err)
		}
		c.Scraper.Concurrency = val
	}
	if attempts := os.Getenv("TWHARVEST_MAX_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("invalid TWHARVEST_MAX_ATTEMPTS %q: %w", attempts, err)
		}
		c.Retry.MaxAttempts = val
	}
	if backoff := os.Getenv("TWHARVEST_RETRY_BACKOFF"); backoff != "" {
		c.Retry.Backoff = strings.ToLower(backoff)
	}
	if baseURL := os.Getenv("TWHARVEST_PROBE_URL"); baseURL != "" {
		c.Probe.BaseURL = baseURL
	}
	if output := os.Getenv("TWHARVEST_OUTPUT"); output != "" {
		c.Output.Path = output
	}
	if logLevel := os.Getenv("TWHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("TWHARVEST_LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".twharvest.yaml",
		".twharvest.yml",
		filepath.Join(home, ".config", "twharvest", "config.yaml"),
		filepath.Join(home, ".config", "twharvest", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Concurrency outside [1, 8] is
// not an error; the executor clamps it.
func (c *Config) Validate() error {
	var errs []error

	switch c.Scraper.StrategyMode {
	case StrategyAuto, StrategyInterval, StrategyProfile:
	default:
		errs = append(errs, fmt.Errorf("unknown strategy mode %q", c.Scraper.StrategyMode))
	}
	if strings.TrimSpace(c.Scraper.Executable) == "" {
		errs = append(errs, errors.New("scraper executable is required"))
	}
	if c.Scraper.ScratchDir == "" {
		errs = append(errs, errors.New("scratch directory is required"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		errs = append(errs, errors.New("retry delays cannot be negative"))
	}
	switch c.Retry.Backoff {
	case "", BackoffExponential, BackoffLinear, BackoffConstant:
	default:
		errs = append(errs, fmt.Errorf("unknown retry backoff %q", c.Retry.Backoff))
	}

	if c.Scraper.StrategyMode == StrategyAuto {
		if c.Probe.BaseURL == "" {
			errs = append(errs, errors.New("probe base URL is required for auto strategy"))
		}
		if len(c.Probe.CountSelectors) == 0 {
			errs = append(errs, errors.New("at least one probe count selector is required"))
		}
	}
	if c.Probe.Threshold < 0 {
		errs = append(errs, errors.New("probe threshold cannot be negative"))
	}
	if c.Probe.Burst < 0 {
		errs = append(errs, errors.New("probe burst cannot be negative"))
	}

	if c.Progress.Step <= 0 || c.Progress.Step > 100 {
		errs = append(errs, errors.New("progress step must be between 1 and 100"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	if f := strings.ToLower(c.Logging.Format); f != "console" && f != "json" {
		errs = append(errs, errors.New("log format must be console or json"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override the loaded values.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if mode, ok := flags["strategy"].(string); ok && mode != "" {
		c.Scraper.StrategyMode = strings.ToLower(mode)
	}
	if exe, ok := flags["executable"].(string); ok && exe != "" {
		c.Scraper.Executable = exe
	}
	if dir, ok := flags["scratch-dir"].(string); ok && dir != "" {
		c.Scraper.ScratchDir = dir
	}
	if concurrency, ok := flags["concurrency"].(int); ok {
		c.Scraper.Concurrency = concurrency
	}
	if attempts, ok := flags["max-attempts"].(int); ok {
		c.Retry.MaxAttempts = attempts
	}
	if baseURL, ok := flags["probe-url"].(string); ok && baseURL != "" {
		c.Probe.BaseURL = baseURL
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Path = output
	}
	if progress, ok := flags["progress"].(bool); ok {
		c.Progress.Enabled = progress
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat, ok := flags["log-format"].(string); ok && logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twharvest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
