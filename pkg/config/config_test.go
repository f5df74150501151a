package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Scraper.StrategyMode != StrategyAuto {
		t.Errorf("Expected default strategy to be auto, got %s", config.Scraper.StrategyMode)
	}

	if config.Scraper.Executable != "twint" {
		t.Errorf("Expected default executable to be twint, got %s", config.Scraper.Executable)
	}

	if config.Scraper.Concurrency != 8 {
		t.Errorf("Expected default concurrency to be 8, got %d", config.Scraper.Concurrency)
	}

	if config.Probe.Threshold != 3100 {
		t.Errorf("Expected default probe threshold to be 3100, got %d", config.Probe.Threshold)
	}

	require.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWHARVEST_STRATEGY", "PROFILE")
	t.Setenv("TWHARVEST_EXECUTABLE", "/opt/twint/bin/twint")
	t.Setenv("TWHARVEST_CONCURRENCY", "3")
	t.Setenv("TWHARVEST_MAX_ATTEMPTS", "5")
	t.Setenv("TWHARVEST_OUTPUT", "/tmp/records.ndjson")
	t.Setenv("TWHARVEST_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, StrategyProfile, config.Scraper.StrategyMode)
	assert.Equal(t, "/opt/twint/bin/twint", config.Scraper.Executable)
	assert.Equal(t, 3, config.Scraper.Concurrency)
	assert.Equal(t, 5, config.Retry.MaxAttempts)
	assert.Equal(t, "/tmp/records.ndjson", config.Output.Path)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("TWHARVEST_CONCURRENCY", "lots")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
scraper:
  strategy: interval
  executable: twint-fork
  concurrency: 100
  scratch_dir: /var/tmp/twharvest
probe:
  threshold: 500
  timeout: 5s
  burst: 4
  headers:
    Cookie: lang=en
retry:
  max_attempts: 4
  backoff: linear
  base_delay: 1s
progress:
  step: 5
logging:
  level: warn
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(configPath))

	assert.Equal(t, StrategyInterval, config.Scraper.StrategyMode)
	assert.Equal(t, "twint-fork", config.Scraper.Executable)
	assert.Equal(t, 100, config.Scraper.Concurrency)
	assert.Equal(t, "/var/tmp/twharvest", config.Scraper.ScratchDir)
	assert.Equal(t, 500, config.Probe.Threshold)
	assert.Equal(t, 5*time.Second, config.Probe.Timeout)
	assert.Equal(t, 4, config.Retry.MaxAttempts)
	assert.Equal(t, time.Second, config.Retry.BaseDelay)
	assert.Equal(t, BackoffLinear, config.Retry.Backoff)
	assert.Equal(t, 4, config.Probe.Burst)
	assert.Equal(t, map[string]string{"Cookie": "lang=en"}, config.Probe.Headers)
	assert.Equal(t, 5, config.Progress.Step)
	assert.Equal(t, "json", config.Logging.Format)

	// Fields absent from the file keep their defaults
	assert.Equal(t, "https://twitter.com", config.Probe.BaseURL)

	// Out-of-range concurrency is clamped later, not rejected
	assert.NoError(t, config.Validate())
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("scraper: [unterminated"), 0644))

	config := DefaultConfig()
	assert.Error(t, config.LoadFromFile(configPath))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unknown strategy",
			modify:  func(c *Config) { c.Scraper.StrategyMode = "parallel" },
			wantErr: true,
		},
		{
			name:    "missing executable",
			modify:  func(c *Config) { c.Scraper.Executable = "  " },
			wantErr: true,
		},
		{
			name:    "zero attempts",
			modify:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name:    "auto without probe url",
			modify:  func(c *Config) { c.Probe.BaseURL = "" },
			wantErr: true,
		},
		{
			name: "interval without probe url",
			modify: func(c *Config) {
				c.Scraper.StrategyMode = StrategyInterval
				c.Probe.BaseURL = ""
			},
			wantErr: false,
		},
		{
			name:    "progress step out of range",
			modify:  func(c *Config) { c.Progress.Step = 150 },
			wantErr: true,
		},
		{
			name:    "unknown backoff",
			modify:  func(c *Config) { c.Retry.Backoff = "fibonacci" },
			wantErr: true,
		},
		{
			name:    "empty backoff means exponential",
			modify:  func(c *Config) { c.Retry.Backoff = "" },
			wantErr: false,
		},
		{
			name:    "negative burst",
			modify:  func(c *Config) { c.Probe.Burst = -1 },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"strategy":    "Interval",
		"concurrency": 0,
		"output":      "out.ndjson",
		"progress":    false,
	})

	assert.Equal(t, StrategyInterval, config.Scraper.StrategyMode)
	assert.Equal(t, 0, config.Scraper.Concurrency)
	assert.Equal(t, "out.ndjson", config.Output.Path)
	assert.False(t, config.Progress.Enabled)
	assert.Equal(t, "twint", config.Scraper.Executable)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := DefaultConfig()
	original.Scraper.Concurrency = 4
	require.NoError(t, original.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 4, loaded.Scraper.Concurrency)
}

func TestLoadPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("scraper:\n  concurrency: 2\n  executable: from-file\n"), 0644))

	t.Setenv("TWHARVEST_CONCURRENCY", "6")

	config, err := Load(configPath, map[string]interface{}{"executable": "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, 6, config.Scraper.Concurrency)
	assert.Equal(t, "from-flag", config.Scraper.Executable)
}
