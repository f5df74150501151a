package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twharvest/pkg/config"
	"twharvest/pkg/ui"
)

// execute runs the root command with args and returns stdout and stderr
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		inputFile = ""
		planAt = ""
		configFile = ""
		ui.SetOutput(os.Stderr)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolveCommand(t *testing.T) {
	stdout, _, err := execute(t, "resolve", "42", "007", "@nasa", "https://twitter.com/esa/")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"42", "id", "42"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"007", "text", "007"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"@nasa", "text", "nasa"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"https://twitter.com/esa/", "text", "esa"}, strings.Fields(lines[3]))
}

func TestResolveCommandWithoutAccounts(t *testing.T) {
	_, _, err := execute(t, "resolve")
	assert.ErrorContains(t, err, "no accounts given")
}

func TestPlanCommand(t *testing.T) {
	stdout, stderr, err := execute(t, "plan", "--at", "2011-01-09")
	require.NoError(t, err)

	assert.Equal(t,
		"2011-01-01 00:00:00\t2011-01-08 00:00:00\n2011-01-08 00:00:00\t2011-01-10 00:00:00\n",
		stdout)
	assert.Contains(t, stderr, "2 windows")

	_, _, err = execute(t, "plan", "--at", "yesterday")
	assert.ErrorContains(t, err, "invalid --at date")
}

func TestConfigValidateWritesToCommandStderr(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scraper.ScratchDir = t.TempDir()
	path := filepath.Join(t.TempDir(), "twharvest.yaml")
	require.NoError(t, cfg.Save(path))

	stdout, stderr, err := execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Configuration is valid")
	assert.Contains(t, stderr, "twint")
}
