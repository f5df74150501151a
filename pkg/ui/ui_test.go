package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"twharvest/pkg/progress"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetColorEnabled(false)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetColorEnabled(true)
		SetQuietMode(false)
	})
	return &buf
}

func TestProgressLine(t *testing.T) {
	SetColorEnabled(false)
	defer SetColorEnabled(true)

	line := ProgressLine("foo", progress.Update{Current: 5, Total: 10, Percent: 50}, 90*time.Second)
	assert.Equal(t, "foo [━━━━━━━━━━──────────] 5/10 windows • 50% • 1m30s", line)

	line = ProgressLine("foo", progress.Update{Current: 0, Total: 0, Percent: 100}, 0)
	assert.Contains(t, line, strings.Repeat("─", barWidth))
}

func TestProgressDisplay(t *testing.T) {
	buf := capture(t)
	d := NewProgressDisplay()

	d.Update("a", progress.Update{Current: 1, Total: 2, Percent: 50})
	d.Update("a", progress.Update{Current: 2, Total: 2, Percent: 100})
	d.Update("b", progress.Update{Current: 1, Total: 4, Percent: 25})
	d.Finish()

	out := buf.String()
	assert.Contains(t, out, "a [")
	assert.Contains(t, out, "2/2 windows")
	assert.Contains(t, out, "1/4 windows")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestQuietMode(t *testing.T) {
	buf := capture(t)
	SetQuietMode(true)

	PrintInfo("Accounts", "3")
	PrintSuccess("done")
	assert.Empty(t, buf.String())

	PrintError("failed", "boom")
	assert.Equal(t, "failed: boom\n", buf.String())
}

func TestColors(t *testing.T) {
	SetColorEnabled(true)
	assert.Equal(t, "\033[31mx\033[0m", Red("x"))
	SetColorEnabled(false)
	assert.Equal(t, "x", Red("x"))
	SetColorEnabled(true)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h1m", FormatDuration(61*time.Minute))
}
