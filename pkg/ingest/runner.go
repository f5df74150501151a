package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	errs "twharvest/pkg/errors"
)

// maxStderr bounds how much scraper stderr ends up in an error message
const maxStderr = 2048

// Runner runs the external scraper to completion
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, name string, args ...string) error

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}

// ExecRunner runs the scraper as a child process
type ExecRunner struct{}

// Run starts name with args and waits for it. A spawn failure or non-zero exit
// is returned as a process error carrying the tail of stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("%s exited with code %d", name, exitErr.ExitCode())
		if tail := stderrTail(stderr.String()); tail != "" {
			msg += ": " + tail
		}
		return errs.Process(msg, exitErr.ExitCode(), err)
	}
	return errs.Process(fmt.Sprintf("failed to start %s", name), -1, err)
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return s
}
