// Package toolexec runs the external command-line tools the pipeline depends on
// (image generator, segmentation model, duration probe).
package toolexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jonathan/parallax-reel/internal/logging"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 10 * time.Minute

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError describes a failed tool invocation.
type CommandError struct {
	Command string
	Stderr  string
	Cause   error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Stderr != "" {
		msg += ": " + lastLines(e.Stderr, 5)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	Timeout time.Duration
	Dir     string
}

// NewExecRunner creates a runner with the default timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultTimeout}
}

// Run executes name with args, failing when the binary is missing or exits non-zero.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	if _, err := exec.LookPath(name); err != nil {
		return nil, &CommandError{Command: cmdline, Cause: fmt.Errorf("%s not found in PATH: %w", name, err)}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.FromContext(ctx).Debug("running tool", "command", cmdline)
	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", timeout, err)
		}
		return nil, &CommandError{Command: cmdline, Stderr: stderr.String(), Cause: err}
	}
	logging.FromContext(ctx).Debug("tool finished", "command", name, "elapsed", time.Since(start))

	return []byte(stdout.String()), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
