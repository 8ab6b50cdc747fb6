// Package source runs the bosh and fly command line tools and decodes their
// JSON output into raw records.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external command and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError is a command that started but did not succeed
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands on the local host with a per-command timeout
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner; timeout <= 0 means no per-command limit
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes name with args, capturing stdout and stderr separately
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Command:  strings.Join(append([]string{name}, args...), " "),
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			cmdErr.Err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return nil, cmdErr
	}

	return stdout.Bytes(), nil
}
