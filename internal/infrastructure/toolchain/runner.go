// Package toolchain runs the external cross-compilation tools.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/avrforge/sketchforge/internal/application/ports"
)

// MaxOutputSize caps the captured output of one invocation (10MB).
const MaxOutputSize = 10 * 1024 * 1024

const waitDelay = 2 * time.Second

// Ensure interface compliance
var _ ports.ProcessRunner = (*ExecRunner)(nil)

// ExecRunner runs tools with os/exec. Arguments are split with SplitArgs;
// no shell is involved.
type ExecRunner struct {
	logger *slog.Logger
	// Dir is the process working directory; empty inherits ours.
	Dir string
}

// NewExecRunner creates a runner that logs invocations at debug level.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{logger: logger}
}

// Run executes the tool and returns its combined stdout and stderr.
// A non-zero exit with no output yields "exit status N" so that a failure
// is never silent.
func (r *ExecRunner) Run(ctx context.Context, executable, args string) (string, error) {
	argv, err := SplitArgs(args)
	if err != nil {
		return "", fmt.Errorf("parse arguments for %s: %w", executable, err)
	}

	//nolint:gosec // G204: executables and templates come from the build config
	cmd := exec.CommandContext(ctx, executable, argv...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	// compiler drivers spawn children that may outlive a killed parent
	// and hold the output pipe open
	cmd.WaitDelay = waitDelay

	// same writer for both streams keeps their relative order
	out := NewBoundedBuffer(MaxOutputSize)
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	if out.Truncated {
		r.logger.WarnContext(ctx, "command output truncated", "command", executable)
	}
	r.logger.DebugContext(ctx, "executed command",
		"command", executable,
		"args", args,
		"exit_code", exitCode,
		"duration", duration,
		"error", runErr)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.String(), fmt.Errorf("%s: %w", executable, ctxErr)
	}
	if runErr != nil && exitErr == nil {
		return "", fmt.Errorf("run %s: %w", executable, runErr)
	}

	text := strings.TrimSpace(out.String())
	if text == "" && exitCode != 0 {
		text = fmt.Sprintf("exit status %d", exitCode)
	}
	return text, nil
}

// BoundedBuffer is a bytes.Buffer wrapper that limits the size of written data.
type BoundedBuffer struct {
	buffer    bytes.Buffer
	limit     int
	Truncated bool
}

// NewBoundedBuffer creates a new BoundedBuffer with the specified limit.
func NewBoundedBuffer(limit int) *BoundedBuffer {
	return &BoundedBuffer{
		limit: limit,
	}
}

// Write implements io.Writer. Excess data is dropped, not reported as a
// short write.
func (b *BoundedBuffer) Write(p []byte) (n int, err error) {
	if b.buffer.Len() >= b.limit {
		b.Truncated = true
		return len(p), nil
	}

	remaining := b.limit - b.buffer.Len()
	if len(p) > remaining {
		b.Truncated = true
		if _, err := b.buffer.Write(p[:remaining]); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	return b.buffer.Write(p)
}

// String returns the buffer contents as a string.
func (b *BoundedBuffer) String() string {
	return b.buffer.String()
}
