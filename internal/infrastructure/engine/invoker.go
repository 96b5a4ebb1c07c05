package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/values"
)

// invoker runs one toolchain command under the per-invocation timeout and
// records it on the build report.
type invoker struct {
	runner ports.ProcessRunner
	cfg    *entities.BuildConfig
	report *build.Report
	logger *slog.Logger
}

// run executes exe with args and returns the tool's diagnostic output.
// err is set only when the tool could not run to completion.
func (i *invoker) run(ctx context.Context, stage values.Stage, unit, exe, args string) (string, error) {
	tool := i.cfg.Toolchain.ToolPath(exe)

	runCtx := ctx
	cancel := func() {}
	if i.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, i.cfg.Timeout)
	}
	defer cancel()

	start := time.Now()
	output, err := i.runner.Run(runCtx, tool, args)
	output = strings.TrimSpace(output)

	// our deadline fired, not the caller's
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = &entities.TimeoutError{Command: tool, Timeout: i.cfg.Timeout}
	}

	inv := build.Invocation{
		Stage:    stage,
		Unit:     unit,
		Tool:     tool,
		Args:     args,
		Output:   output,
		Duration: time.Since(start),
	}
	if err != nil {
		inv.Err = err.Error()
		i.logger.WarnContext(ctx, "tool invocation failed", "stage", stage, "tool", tool, "error", err)
	}
	i.report.AddInvocation(inv)

	return output, err
}
