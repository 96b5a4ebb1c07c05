// Package services contains application use cases.
package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/avrforge/sketchforge/internal/application/dto"
	apperrors "github.com/avrforge/sketchforge/internal/application/errors"
	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/repositories"
)

// BuildSketchUseCase orchestrates the complete sketch build workflow.
// This is a pure application layer component that depends only on ports.
type BuildSketchUseCase struct {
	configLoader  ports.ConfigLoader
	sketchReader  ports.SketchReader
	engineFactory ports.EngineFactory
	reports       repositories.BuildReportRepository
	logger        *slog.Logger
}

// NewBuildSketchUseCase creates a new build sketch use case.
func NewBuildSketchUseCase(
	configLoader ports.ConfigLoader,
	sketchReader ports.SketchReader,
	engineFactory ports.EngineFactory,
	reports repositories.BuildReportRepository,
	logger *slog.Logger,
) *BuildSketchUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &BuildSketchUseCase{
		configLoader:  configLoader,
		sketchReader:  sketchReader,
		engineFactory: engineFactory,
		reports:       reports,
		logger:        logger,
	}
}

// Execute loads config and sketch, runs the build, forwards progress to sink
// and stores the report. A failed build is not an error; inspect
// Report.Outcome.
func (uc *BuildSketchUseCase) Execute(ctx context.Context, req dto.BuildSketchRequest, sink build.Sink) (*dto.BuildSketchResponse, error) {
	startTime := time.Now()

	cfg, err := LoadBuildConfig(uc.configLoader, req.ConfigPath, req.Overrides)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("loading sketch", "path", req.SketchPath)
	sketch, err := uc.sketchReader.ReadSketch(req.SketchPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("sketch", "failed to read sketch", err)
	}

	eng, err := uc.engineFactory.CreateEngine(cfg, req.Execution)
	if err != nil {
		return nil, apperrors.NewConfigurationError("engine", "failed to create build engine", err)
	}

	uc.logger.Info("building sketch", "mcu", cfg.Board.MCU, "work_dir", cfg.Paths.WorkDir, "parallel", req.Execution.Parallel)
	run, err := eng.Compile(ctx, sketch)
	if err != nil {
		return nil, apperrors.NewConfigurationError("engine", "failed to start build", err)
	}

	for ev := range run.Events() {
		if sink != nil {
			build.Dispatch(sink, ev)
		}
	}
	report := run.Wait()
	report.Sketch = filepath.Base(req.SketchPath)

	if uc.reports != nil {
		if err := uc.reports.Save(ctx, report); err != nil {
			uc.logger.Warn("failed to store build report", "error", err)
		}
	}

	uc.logger.Info("build finished", "outcome", report.Outcome, "duration", report.Duration)

	return &dto.BuildSketchResponse{
		Report: report,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
	}, nil
}

// LoadBuildConfig loads the config file, applies overrides and validates
// the result.
func LoadBuildConfig(loader ports.ConfigLoader, path string, overrides dto.ConfigOverrides) (*entities.BuildConfig, error) {
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError("config", "failed to load build config", err)
	}

	cfg = ApplyOverrides(cfg, overrides)
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewValidationError("config", "invalid build config", err.Error())
	}
	return cfg, nil
}

// ApplyOverrides returns a copy of cfg with every non-zero override applied.
func ApplyOverrides(cfg *entities.BuildConfig, o dto.ConfigOverrides) *entities.BuildConfig {
	out := cfg.Clone()
	if o.MCU != "" {
		out.Board.MCU = o.MCU
	}
	if o.CPUFrequency != 0 {
		out.Board.CPUFrequency = o.CPUFrequency
	}
	if o.ToolchainDir != "" {
		out.Toolchain.Dir = o.ToolchainDir
	}
	if o.WorkDir != "" {
		out.Paths.WorkDir = o.WorkDir
	}
	if o.LibraryRoot != "" {
		out.Paths.LibraryRoot = o.LibraryRoot
	}
	if o.Timeout != 0 {
		out.Timeout = o.Timeout
	}
	return out
}
