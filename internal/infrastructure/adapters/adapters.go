// Package adapters provides infrastructure adapters that implement application ports.
// These adapters wrap existing infrastructure components to satisfy port interfaces.
package adapters

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/infrastructure/engine"
	"github.com/avrforge/sketchforge/internal/infrastructure/library"
	"github.com/avrforge/sketchforge/internal/infrastructure/redaction"
	"github.com/avrforge/sketchforge/internal/infrastructure/transpiler"
	"github.com/spf13/afero"
)

// Ensure adapters implement ports at compile time
var (
	_ ports.SketchReader  = (*SketchReaderAdapter)(nil)
	_ ports.EngineFactory = (*EngineFactoryAdapter)(nil)
)

// SketchExt is the extension of a sketch file.
const SketchExt = ".ino"

// SketchReaderAdapter reads sketch files from a filesystem.
type SketchReaderAdapter struct {
	fs afero.Fs
}

// NewSketchReaderAdapter creates a new sketch reader.
func NewSketchReaderAdapter(fs afero.Fs) *SketchReaderAdapter {
	return &SketchReaderAdapter{fs: fs}
}

// ReadSketch returns the sketch text. A directory path reads the sketch
// named after the directory, e.g. Blink/Blink.ino.
func (a *SketchReaderAdapter) ReadSketch(path string) (string, error) {
	if path == "" {
		return "", errors.New("sketch path is required")
	}

	resolved, err := ResolveSketchPath(a.fs, path)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(a.fs, resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read sketch: %w", err)
	}
	return string(data), nil
}

// ResolveSketchPath maps a sketch directory to its main file and leaves
// file paths unchanged.
func ResolveSketchPath(fs afero.Fs, path string) (string, error) {
	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to stat sketch: %w", err)
	}
	if !isDir {
		return path, nil
	}

	mainFile := filepath.Join(path, filepath.Base(filepath.Clean(path))+SketchExt)
	if ok, _ := afero.Exists(fs, mainFile); !ok {
		return "", fmt.Errorf("sketch directory %s has no %s", path, filepath.Base(mainFile))
	}
	return mainFile, nil
}

// EngineFactoryAdapter creates build engines wired to the toolchain runner
// and a library resolver over the same filesystem.
type EngineFactoryAdapter struct {
	runner ports.ProcessRunner
	fs     afero.Fs
	logger *slog.Logger
}

// NewEngineFactoryAdapter creates a new engine factory.
func NewEngineFactoryAdapter(runner ports.ProcessRunner, fs afero.Fs, logger *slog.Logger) *EngineFactoryAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngineFactoryAdapter{runner: runner, fs: fs, logger: logger}
}

// CreateEngine creates a build engine for cfg.
func (f *EngineFactoryAdapter) CreateEngine(cfg *entities.BuildConfig, opts dto.ExecutionOptions) (ports.BuildEngine, error) {
	tp := transpiler.New()
	resolver := library.NewResolver(f.fs, tp, f.logger)

	exec := engine.DefaultExecutionConfig()
	exec.Parallel = opts.Parallel
	if opts.MaxConcurrentUnits > 0 {
		exec.MaxConcurrentUnits = opts.MaxConcurrentUnits
	}
	exec.StrictPreparation = opts.StrictPreparation
	if opts.ObjectWaitTimeout > 0 {
		exec.ObjectWaitTimeout = opts.ObjectWaitTimeout
	}

	engineOpts := []engine.Option{
		engine.WithFs(f.fs),
		engine.WithLogger(f.logger),
		engine.WithExecutionConfig(exec),
	}
	if !opts.Redaction.Disabled {
		redactor, err := redaction.New(redaction.Config{
			Patterns: opts.Redaction.Patterns,
			HashMode: opts.Redaction.HashMode,
			Salt:     opts.Redaction.Salt,
			Logger:   f.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redactor: %w", err)
		}
		engineOpts = append(engineOpts, engine.WithScrubber(redactor))
	}

	eng, err := engine.NewEngine(cfg, f.runner, tp, resolver, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return eng, nil
}
