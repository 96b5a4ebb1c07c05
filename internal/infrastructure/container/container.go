// Package container provides dependency injection for the application.
package container

import (
	"log/slog"

	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/application/services"
	"github.com/avrforge/sketchforge/internal/domain/repositories"
	"github.com/avrforge/sketchforge/internal/infrastructure/adapters"
	"github.com/avrforge/sketchforge/internal/infrastructure/config"
	"github.com/avrforge/sketchforge/internal/infrastructure/library"
	"github.com/avrforge/sketchforge/internal/infrastructure/output"
	"github.com/avrforge/sketchforge/internal/infrastructure/persistence/memory"
	"github.com/avrforge/sketchforge/internal/infrastructure/toolchain"
	"github.com/avrforge/sketchforge/internal/infrastructure/transpiler"
	"github.com/spf13/afero"
)

// Container holds all application dependencies.
type Container struct {
	configLoader            ports.ConfigLoader
	formatters              ports.FormatterFactory
	reports                 repositories.BuildReportRepository
	buildSketchUseCase      *services.BuildSketchUseCase
	resolveLibrariesUseCase *services.ResolveLibrariesUseCase
	fs                      afero.Fs
	logger                  *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Runner defaults to executing the real toolchain.
	Runner ports.ProcessRunner
}

// New creates a new dependency injection container.
func New(opts Options) *Container {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Runner == nil {
		opts.Runner = toolchain.NewExecRunner(opts.Logger)
	}

	configLoader := config.NewBuildConfigLoader(opts.Fs)
	sketchReader := adapters.NewSketchReaderAdapter(opts.Fs)
	engineFactory := adapters.NewEngineFactoryAdapter(opts.Runner, opts.Fs, opts.Logger)
	reports := memory.NewBuildReportRepository()
	resolver := library.NewResolver(opts.Fs, transpiler.New(), opts.Logger)

	buildSketch := services.NewBuildSketchUseCase(
		configLoader,
		sketchReader,
		engineFactory,
		reports,
		opts.Logger,
	)
	resolveLibraries := services.NewResolveLibrariesUseCase(
		configLoader,
		sketchReader,
		resolver,
		opts.Logger,
	)

	return &Container{
		configLoader:            configLoader,
		formatters:              output.NewFormatterFactory(),
		reports:                 reports,
		buildSketchUseCase:      buildSketch,
		resolveLibrariesUseCase: resolveLibraries,
		fs:                      opts.Fs,
		logger:                  opts.Logger,
	}
}

// BuildSketchUseCase returns the build sketch use case.
func (c *Container) BuildSketchUseCase() *services.BuildSketchUseCase {
	return c.buildSketchUseCase
}

// ResolveLibrariesUseCase returns the resolve libraries use case.
func (c *Container) ResolveLibrariesUseCase() *services.ResolveLibrariesUseCase {
	return c.resolveLibrariesUseCase
}

// ConfigLoader returns the config loader port.
func (c *Container) ConfigLoader() ports.ConfigLoader {
	return c.configLoader
}

// Formatters returns the report formatter factory.
func (c *Container) Formatters() ports.FormatterFactory {
	return c.formatters
}

// Reports returns the build report repository.
func (c *Container) Reports() repositories.BuildReportRepository {
	return c.reports
}

// Fs returns the filesystem every component shares.
func (c *Container) Fs() afero.Fs {
	return c.fs
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
