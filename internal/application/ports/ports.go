// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/entities"
)

// Transpiler turns sketch syntax into a compilable C++ translation unit.
type Transpiler interface {
	Transpile(sketch string) (string, error)
}

// DependencyExtractor lists the file names a sketch includes, in order of
// first appearance.
type DependencyExtractor interface {
	ExtractDependencyNames(sketch string) []string
}

// ProcessRunner executes one external command.
// The returned text is the tool's combined output; empty means success.
// An error is returned only when the tool could not be run to completion
// (launch failure, timeout, cancellation).
type ProcessRunner interface {
	Run(ctx context.Context, executable, args string) (string, error)
}

// LibraryResolver locates the library directories a sketch depends on.
type LibraryResolver interface {
	Resolve(sketch string) []entities.Dependency
	FindLibraryDirectories(deps []entities.Dependency, libraryRoot string) ([]entities.LibraryMatch, error)
	Units(match entities.LibraryMatch) ([]entities.SourceUnit, error)
}

// ConfigLoader loads build configuration from storage.
type ConfigLoader interface {
	Load(path string) (*entities.BuildConfig, error)
}

// SketchReader reads sketch source text.
type SketchReader interface {
	ReadSketch(path string) (string, error)
}

// BuildRun is one in-flight build.
type BuildRun interface {
	// Events streams progress. The channel is closed after the terminal event.
	Events() <-chan build.Event

	// Wait blocks until the build ends and returns its report.
	Wait() *build.Report
}

// BuildEngine compiles sketches for one configuration.
type BuildEngine interface {
	// Compile starts a build. The error covers misuse only; build failures
	// are reported through the run.
	Compile(ctx context.Context, sketch string) (BuildRun, error)
}

// EngineFactory creates build engines.
type EngineFactory interface {
	CreateEngine(cfg *entities.BuildConfig, execution dto.ExecutionOptions) (BuildEngine, error)
}

// OutputFormatter formats build reports.
type OutputFormatter interface {
	Format(report *build.Report) error
}

// FormatterFactory creates formatters by name.
type FormatterFactory interface {
	Create(format string, w io.Writer, opts dto.OutputOptions) (OutputFormatter, error)
	SupportedFormats() []string
}
