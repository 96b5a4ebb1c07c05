package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/afero"
)

// Ensure interface compliance
var (
	_ ports.BuildEngine = (*Engine)(nil)
	_ ports.BuildRun    = (*Run)(nil)
)

// CoreArchive is the archive the core objects are bundled into.
const CoreArchive = "core.a"

// LibraryIndex resolves libraries and enumerates source units.
type LibraryIndex interface {
	ports.LibraryResolver
	ListUnits(dir string) ([]entities.SourceUnit, error)
	IncludeArgs(cfg *entities.BuildConfig) string
}

// Engine orchestrates sketch builds for one validated configuration.
type Engine struct {
	cfg        *entities.BuildConfig
	runner     ports.ProcessRunner
	transpiler ports.Transpiler
	libraries  LibraryIndex
	fs         afero.Fs
	logger     *slog.Logger
	exec       ExecutionConfig
	sizeCheck  *vm.Program
	scrubber   build.Scrubber
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs sets the filesystem used for the work dir and object checks.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithExecutionConfig sets parallelism and wait behaviour.
func WithExecutionConfig(cfg ExecutionConfig) Option {
	return func(e *Engine) {
		e.exec = cfg
	}
}

// WithScrubber removes secrets from everything the build records or emits.
func WithScrubber(s build.Scrubber) Option {
	return func(e *Engine) {
		e.scrubber = s
	}
}

// NewEngine validates cfg and creates an engine for it.
func NewEngine(cfg *entities.BuildConfig, runner ports.ProcessRunner, transpiler ports.Transpiler, libraries LibraryIndex, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, entities.ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if runner == nil || transpiler == nil || libraries == nil {
		return nil, errors.New("engine requires a runner, a transpiler and a library index")
	}

	e := &Engine{
		cfg:        cfg.Clone(),
		runner:     runner,
		transpiler: transpiler,
		libraries:  libraries,
		fs:         afero.NewOsFs(),
		logger:     slog.Default(),
		exec:       DefaultExecutionConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.exec = e.exec.withDefaults()

	program, err := compileSizeCheck(e.cfg.SizeCheck)
	if err != nil {
		return nil, err
	}
	e.sizeCheck = program

	return e, nil
}

// Run is one in-flight build.
type Run struct {
	events chan build.Event
	done   chan struct{}
	report *build.Report
}

// Events streams progress; closed after the Finished event.
func (r *Run) Events() <-chan build.Event {
	return r.events
}

// Wait drains any unread events and returns the final report.
func (r *Run) Wait() *build.Report {
	for range r.events {
	}
	<-r.done
	return r.report
}

// Compile starts building sketch in the background.
// Build failures are reported through the run, never as an error here.
func (e *Engine) Compile(ctx context.Context, sketch string) (ports.BuildRun, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}

	report := build.NewReport(e.cfg.Paths.SketchFile, e.cfg.Board.Name, e.cfg.Board.MCU)
	if e.scrubber != nil {
		report.SetScrubber(e.scrubber)
	}
	run := &Run{
		events: make(chan build.Event, e.exec.EventBuffer),
		done:   make(chan struct{}),
		report: report,
	}

	p := e.newPipeline(report, run.events)
	go func() {
		defer close(run.done)
		defer close(run.events)
		p.execute(ctx, sketch)
	}()

	return run, nil
}

// pipeline holds the state of a single build. Only the orchestrator
// goroutine mutates stage, failed and linkSet.
type pipeline struct {
	cfg        *entities.BuildConfig
	exec       ExecutionConfig
	fs         afero.Fs
	transpiler ports.Transpiler
	libraries  LibraryIndex
	logger     *slog.Logger

	compiler *CompilationStage
	linker   *LinkStage
	images   *ImageStage

	report      *build.Report
	events      chan<- build.Event
	stage       values.Stage
	failed      bool
	linkSet     *entities.LinkSet
	matches     []entities.LibraryMatch
	entry       string
	includeArgs string
}

func (e *Engine) newPipeline(report *build.Report, events chan<- build.Event) *pipeline {
	logger := e.logger.With("build_id", report.ID.String())
	inv := &invoker{runner: e.runner, cfg: e.cfg, report: report, logger: logger}
	return &pipeline{
		cfg:        e.cfg,
		exec:       e.exec,
		fs:         e.fs,
		transpiler: e.transpiler,
		libraries:  e.libraries,
		logger:     logger,
		compiler:   newCompilationStage(inv),
		linker:     newLinkStage(inv),
		images:     newImageStage(inv, e.sizeCheck),
		report:     report,
		events:     events,
		stage:      values.StageIdle,
		linkSet:    entities.NewLinkSet(),
		entry:      e.cfg.EntryObjectPath(),
	}
}

// execute walks the state machine and always ends with a Finished event.
func (p *pipeline) execute(ctx context.Context, sketch string) {
	steps := []struct {
		stage values.Stage
		run   func(context.Context, string) error
	}{
		{values.StagePreparing, p.prepare},
		{values.StageTranspiling, p.transpile},
		{values.StageCompilingUnits, p.compileWorkDir},
		{values.StageCompilingCore, p.compileCore},
		{values.StageResolvingLibraries, p.resolveLibraries},
		{values.StageCompilingLibraries, p.compileLibraries},
		{values.StageAwaitingObjects, p.awaitObjects},
		{values.StageLinking, p.link},
		{values.StageExtractingImages, p.extractImages},
		{values.StageReportingSize, p.reportSize},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			p.fail(fmt.Errorf("build cancelled: %w", err))
			break
		}
		p.enter(step.stage)
		if err := step.run(ctx, sketch); err != nil {
			p.fail(err)
		}
		if p.failed {
			break
		}
	}

	p.finish()
}

func (p *pipeline) enter(next values.Stage) {
	if !p.stage.CanTransitionTo(next) {
		// unreachable with a fixed step list
		panic(fmt.Sprintf("illegal stage transition %s -> %s", p.stage, next))
	}
	p.logger.Debug("entering stage", "from", p.stage, "to", next)
	p.stage = next
	p.report.State = next
}

func (p *pipeline) finish() {
	terminal := values.StageSucceeded
	if p.failed || p.stage != values.StageReportingSize {
		terminal = values.StageFailed
	}
	if p.stage.CanTransitionTo(terminal) {
		p.enter(terminal)
	} else {
		// cancelled before the first stage
		p.stage = terminal
	}

	p.report.LinkSet = p.linkSet.Paths()
	p.report.Finalize(terminal)

	if terminal == values.StageSucceeded {
		p.emit(build.EventSuccess, terminal, "")
		p.emit(build.EventFinished, terminal, msgFinished)
	} else {
		p.emit(build.EventFinished, terminal, msgFailed)
	}

	p.logger.Debug("pipeline finished",
		"outcome", p.report.Outcome,
		"duration", p.report.Duration,
		"objects", p.linkSet.Len(),
		"errors", len(p.report.Errors),
		"warnings", len(p.report.Warnings))
}

func (p *pipeline) emit(kind build.EventKind, stage values.Stage, text string) {
	p.events <- build.NewEvent(kind, stage, p.report.Scrub(text))
}

func (p *pipeline) message(text string) {
	p.emit(build.EventMessage, p.stage, text)
}

func (p *pipeline) warn(text string) {
	p.report.AddWarning(text)
	p.message(text)
}

// fail publishes err and marks the build failed. Tool output attached to
// the error is published first as a message.
func (p *pipeline) fail(err error) {
	if diag := diagnosticOf(err); diag != "" {
		p.message(diag)
	}
	p.failed = true
	p.report.AddError(err.Error())
	p.emit(build.EventError, p.stage, err.Error())
}

func diagnosticOf(err error) string {
	var compileErr *entities.CompileError
	var linkErr *entities.LinkError
	var imageErr *entities.ImageExtractionError
	switch {
	case errors.As(err, &compileErr):
		return compileErr.Diagnostic
	case errors.As(err, &linkErr):
		return linkErr.Diagnostic
	case errors.As(err, &imageErr):
		return imageErr.Diagnostic
	default:
		return ""
	}
}

func (p *pipeline) prepare(_ context.Context, _ string) error {
	p.message(msgCompiling)

	dir := p.cfg.Paths.WorkDir
	mkErr := p.fs.MkdirAll(dir, 0o755)
	if ok, _ := afero.DirExists(p.fs, dir); ok {
		return nil
	}

	prepErr := &entities.PreparationError{Dir: dir, Cause: mkErr}
	if p.exec.StrictPreparation {
		return prepErr
	}
	p.logger.Warn("continuing without working directory", "dir", dir, "error", mkErr)
	p.warn(workDirWarning(dir))
	return nil
}

func (p *pipeline) transpile(_ context.Context, sketch string) error {
	p.message(msgConverting)

	source, err := p.transpiler.Transpile(sketch)
	if err != nil {
		return fmt.Errorf("transpile sketch: %w", err)
	}

	path := p.cfg.GeneratedSourcePath()
	if err := afero.WriteFile(p.fs, path, []byte(source), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	p.report.EntryObject = p.entry
	return nil
}

// compileWorkDir compiles every unit in the work dir. The loop never stops
// early; any failure fails the build once every unit has been tried.
func (p *pipeline) compileWorkDir(ctx context.Context, _ string) error {
	p.message(msgCompilingCpp)
	p.includeArgs = p.libraries.IncludeArgs(p.cfg)

	units, err := p.libraries.ListUnits(p.cfg.Paths.WorkDir)
	if err != nil {
		return err
	}

	jobs := make([]unitJob, len(units))
	for i, u := range units {
		jobs[i] = unitJob{stage: p.stage, unit: u, template: p.template(u, false), object: u.ObjectPath()}
	}
	p.fold(p.compileUnits(ctx, jobs, false), true)
	return nil
}

// compileCore compiles the core into the work dir and archives it.
func (p *pipeline) compileCore(ctx context.Context, _ string) error {
	dir := p.cfg.Paths.CoreDir
	if dir == "" {
		p.message("No core directory configured, skipping core")
		return nil
	}
	units, err := p.libraries.ListUnits(dir)
	if err != nil {
		p.logger.Warn("core directory unreadable", "dir", dir, "error", err)
		p.warn(fmt.Sprintf("core directory %s cannot be read, skipping core: %v", dir, err))
		return nil
	}
	if len(units) == 0 {
		p.message(fmt.Sprintf("No core sources in %s, skipping core", dir))
		return nil
	}

	p.message(msgCompilingCore)
	jobs := make([]unitJob, len(units))
	objects := make([]string, len(units))
	for i, u := range units {
		objects[i] = u.ObjectPathIn(p.cfg.Paths.WorkDir)
		jobs[i] = unitJob{stage: p.stage, unit: u, template: p.template(u, false), object: objects[i]}
	}
	if !p.fold(p.compileUnits(ctx, jobs, true), false) {
		return nil
	}

	p.message(msgArchiving)
	return p.linker.Archive(ctx, objects)
}

func (p *pipeline) resolveLibraries(_ context.Context, sketch string) error {
	p.message(msgResolving)

	deps := p.libraries.Resolve(sketch)
	root := p.cfg.Paths.LibraryRoot
	if len(deps) == 0 || root == "" {
		p.logger.Debug("no libraries to resolve", "dependencies", len(deps), "root", root)
		return nil
	}

	matches, err := p.libraries.FindLibraryDirectories(deps, root)
	if err != nil {
		return err
	}
	for _, m := range matches {
		p.message(libraryMessage(m))
	}
	p.matches = matches
	return nil
}

// compileLibraries compiles every matched library, stopping at the first
// failure.
func (p *pipeline) compileLibraries(ctx context.Context, _ string) error {
	for _, m := range p.matches {
		units, err := p.libraries.Units(m)
		if err != nil {
			return err
		}
		p.report.Libraries = append(p.report.Libraries, summarize(m, len(units)))
		if len(units) == 0 {
			continue
		}

		p.message(fmt.Sprintf(msgCompilingLibrary, m.Name()))
		jobs := make([]unitJob, len(units))
		for i, u := range units {
			jobs[i] = unitJob{stage: p.stage, unit: u, template: p.template(u, true), object: u.ObjectPath()}
		}
		if !p.fold(p.compileUnits(ctx, jobs, true), true) {
			return nil
		}
	}
	return nil
}

func (p *pipeline) awaitObjects(ctx context.Context, _ string) error {
	paths := append(p.linkSet.Paths(), p.entry)
	missing, err := awaitFiles(ctx, p.fs, paths, p.exec.ObjectWaitTimeout, p.exec.ObjectPollInterval)
	if err != nil {
		return fmt.Errorf("waiting for object files: %w", err)
	}
	if len(missing) > 0 {
		return &entities.LinkError{Missing: missing}
	}
	return nil
}

func (p *pipeline) link(ctx context.Context, _ string) error {
	p.message(linkMessage(p.cfg.Paths.SketchFile))
	elf, err := p.linker.Link(ctx, p.linkSet, p.entry)
	if err != nil {
		return err
	}
	p.report.Images.ELF = elf
	return nil
}

func (p *pipeline) extractImages(ctx context.Context, _ string) error {
	elf := p.report.Images.ELF

	p.message(msgFlashImage)
	flash, err := p.images.ExtractFlashImage(ctx, elf)
	if err != nil {
		return err
	}
	p.report.Images.Flash = flash

	p.message(msgEepromImage)
	eeprom, err := p.images.ExtractEepromImage(ctx, elf)
	if err != nil {
		return err
	}
	p.report.Images.EEPROM = eeprom
	return nil
}

// reportSize is never fatal.
func (p *pipeline) reportSize(ctx context.Context, _ string) error {
	p.message(msgComputingSize)

	size, warnings, err := p.images.ReportSize(ctx, p.report.Images.ELF)
	if err != nil {
		p.warn(fmt.Sprintf("size report unavailable: %v", err))
		return nil
	}
	p.report.Size = &size
	if size.Raw != "" {
		p.message(size.Raw)
	}
	for _, w := range warnings {
		p.warn(w.Error())
	}
	return nil
}

// fold applies unit results in job order. Successful objects other than the
// entry object join the link set when toLinkSet is set. Returns false if
// any unit failed.
func (p *pipeline) fold(results []unitResult, toLinkSet bool) bool {
	ok := true
	for _, r := range results {
		switch {
		case r.skipped:
			p.logger.Debug("unit skipped", "unit", r.job.unit.Path)
		case r.err != nil:
			p.fail(r.err)
			ok = false
		case toLinkSet && r.object != p.entry:
			if !p.linkSet.Append(r.object) {
				p.logger.Debug("object already in link set", "object", r.object)
			}
		}
	}
	return ok
}

func (p *pipeline) template(u entities.SourceUnit, library bool) string {
	t := p.cfg.Templates
	switch {
	case library && u.Kind == values.SourceKindC:
		return t.LibraryCompileC()
	case library:
		return t.LibraryCompileCXX()
	case u.Kind == values.SourceKindC:
		return t.CompileC
	default:
		return t.CompileCXX
	}
}

func summarize(m entities.LibraryMatch, units int) build.LibrarySummary {
	matchedBy := make([]string, len(m.MatchedBy))
	for i, d := range m.MatchedBy {
		matchedBy[i] = string(d)
	}
	return build.LibrarySummary{
		Name:      m.Name(),
		Dir:       filepath.Clean(m.Dir),
		Version:   m.VersionString(),
		MatchedBy: matchedBy,
		Units:     units,
	}
}
