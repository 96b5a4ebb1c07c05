package engine

import (
	"context"
	"strconv"

	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/services"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/avrforge/sketchforge/internal/infrastructure/toolchain"
)

// CompilationStage turns one source unit into one object file.
type CompilationStage struct {
	inv    *invoker
	parser *services.DiagnosticParser
}

func newCompilationStage(inv *invoker) *CompilationStage {
	return &CompilationStage{inv: inv, parser: services.NewDiagnosticParser()}
}

// Compile builds unit into object with tpl. Template positions are
// {0} mcu, {1} f_cpu, {2} include args, {3} source, {4} object.
//
// Any compiler output is a *entities.CompileError. The caller owns the
// link set; the returned path is only meaningful when err is nil.
func (s *CompilationStage) Compile(ctx context.Context, stage values.Stage, unit entities.SourceUnit, includeArgs, tpl, object string) (string, error) {
	cfg := s.inv.cfg
	compiler := cfg.Toolchain.CXXCompiler
	if unit.Kind == values.SourceKindC {
		compiler = cfg.Toolchain.CCompiler
	}

	args := toolchain.Format(tpl,
		cfg.Board.MCU,
		strconv.FormatUint(cfg.Board.CPUFrequency, 10),
		includeArgs,
		toolchain.Quote(unit.Path),
		toolchain.Quote(object),
	)

	output, err := s.inv.run(ctx, stage, unit.Name(), compiler, args)
	if err != nil {
		return "", err
	}
	if output != "" {
		s.inv.report.AddDiagnostics(s.parser.Parse(output)...)
		return "", entities.NewCompileError(unit, output)
	}
	return object, nil
}
