package engine

import (
	"context"

	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/services"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/avrforge/sketchforge/internal/infrastructure/toolchain"
)

// ExecutableExt is appended to the generated source path for the linked output.
const ExecutableExt = ".elf"

// LinkStage archives the core and links the executable.
type LinkStage struct {
	inv    *invoker
	parser *services.DiagnosticParser
}

func newLinkStage(inv *invoker) *LinkStage {
	return &LinkStage{inv: inv, parser: services.NewDiagnosticParser()}
}

// Archive bundles objects into core.a in the work dir.
// Template positions are {0} work dir, {1} object list.
func (s *LinkStage) Archive(ctx context.Context, objects []string) error {
	cfg := s.inv.cfg
	args := toolchain.Format(cfg.Templates.Archive,
		toolchain.Quote(cfg.Paths.WorkDir),
		toolchain.JoinArgs(objects),
	)
	output, err := s.inv.run(ctx, values.StageCompilingCore, "core.a", cfg.Toolchain.Archiver, args)
	if err != nil {
		return err
	}
	if output != "" {
		return entities.NewLinkError(output)
	}
	return nil
}

// Link produces <generated source>.elf from the entry object and link set.
// Template positions are {0} mcu, {1} entry object, {2} link set,
// {3} work dir, {4} output.
func (s *LinkStage) Link(ctx context.Context, linkSet *entities.LinkSet, entry string) (string, error) {
	cfg := s.inv.cfg
	elf := cfg.GeneratedSourcePath() + ExecutableExt

	args := toolchain.Format(cfg.Templates.Link,
		cfg.Board.MCU,
		toolchain.Quote(entry),
		toolchain.JoinArgs(linkSet.Paths()),
		toolchain.Quote(cfg.Paths.WorkDir),
		toolchain.Quote(elf),
	)

	output, err := s.inv.run(ctx, values.StageLinking, cfg.Paths.SketchFile, cfg.Toolchain.Linker, args)
	if err != nil {
		return "", err
	}
	if output != "" {
		s.inv.report.AddDiagnostics(s.parser.Parse(output)...)
		return "", entities.NewLinkError(output)
	}
	return elf, nil
}
