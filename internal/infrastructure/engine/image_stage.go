package engine

import (
	"context"
	"fmt"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/services"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/avrforge/sketchforge/internal/infrastructure/toolchain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Image file extensions, appended to the generated source path.
const (
	FlashImageExt  = ".hex"
	EepromImageExt = ".eep"
)

// ImageStage derives loadable images and the size report from the executable.
type ImageStage struct {
	inv       *invoker
	sizes     *services.SizeParser
	sizeCheck *vm.Program
}

func newImageStage(inv *invoker, sizeCheck *vm.Program) *ImageStage {
	return &ImageStage{inv: inv, sizes: services.NewSizeParser(), sizeCheck: sizeCheck}
}

// compileSizeCheck compiles the optional size_check expression.
// A nil program means no check is configured.
func compileSizeCheck(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.Env(build.SizeReport{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile size_check: %w", err)
	}
	return program, nil
}

// ExtractFlashImage writes <generated source>.hex.
func (s *ImageStage) ExtractFlashImage(ctx context.Context, elf string) (string, error) {
	return s.extract(ctx, entities.ImageFlash, s.inv.cfg.Templates.FlashImage, elf, FlashImageExt)
}

// ExtractEepromImage writes <generated source>.eep.
func (s *ImageStage) ExtractEepromImage(ctx context.Context, elf string) (string, error) {
	return s.extract(ctx, entities.ImageEEPROM, s.inv.cfg.Templates.EepromImage, elf, EepromImageExt)
}

func (s *ImageStage) extract(ctx context.Context, kind entities.ImageKind, tpl, elf, ext string) (string, error) {
	cfg := s.inv.cfg
	image := cfg.GeneratedSourcePath() + ext
	args := toolchain.Format(tpl, toolchain.Quote(elf), toolchain.Quote(image))

	output, err := s.inv.run(ctx, values.StageExtractingImages, string(kind), cfg.Toolchain.ObjectCopy, args)
	if err != nil {
		return "", err
	}
	if output != "" {
		return "", entities.NewImageExtractionError(kind, output)
	}
	return image, nil
}

// ReportSize runs the size tool and parses its output. The returned
// warnings never fail a build; err is set only when the tool did not run.
func (s *ImageStage) ReportSize(ctx context.Context, elf string) (build.SizeReport, []error, error) {
	cfg := s.inv.cfg
	args := toolchain.Format(cfg.Templates.Size, cfg.Board.MCU, toolchain.Quote(elf))

	output, err := s.inv.run(ctx, values.StageReportingSize, "size", cfg.Toolchain.SizeTool, args)
	if err != nil {
		return build.SizeReport{}, nil, err
	}

	report := s.sizes.Parse(output)
	var warnings []error
	if !report.Parsed() {
		warnings = append(warnings, &entities.SizeReportWarning{Message: "could not parse size output"})
		return report, warnings, nil
	}

	if s.sizeCheck != nil {
		out, evalErr := expr.Run(s.sizeCheck, report)
		passed, _ := out.(bool)
		switch {
		case evalErr != nil:
			warnings = append(warnings, &entities.SizeReportWarning{Message: evalErr.Error()})
		case !passed:
			warnings = append(warnings, &entities.SizeReportWarning{Message: sizeCheckWarning(cfg.SizeCheck)})
		}
	}
	return report, warnings, nil
}
