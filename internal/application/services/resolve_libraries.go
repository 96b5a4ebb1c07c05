package services

import (
	"context"
	"log/slog"

	"github.com/avrforge/sketchforge/internal/application/dto"
	apperrors "github.com/avrforge/sketchforge/internal/application/errors"
	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/entities"
)

// ResolveLibrariesUseCase reports which libraries a sketch would pull in,
// without invoking the toolchain.
type ResolveLibrariesUseCase struct {
	configLoader ports.ConfigLoader
	sketchReader ports.SketchReader
	resolver     ports.LibraryResolver
	logger       *slog.Logger
}

// NewResolveLibrariesUseCase creates a new resolve libraries use case.
func NewResolveLibrariesUseCase(
	configLoader ports.ConfigLoader,
	sketchReader ports.SketchReader,
	resolver ports.LibraryResolver,
	logger *slog.Logger,
) *ResolveLibrariesUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveLibrariesUseCase{
		configLoader: configLoader,
		sketchReader: sketchReader,
		resolver:     resolver,
		logger:       logger,
	}
}

// Execute resolves dependencies and lists the units of each matched library.
func (uc *ResolveLibrariesUseCase) Execute(_ context.Context, req dto.ResolveLibrariesRequest) (*dto.ResolveLibrariesResponse, error) {
	root := req.LibraryRoot
	if root == "" {
		cfg, err := uc.configLoader.Load(req.ConfigPath)
		if err != nil {
			return nil, apperrors.NewConfigurationError("config", "failed to load build config", err)
		}
		root = cfg.Paths.LibraryRoot
	}
	if root == "" {
		return nil, apperrors.NewValidationError("paths.library_root", "library root is not configured")
	}

	sketch, err := uc.sketchReader.ReadSketch(req.SketchPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("sketch", "failed to read sketch", err)
	}

	deps := uc.resolver.Resolve(sketch)
	uc.logger.Debug("dependencies extracted", "count", len(deps))

	matches, err := uc.resolver.FindLibraryDirectories(deps, root)
	if err != nil {
		return nil, apperrors.NewConfigurationError("libraries", "failed to scan library root", err)
	}

	resp := &dto.ResolveLibrariesResponse{
		Dependencies: dependencyNames(deps),
		Libraries:    make([]dto.LibraryInfo, 0, len(matches)),
	}

	provided := make(map[entities.Dependency]bool)
	for _, m := range matches {
		units, err := uc.resolver.Units(m)
		if err != nil {
			return nil, apperrors.NewConfigurationError("libraries", "failed to list library units", err)
		}
		info := dto.LibraryInfo{
			Name:      m.Name(),
			Dir:       m.Dir,
			Version:   m.VersionString(),
			MatchedBy: dependencyNames(m.MatchedBy),
		}
		for _, u := range units {
			info.Units = append(info.Units, u.Path)
		}
		for _, d := range m.MatchedBy {
			provided[d] = true
		}
		resp.Libraries = append(resp.Libraries, info)
	}

	for _, d := range deps {
		if !provided[d] {
			resp.Unmatched = append(resp.Unmatched, string(d))
		}
	}
	return resp, nil
}

func dependencyNames(deps []entities.Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = string(d)
	}
	return out
}
