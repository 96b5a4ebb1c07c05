// Package config provides infrastructure for loading build configurations.
// This package handles YAML parsing, schema validation, file I/O, and
// variable substitution.
package config

import (
	"bytes"
	"fmt"

	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// Ensure interface compliance
var _ ports.ConfigLoader = (*BuildConfigLoader)(nil)

// BuildConfigLoader loads build configs from YAML files.
type BuildConfigLoader struct {
	fs          afero.Fs
	substitutor *VariableSubstitutor
}

// NewBuildConfigLoader creates a loader reading from fs.
func NewBuildConfigLoader(fs afero.Fs) *BuildConfigLoader {
	return &BuildConfigLoader{
		fs:          fs,
		substitutor: NewVariableSubstitutor(nil),
	}
}

// Load reads the config at path. An empty path yields DefaultConfig.
// Values in the file replace the defaults field by field.
func (l *BuildConfigLoader) Load(path string) (*entities.BuildConfig, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build config: %w", err)
	}
	return l.LoadFromBytes(data)
}

// LoadFromBytes validates and decodes a YAML document over DefaultConfig.
func (l *BuildConfigLoader) LoadFromBytes(data []byte) (*entities.BuildConfig, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var file entities.BuildConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode build config YAML: %w", err)
	}
	mergeConfig(cfg, &file)

	if err := l.substitutor.Substitute(cfg); err != nil {
		return nil, fmt.Errorf("build config variables: %w", err)
	}
	return cfg, nil
}

// mergeConfig copies every non-zero field of src onto dst.
func mergeConfig(dst, src *entities.BuildConfig) {
	setString(&dst.Board.Name, src.Board.Name)
	setString(&dst.Board.MCU, src.Board.MCU)
	if src.Board.CPUFrequency != 0 {
		dst.Board.CPUFrequency = src.Board.CPUFrequency
	}

	setString(&dst.Toolchain.Dir, src.Toolchain.Dir)
	setString(&dst.Toolchain.CCompiler, src.Toolchain.CCompiler)
	setString(&dst.Toolchain.CXXCompiler, src.Toolchain.CXXCompiler)
	setString(&dst.Toolchain.Linker, src.Toolchain.Linker)
	setString(&dst.Toolchain.ObjectCopy, src.Toolchain.ObjectCopy)
	setString(&dst.Toolchain.SizeTool, src.Toolchain.SizeTool)
	setString(&dst.Toolchain.Archiver, src.Toolchain.Archiver)

	setString(&dst.Paths.WorkDir, src.Paths.WorkDir)
	setString(&dst.Paths.SketchFile, src.Paths.SketchFile)
	setString(&dst.Paths.VariantDir, src.Paths.VariantDir)
	setString(&dst.Paths.CoreDir, src.Paths.CoreDir)
	setString(&dst.Paths.LibraryRoot, src.Paths.LibraryRoot)
	if len(src.Paths.IncludeDirs) > 0 {
		dst.Paths.IncludeDirs = append([]string(nil), src.Paths.IncludeDirs...)
	}

	setString(&dst.Templates.CompileC, src.Templates.CompileC)
	setString(&dst.Templates.CompileCXX, src.Templates.CompileCXX)
	setString(&dst.Templates.CompileLibraryC, src.Templates.CompileLibraryC)
	setString(&dst.Templates.CompileLibraryCXX, src.Templates.CompileLibraryCXX)
	setString(&dst.Templates.Archive, src.Templates.Archive)
	setString(&dst.Templates.Link, src.Templates.Link)
	setString(&dst.Templates.FlashImage, src.Templates.FlashImage)
	setString(&dst.Templates.EepromImage, src.Templates.EepromImage)
	setString(&dst.Templates.Size, src.Templates.Size)

	setString(&dst.SizeCheck, src.SizeCheck)
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if len(src.Vars) > 0 {
		dst.Vars = src.Vars
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
