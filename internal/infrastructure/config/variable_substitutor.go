package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/avrforge/sketchforge/internal/domain/entities"
)

// Variable pattern: {{ .vars.key }}
var varPattern = regexp.MustCompile(`\{\{\s*\.vars\.([a-zA-Z0-9_]+)\s*\}\}`)

// Environment pattern: {{ env "NAME" }}
var envPattern = regexp.MustCompile(`\{\{\s*env\s+"([a-zA-Z_][a-zA-Z0-9_]*)"\s*\}\}`)

// EnvLookup resolves an environment variable.
type EnvLookup func(name string) (string, bool)

// VariableSubstitutor expands variables in the path-like fields of a build config.
type VariableSubstitutor struct {
	lookupEnv EnvLookup
}

// NewVariableSubstitutor creates a new variable substitutor.
// A nil lookup reads the process environment.
func NewVariableSubstitutor(lookup EnvLookup) *VariableSubstitutor {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &VariableSubstitutor{
		lookupEnv: lookup,
	}
}

// Substitute replaces {{ .vars.key }} and {{ env "NAME" }} in the toolchain
// dir, every path and the size check. Modifies cfg in place.
// Templates are left alone; their braces are positional placeholders.
func (s *VariableSubstitutor) Substitute(cfg *entities.BuildConfig) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"toolchain.dir", &cfg.Toolchain.Dir},
		{"paths.work_dir", &cfg.Paths.WorkDir},
		{"paths.variant_dir", &cfg.Paths.VariantDir},
		{"paths.core_dir", &cfg.Paths.CoreDir},
		{"paths.library_root", &cfg.Paths.LibraryRoot},
	}
	for _, f := range fields {
		out, err := s.substituteInString(*f.value, cfg.Vars)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = out
	}

	for i, dir := range cfg.Paths.IncludeDirs {
		out, err := s.substituteInString(dir, cfg.Vars)
		if err != nil {
			return fmt.Errorf("paths.include_dirs[%d]: %w", i, err)
		}
		cfg.Paths.IncludeDirs[i] = out
	}
	return nil
}

// substituteInString replaces patterns with values.
func (s *VariableSubstitutor) substituteInString(str string, vars map[string]string) (string, error) {
	var lastErr error

	result := varPattern.ReplaceAllStringFunc(str, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			lastErr = fmt.Errorf("variable not found: %s", name)
			return match
		}
		return value
	})
	if lastErr != nil {
		return "", lastErr
	}

	result = envPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		value, ok := s.lookupEnv(name)
		if !ok {
			lastErr = fmt.Errorf("environment variable not set: %s", name)
			return match
		}
		return value
	})
	if lastErr != nil {
		return "", lastErr
	}
	return result, nil
}
