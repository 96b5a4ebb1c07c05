package config

import (
	"fmt"
	"path/filepath"

	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// Save writes cfg as YAML, creating parent directories as needed.
func Save(fs afero.Fs, path string, cfg *entities.BuildConfig) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write build config: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML that Load accepts.
func Marshal(cfg *entities.BuildConfig) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(cfg, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("failed to encode build config: %w", err)
	}
	return data, nil
}
