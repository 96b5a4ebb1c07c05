package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := NewBuildConfigLoader(afero.NewMemMapFs()).Load("")
	require.NoError(t, err)

	assert.Equal(t, "atmega328p", cfg.Board.MCU)
	assert.Equal(t, uint64(16000000), cfg.Board.CPUFrequency)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `
board:
  name: mega
  mcu: atmega2560
toolchain:
  dir: "{{ .vars.avr }}/bin"
paths:
  work_dir: /var/build
  include_dirs:
    - "{{ .vars.avr }}/cores/arduino"
  library_root: "{{ env \"SF_TEST_LIBS\" }}"
size_check: "text + data <= 253952"
timeout: 45s
vars:
  avr: /opt/arduino
`
	require.NoError(t, afero.WriteFile(fs, "/etc/board.yaml", []byte(doc), 0o644))

	loader := NewBuildConfigLoader(fs)
	loader.substitutor = NewVariableSubstitutor(func(name string) (string, bool) {
		if name == "SF_TEST_LIBS" {
			return "/home/me/libraries", true
		}
		return "", false
	})

	cfg, err := loader.Load("/etc/board.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mega", cfg.Board.Name)
	assert.Equal(t, "atmega2560", cfg.Board.MCU)
	assert.Equal(t, uint64(16000000), cfg.Board.CPUFrequency, "kept from defaults")
	assert.Equal(t, "/opt/arduino/bin", cfg.Toolchain.Dir)
	assert.Equal(t, "avr-g++", cfg.Toolchain.CXXCompiler, "kept from defaults")
	assert.Equal(t, []string{"/opt/arduino/cores/arduino"}, cfg.Paths.IncludeDirs)
	assert.Equal(t, "/home/me/libraries", cfg.Paths.LibraryRoot)
	assert.Equal(t, "sketch.cpp", cfg.Paths.SketchFile)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "text + data <= 253952", cfg.SizeCheck)
	assert.NotEmpty(t, cfg.Templates.Link)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown top-level key", "boards:\n  mcu: x\n", "boards"},
		{"f_cpu not integer", "board:\n  f_cpu: fast\n", "/board/f_cpu"},
		{"sketch_file with directory", "paths:\n  sketch_file: sub/sketch.cpp\n", "/paths/sketch_file"},
		{"bad timeout", "timeout: soon\n", "/timeout"},
		{"empty template", "templates:\n  link: \"\"\n", "/templates/link"},
	}

	loader := NewBuildConfigLoader(afero.NewMemMapFs())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadFromBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingVariable(t *testing.T) {
	_, err := NewBuildConfigLoader(afero.NewMemMapFs()).LoadFromBytes([]byte("paths:\n  core_dir: \"{{ .vars.nope }}/core\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variable not found: nope")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewBuildConfigLoader(afero.NewMemMapFs()).Load("/nope.yaml")
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Board.MCU = "attiny85"
	cfg.Board.CPUFrequency = 8000000
	cfg.Paths.LibraryRoot = "/libs"

	require.NoError(t, Save(fs, "/home/me/.sketchforge/board.yaml", cfg))

	loaded, err := NewBuildConfigLoader(fs).Load("/home/me/.sketchforge/board.yaml")
	require.NoError(t, err)
	assert.Equal(t, "attiny85", loaded.Board.MCU)
	assert.Equal(t, uint64(8000000), loaded.Board.CPUFrequency)
	assert.Equal(t, "/libs", loaded.Paths.LibraryRoot)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
}

func TestOverridesFromViper(t *testing.T) {
	v := viper.New()
	v.Set(KeyMCU, "atmega2560")
	v.Set(KeyCPUFrequency, 8000000)
	v.Set(KeyTimeout, "10s")
	v.Set(KeyLibraryRoot, "/libs")

	o := OverridesFromViper(v)
	assert.Equal(t, "atmega2560", o.MCU)
	assert.Equal(t, uint64(8000000), o.CPUFrequency)
	assert.Equal(t, 10*time.Second, o.Timeout)
	assert.Equal(t, "/libs", o.LibraryRoot)
	assert.Empty(t, o.WorkDir)

	assert.True(t, OverridesFromViper(nil).IsZero())
	assert.True(t, OverridesFromViper(viper.New()).IsZero())
}

func TestValidateDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"integer frequency", "board:\n  mcu: atmega2560\n  f_cpu: 16000000\n", ""},
		{"fractional frequency", "board:\n  f_cpu: 16000000.5\n", "/board/f_cpu"},
		{"zero frequency", "board:\n  f_cpu: 0\n", "/board/f_cpu"},
		{"nested paths", "paths:\n  include_dirs: [/opt/core, /opt/variant]\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateDocument([]byte(tt.doc))
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
