package config

import (
	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/spf13/viper"
)

// Viper keys that may override the build config.
const (
	KeyMCU          = "board.mcu"
	KeyCPUFrequency = "board.f_cpu"
	KeyToolchainDir = "toolchain.dir"
	KeyWorkDir      = "paths.work_dir"
	KeyLibraryRoot  = "paths.library_root"
	KeyTimeout      = "timeout"
)

// KeyRedactionSalt is the HMAC key for hashed redaction. It is read from the
// CLI config or the environment, never from a build config.
const KeyRedactionSalt = "redaction.salt"

// OverrideKeys lists every key read by OverridesFromViper.
func OverrideKeys() []string {
	return []string{KeyMCU, KeyCPUFrequency, KeyToolchainDir, KeyWorkDir, KeyLibraryRoot, KeyTimeout}
}

// OverridesFromViper collects the build overrides set in v, whether they
// came from the CLI config file, SKETCHFORGE_* variables or bound flags.
func OverridesFromViper(v *viper.Viper) dto.ConfigOverrides {
	if v == nil {
		return dto.ConfigOverrides{}
	}
	return dto.ConfigOverrides{
		MCU:          v.GetString(KeyMCU),
		CPUFrequency: v.GetUint64(KeyCPUFrequency),
		ToolchainDir: v.GetString(KeyToolchainDir),
		WorkDir:      v.GetString(KeyWorkDir),
		LibraryRoot:  v.GetString(KeyLibraryRoot),
		Timeout:      v.GetDuration(KeyTimeout),
	}
}
