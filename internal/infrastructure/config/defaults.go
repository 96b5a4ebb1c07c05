package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/avrforge/sketchforge/internal/domain/entities"
)

// DefaultWorkDirName is the working directory created under the system temp dir.
const DefaultWorkDirName = "sketchforge"

// DefaultTimeout bounds a single toolchain invocation.
const DefaultTimeout = 2 * time.Minute

// DefaultConfig returns an avr-gcc configuration for an ATmega328P at 16MHz.
// Include, variant, core and library paths are installation specific and
// left empty.
func DefaultConfig() *entities.BuildConfig {
	return &entities.BuildConfig{
		Board: entities.Board{
			Name:         "uno",
			MCU:          "atmega328p",
			CPUFrequency: 16000000,
		},
		Toolchain: entities.Toolchain{
			CCompiler:   "avr-gcc",
			CXXCompiler: "avr-g++",
			Linker:      "avr-gcc",
			ObjectCopy:  "avr-objcopy",
			SizeTool:    "avr-size",
			Archiver:    "avr-ar",
		},
		Paths: entities.Paths{
			WorkDir:    filepath.Join(os.TempDir(), DefaultWorkDirName),
			SketchFile: "sketch.cpp",
		},
		Templates: entities.Templates{
			CompileC:    "-c -g -Os -w -ffunction-sections -fdata-sections -mmcu={0} -DF_CPU={1}L {2} {3} -o {4}",
			CompileCXX:  "-c -g -Os -w -fno-exceptions -ffunction-sections -fdata-sections -mmcu={0} -DF_CPU={1}L {2} {3} -o {4}",
			Archive:     "rcs {0}/core.a {1}",
			Link:        "-Os -Wl,--gc-sections -mmcu={0} -o {4} {1} {2} {3}/core.a -L{3} -lm",
			FlashImage:  "-O ihex -R .eeprom {0} {1}",
			EepromImage: "-O ihex -j .eeprom --set-section-flags=.eeprom=alloc,load --no-change-warnings --change-section-lma .eeprom=0 {0} {1}",
			Size:        "--mcu={0} {1}",
		},
		Timeout: DefaultTimeout,
	}
}
