package engine

import (
	"fmt"

	"github.com/avrforge/sketchforge/internal/domain/entities"
)

// Progress texts shown to the user.
const (
	msgCompiling        = "Compiling"
	msgConverting       = "Converting to cpp"
	msgCompilingCpp     = "Compiling cpp"
	msgArchiving        = "Linking"
	msgFlashImage       = "Creating flash image"
	msgEepromImage      = "Creating eeprom image"
	msgComputingSize    = "Computing image size"
	msgFinished         = "Finished compiling"
	msgFailed           = "Build failed"
	msgCompilingCore    = "Compiling core"
	msgResolving        = "Resolving libraries"
	msgCompilingLibrary = "Compiling library %s"
)

// unitMessage is the per-file progress line, e.g. "gpp Servo.cpp".
func unitMessage(unit entities.SourceUnit) string {
	return unit.Kind.CompilerTag() + " " + unit.Name()
}

func linkMessage(generated string) string {
	return "Linking " + generated
}

func workDirWarning(dir string) string {
	return fmt.Sprintf("cannot create working directory %s, continuing", dir)
}

func libraryMessage(m entities.LibraryMatch) string {
	if v := m.VersionString(); v != "" {
		return fmt.Sprintf("Using library %s %s (%s)", m.Name(), v, m.Dir)
	}
	return fmt.Sprintf("Using library %s (%s)", m.Name(), m.Dir)
}

func sizeCheckWarning(expression string) string {
	return fmt.Sprintf("size check failed: %s", expression)
}
