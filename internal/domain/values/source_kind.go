package values

import (
	"fmt"
	"path/filepath"
)

// SourceKind selects which compiler handles a source unit.
type SourceKind string

const (
	// SourceKindC is compiled with the C compiler
	SourceKindC SourceKind = "c"
	// SourceKindCPP is compiled with the C++ compiler
	SourceKindCPP SourceKind = "cpp"
)

// SourceKindFromPath classifies a file by extension.
// Only ".c" and ".cpp" are compilable; the match is case-sensitive.
func SourceKindFromPath(path string) (SourceKind, bool) {
	switch filepath.Ext(path) {
	case ".c":
		return SourceKindC, true
	case ".cpp":
		return SourceKindCPP, true
	default:
		return "", false
	}
}

// CompilerTag is the short label used in progress messages ("gcc" or "gpp").
func (k SourceKind) CompilerTag() string {
	if k == SourceKindC {
		return "gcc"
	}
	return "gpp"
}

// Validate returns an error if the kind is unknown
func (k SourceKind) Validate() error {
	switch k {
	case SourceKindC, SourceKindCPP:
		return nil
	default:
		return fmt.Errorf("invalid source kind: %q", string(k))
	}
}
