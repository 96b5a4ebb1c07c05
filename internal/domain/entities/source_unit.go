package entities

import (
	"fmt"
	"path/filepath"

	"github.com/avrforge/sketchforge/internal/domain/values"
)

// SourceUnit is one compilable file discovered by directory enumeration.
// It is immutable once discovered.
type SourceUnit struct {
	Path string            `json:"path" yaml:"path"`
	Kind values.SourceKind `json:"kind" yaml:"kind"`
}

// NewSourceUnit classifies path and returns ok=false for non-compilable files.
func NewSourceUnit(path string) (SourceUnit, bool) {
	kind, ok := values.SourceKindFromPath(path)
	if !ok {
		return SourceUnit{}, false
	}
	return SourceUnit{Path: path, Kind: kind}, true
}

// Name is the file name without its directory.
func (u SourceUnit) Name() string {
	return filepath.Base(u.Path)
}

// ObjectPath is the object file written alongside the source.
// Later stages reassemble object paths by this convention.
func (u SourceUnit) ObjectPath() string {
	return u.Path + ".o"
}

// ObjectPathIn places the object in dir instead of alongside the source.
func (u SourceUnit) ObjectPathIn(dir string) string {
	return filepath.Join(dir, u.Name()+".o")
}

func (u SourceUnit) String() string {
	return fmt.Sprintf("%s (%s)", u.Path, u.Kind)
}

// SortUnitsByKind orders units C first, then C++, keeping the relative
// order within each kind.
func SortUnitsByKind(units []SourceUnit) []SourceUnit {
	out := make([]SourceUnit, 0, len(units))
	for _, u := range units {
		if u.Kind == values.SourceKindC {
			out = append(out, u)
		}
	}
	for _, u := range units {
		if u.Kind == values.SourceKindCPP {
			out = append(out, u)
		}
	}
	return out
}
