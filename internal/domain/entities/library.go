package entities

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// Dependency is a file name referenced by one of the sketch's include
// directives, e.g. "Servo.h".
type Dependency string

// UtilityDirName is the one nested directory compiled as part of a library.
const UtilityDirName = "utility"

// LibraryMatch maps one library directory to the dependencies that selected it.
type LibraryMatch struct {
	Dir       string
	MatchedBy []Dependency
	// Version comes from library.properties when present and valid.
	// It is informational; no version resolution happens.
	Version *semver.Version
}

// Name is the library directory's base name.
func (m LibraryMatch) Name() string {
	return filepath.Base(m.Dir)
}

// UtilityDir is the nested utility directory path (which may not exist).
func (m LibraryMatch) UtilityDir() string {
	return filepath.Join(m.Dir, UtilityDirName)
}

// VersionString returns the version or "" when unknown.
func (m LibraryMatch) VersionString() string {
	if m.Version == nil {
		return ""
	}
	return m.Version.String()
}

// UniqueDependencies removes duplicates while keeping first-appearance order.
func UniqueDependencies(names []string) []Dependency {
	seen := make(map[string]bool, len(names))
	out := make([]Dependency, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, Dependency(n))
	}
	return out
}
