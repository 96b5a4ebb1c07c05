// Package library discovers the library directories a sketch depends on.
package library

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/avrforge/sketchforge/internal/application/ports"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/infrastructure/toolchain"
	"github.com/spf13/afero"
)

// PropertiesFile is the optional library metadata file.
const PropertiesFile = "library.properties"

// Ensure interface compliance
var _ ports.LibraryResolver = (*Resolver)(nil)

// Resolver matches dependencies to library directories by exact file name.
type Resolver struct {
	fs        afero.Fs
	extractor ports.DependencyExtractor
	logger    *slog.Logger
}

// NewResolver creates a resolver over fs.
func NewResolver(fs afero.Fs, extractor ports.DependencyExtractor, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fs: fs, extractor: extractor, logger: logger}
}

// Resolve extracts the sketch's dependencies, deduplicated in order of
// first appearance.
func (r *Resolver) Resolve(sketch string) []entities.Dependency {
	return entities.UniqueDependencies(r.extractor.ExtractDependencyNames(sketch))
}

// FindLibraryDirectories returns every immediate subdirectory of root that
// holds a top-level file named exactly like one of deps. Directories are
// visited in lexical order and each appears at most once.
func (r *Resolver) FindLibraryDirectories(deps []entities.Dependency, root string) ([]entities.LibraryMatch, error) {
	if len(deps) == 0 {
		return []entities.LibraryMatch{}, nil
	}

	entries, err := afero.ReadDir(r.fs, root)
	if err != nil {
		return nil, fmt.Errorf("read library root %s: %w", root, err)
	}

	matches := []entities.LibraryMatch{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		files, err := r.topLevelFiles(dir)
		if err != nil {
			r.logger.Warn("skipping unreadable library directory", "dir", dir, "error", err)
			continue
		}

		var matchedBy []entities.Dependency
		for _, dep := range deps {
			if files[string(dep)] {
				matchedBy = append(matchedBy, dep)
			}
		}
		if len(matchedBy) == 0 {
			continue
		}

		match := entities.LibraryMatch{
			Dir:       dir,
			MatchedBy: matchedBy,
			Version:   r.readVersion(dir),
		}
		r.logger.Debug("library matched", "dir", dir, "matched_by", matchedBy, "version", match.VersionString())
		matches = append(matches, match)
	}
	return matches, nil
}

// Units lists the compilable files of a matched library: top-level C, then
// top-level C++, then the same for the utility subdirectory if present.
func (r *Resolver) Units(match entities.LibraryMatch) ([]entities.SourceUnit, error) {
	units, err := r.ListUnits(match.Dir)
	if err != nil {
		return nil, err
	}

	utility := match.UtilityDir()
	ok, err := afero.DirExists(r.fs, utility)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", utility, err)
	}
	if !ok {
		return units, nil
	}

	nested, err := r.ListUnits(utility)
	if err != nil {
		return nil, err
	}
	return append(units, nested...), nil
}

// ListUnits returns the .c files of dir followed by its .cpp files, each
// group in lexical order. Subdirectories are not walked.
func (r *Resolver) ListUnits(dir string) ([]entities.SourceUnit, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var units []entities.SourceUnit
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if unit, ok := entities.NewSourceUnit(filepath.Join(dir, entry.Name())); ok {
			units = append(units, unit)
		}
	}
	return entities.SortUnitsByKind(units), nil
}

// IncludeArgs builds the include flags shared by every compile: configured
// include dirs, the variant dir, the work dir, then every library directory.
func (r *Resolver) IncludeArgs(cfg *entities.BuildConfig) string {
	var dirs []string
	dirs = append(dirs, cfg.Paths.IncludeDirs...)
	if cfg.Paths.VariantDir != "" {
		dirs = append(dirs, cfg.Paths.VariantDir)
	}
	dirs = append(dirs, cfg.Paths.WorkDir)
	dirs = append(dirs, r.libraryDirs(cfg.Paths.LibraryRoot)...)

	flags := make([]string, len(dirs))
	for i, d := range dirs {
		flags[i] = "-I" + d
	}
	return toolchain.JoinArgs(flags)
}

func (r *Resolver) libraryDirs(root string) []string {
	if root == "" {
		return nil
	}
	entries, err := afero.ReadDir(r.fs, root)
	if err != nil {
		r.logger.Debug("library root not readable", "root", root, "error", err)
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs
}

func (r *Resolver) topLevelFiles(dir string) (map[string]bool, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, err
	}
	files := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files[entry.Name()] = true
		}
	}
	return files, nil
}

// readVersion parses the version= line of library.properties. Missing
// files and invalid versions yield nil.
func (r *Resolver) readVersion(dir string) *semver.Version {
	path := filepath.Join(dir, PropertiesFile)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Debug("cannot read library properties", "path", path, "error", err)
		}
		return nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok || strings.TrimSpace(key) != "version" {
			continue
		}
		v, err := semver.NewVersion(strings.TrimSpace(value))
		if err != nil {
			r.logger.Debug("invalid library version", "path", path, "version", value, "error", err)
			return nil
		}
		return v
	}
	return nil
}
