package library

import (
	"testing"

	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/infrastructure/transpiler"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func unitPaths(units []entities.SourceUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Path
	}
	return out
}

func TestFindLibraryDirectories_NoDependencies(t *testing.T) {
	t.Parallel()
	// the root does not exist; an empty dependency set must not touch it
	r := NewResolver(afero.NewMemMapFs(), transpiler.New(), nil)

	matches, err := r.FindLibraryDirectories(nil, "/missing")
	require.NoError(t, err)
	assert.Empty(t, matches)

	deps := r.Resolve("void setup() {}\nvoid loop() {}\n")
	assert.Empty(t, deps)
}

func TestFindLibraryDirectories_SingleMatchWithUtility(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/Servo/Servo.h":                  "",
		"/libs/Servo/Servo.cpp":                "",
		"/libs/Servo/utility/ServoTimers.cpp":  "",
		"/libs/Servo/utility/ServoTimers.h":    "",
		"/libs/Servo/utility/deeper/Skip.cpp":  "",
		"/libs/Servo/examples/Sweep/Sweep.ino": "",
		"/libs/Wire/Wire.h":                    "",
		"/libs/Wire/Wire.cpp":                  "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	deps := r.Resolve("#include <Servo.h>\n")
	matches, err := r.FindLibraryDirectories(deps, "/libs")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "/libs/Servo", matches[0].Dir)
	assert.Equal(t, []entities.Dependency{"Servo.h"}, matches[0].MatchedBy)

	units, err := r.Units(matches[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"/libs/Servo/Servo.cpp", "/libs/Servo/utility/ServoTimers.cpp"}, unitPaths(units))
}

func TestFindLibraryDirectories_DirectoryMatchedOnce(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/Ethernet/Ethernet.h":    "",
		"/libs/Ethernet/EthernetUdp.h": "",
		"/libs/Ethernet/Ethernet.cpp":  "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	deps := r.Resolve("#include <Ethernet.h>\n#include <EthernetUdp.h>\n#include <Ethernet.h>\n")
	matches, err := r.FindLibraryDirectories(deps, "/libs")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, []entities.Dependency{"Ethernet.h", "EthernetUdp.h"}, matches[0].MatchedBy)
}

func TestFindLibraryDirectories_ExactCaseSensitiveMatch(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/servo/servo.h":    "",
		"/libs/ServoX/ServoX.h":  "",
		"/libs/Other/Servo.h.in": "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	matches, err := r.FindLibraryDirectories([]entities.Dependency{"Servo.h"}, "/libs")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindLibraryDirectories_LexicalOrder(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/Zeta/Z.h":  "",
		"/libs/Alpha/A.h": "",
		"/libs/Mid/M.h":   "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	matches, err := r.FindLibraryDirectories([]entities.Dependency{"Z.h", "M.h", "A.h"}, "/libs")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "Alpha", matches[0].Name())
	assert.Equal(t, "Mid", matches[1].Name())
	assert.Equal(t, "Zeta", matches[2].Name())
}

func TestFindLibraryDirectories_MissingRoot(t *testing.T) {
	t.Parallel()
	r := NewResolver(afero.NewMemMapFs(), transpiler.New(), nil)

	_, err := r.FindLibraryDirectories([]entities.Dependency{"Servo.h"}, "/nowhere")
	assert.Error(t, err)
}

func TestUnits_CBeforeCPP(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/SD/SD.h":               "",
		"/libs/SD/b.cpp":              "",
		"/libs/SD/a.cpp":              "",
		"/libs/SD/z.c":                "",
		"/libs/SD/notes.txt":          "",
		"/libs/SD/utility/Sd2Card.c":  "",
		"/libs/SD/utility/SdFile.cpp": "",
		"/libs/SD/utility/FatLib.cpp": "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	units, err := r.Units(entities.LibraryMatch{Dir: "/libs/SD"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/libs/SD/z.c",
		"/libs/SD/a.cpp",
		"/libs/SD/b.cpp",
		"/libs/SD/utility/Sd2Card.c",
		"/libs/SD/utility/FatLib.cpp",
		"/libs/SD/utility/SdFile.cpp",
	}, unitPaths(units))
}

func TestReadVersion(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/Servo/Servo.h":            "",
		"/libs/Servo/library.properties": "name=Servo\nversion=1.2.1\nauthor=Someone\n",
		"/libs/Bad/Bad.h":                "",
		"/libs/Bad/library.properties":   "version=not-a-version\n",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	matches, err := r.FindLibraryDirectories([]entities.Dependency{"Servo.h", "Bad.h"}, "/libs")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Nil(t, matches[0].Version, "Bad sorts first and has no valid version")
	require.NotNil(t, matches[1].Version)
	assert.Equal(t, "1.2.1", matches[1].VersionString())
}

func TestIncludeArgs(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/libs/Wire/Wire.h":    "",
		"/libs/My Lib/MyLib.h": "",
		"/libs/readme.txt":     "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	cfg := &entities.BuildConfig{Paths: entities.Paths{
		IncludeDirs: []string{"/core"},
		VariantDir:  "/variants/standard",
		WorkDir:     "/tmp/work",
		LibraryRoot: "/libs",
	}}

	assert.Equal(t,
		`-I/core -I/variants/standard -I/tmp/work "-I/libs/My Lib" -I/libs/Wire`,
		r.IncludeArgs(cfg))
}

func TestListUnits_COrderedBeforeCPP(t *testing.T) {
	t.Parallel()
	fs := newFS(t, map[string]string{
		"/work/b.cpp":      "",
		"/work/z.c":        "",
		"/work/a.cpp":      "",
		"/work/m.c":        "",
		"/work/notes.txt":  "",
		"/work/sub/deep.c": "",
		"/work/sketch.h":   "",
	})
	r := NewResolver(fs, transpiler.New(), nil)

	units, err := r.ListUnits("/work")
	require.NoError(t, err)
	var paths []string
	for _, u := range units {
		paths = append(paths, u.Path)
	}
	assert.Equal(t, []string{"/work/m.c", "/work/z.c", "/work/a.cpp", "/work/b.cpp"}, paths)

	_, err = r.ListUnits("/missing")
	assert.Error(t, err)
}
