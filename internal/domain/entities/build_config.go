// Package entities contains the domain entities of a sketch build.
package entities

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// BuildConfig is the immutable configuration of a single build.
// It is resolved once (file, defaults, overrides) and validated before any
// stage runs.
type BuildConfig struct {
	Board     Board     `yaml:"board" json:"board"`
	Toolchain Toolchain `yaml:"toolchain" json:"toolchain"`
	Paths     Paths     `yaml:"paths" json:"paths"`
	Templates Templates `yaml:"templates" json:"templates"`

	// SizeCheck is an optional boolean expression evaluated against the
	// parsed size report (e.g. "text + data <= 32256"). A false result is a
	// warning only.
	SizeCheck string `yaml:"size_check,omitempty" json:"size_check,omitempty"`

	// Timeout bounds each external tool invocation. Zero disables it.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// Vars are referenced from paths as {{ .vars.name }}.
	Vars map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`
}

// Board identifies the target microcontroller.
type Board struct {
	Name         string `yaml:"name,omitempty" json:"name,omitempty"`
	MCU          string `yaml:"mcu" json:"mcu"`
	CPUFrequency uint64 `yaml:"f_cpu" json:"f_cpu"`
}

// Toolchain names the external executables. Relative names are resolved
// against Dir when Dir is set.
type Toolchain struct {
	Dir         string `yaml:"dir,omitempty" json:"dir,omitempty"`
	CCompiler   string `yaml:"cc" json:"cc"`
	CXXCompiler string `yaml:"cxx" json:"cxx"`
	Linker      string `yaml:"linker" json:"linker"`
	ObjectCopy  string `yaml:"objcopy" json:"objcopy"`
	SizeTool    string `yaml:"size" json:"size"`
	Archiver    string `yaml:"ar" json:"ar"`
}

// Paths holds every filesystem location the build touches.
type Paths struct {
	WorkDir     string   `yaml:"work_dir" json:"work_dir"`
	SketchFile  string   `yaml:"sketch_file" json:"sketch_file"`
	IncludeDirs []string `yaml:"include_dirs,omitempty" json:"include_dirs,omitempty"`
	VariantDir  string   `yaml:"variant_dir,omitempty" json:"variant_dir,omitempty"`
	CoreDir     string   `yaml:"core_dir,omitempty" json:"core_dir,omitempty"`
	LibraryRoot string   `yaml:"library_root,omitempty" json:"library_root,omitempty"`
}

// Templates are the opaque command-line templates for each invocation.
// Placeholders are positional ({0}, {1}, ...); see the field comments for
// what each position receives.
type Templates struct {
	// {0} mcu, {1} f_cpu, {2} include args, {3} source, {4} object
	CompileC   string `yaml:"compile_c" json:"compile_c"`
	CompileCXX string `yaml:"compile_cxx" json:"compile_cxx"`
	// Same positions as CompileC/CompileCXX; empty falls back to them.
	CompileLibraryC   string `yaml:"compile_library_c,omitempty" json:"compile_library_c,omitempty"`
	CompileLibraryCXX string `yaml:"compile_library_cxx,omitempty" json:"compile_library_cxx,omitempty"`
	// {0} work dir, {1} object list
	Archive string `yaml:"archive" json:"archive"`
	// {0} mcu, {1} entry object, {2} link set, {3} work dir, {4} output elf
	Link string `yaml:"link" json:"link"`
	// {0} elf, {1} output image
	FlashImage  string `yaml:"flash_image" json:"flash_image"`
	EepromImage string `yaml:"eeprom_image" json:"eeprom_image"`
	// {0} mcu, {1} elf
	Size string `yaml:"size" json:"size"`
}

// LibraryCompileC returns the library C template, falling back to CompileC.
func (t Templates) LibraryCompileC() string {
	if t.CompileLibraryC != "" {
		return t.CompileLibraryC
	}
	return t.CompileC
}

// LibraryCompileCXX returns the library C++ template, falling back to CompileCXX.
func (t Templates) LibraryCompileCXX() string {
	if t.CompileLibraryCXX != "" {
		return t.CompileLibraryCXX
	}
	return t.CompileCXX
}

// ToolPath resolves an executable name against the toolchain directory.
// Absolute paths and names containing a separator are returned unchanged.
func (t Toolchain) ToolPath(exe string) string {
	if t.Dir == "" || filepath.IsAbs(exe) || strings.ContainsRune(exe, filepath.Separator) {
		return exe
	}
	return filepath.Join(t.Dir, exe)
}

// GeneratedSourcePath is where the transpiled sketch is written.
func (c *BuildConfig) GeneratedSourcePath() string {
	return filepath.Join(c.Paths.WorkDir, c.Paths.SketchFile)
}

// EntryObjectPath is the object produced from the generated source.
func (c *BuildConfig) EntryObjectPath() string {
	return c.GeneratedSourcePath() + ".o"
}

// Clone returns a deep copy so overrides never alias a shared default.
func (c *BuildConfig) Clone() *BuildConfig {
	out := *c
	out.Paths.IncludeDirs = append([]string(nil), c.Paths.IncludeDirs...)
	if c.Vars != nil {
		out.Vars = make(map[string]string, len(c.Vars))
		for k, v := range c.Vars {
			out.Vars[k] = v
		}
	}
	return &out
}

// Validate checks every required field and reports all problems at once.
func (c *BuildConfig) Validate() error {
	var problems []string

	if c.Board.MCU == "" {
		problems = append(problems, "board.mcu is required")
	}
	if c.Board.CPUFrequency == 0 {
		problems = append(problems, "board.f_cpu must be greater than zero")
	}

	tools := []struct{ name, value string }{
		{"toolchain.cc", c.Toolchain.CCompiler},
		{"toolchain.cxx", c.Toolchain.CXXCompiler},
		{"toolchain.linker", c.Toolchain.Linker},
		{"toolchain.objcopy", c.Toolchain.ObjectCopy},
		{"toolchain.size", c.Toolchain.SizeTool},
		{"toolchain.ar", c.Toolchain.Archiver},
	}
	for _, tool := range tools {
		if tool.value == "" {
			problems = append(problems, tool.name+" is required")
		}
	}

	if c.Paths.WorkDir == "" {
		problems = append(problems, "paths.work_dir is required")
	}
	switch {
	case c.Paths.SketchFile == "":
		problems = append(problems, "paths.sketch_file is required")
	case filepath.Base(c.Paths.SketchFile) != c.Paths.SketchFile:
		problems = append(problems, "paths.sketch_file must be a bare file name")
	case filepath.Ext(c.Paths.SketchFile) != ".cpp":
		problems = append(problems, "paths.sketch_file must end in .cpp")
	}

	templates := []struct{ name, value string }{
		{"templates.compile_c", c.Templates.CompileC},
		{"templates.compile_cxx", c.Templates.CompileCXX},
		{"templates.archive", c.Templates.Archive},
		{"templates.link", c.Templates.Link},
		{"templates.flash_image", c.Templates.FlashImage},
		{"templates.eeprom_image", c.Templates.EepromImage},
		{"templates.size", c.Templates.Size},
	}
	for _, tpl := range templates {
		if strings.TrimSpace(tpl.value) == "" {
			problems = append(problems, tpl.name+" is required")
		}
	}

	if c.Timeout < 0 {
		problems = append(problems, "timeout cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("build config invalid:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ErrNilConfig is returned when a build is started without configuration.
var ErrNilConfig = errors.New("build config is nil")
