package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/version"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

// SARIFFormatter formats build reports as SARIF 2.1.0 JSON.
// Compiler and linker diagnostics become results with source locations;
// build errors without a parsed diagnostic are reported against the sketch.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, "blink.ino")
//	if err := formatter.Format(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer     io.Writer
	sketchPath string
}

// NewSARIFFormatter creates a new SARIF formatter.
// sketchPath locates errors that carry no file of their own.
func NewSARIFFormatter(writer io.Writer, sketchPath string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:     writer,
		sketchPath: sketchPath,
	}
}

// Format writes the build report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *build.Report) error {
	out := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("sketchforge", "https://github.com/avrforge/sketchforge")
	setDriverVersion(run.Tool.Driver, version.Get())

	mapper := newSARIFMapper(report, f.sketchPath)
	mapper.mapToRun(run)

	out.AddRun(run)

	if err := out.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

// setDriverVersion always records the version string; release builds also
// get semanticVersion.
func setDriverVersion(driver *sarif.ToolComponent, info version.Info) {
	toolVersion := info.Version
	driver.Version = &toolVersion
	if info.IsRelease() {
		driver.WithSemanticVersion(strings.TrimPrefix(info.Version, "v"))
	}
}
