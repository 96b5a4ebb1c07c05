// Package output provides formatters for sketch build reports.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/services"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/dustin/go-humanize"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TextFormatter formats build reports for a terminal.
type TextFormatter struct {
	writer      io.Writer
	verbose     bool
	EnableColor bool
}

// NewTextFormatter creates a new text formatter. verbose lists every
// invocation instead of only the failed ones.
func NewTextFormatter(w io.Writer, verbose bool) *TextFormatter {
	return &TextFormatter{
		writer:      w,
		verbose:     verbose,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TextFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TextFormatter) rule() string {
	return f.colorize(strings.Repeat("─", 80), colorGray)
}

// Format writes the build report.
//
//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) Format(report *build.Report) error {
	fmt.Fprintln(f.writer, f.rule())
	target := report.MCU
	if report.Board != "" {
		target = report.Board + ", " + report.MCU
	}
	fmt.Fprintf(f.writer, "Sketch: %s (%s)\n", f.colorize(report.Sketch, colorBold), target)
	fmt.Fprintf(f.writer, "Build: %s\n", report.ID)
	fmt.Fprintf(f.writer, "Started: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	f.formatLibraries(report.Libraries)
	f.formatInvocations(report.Invocations)
	f.formatList("Errors", report.Errors, colorRed)
	f.formatList("Warnings", report.Warnings, colorYellow)
	f.formatImages(report)
	f.formatSize(report.Size)
	f.formatOutcome(report)

	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) formatLibraries(libs []build.LibrarySummary) {
	if len(libs) == 0 {
		return
	}
	fmt.Fprintln(f.writer, f.colorize("Libraries:", colorBold))
	for _, lib := range libs {
		name := f.colorize(lib.Name, colorCyan)
		if lib.Version != "" {
			name += " " + lib.Version
		}
		fmt.Fprintf(f.writer, "  %s (%s)\n", name, lib.Dir)
		fmt.Fprintf(f.writer, "     Matched by: %s\n", strings.Join(lib.MatchedBy, ", "))
		fmt.Fprintf(f.writer, "     Units: %d\n", lib.Units)
	}
	fmt.Fprintln(f.writer)
}

// formatInvocations prints a per-stage summary, then the invocations
// themselves (failed ones only unless verbose).
//
//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) formatInvocations(invs []build.Invocation) {
	if len(invs) == 0 {
		fmt.Fprintln(f.writer, "No toolchain invocations.")
		fmt.Fprintln(f.writer)
		return
	}

	type stageStats struct {
		count, failed int
		duration      time.Duration
	}
	stats := make(map[values.Stage]*stageStats)
	var order []values.Stage
	for _, inv := range invs {
		s, ok := stats[inv.Stage]
		if !ok {
			s = &stageStats{}
			stats[inv.Stage] = s
			order = append(order, inv.Stage)
		}
		s.count++
		s.duration += inv.Duration
		if inv.Failed() {
			s.failed++
		}
	}

	fmt.Fprintln(f.writer, f.colorize("Stages:", colorBold))
	for _, stage := range order {
		s := stats[stage]
		symbol, color := "✓", colorGreen
		if s.failed > 0 {
			symbol, color = "✗", colorRed
		}
		fmt.Fprintf(f.writer, "  %s %-20s %3d invocations  %3d failed  %s\n",
			f.colorize(symbol, color), stage, s.count, s.failed, s.duration.Round(time.Millisecond))
	}
	fmt.Fprintln(f.writer)

	var shown []build.Invocation
	for _, inv := range invs {
		if f.verbose || inv.Failed() {
			shown = append(shown, inv)
		}
	}
	if len(shown) == 0 {
		return
	}

	fmt.Fprintln(f.writer, f.colorize("Invocations:", colorBold))
	for _, inv := range shown {
		symbol, color := "✓", colorGreen
		if inv.Failed() {
			symbol, color = "✗", colorRed
		}
		label := inv.Tool
		if inv.Unit != "" {
			label = inv.Unit + " (" + inv.Tool + ")"
		}
		fmt.Fprintf(f.writer, "  %s %s\n", f.colorize(symbol, color), label)
		if f.verbose {
			fmt.Fprintf(f.writer, "       Args: %s\n", inv.Args)
		}
		if inv.Err != "" {
			fmt.Fprintf(f.writer, "       %s: %s\n", f.colorize("Error", colorRed), inv.Err)
		}
		if inv.Output != "" {
			for _, line := range strings.Split(inv.Output, "\n") {
				fmt.Fprintf(f.writer, "       %s\n", line)
			}
		}
		fmt.Fprintf(f.writer, "       Duration: %s\n", inv.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) formatList(title string, items []string, color string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(f.writer, f.colorize(title+":", color))
	for _, item := range items {
		fmt.Fprintf(f.writer, "  - %s\n", item)
	}
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) formatImages(report *build.Report) {
	img := report.Images
	if img.ELF == "" && img.Flash == "" && img.EEPROM == "" {
		return
	}
	fmt.Fprintln(f.writer, f.colorize("Images:", colorBold))
	for _, entry := range []struct{ name, path string }{
		{"ELF", img.ELF},
		{"Flash", img.Flash},
		{"EEPROM", img.EEPROM},
	} {
		if entry.path != "" {
			fmt.Fprintf(f.writer, "  %-7s %s\n", entry.name+":", entry.path)
		}
	}
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) formatSize(size *build.SizeReport) {
	if size == nil {
		return
	}
	fmt.Fprintln(f.writer, f.colorize("Size:", colorBold))
	if !size.Parsed() {
		for _, line := range strings.Split(size.Raw, "\n") {
			fmt.Fprintf(f.writer, "  %s\n", line)
		}
		fmt.Fprintln(f.writer)
		return
	}
	if size.Device != "" {
		// AVR format carries totals only
		fmt.Fprintf(f.writer, "  Device: %s\n", size.Device)
		fmt.Fprintf(f.writer, "  Flash:  %s\n", humanize.IBytes(size.Flash()))
		fmt.Fprintf(f.writer, "  RAM:    %s\n", humanize.IBytes(size.RAM()))
		fmt.Fprintf(f.writer, "  EEPROM: %s\n", humanize.IBytes(size.EEPROM))
		fmt.Fprintln(f.writer)
		return
	}
	fmt.Fprintf(f.writer, "  Flash: %s (text %s + data %s)\n",
		humanize.IBytes(size.Flash()), humanize.Comma(int64(size.Text)), humanize.Comma(int64(size.Data)))
	fmt.Fprintf(f.writer, "  RAM:   %s (data %s + bss %s)\n",
		humanize.IBytes(size.RAM()), humanize.Comma(int64(size.Data)), humanize.Comma(int64(size.BSS)))
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TextFormatter) formatOutcome(report *build.Report) {
	fmt.Fprintln(f.writer, f.rule())
	if report.Succeeded() {
		fmt.Fprintf(f.writer, "%s Build %s\n", f.colorize("✓", colorGreen), f.colorize("SUCCEEDED", colorGreen))
	} else {
		fmt.Fprintf(f.writer, "%s Build %s (%d errors)\n",
			f.colorize("✗", colorRed), f.colorize("FAILED", colorRed), len(report.Errors))
		if first, ok := services.FirstError(report.Diagnostics); ok {
			fmt.Fprintf(f.writer, "  First error: %s\n", first)
		}
	}
	fmt.Fprintln(f.writer, f.rule())
}
