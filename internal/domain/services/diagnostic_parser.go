package services

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/avrforge/sketchforge/internal/domain/build"
)

// gcc style: file:line:col: severity: message (column optional)
var diagnosticPattern = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:\s*(fatal error|error|warning|note):\s*(.*)$`)

// linker style: file:(section+0x..): message, or tool: message
var linkerPattern = regexp.MustCompile(`^(.+?):\(.*?\):\s*(.*)$`)

// DiagnosticParser turns raw toolchain output into structured diagnostics.
type DiagnosticParser struct{}

// NewDiagnosticParser creates a new diagnostic parser
func NewDiagnosticParser() *DiagnosticParser {
	return &DiagnosticParser{}
}

// Parse extracts every recognisable diagnostic line. Context lines (source
// excerpts, carets, "In function" headers) are skipped.
func (p *DiagnosticParser) Parse(output string) []build.Diagnostic {
	var diags []build.Diagnostic

	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if m := diagnosticPattern.FindStringSubmatch(line); m != nil {
			d := build.Diagnostic{
				File:     m[1],
				Severity: m[4],
				Message:  m[5],
			}
			d.Line, _ = strconv.Atoi(m[2])
			if m[3] != "" {
				d.Column, _ = strconv.Atoi(m[3])
			}
			diags = append(diags, d)
			continue
		}
		if m := linkerPattern.FindStringSubmatch(line); m != nil {
			diags = append(diags, build.Diagnostic{File: m[1], Severity: "error", Message: m[2]})
		}
	}
	return diags
}

// FirstError returns the first error-severity diagnostic, if any.
func FirstError(diags []build.Diagnostic) (build.Diagnostic, bool) {
	for _, d := range diags {
		if d.IsError() {
			return d, true
		}
	}
	return build.Diagnostic{}, false
}
