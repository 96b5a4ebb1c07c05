package build

import "fmt"

// Diagnostic is one compiler or linker message tied to a source location.
type Diagnostic struct {
	File     string `json:"file" yaml:"file"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// IsError reports whether the diagnostic has error or fatal severity.
func (d Diagnostic) IsError() bool {
	return d.Severity == "error" || d.Severity == "fatal error"
}

func (d Diagnostic) String() string {
	switch {
	case d.Line > 0 && d.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
	}
}
