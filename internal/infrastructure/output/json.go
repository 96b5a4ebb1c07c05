package output

import (
	"encoding/json"
	"io"

	"github.com/avrforge/sketchforge/internal/domain/build"
)

// JSONFormatter formats build reports as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// Format writes the build report as JSON.
func (f *JSONFormatter) Format(report *build.Report) error {
	encoder := json.NewEncoder(f.writer)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}
