package output

import (
	"io"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/goccy/go-yaml"
)

// YAMLFormatter formats build reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the build report as YAML.
func (f *YAMLFormatter) Format(report *build.Report) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(report); err != nil {
		return err
	}

	return encoder.Close()
}
