package output

import (
	"fmt"
	"io"

	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/avrforge/sketchforge/internal/application/ports"
)

// Ensure interface compliance
var _ ports.FormatterFactory = (*FormatterFactory)(nil)

// FormatterFactory implements ports.FormatterFactory.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(
	format string,
	writer io.Writer,
	options dto.OutputOptions,
) (ports.OutputFormatter, error) {
	switch format {
	case "text":
		tf := NewTextFormatter(writer, options.Verbose)
		tf.EnableColor = !options.NoColor
		return tf, nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "junit":
		return NewJUnitFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer, options.SketchPath), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"text", "json", "yaml", "junit", "sarif"}
}
