package output

import (
	"bytes"
	"testing"

	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterFactory_Create(t *testing.T) {
	factory := NewFormatterFactory()
	buf := &bytes.Buffer{}

	tests := []struct {
		name        string
		format      string
		options     dto.OutputOptions
		wantErr     bool
		wantType    interface{}
		errContains string
	}{
		{
			name:     "text format",
			format:   "text",
			wantType: &TextFormatter{},
		},
		{
			name:     "json format",
			format:   "json",
			options:  dto.OutputOptions{Indent: true},
			wantType: &JSONFormatter{},
		},
		{
			name:     "yaml format",
			format:   "yaml",
			wantType: &YAMLFormatter{},
		},
		{
			name:     "junit format",
			format:   "junit",
			wantType: &JUnitFormatter{},
		},
		{
			name:     "sarif format",
			format:   "sarif",
			options:  dto.OutputOptions{SketchPath: "blink.ino"},
			wantType: &SARIFFormatter{},
		},
		{
			name:        "unknown format",
			format:      "table",
			wantErr:     true,
			errContains: "unknown format: table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := factory.Create(tt.format, buf, tt.options)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, formatter)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, formatter)
		})
	}
}

func TestFormatterFactory_NoColor(t *testing.T) {
	formatter, err := NewFormatterFactory().Create("text", &bytes.Buffer{}, dto.OutputOptions{NoColor: true})
	require.NoError(t, err)

	tf, ok := formatter.(*TextFormatter)
	require.True(t, ok)
	assert.False(t, tf.EnableColor)
}

func TestFormatterFactory_SupportedFormats(t *testing.T) {
	formats := NewFormatterFactory().SupportedFormats()
	assert.Equal(t, []string{"text", "json", "yaml", "junit", "sarif"}, formats)
}
