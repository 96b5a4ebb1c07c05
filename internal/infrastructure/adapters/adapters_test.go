package adapters

import (
	"context"
	"testing"

	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/infrastructure/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentRunner struct {
	calls int
}

func (r *silentRunner) Run(_ context.Context, _, _ string) (string, error) {
	r.calls++
	return "", nil
}

func TestSketchReaderAdapter_File(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s/Blink/Blink.ino", []byte("void setup() {}"), 0o644))

	text, err := NewSketchReaderAdapter(fs).ReadSketch("/s/Blink/Blink.ino")
	require.NoError(t, err)
	assert.Equal(t, "void setup() {}", text)
}

func TestSketchReaderAdapter_Directory(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s/Blink/Blink.ino", []byte("void loop() {}"), 0o644))

	text, err := NewSketchReaderAdapter(fs).ReadSketch("/s/Blink/")
	require.NoError(t, err)
	assert.Equal(t, "void loop() {}", text)
}

func TestSketchReaderAdapter_Errors(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/s/Empty", 0o755))
	r := NewSketchReaderAdapter(fs)

	_, err := r.ReadSketch("")
	assert.Error(t, err)

	_, err = r.ReadSketch("/s/missing.ino")
	assert.Error(t, err)

	_, err = r.ReadSketch("/s/Empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no Empty.ino")
}

func TestEngineFactoryAdapter_CreateEngine(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	runner := &silentRunner{}
	factory := NewEngineFactoryAdapter(runner, fs, nil)

	eng, err := factory.CreateEngine(config.DefaultConfig(), dto.ExecutionOptions{Parallel: true, MaxConcurrentUnits: 2})
	require.NoError(t, err)
	require.NotNil(t, eng)
}

func TestEngineFactoryAdapter_InvalidConfig(t *testing.T) {
	t.Parallel()
	factory := NewEngineFactoryAdapter(&silentRunner{}, afero.NewMemMapFs(), nil)

	_, err := factory.CreateEngine(&entities.BuildConfig{}, dto.ExecutionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create engine")

	_, err = factory.CreateEngine(nil, dto.ExecutionOptions{})
	assert.ErrorIs(t, err, entities.ErrNilConfig)
}

func TestEngineFactoryAdapter_Redaction(t *testing.T) {
	t.Parallel()
	factory := NewEngineFactoryAdapter(&silentRunner{}, afero.NewMemMapFs(), nil)

	_, err := factory.CreateEngine(config.DefaultConfig(), dto.ExecutionOptions{
		Redaction: dto.RedactionOptions{Patterns: []string{"(unclosed"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create redactor")

	// patterns are not compiled when redaction is off
	eng, err := factory.CreateEngine(config.DefaultConfig(), dto.ExecutionOptions{
		Redaction: dto.RedactionOptions{Disabled: true, Patterns: []string{"(unclosed"}},
	})
	require.NoError(t, err)
	assert.NotNil(t, eng)
}
