package engine

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollDelay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 20 * time.Millisecond},
		{3, 80 * time.Millisecond},
		{5, 250 * time.Millisecond},
		{64, 250 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pollDelay(tt.attempt, 10*time.Millisecond, 250*time.Millisecond))
	}
}

func TestAwaitFiles_AppearsLate(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/a.o", nil, 0o644))

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = afero.WriteFile(fs, "/w/b.o", nil, 0o644)
	}()

	missing, err := awaitFiles(context.Background(), fs, []string{"/w/a.o", "/w/b.o"}, time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestAwaitFiles_Deadline(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	missing, err := awaitFiles(context.Background(), fs, []string{"/w/a.o", "/w/b.o"}, 20*time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []string{"/w/a.o", "/w/b.o"}, missing)
}

func TestAwaitFiles_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := awaitFiles(ctx, afero.NewMemMapFs(), []string{"/w/a.o"}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutionConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg := ExecutionConfig{Parallel: true}.withDefaults()
	assert.True(t, cfg.Parallel)
	assert.GreaterOrEqual(t, cfg.MaxConcurrentUnits, MinConcurrentUnits)
	assert.Equal(t, DefaultObjectWaitTimeout, cfg.ObjectWaitTimeout)
	assert.Equal(t, DefaultEventBuffer, cfg.EventBuffer)
}
