// Package engine runs the sketch build pipeline.
package engine

import (
	"runtime"
	"time"
)

// Defaults for execution behaviour.
const (
	// MinConcurrentUnits keeps some parallelism on single-core machines.
	MinConcurrentUnits = 2

	// DefaultObjectWaitTimeout bounds the wait for object files before linking.
	DefaultObjectWaitTimeout = 2 * time.Second

	// DefaultObjectPollInterval is the first delay between existence checks.
	DefaultObjectPollInterval = 10 * time.Millisecond

	// MaxObjectPollInterval caps the backoff between existence checks.
	MaxObjectPollInterval = 250 * time.Millisecond

	// DefaultEventBuffer is the capacity of the progress channel.
	DefaultEventBuffer = 256
)

// ExecutionConfig controls execution behavior.
type ExecutionConfig struct {
	// Parallel compiles independent units of one stage concurrently.
	Parallel bool
	// MaxConcurrentUnits caps parallel compilation.
	MaxConcurrentUnits int
	// StrictPreparation turns a work directory creation failure into a
	// fatal error instead of a warning.
	StrictPreparation  bool
	ObjectWaitTimeout  time.Duration
	ObjectPollInterval time.Duration
	EventBuffer        int
}

// DefaultExecutionConfig returns sequential execution with sane limits.
func DefaultExecutionConfig() ExecutionConfig {
	maxUnits := runtime.NumCPU()
	if maxUnits < MinConcurrentUnits {
		maxUnits = MinConcurrentUnits
	}

	return ExecutionConfig{
		MaxConcurrentUnits: maxUnits,
		ObjectWaitTimeout:  DefaultObjectWaitTimeout,
		ObjectPollInterval: DefaultObjectPollInterval,
		EventBuffer:        DefaultEventBuffer,
	}
}

// withDefaults fills zero values from DefaultExecutionConfig.
func (c ExecutionConfig) withDefaults() ExecutionConfig {
	def := DefaultExecutionConfig()
	if c.MaxConcurrentUnits <= 0 {
		c.MaxConcurrentUnits = def.MaxConcurrentUnits
	}
	if c.ObjectWaitTimeout <= 0 {
		c.ObjectWaitTimeout = def.ObjectWaitTimeout
	}
	if c.ObjectPollInterval <= 0 {
		c.ObjectPollInterval = def.ObjectPollInterval
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = def.EventBuffer
	}
	return c
}
