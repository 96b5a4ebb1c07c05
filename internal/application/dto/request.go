// Package dto contains data transfer objects for application layer use cases.
package dto

import "time"

// BuildSketchRequest encapsulates all inputs needed to build a sketch.
type BuildSketchRequest struct {
	SketchPath string
	ConfigPath string
	Overrides  ConfigOverrides
	Execution  ExecutionOptions
	Metadata   RequestMetadata
}

// ConfigOverrides replace individual build config values after loading.
// Zero values leave the loaded value untouched.
type ConfigOverrides struct {
	MCU          string
	CPUFrequency uint64
	ToolchainDir string
	WorkDir      string
	LibraryRoot  string
	Timeout      time.Duration
}

// IsZero reports whether no override is set.
func (o ConfigOverrides) IsZero() bool {
	return o == ConfigOverrides{}
}

// ExecutionOptions controls how the build is executed.
type ExecutionOptions struct {
	// Parallel enables parallel compilation of units within a stage
	Parallel bool

	// MaxConcurrentUnits limits parallel compilation (0 = number of CPUs)
	MaxConcurrentUnits int

	// StrictPreparation makes a working directory creation failure fatal
	StrictPreparation bool

	// ObjectWaitTimeout bounds the wait for object files before linking (0 = default)
	ObjectWaitTimeout time.Duration

	// Redaction controls how secrets are scrubbed from recorded tool output
	Redaction RedactionOptions
}

// RedactionOptions tune secret scrubbing. The zero value scrubs with the
// gitleaks rules and the built-in patterns.
type RedactionOptions struct {
	// Disabled records tool output verbatim
	Disabled bool
	// Patterns are extra regular expressions to redact
	Patterns []string
	// HashMode replaces secrets with a salted hash instead of [REDACTED]
	HashMode bool
	// Salt keys the hash in HashMode
	Salt string
}

// OutputOptions tune report formatting.
type OutputOptions struct {
	// Verbose includes every invocation in text output
	Verbose bool
	// SketchPath is used as the artifact location in SARIF output
	SketchPath string
	// Indent pretty-prints JSON output
	Indent bool
	// NoColor disables ANSI colors in text output
	NoColor bool
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// ResolveLibrariesRequest encapsulates inputs for library resolution only.
type ResolveLibrariesRequest struct {
	SketchPath  string
	ConfigPath  string
	LibraryRoot string
}
