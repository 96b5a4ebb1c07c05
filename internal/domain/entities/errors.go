package entities

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompileError is raised when the compiler produced diagnostic output for a unit.
type CompileError struct {
	Unit       SourceUnit
	Diagnostic string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %s", e.Unit.Name(), firstLine(e.Diagnostic))
}

// NewCompileError creates a new compile error.
func NewCompileError(unit SourceUnit, diagnostic string) *CompileError {
	return &CompileError{Unit: unit, Diagnostic: diagnostic}
}

// LinkError is raised when the linker (or archiver) produced diagnostic output,
// or when expected objects never appeared.
type LinkError struct {
	Diagnostic string
	Missing    []string
}

func (e *LinkError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("link: missing object files: %s", strings.Join(e.Missing, ", "))
	}
	return "link: " + firstLine(e.Diagnostic)
}

// NewLinkError creates a new link error.
func NewLinkError(diagnostic string) *LinkError {
	return &LinkError{Diagnostic: diagnostic}
}

// ImageKind names an image derived from the linked executable.
type ImageKind string

const (
	ImageFlash  ImageKind = "flash"
	ImageEEPROM ImageKind = "eeprom"
)

// ImageExtractionError is raised when object-copy produced diagnostic output.
type ImageExtractionError struct {
	Image      ImageKind
	Diagnostic string
}

func (e *ImageExtractionError) Error() string {
	return fmt.Sprintf("extract %s image: %s", e.Image, firstLine(e.Diagnostic))
}

// NewImageExtractionError creates a new image extraction error.
func NewImageExtractionError(image ImageKind, diagnostic string) *ImageExtractionError {
	return &ImageExtractionError{Image: image, Diagnostic: diagnostic}
}

// PreparationError reports that the working directory could not be created.
// Whether it halts the build is an orchestrator policy.
type PreparationError struct {
	Dir   string
	Cause error
}

func (e *PreparationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot create working directory %s: %v", e.Dir, e.Cause)
	}
	return fmt.Sprintf("cannot create working directory %s", e.Dir)
}

func (e *PreparationError) Unwrap() error {
	return e.Cause
}

// SizeReportWarning is informational output from the size step. It never
// fails a build.
type SizeReportWarning struct {
	Message string
}

func (e *SizeReportWarning) Error() string {
	return "size report: " + e.Message
}

// TimeoutError is raised when an external invocation exceeds its deadline.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Command, e.Timeout)
}

// Unwrap lets errors.Is(err, context.DeadlineExceeded) match.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// firstLine keeps error strings single-line; full text stays on the struct.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
