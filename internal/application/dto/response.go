package dto

import (
	"time"

	"github.com/avrforge/sketchforge/internal/domain/build"
)

// BuildSketchResponse contains the result of building a sketch.
type BuildSketchResponse struct {
	// Report contains the detailed build record
	Report *build.Report

	// Metadata contains response metadata
	Metadata ResponseMetadata
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// ResolveLibrariesResponse lists what a build would compile from the library root.
type ResolveLibrariesResponse struct {
	Dependencies []string
	Libraries    []LibraryInfo
	// Unmatched are dependencies no library directory provides, e.g. core headers.
	Unmatched []string
}

// LibraryInfo describes one matched library and its compilation units.
type LibraryInfo struct {
	Name      string   `json:"name" yaml:"name"`
	Dir       string   `json:"dir" yaml:"dir"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"`
	MatchedBy []string `json:"matched_by" yaml:"matched_by"`
	Units     []string `json:"units" yaml:"units"`
}
