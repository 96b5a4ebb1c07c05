// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/values"
)

// BuildReportRepository defines the interface for persisting build reports.
type BuildReportRepository interface {
	// Save persists a build report.
	Save(ctx context.Context, report *build.Report) error

	// FindByID retrieves a build report by its unique ID.
	FindByID(ctx context.Context, id values.BuildID) (*build.Report, error)

	// FindBySketch retrieves the most recent reports for a sketch, newest first.
	FindBySketch(ctx context.Context, sketch string, limit int) ([]*build.Report, error)
}
