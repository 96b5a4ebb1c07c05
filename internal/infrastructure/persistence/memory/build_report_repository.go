// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/repositories"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"github.com/google/uuid"
)

// Ensure interface compliance
var _ repositories.BuildReportRepository = (*BuildReportRepository)(nil)

// BuildReportRepository keeps build reports for the lifetime of the process.
type BuildReportRepository struct {
	reports map[uuid.UUID]*build.Report
	mu      sync.RWMutex
}

// NewBuildReportRepository creates a new in-memory repository.
func NewBuildReportRepository() *BuildReportRepository {
	return &BuildReportRepository{
		reports: make(map[uuid.UUID]*build.Report),
	}
}

// Save persists a build report. Callers should not modify it afterwards.
func (r *BuildReportRepository) Save(_ context.Context, report *build.Report) error {
	if report == nil {
		return fmt.Errorf("cannot save nil build report")
	}
	if report.GetID().IsZero() {
		return fmt.Errorf("build report has no ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.GetID().UUID()] = report
	return nil
}

// FindByID retrieves a build report by its unique ID.
func (r *BuildReportRepository) FindByID(_ context.Context, id values.BuildID) (*build.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id.UUID()]
	if !ok {
		return nil, fmt.Errorf("build report not found: %s", id)
	}
	return report, nil
}

// FindBySketch retrieves recent reports for a sketch, newest first.
func (r *BuildReportRepository) FindBySketch(_ context.Context, sketch string, limit int) ([]*build.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*build.Report
	for _, rep := range r.reports {
		if rep.Sketch == sketch {
			matches = append(matches, rep)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartTime.After(matches[j].StartTime)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
