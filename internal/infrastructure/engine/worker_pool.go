package engine

import (
	"context"
	"errors"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// unitJob is one compilation scheduled by a stage.
type unitJob struct {
	stage    values.Stage
	unit     entities.SourceUnit
	template string
	object   string
}

// unitResult is folded by the orchestrator in job order.
type unitResult struct {
	job     unitJob
	object  string
	err     error
	skipped bool
}

// compileUnits runs jobs and returns one result per job, in job order.
// With stopOnError the first failure prevents (or cancels) the remaining
// jobs, which are reported as skipped.
func (p *pipeline) compileUnits(ctx context.Context, jobs []unitJob, stopOnError bool) []unitResult {
	results := make([]unitResult, len(jobs))

	if !p.exec.Parallel || len(jobs) < 2 {
		stop := false
		for i, job := range jobs {
			if stop {
				results[i] = unitResult{job: job, skipped: true}
				continue
			}
			results[i] = p.compileOne(ctx, job)
			stop = stopOnError && results[i].err != nil
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.exec.MaxConcurrentUnits)

	workCtx := ctx
	if stopOnError {
		workCtx = gctx
	}

	for i, job := range jobs {
		g.Go(func() error {
			if stopOnError && workCtx.Err() != nil {
				results[i] = unitResult{job: job, skipped: true}
				return nil
			}
			results[i] = p.compileOne(workCtx, job)
			return results[i].err
		})
	}
	first := g.Wait()

	if stopOnError && ctx.Err() == nil {
		// cancelled by a sibling's failure, not by the caller
		for i := range results {
			r := &results[i]
			if r.err != nil && r.err != first && errors.Is(r.err, context.Canceled) {
				r.err = nil
				r.skipped = true
			}
		}
	}
	return results
}

func (p *pipeline) compileOne(ctx context.Context, job unitJob) unitResult {
	p.emit(build.EventMessage, job.stage, unitMessage(job.unit))
	object, err := p.compiler.Compile(ctx, job.stage, job.unit, p.includeArgs, job.template, job.object)
	return unitResult{job: job, object: object, err: err}
}
