package values

import "fmt"

// Stage is a state of the build state machine.
type Stage string

const (
	StageIdle               Stage = "idle"
	StagePreparing          Stage = "preparing"
	StageTranspiling        Stage = "transpiling"
	StageCompilingUnits     Stage = "compiling_units"
	StageCompilingCore      Stage = "compiling_core"
	StageResolvingLibraries Stage = "resolving_libraries"
	StageCompilingLibraries Stage = "compiling_libraries"
	StageAwaitingObjects    Stage = "awaiting_objects"
	StageLinking            Stage = "linking"
	StageExtractingImages   Stage = "extracting_images"
	StageReportingSize      Stage = "reporting_size"
	StageSucceeded          Stage = "succeeded"
	StageFailed             Stage = "failed"
)

// pipelineOrder lists the non-terminal stages in execution order.
var pipelineOrder = []Stage{
	StageIdle,
	StagePreparing,
	StageTranspiling,
	StageCompilingUnits,
	StageCompilingCore,
	StageResolvingLibraries,
	StageCompilingLibraries,
	StageAwaitingObjects,
	StageLinking,
	StageExtractingImages,
	StageReportingSize,
}

// PipelineStages returns the non-terminal stages in execution order.
func PipelineStages() []Stage {
	out := make([]Stage, len(pipelineOrder))
	copy(out, pipelineOrder)
	return out
}

// Ordinal returns the position of the stage in the pipeline.
// Terminal stages sort after every pipeline stage; unknown stages return -1.
func (s Stage) Ordinal() int {
	for i, st := range pipelineOrder {
		if st == s {
			return i
		}
	}
	if s.IsTerminal() {
		return len(pipelineOrder)
	}
	return -1
}

// IsTerminal reports whether no further transitions are possible.
func (s Stage) IsTerminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// CanTransitionTo reports whether next is a legal successor of s.
// Transitions only move forward; any pipeline stage may jump to Failed,
// and only ReportingSize may reach Succeeded.
func (s Stage) CanTransitionTo(next Stage) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StageFailed:
		return s != StageIdle
	case StageSucceeded:
		return s == StageReportingSize
	}
	from, to := s.Ordinal(), next.Ordinal()
	return from >= 0 && to > from
}

// Validate returns an error if the stage value is invalid
func (s Stage) Validate() error {
	if s.Ordinal() < 0 {
		return fmt.Errorf("invalid stage: %s", s)
	}
	return nil
}
