package values

import "fmt"

// Outcome is the terminal result of a build.
type Outcome string

const (
	// OutcomePending means the build has not reached a terminal stage
	OutcomePending Outcome = "pending"
	// OutcomeSucceeded means every fatal stage completed without error
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means at least one fatal stage reported an error
	OutcomeFailed Outcome = "failed"
)

// OutcomeForStage maps a terminal stage to its outcome.
func OutcomeForStage(s Stage) Outcome {
	switch s {
	case StageSucceeded:
		return OutcomeSucceeded
	case StageFailed:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// IsSuccess returns true if this outcome represents success
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSucceeded
}

// IsFailure returns true if this outcome represents a failed build
func (o Outcome) IsFailure() bool {
	return o == OutcomeFailed
}

// Validate returns an error if the outcome value is invalid
func (o Outcome) Validate() error {
	switch o {
	case OutcomePending, OutcomeSucceeded, OutcomeFailed:
		return nil
	default:
		return fmt.Errorf("invalid outcome: %s", o)
	}
}
