package command

import "time"

// Status is the terminal state of a dispatch.
type Status int

const (
	// Success means every step completed (or was tolerated).
	Success Status = iota
	// Failed means a mandatory step exited non-zero or could not start.
	Failed
	// NotFound means no command matched the supplied name (or none was given).
	NotFound
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case NotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Index    int
	Kind     StepKind
	ExitCode int
	Err      error
	// Tolerated marks a failure that was skipped past via ContinueOnFailure.
	Tolerated bool
	Duration  time.Duration
}

// ExecutionResult is the per-run outcome of a dispatch. It is created
// fresh per invocation and discarded after reporting.
type ExecutionResult struct {
	Command string // resolved command name; empty when no name was supplied
	Steps   []StepResult
	Status  Status
	// FailedStep is the index of the failing step when Status is Failed.
	FailedStep int
}

// ExitCode maps the result to a process exit code: Success is 0; Failed
// propagates the failing step's exit code (1 when unavailable); NotFound
// is 1 when a name was supplied and unmatched, 0 when none was given.
func (r ExecutionResult) ExitCode() int {
	switch r.Status {
	case Success:
		return 0
	case NotFound:
		if r.Command == "" {
			return 0
		}
		return 1
	case Failed:
		if r.FailedStep < len(r.Steps) {
			if code := r.Steps[r.FailedStep].ExitCode; code > 0 {
				return code
			}
		}
		return 1
	default:
		return 1
	}
}
