package cli

import "fmt"

// Exit codes for the devrun CLI. Step failures propagate the failing
// tool's own exit code, so these cover only devrun's own outcomes.
const (
	// ExitSuccess indicates successful command execution.
	ExitSuccess = 0

	// ExitFailure is the generic failure code: unrecognized command names,
	// configuration errors, and step failures without a usable exit code.
	ExitFailure = 1
)

// exitError carries a specific process exit code up through cobra's
// error return path.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
