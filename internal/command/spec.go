// Package command defines the immutable command table for devrun: named
// commands, the ordered steps they execute, and the result of a dispatch.
package command

import "time"

// StepKind identifies what a Step does when executed.
type StepKind int

const (
	// RunProcess spawns an external process and records its exit status.
	RunProcess StepKind = iota
	// Sleep suspends execution for a fixed duration.
	Sleep
	// Prompt writes text to stdout and captures one line from stdin.
	Prompt
	// RemovePath deletes a file or directory tree. A missing path is success.
	RemovePath
	// Log writes a colorized status line keyed to Level.
	Log
)

// String returns a human-readable name for the step kind.
func (k StepKind) String() string {
	switch k {
	case RunProcess:
		return "run"
	case Sleep:
		return "sleep"
	case Prompt:
		return "prompt"
	case RemovePath:
		return "remove"
	case Log:
		return "log"
	default:
		return "unknown"
	}
}

// Level is the severity of a Log step.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

// Step is one unit of work within a command. Exactly one group of fields is
// meaningful depending on Kind; the zero values of the others are ignored.
type Step struct {
	Kind StepKind

	// RunProcess fields.
	Argv       []string          // command and arguments; may contain {{key}} placeholders
	Dir        string            // working directory ("" = inherit)
	Env        map[string]string // overrides merged over the parent environment
	Background bool              // start without waiting for exit

	// Sleep fields.
	Duration time.Duration

	// Prompt fields.
	Text       string // prompt text written to stdout
	CaptureKey string // key under which the captured line is stored

	// RemovePath fields.
	Path string

	// Log fields.
	Message string
	Level   Level

	// ContinueOnFailure tolerates a non-zero exit (or spawn failure) without
	// halting the run. Default false matches fail-fast shell semantics.
	ContinueOnFailure bool
}

// Spec is the immutable definition of a named command as an ordered
// sequence of steps. Specs are constructed once at startup and never
// mutated during a run.
type Spec struct {
	Name        string
	Description string
	Steps       []Step
}

// Run builds a RunProcess step.
func Run(argv ...string) Step {
	return Step{Kind: RunProcess, Argv: argv}
}

// RunTolerant builds a RunProcess step that continues on failure.
func RunTolerant(argv ...string) Step {
	return Step{Kind: RunProcess, Argv: argv, ContinueOnFailure: true}
}

// Wait builds a Sleep step.
func Wait(d time.Duration) Step {
	return Step{Kind: Sleep, Duration: d}
}

// Ask builds a Prompt step capturing the response under key.
func Ask(text, key string) Step {
	return Step{Kind: Prompt, Text: text, CaptureKey: key}
}

// Remove builds a RemovePath step.
func Remove(path string) Step {
	return Step{Kind: RemovePath, Path: path}
}

// Say builds an info-level Log step.
func Say(message string) Step {
	return Step{Kind: Log, Message: message, Level: Info}
}
