// Package execx runs external processes for the dispatcher. It centralizes
// stdio inheritance, environment merging, and the distinction between a
// tool that failed (non-zero exit) and a tool that could not be started.
package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	devrunerrors "github.com/runlabhq/devrun/internal/errors"
)

// Request describes one external process invocation.
type Request struct {
	Argv []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Env contains overrides merged over the parent environment.
	Env map[string]string
	// Background starts the process without waiting for it to exit.
	Background bool

	// Stdio streams. Nil values default to the dispatcher's own streams so
	// interactive prompts from external tools stay visible and answerable.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the outcome of a completed (or started) process.
type Result struct {
	ExitCode int
	Duration time.Duration
	// Started reports whether the process was spawned at all. False means
	// a spawn failure (missing binary, permission problem).
	Started bool
}

// Runner executes external processes. The dispatcher accepts this
// interface so tests can substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// OSRunner is the production Runner backed by os/exec.
type OSRunner struct{}

// NewOSRunner creates a Runner that spawns real processes.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run spawns the requested process. Foreground requests wait for exit and
// return its code; background requests return as soon as the process has
// started. A non-zero exit is returned as a Runtime error carrying the
// code, a spawn failure as a Spawn error.
func (r *OSRunner) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Argv) == 0 {
		return Result{}, devrunerrors.NewConfigError("empty argv for process step")
	}

	start := time.Now()

	var cmd *exec.Cmd
	if req.Background {
		// Background processes must outlive the dispatch, so they are not
		// tied to the cancellation context and run in their own process
		// group out of reach of terminal signals.
		cmd = exec.Command(req.Argv[0], req.Argv[1:]...)
		detach(cmd)
	} else {
		cmd = exec.CommandContext(ctx, req.Argv[0], req.Argv[1:]...)
	}
	cmd.Dir = req.Dir
	cmd.Env = mergeEnv(req.Env)
	cmd.Stdin = orStdin(req.Stdin)
	cmd.Stdout = orStdout(req.Stdout)
	cmd.Stderr = orStderr(req.Stderr)

	if req.Background {
		if err := cmd.Start(); err != nil {
			return Result{Duration: time.Since(start)}, spawnOrWrap(req.Argv[0], err)
		}
		// Fire-and-forget: reap the child when it eventually exits so it
		// does not linger as a zombie while devrun is still running.
		go func() { _ = cmd.Wait() }()
		return Result{Started: true, Duration: time.Since(start)}, nil
	}

	err := cmd.Run()
	res := Result{Started: true, Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return res, devrunerrors.Wrap(
				fmt.Errorf("%s interrupted: %w", req.Argv[0], ctx.Err()),
				devrunerrors.Runtime,
			)
		}
		return res, devrunerrors.NewStepFailedError(req.Argv[0], res.ExitCode)
	}

	res.Started = false
	return res, spawnOrWrap(req.Argv[0], err)
}

// spawnOrWrap classifies a start failure. Anything that prevented the
// process from running at all (missing binary, unreadable path) is an
// environment problem, reported as a Spawn error.
func spawnOrWrap(binary string, err error) error {
	return devrunerrors.NewSpawnError(binary, err)
}

// mergeEnv layers overrides over the parent environment.
func mergeEnv(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

func orStdin(r io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return os.Stdin
}

func orStdout(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return os.Stdout
}

func orStderr(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return os.Stderr
}
