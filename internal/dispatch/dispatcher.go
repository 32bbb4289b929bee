// Package dispatch resolves a command name against the registry and runs
// its steps strictly sequentially, reporting a colored status line per
// step and mapping the outcome to a process exit code.
package dispatch

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/runlabhq/devrun/internal/command"
	devrunerrors "github.com/runlabhq/devrun/internal/errors"
	"github.com/runlabhq/devrun/internal/execx"
	"github.com/runlabhq/devrun/internal/output"
)

// Recorder persists dispatch outcomes. Implementations must treat their
// own failures as non-fatal; a broken history store never fails a run.
type Recorder interface {
	Record(result command.ExecutionResult, startedAt time.Time, total time.Duration)
}

// Dispatcher executes registered commands. Exactly one step runs at a
// time, in declaration order, within one dispatch call.
type Dispatcher struct {
	registry *command.Registry
	runner   execx.Runner
	printer  *output.Printer

	stdin   io.Reader
	// in buffers stdin across Prompt steps. A per-prompt buffer would
	// swallow any bytes it read past the first line, losing later answers.
	in      *bufio.Reader
	errOut  io.Writer
	history Recorder
	dryRun  bool
	autoYes bool

	// Seams for tests: real implementations sleep and delete for real.
	sleepFn  func(ctx context.Context, d time.Duration) error
	removeFn func(path string) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStdin sets the reader used by Prompt steps.
func WithStdin(r io.Reader) Option {
	return func(d *Dispatcher) { d.stdin = r }
}

// WithErrOut sets the writer for dispatch-level errors (tests only).
func WithErrOut(w io.Writer) Option {
	return func(d *Dispatcher) { d.errOut = w }
}

// WithHistory sets the recorder that persists dispatch outcomes.
func WithHistory(rec Recorder) Option {
	return func(d *Dispatcher) { d.history = rec }
}

// WithDryRun prints each step instead of executing it.
func WithDryRun(dry bool) Option {
	return func(d *Dispatcher) { d.dryRun = dry }
}

// WithAutoYes answers Prompt steps with an empty line instead of blocking.
func WithAutoYes(yes bool) Option {
	return func(d *Dispatcher) { d.autoYes = yes }
}

// WithSleepFunc overrides the sleep implementation (tests only).
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleepFn = fn }
}

// WithRemoveFunc overrides the path removal implementation (tests only).
func WithRemoveFunc(fn func(path string) error) Option {
	return func(d *Dispatcher) { d.removeFn = fn }
}

// New creates a Dispatcher over the given registry, runner, and printer.
func New(registry *command.Registry, runner execx.Runner, printer *output.Printer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		runner:   runner,
		printer:  printer,
		stdin:    os.Stdin,
		errOut:   os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.in = bufio.NewReader(d.stdin)
	if d.sleepFn == nil {
		d.sleepFn = d.sleepWithSpinner
	}
	if d.removeFn == nil {
		d.removeFn = os.RemoveAll
	}
	return d
}

// Dispatch resolves args[0] and executes the matching command's steps in
// order, stopping at the first failure of a mandatory step. With no args
// it prints the usage table; with an unrecognized name it additionally
// reports an error. Both return NotFound and execute nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, args []string) command.ExecutionResult {
	if len(args) == 0 {
		d.printer.UsageTable(d.registry.List())
		return command.ExecutionResult{Status: command.NotFound}
	}

	name := args[0]
	spec, ok := d.registry.Lookup(name)
	if !ok {
		cliErr := devrunerrors.NewCommandNotFoundError(name)
		fmt.Fprint(d.errOut, devrunerrors.FormatError(cliErr))
		fmt.Fprintln(d.errOut)
		d.printer.UsageTable(d.registry.List())
		return command.ExecutionResult{Command: name, Status: command.NotFound}
	}

	startedAt := time.Now()
	result := d.run(ctx, spec)
	if d.history != nil && !d.dryRun {
		d.history.Record(result, startedAt, time.Since(startedAt))
	}
	return result
}

// run executes the steps of a resolved spec.
func (d *Dispatcher) run(ctx context.Context, spec command.Spec) command.ExecutionResult {
	result := command.ExecutionResult{Command: spec.Name, Status: command.Success}
	captures := make(map[string]string)
	total := len(spec.Steps)

	for i, step := range spec.Steps {
		label := d.stepLabel(step, captures)
		if step.Kind != command.Log {
			d.printer.StepHeader(i, total, label)
		}

		stepStart := time.Now()
		exitCode, err := d.runStep(ctx, step, captures)
		stepResult := command.StepResult{
			Index:    i,
			Kind:     step.Kind,
			ExitCode: exitCode,
			Err:      err,
			Duration: time.Since(stepStart),
		}

		if err != nil {
			slog.Debug("step failed", "command", spec.Name, "step", i, "exit", exitCode, "err", err)
			if step.ContinueOnFailure {
				stepResult.Tolerated = true
				result.Steps = append(result.Steps, stepResult)
				d.printer.StepTolerated(label)
				continue
			}
			result.Steps = append(result.Steps, stepResult)
			result.Status = command.Failed
			result.FailedStep = i
			if devrunerrors.IsSpawn(err) {
				d.printer.StepSpawnFailure(label, err)
			} else {
				d.printer.StepFailure(label, exitCode)
			}
			d.printer.Summary(result)
			return result
		}

		result.Steps = append(result.Steps, stepResult)
		if step.Kind == command.RunProcess && !step.Background {
			d.printer.StepSuccess(label)
		}
	}

	d.printer.Summary(result)
	return result
}

// runStep executes a single step and returns its exit code and error.
func (d *Dispatcher) runStep(ctx context.Context, step command.Step, captures map[string]string) (int, error) {
	if d.dryRun {
		d.printer.Executing(d.dryRunEcho(step, captures))
		return 0, nil
	}

	switch step.Kind {
	case command.RunProcess:
		return d.runProcess(ctx, step, captures)
	case command.Sleep:
		if err := d.sleepFn(ctx, step.Duration); err != nil {
			return 0, devrunerrors.Wrap(err, devrunerrors.Runtime)
		}
		return 0, nil
	case command.Prompt:
		return 0, d.runPrompt(step, captures)
	case command.RemovePath:
		// RemoveAll treats a missing path as success, which is exactly the
		// semantics clean-style commands need.
		if err := d.removeFn(step.Path); err != nil {
			return 0, devrunerrors.Wrap(err, devrunerrors.Runtime)
		}
		return 0, nil
	case command.Log:
		d.printer.Status(step.Level, step.Message)
		return 0, nil
	default:
		return 0, devrunerrors.NewConfigError(fmt.Sprintf("unknown step kind %d", step.Kind))
	}
}

// runProcess spawns an external process with captured values substituted
// into its argv. Stdio is inherited so interactive tools stay usable.
func (d *Dispatcher) runProcess(ctx context.Context, step command.Step, captures map[string]string) (int, error) {
	argv := ExpandArgv(step.Argv, captures)
	d.printer.Executing(argv)

	res, err := d.runner.Run(ctx, execx.Request{
		Argv:       argv,
		Dir:        step.Dir,
		Env:        step.Env,
		Background: step.Background,
	})
	return res.ExitCode, err
}

// runPrompt writes the prompt text and blocks reading one line from
// stdin. With auto-yes enabled the capture is an empty string.
func (d *Dispatcher) runPrompt(step command.Step, captures map[string]string) error {
	fmt.Fprint(d.printer.Out, step.Text)
	if d.autoYes {
		fmt.Fprintln(d.printer.Out)
		captures[step.CaptureKey] = ""
		return nil
	}

	line, err := d.in.ReadString('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return devrunerrors.Wrap(fmt.Errorf("reading prompt input: %w", err), devrunerrors.Runtime)
	}
	captures[step.CaptureKey] = strings.TrimRight(line, "\r\n")
	return nil
}

// sleepWithSpinner waits for the given duration, showing a spinner when
// stdout is a terminal. Sleeping is deliberate: it gives a just-started
// service time to become ready before the next step probes it.
func (d *Dispatcher) sleepWithSpinner(ctx context.Context, dur time.Duration) error {
	if d.printer.Capabilities().IsTTY {
		s := spinner.New(spinner.CharSets[d.printer.Symbols().SpinnerSet], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" waiting %s", dur)
		s.Start()
		defer s.Stop()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(dur):
		return nil
	}
}

// stepLabel produces the status-line label for a step.
func (d *Dispatcher) stepLabel(step command.Step, captures map[string]string) string {
	switch step.Kind {
	case command.RunProcess:
		label := strings.Join(ExpandArgv(step.Argv, captures), " ")
		if step.Background {
			label += " &"
		}
		return label
	case command.Sleep:
		return fmt.Sprintf("wait %s", step.Duration)
	case command.Prompt:
		return strings.TrimSpace(step.Text)
	case command.RemovePath:
		return "remove " + step.Path
	case command.Log:
		return step.Message
	default:
		return step.Kind.String()
	}
}

// dryRunEcho renders the step as the devctl-style "+ cmd" echo line.
func (d *Dispatcher) dryRunEcho(step command.Step, captures map[string]string) []string {
	switch step.Kind {
	case command.RunProcess:
		return ExpandArgv(step.Argv, captures)
	default:
		return []string{step.Kind.String(), d.stepLabel(step, captures)}
	}
}
