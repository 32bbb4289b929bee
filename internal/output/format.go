// Package output provides terminal output formatting for the devrun CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/runlabhq/devrun/internal/command"
	devrunerrors "github.com/runlabhq/devrun/internal/errors"
)

// Printer writes colored status lines for dispatch progress. Symbols
// degrade to ASCII when the terminal does not support Unicode.
type Printer struct {
	Out  io.Writer
	caps TerminalCapabilities
	syms StatusSymbols
}

// NewPrinter creates a Printer with detected terminal capabilities.
func NewPrinter(out io.Writer) *Printer {
	caps := DetectTerminalCapabilities()
	return &Printer{Out: out, caps: caps, syms: SelectSymbols(caps)}
}

// StepHeader prints a colored step header (e.g., "[Step 2/5] alembic upgrade head").
func (p *Printer) StepHeader(index, total int, label string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	fmt.Fprintf(p.Out, "%s %s\n", cyan(fmt.Sprintf("[Step %d/%d]", index+1, total)), white(label))
}

// Executing echoes the external command about to be spawned.
func (p *Printer) Executing(argv []string) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(p.Out, "%s %s\n", magenta("→"), dim(strings.Join(argv, " ")))
}

// StepSuccess prints a green success marker for a completed step.
func (p *Printer) StepSuccess(label string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(p.Out, "%s %s\n", green(p.syms.Success), label)
}

// StepFailure prints a red failure marker naming the step and its exit status.
func (p *Printer) StepFailure(label string, exitCode int) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(p.Out, "%s %s (exit %d)\n", red(p.syms.Failure), label, exitCode)
}

// StepSpawnFailure reports a step whose tool could not be started at
// all, distinct from a tool that ran and exited non-zero. The
// structured error carries the missing binary and remediation hints.
func (p *Printer) StepSpawnFailure(label string, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(p.Out, "%s %s (could not start)\n", red(p.syms.Failure), label)
	var cliErr *devrunerrors.CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprint(p.Out, devrunerrors.FormatError(cliErr))
	}
}

// StepTolerated prints a yellow marker for a failed step that was skipped
// past via its continue-on-failure policy.
func (p *Printer) StepTolerated(label string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(p.Out, "%s %s (failed, continuing)\n", yellow(p.syms.Warning), label)
}

// Status prints a level-colored message: info green, warn yellow, error red.
func (p *Printer) Status(level command.Level, message string) {
	var paint func(a ...interface{}) string
	switch level {
	case command.Warn:
		paint = color.New(color.FgYellow).SprintFunc()
	case command.Error:
		paint = color.New(color.FgRed).SprintFunc()
	default:
		paint = color.New(color.FgGreen).SprintFunc()
	}
	fmt.Fprintln(p.Out, paint(message))
}

// Summary prints the final run outcome.
func (p *Printer) Summary(result command.ExecutionResult) {
	switch result.Status {
	case command.Success:
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(p.Out, "\n%s %s completed (%d step(s))\n", green(p.syms.Success), result.Command, len(result.Steps))
	case command.Failed:
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(p.Out, "\n%s %s failed at step %d\n", red(p.syms.Failure), result.Command, result.FailedStep+1)
	}
}

// UsageTable prints the registered commands in insertion order.
func (p *Printer) UsageTable(specs []command.Spec) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(p.Out, "%s\n\n", bold("Usage: devrun <command>"))
	fmt.Fprintln(p.Out, "Commands:")

	width := 0
	for _, spec := range specs {
		if len(spec.Name) > width {
			width = len(spec.Name)
		}
	}
	for _, spec := range specs {
		fmt.Fprintf(p.Out, "  %s  %s\n", cyan(fmt.Sprintf("%-*s", width, spec.Name)), spec.Description)
	}
}
