package output

import (
	"os"

	"golang.org/x/term"
)

// TerminalCapabilities describes what the attached terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// StatusSymbols holds the marker set used for step status lines.
type StatusSymbols struct {
	Success string
	Failure string
	Warning string
	// SpinnerSet selects the briandowns/spinner charset for sleep steps.
	SpinnerSet int
}

// DetectTerminalCapabilities detects terminal features for stdout.
// Checks: stdout isatty, NO_COLOR env, DEVRUN_ASCII env, terminal width.
func DetectTerminalCapabilities() TerminalCapabilities {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("DEVRUN_ASCII") == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// SelectSymbols returns the marker set appropriate for the terminal.
// Unicode terminals get ✓/✗ with a braille spinner; everything else gets
// ASCII markers so output stays readable in dumb terminals and CI logs.
func SelectSymbols(caps TerminalCapabilities) StatusSymbols {
	if caps.SupportsUnicode {
		return StatusSymbols{
			Success:    "✓",
			Failure:    "✗",
			Warning:    "!",
			SpinnerSet: 14, // Unicode dots: ⠋ ⠙ ⠹ ⠸ ⠼ ⠴ ⠦ ⠧ ⠇ ⠏
		}
	}

	return StatusSymbols{
		Success:    "[OK]",
		Failure:    "[FAIL]",
		Warning:    "[WARN]",
		SpinnerSet: 9, // ASCII: | / - \
	}
}

// Symbols exposes the printer's selected symbol set.
func (p *Printer) Symbols() StatusSymbols {
	return p.syms
}

// Capabilities exposes the printer's detected terminal capabilities.
func (p *Printer) Capabilities() TerminalCapabilities {
	return p.caps
}
