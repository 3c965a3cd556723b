package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how results reach the terminal.
type OutputMode int

const (
	// OutputModePlain writes an unstyled table; used when stdout is not a terminal.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes a lipgloss table without taking over the terminal.
	OutputModeStyled
	// OutputModeInteractive runs the full-screen list.
	OutputModeInteractive
)

// defaultTerminalWidth is used when the width cannot be queried.
const defaultTerminalWidth = 80

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// DetectOutputMode picks a mode from flags and the environment. plain wins
// over everything; NO_COLOR or noColor downgrades an interactive terminal to
// plain output; forceStyled styles even non-terminal output.
func DetectOutputMode(forceStyled, noColor, plain bool) OutputMode {
	return detectOutputMode(forceStyled, noColor, plain, isTerminal(os.Stdout), os.Getenv("NO_COLOR") != "")
}

func detectOutputMode(forceStyled, noColor, plain, tty, noColorEnv bool) OutputMode {
	switch {
	case plain:
		return OutputModePlain
	case noColor || noColorEnv:
		return OutputModePlain
	case tty:
		return OutputModeInteractive
	case forceStyled:
		return OutputModeStyled
	default:
		return OutputModePlain
	}
}

// TerminalWidth returns the width of stdout, or a default when it is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTerminalWidth
	}
	return w
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
