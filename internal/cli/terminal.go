package cli

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// StdinInteractive reports whether both stdin and stdout are terminals, which
// is what interactive forms need.
func StdinInteractive() bool {
	return IsInteractive(os.Stdin) && IsInteractive(os.Stdout)
}
