// Package term toggles the local terminal between cooked and raw mode
// so keystrokes reach an attached container TTY unmangled.
package term

import (
	"os"
	"os/exec"
)

// SetRawMode sets the terminal to raw mode.
func SetRawMode() {
	cmd := exec.Command("stty", "raw", "-echo")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// RestoreTerminal restores the terminal settings.
func RestoreTerminal() {
	cmd := exec.Command("stty", "-raw", "echo")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// IsTerminal reports whether stdin is attached to a terminal.
func IsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
