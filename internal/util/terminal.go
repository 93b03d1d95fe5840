package util

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// GetTerminalWidth returns the width of the terminal, or 80 if not a terminal
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80 // Default width
	}
	return width
}

// ProgressBarWidth picks a progress bar width proportional to the
// terminal's width, clamped to a range that stays readable on both a
// narrow SSH session and a maximized window.
func ProgressBarWidth() int {
	w := GetTerminalWidth() / 2
	if w < 20 {
		return 20
	}
	if w > 60 {
		return 60
	}
	return w
}
