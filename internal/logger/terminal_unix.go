//go:build linux || darwin

package logger

import (
	"os"
)

// isTerminal reports whether fd refers to a character device, which is how
// we decide whether to colorize output.
func isTerminal(fd uintptr) bool {
	var f *os.File
	switch fd {
	case os.Stdout.Fd():
		f = os.Stdout
	case os.Stderr.Fd():
		f = os.Stderr
	default:
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
