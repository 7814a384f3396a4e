package config

import (
	"fmt"
	"os"
	"strings"
)

// Exit codes used by randomflip commands.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// Exitf writes a formatted message to stderr and exits with ExitFailure.
func Exitf(format string, args ...any) {
	ExitCodef(ExitFailure, format, args...)
}

// ExitCodef writes a formatted message to stderr and exits with code.
func ExitCodef(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(os.Stderr, msg)
	os.Exit(code)
}
