//go:build !windows

package colors

import "fmt"

var disabled bool

// EnableColor is a no-op on unix terminals, which support ANSI codes.
func EnableColor() {}

// DisableColor turns Colorize into a plain formatter, e.g. when stderr is not a terminal.
func DisableColor() {
	disabled = true
}

// Colorize wraps s in the ANSI code c.
func Colorize(s any, c Color) string {
	if disabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
