package colors

import "fmt"

// Color is an ANSI SGR code.
type Color int

// ANSI codes, as used by zerolog's console writer.
const (
	RED       Color = 31
	GREEN     Color = 32
	YELLOW    Color = 33
	BLUE      Color = 34
	MAGENTA   Color = 35
	CYAN      Color = 36
	BOLD      Color = 1
	DARK_GRAY Color = 90
)

// LEFT_ARROW prefixes info-level console lines.
const LEFT_ARROW = "⇾"

// ColorFunc colorizes any value into a string. The logger treats a ColorFunc argument as a switch of the color
// context for the arguments that follow it.
type ColorFunc = func(s any) string

// Reset returns the input unmodified. It is used to end a color context during a log call.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// Bold wraps the input in the bold code.
func Bold(s any) string {
	return Colorize(s, BOLD)
}

func Red(s any) string {
	return Colorize(s, RED)
}

func RedBold(s any) string {
	return Colorize(Colorize(s, RED), BOLD)
}

func Green(s any) string {
	return Colorize(s, GREEN)
}

func GreenBold(s any) string {
	return Colorize(Colorize(s, GREEN), BOLD)
}

func Yellow(s any) string {
	return Colorize(s, YELLOW)
}

func YellowBold(s any) string {
	return Colorize(Colorize(s, YELLOW), BOLD)
}

func BlueBold(s any) string {
	return Colorize(Colorize(s, BLUE), BOLD)
}

func Magenta(s any) string {
	return Colorize(s, MAGENTA)
}

func CyanBold(s any) string {
	return Colorize(Colorize(s, CYAN), BOLD)
}

func DarkGray(s any) string {
	return Colorize(s, DARK_GRAY)
}

func init() {
	EnableColor()
}
