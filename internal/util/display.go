package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorDim    = "\033[2m"
	ColorBold   = "\033[1m"
	ColorInvert = "\033[7m"

	ClearScreen       = "\033[2J"
	ClearLine         = "\033[2K"
	ClearScrollback   = "\033[3J"
	MoveCursorHome    = "\033[H"
	HideCursor        = "\033[?25l"
	ShowCursor        = "\033[?25h"
	EnterAltScreen    = "\033[?1049h"
	ExitAltScreen     = "\033[?1049l"
	EnableFocusEvents = "\033[?1004h"
	DisableFocusEvent = "\033[?1004l"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth shortens text to at most width cells, marking the cut with an ellipsis.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

// PadRight pads text with spaces to exactly width cells, truncating if needed.
func PadRight(text string, width int) string {
	text = TruncateToWidth(text, width)
	return runewidth.FillRight(text, width)
}

// CenterText centers text within the given width
func CenterText(text string, width int) string {
	text = TruncateToWidth(text, width)
	textWidth := GetDisplayWidth(text)
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-textWidth)
}

// MoveCursor returns ANSI sequence to move cursor to specific position
func MoveCursor(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row, col)
}

// Colorize wraps text in color unless color is empty.
func Colorize(text, color string) string {
	if color == "" {
		return text
	}
	return color + text + ColorReset
}
