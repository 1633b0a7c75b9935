package layout

import (
	"os"
	"strings"

	"github.com/jol333/TaskTimer/internal/util"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minWidgetWidth = 24
)

// Sizer knows the terminal dimensions the widget is drawn into.
type Sizer struct {
	Width  int
	Height int
}

func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// TerminalSizer measures stdout, falling back to 80x24 when it is not a terminal.
func TerminalSizer() *Sizer {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		util.LogDebugf("Terminal size unavailable (%v), using %dx%d", err, fallbackWidth, fallbackHeight)
		return NewSizer(fallbackWidth, fallbackHeight)
	}
	return NewSizer(width, height)
}

// WidgetWidth clamps the preferred widget width to what the terminal can show.
func (s Sizer) WidgetWidth(preferred int) int {
	width := preferred
	if width < minWidgetWidth {
		width = minWidgetWidth
	}
	if s.Width > 0 && width > s.Width {
		width = s.Width
	}
	return width
}

// VisibleRows clamps a required height to the terminal height.
func (s Sizer) VisibleRows(required int) int {
	if s.Height > 0 && required > s.Height {
		return s.Height
	}
	if required < 1 {
		return 1
	}
	return required
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (s Sizer) PadString(str string, width int, leftAlign bool) string {
	actualWidth := runewidth.StringWidth(str)
	if actualWidth >= width {
		return str
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return str + padding
	}
	return padding + str
}
