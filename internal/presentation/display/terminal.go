package display

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/presentation/layout"
	"github.com/jol333/TaskTimer/internal/util"
)

// View is everything the display needs for one frame.
type View struct {
	Rows    []model.SessionRow
	State   model.InteractionState
	Compact bool
	// Height is the manager's required height for the expanded widget.
	Height float64
}

type DisplayConfig struct {
	Width int
}

type TerminalDisplay struct {
	config            *DisplayConfig
	out               io.Writer
	sizer             *layout.Sizer
	inAlternateScreen bool
	previousScreen    []string // Previous frame for differential updates
}

func NewTerminalDisplay(config *DisplayConfig) *TerminalDisplay {
	return newTerminalDisplay(config, os.Stdout, layout.TerminalSizer())
}

func newTerminalDisplay(config *DisplayConfig, out io.Writer, sizer *layout.Sizer) *TerminalDisplay {
	if config == nil {
		config = &DisplayConfig{}
	}
	return &TerminalDisplay{config: config, out: out, sizer: sizer}
}

// SetWidth changes the preferred widget width; the next frame redraws fully.
func (td *TerminalDisplay) SetWidth(width int) {
	td.config.Width = width
	td.previousScreen = nil
}

// Resize re-measures the terminal.
func (td *TerminalDisplay) Resize() {
	td.sizer = layout.TerminalSizer()
	td.previousScreen = nil
}

// EnterAlternateScreen switches to alternate screen buffer and asks the
// terminal for focus reports.
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen, util.ClearScreen, util.ClearScrollback,
		util.MoveCursorHome, util.HideCursor, util.EnableFocusEvents)
	td.inAlternateScreen = true
	td.previousScreen = nil
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.DisableFocusEvent, util.ClearScreen, util.MoveCursorHome,
		util.ShowCursor, util.ExitAltScreen)
	td.inAlternateScreen = false
}

// Render draws a frame, rewriting only the lines that changed.
func (td *TerminalDisplay) Render(view View) {
	lines := td.Lines(view)

	var b strings.Builder
	if len(lines) != len(td.previousScreen) {
		b.WriteString(util.ClearScreen)
		td.previousScreen = nil
	}
	for i, line := range lines {
		if i < len(td.previousScreen) && td.previousScreen[i] == line {
			continue
		}
		b.WriteString(util.MoveCursor(i+1, 1))
		b.WriteString(util.ClearLine)
		b.WriteString(line)
	}
	if b.Len() > 0 {
		io.WriteString(td.out, b.String())
	}
	td.previousScreen = lines
}

// Lines lays out one frame without drawing it.
func (td *TerminalDisplay) Lines(view View) []string {
	width := td.sizer.WidgetWidth(td.config.Width)

	if view.State.ConfirmDialog != nil {
		return td.confirmLines(view.State.ConfirmDialog, width)
	}
	if view.State.ShowHelp {
		return helpLines(width)
	}
	if view.Compact && !view.State.Editing {
		return []string{util.Colorize(layout.Hotspot(view.Rows, width), util.ColorDim)}
	}

	lines := []string{util.Colorize(util.CenterText("Task Timer", width), util.ColorBold), layout.Separator(width)}
	for _, row := range view.Rows {
		selected := row.Index == view.State.Selected
		editing := selected && view.State.Editing
		if editing {
			row.Label = view.State.EditBuffer
		}
		line := layout.SessionLine(row, width, selected, editing)
		switch {
		case selected:
			line = util.Colorize(line, util.ColorInvert)
		case row.Running:
			line = util.Colorize(line, util.ColorGreen)
		}
		lines = append(lines, line)
	}
	if len(view.Rows) == 0 {
		lines = append(lines, util.Colorize(util.PadRight("  no timers", width), util.ColorDim))
	}
	lines = append(lines, layout.Footer(width))

	// Pad to the manager's required height so the widget does not jump as rows change.
	for len(lines) < int(math.Ceil(view.Height)) {
		lines = append(lines, strings.Repeat(" ", width))
	}
	if view.State.StatusMessage != "" {
		lines = append(lines, util.Colorize(util.PadRight(view.State.StatusMessage, width), util.ColorYellow))
	}

	if visible := td.sizer.VisibleRows(len(lines)); visible < len(lines) {
		lines = lines[:visible]
	}
	return lines
}

func (td *TerminalDisplay) confirmLines(dialog *model.ConfirmDialog, width int) []string {
	return []string{
		util.Colorize(util.CenterText(dialog.Title, width), util.ColorBold),
		layout.Separator(width),
		util.PadRight(dialog.Message, width),
		"",
		util.PadRight("  [y] confirm   [n] cancel", width),
	}
}

func helpLines(width int) []string {
	entries := []string{
		"↑/↓ k/j   select",
		"J/K       move down/up",
		"space     start/stop",
		"a         add timer",
		"d         remove timer",
		"e         edit label",
		"r         reset timer",
		"R         reset all",
		"q         quit",
	}
	lines := []string{util.Colorize(util.CenterText("Keys", width), util.ColorBold), layout.Separator(width)}
	for _, e := range entries {
		lines = append(lines, util.PadRight("  "+e, width))
	}
	return append(lines, util.PadRight("  esc/h     close help", width))
}
