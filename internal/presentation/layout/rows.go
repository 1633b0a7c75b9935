package layout

import (
	"fmt"
	"strings"

	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/util"
)

const (
	glyphRunning = "▶"
	glyphStopped = "■"
	glyphCursor  = "▏"
	elapsedWidth = 8 // HH:MM:SS; longer hours simply widen the row
)

// SessionLine renders one session as "› ▶ label ...... 00:12:34", exactly width cells wide.
func SessionLine(row model.SessionRow, width int, selected, editing bool) string {
	marker := "  "
	if selected {
		marker = "› "
	}
	glyph := glyphStopped
	if row.Running {
		glyph = glyphRunning
	}

	label := row.Label
	if editing {
		label += glyphCursor
	}

	elapsed := row.Display
	prefix := marker + glyph + " "
	labelWidth := width - util.GetDisplayWidth(prefix) - 1 - util.GetDisplayWidth(elapsed)
	if labelWidth < 1 {
		return util.PadRight(prefix+elapsed, width)
	}
	return prefix + util.PadRight(label, labelWidth) + " " + elapsed
}

// Hotspot is the single line shown while the widget is compact.
func Hotspot(rows []model.SessionRow, width int) string {
	running := 0
	var first *model.SessionRow
	for i := range rows {
		if rows[i].Running {
			running++
			if first == nil {
				first = &rows[i]
			}
		}
	}

	var text string
	switch {
	case first != nil && running > 1:
		text = fmt.Sprintf("%s %s +%d", glyphRunning, first.Display, running-1)
	case first != nil:
		text = fmt.Sprintf("%s %s", glyphRunning, first.Display)
	default:
		text = fmt.Sprintf("%s %d", glyphStopped, len(rows))
	}
	return util.PadRight(text, width)
}

// Footer is the line carrying the add control.
func Footer(width int) string {
	return util.PadRight("  + add (a)   help (h)", width)
}

// Separator draws a horizontal rule width cells wide.
func Separator(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("─", width)
}
