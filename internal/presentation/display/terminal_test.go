package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/presentation/layout"
	"github.com/jol333/TaskTimer/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisplay() (*TerminalDisplay, *bytes.Buffer) {
	var buf bytes.Buffer
	return newTerminalDisplay(&DisplayConfig{Width: 40}, &buf, layout.NewSizer(80, 24)), &buf
}

func sampleRows() []model.SessionRow {
	return []model.SessionRow{
		{Index: 0, ID: "a", Label: "Write docs", Display: "00:00:05", Running: true},
		{Index: 1, ID: "b", Label: "Review", Display: "01:02:03"},
	}
}

func TestLinesExpanded(t *testing.T) {
	td, _ := newTestDisplay()
	lines := td.Lines(View{Rows: sampleRows(), State: model.InteractionState{Selected: 1}, Height: 5})

	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Task Timer")
	assert.Contains(t, lines[2], "Write docs")
	assert.Contains(t, lines[2], util.ColorGreen)
	assert.Contains(t, lines[3], "› ■ Review")
	assert.Contains(t, lines[3], util.ColorInvert)
	assert.Contains(t, lines[4], "add")
}

func TestLinesPadToRequiredHeight(t *testing.T) {
	td, _ := newTestDisplay()
	lines := td.Lines(View{Rows: sampleRows()[:1], Height: 8})
	assert.Len(t, lines, 8)
}

func TestLinesCompact(t *testing.T) {
	td, _ := newTestDisplay()
	lines := td.Lines(View{Rows: sampleRows(), Compact: true, Height: 5})

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "▶ 00:00:05")
}

func TestLinesCompactWhileEditingStaysExpanded(t *testing.T) {
	td, _ := newTestDisplay()
	state := model.InteractionState{Selected: 0, Editing: true, EditBuffer: "New name"}
	lines := td.Lines(View{Rows: sampleRows(), Compact: true, State: state})

	assert.Greater(t, len(lines), 1)
	assert.Contains(t, strings.Join(lines, "\n"), "New name▏")
}

func TestLinesEmpty(t *testing.T) {
	td, _ := newTestDisplay()
	lines := td.Lines(View{})
	assert.Contains(t, strings.Join(lines, "\n"), "no timers")
}

func TestLinesDialogAndHelp(t *testing.T) {
	td, _ := newTestDisplay()

	dialog := &model.ConfirmDialog{Title: "Remove Timer", Message: "Remove Review?"}
	lines := td.Lines(View{Rows: sampleRows(), State: model.InteractionState{ConfirmDialog: dialog}})
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Remove Timer")
	assert.Contains(t, joined, "[y] confirm")

	lines = td.Lines(View{Rows: sampleRows(), State: model.InteractionState{ShowHelp: true}})
	assert.Contains(t, strings.Join(lines, "\n"), "start/stop")
}

func TestLinesStatusMessage(t *testing.T) {
	td, _ := newTestDisplay()
	lines := td.Lines(View{Rows: sampleRows(), State: model.InteractionState{StatusMessage: "Config reloaded"}})
	assert.Contains(t, lines[len(lines)-1], "Config reloaded")
}

func TestLinesClampedToTerminalHeight(t *testing.T) {
	var buf bytes.Buffer
	td := newTerminalDisplay(&DisplayConfig{Width: 40}, &buf, layout.NewSizer(80, 3))
	lines := td.Lines(View{Rows: sampleRows(), Height: 10})
	assert.Len(t, lines, 3)
}

func TestRenderOnlyRewritesChangedLines(t *testing.T) {
	td, buf := newTestDisplay()
	rows := sampleRows()

	td.Render(View{Rows: rows, Height: 5})
	first := buf.String()
	assert.Contains(t, first, util.ClearScreen)
	assert.Contains(t, first, "Review")

	buf.Reset()
	td.Render(View{Rows: rows, Height: 5})
	assert.Empty(t, buf.String(), "identical frame writes nothing")

	buf.Reset()
	rows[0].Display = "00:00:06"
	td.Render(View{Rows: rows, Height: 5})
	out := buf.String()
	assert.Contains(t, out, "00:00:06")
	assert.NotContains(t, out, "Review")
	assert.NotContains(t, out, util.ClearScreen)
}

func TestAlternateScreen(t *testing.T) {
	td, buf := newTestDisplay()

	td.EnterAlternateScreen()
	td.EnterAlternateScreen()
	assert.Equal(t, 1, strings.Count(buf.String(), util.EnterAltScreen))
	assert.Contains(t, buf.String(), util.EnableFocusEvents)

	td.ExitAlternateScreen()
	td.ExitAlternateScreen()
	assert.Equal(t, 1, strings.Count(buf.String(), util.ExitAltScreen))
	assert.Contains(t, buf.String(), util.DisableFocusEvent)
}

func TestSetWidth(t *testing.T) {
	td, _ := newTestDisplay()
	td.SetWidth(30)
	lines := td.Lines(View{Rows: sampleRows()})
	assert.Contains(t, lines[1], strings.Repeat("─", 30))
	assert.NotContains(t, lines[1], strings.Repeat("─", 31))
}
