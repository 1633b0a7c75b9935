package interaction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []KeyEvent
	}{
		{
			name:     "Regular char",
			input:    []byte{'a'},
			expected: []KeyEvent{{Key: 'a', Type: KeyChar}},
		},
		{
			name:     "Escape",
			input:    []byte{27},
			expected: []KeyEvent{{Key: 27, Type: KeyEscape}},
		},
		{
			name:     "Ctrl+C",
			input:    []byte{3},
			expected: []KeyEvent{{Key: 3, Type: KeyCtrlC}},
		},
		{
			name:     "Enter",
			input:    []byte{'\r'},
			expected: []KeyEvent{{Key: '\r', Type: KeyEnter}},
		},
		{
			name:     "Backspace",
			input:    []byte{127},
			expected: []KeyEvent{{Key: 127, Type: KeyBackspace}},
		},
		{
			name:     "Arrow up",
			input:    []byte("\033[A"),
			expected: []KeyEvent{{Type: KeyUp}},
		},
		{
			name:     "Arrow down application mode",
			input:    []byte("\033OB"),
			expected: []KeyEvent{{Type: KeyDown}},
		},
		{
			name:     "Focus in",
			input:    []byte("\033[I"),
			expected: []KeyEvent{{Type: KeyFocusIn}},
		},
		{
			name:     "Focus out",
			input:    []byte("\033[O"),
			expected: []KeyEvent{{Type: KeyFocusOut}},
		},
		{
			name:  "Several keys in one read",
			input: []byte("ab\033[Bc"),
			expected: []KeyEvent{
				{Key: 'a', Type: KeyChar},
				{Key: 'b', Type: KeyChar},
				{Type: KeyDown},
				{Key: 'c', Type: KeyChar},
			},
		},
		{
			name:     "Multibyte rune",
			input:    []byte("é漢"),
			expected: []KeyEvent{{Key: 'é', Type: KeyChar}, {Key: '漢', Type: KeyChar}},
		},
		{
			name:     "Other control chars ignored",
			input:    []byte{1, 2, 'x'},
			expected: []KeyEvent{{Key: 'x', Type: KeyChar}},
		},
		{
			name:     "Empty",
			input:    []byte{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseInput(tt.input))
		})
	}
}

func TestKeyboardReaderDeliversEvents(t *testing.T) {
	kr := newKeyboardReader(strings.NewReader("q\033[I"))
	go kr.readInput()
	defer kr.Close()

	var got []KeyEvent
	for len(got) < 2 {
		select {
		case ev := <-kr.Events():
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			require.Fail(t, "timed out waiting for key events")
		}
	}
	assert.Equal(t, []KeyEvent{{Key: 'q', Type: KeyChar}, {Type: KeyFocusIn}}, got)
}
