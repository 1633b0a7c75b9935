package interaction

import (
	"io"
	"os"
	"unicode/utf8"

	"github.com/jol333/TaskTimer/internal/util"
	"golang.org/x/term"
)

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	in       io.Reader
	fd       int
	oldState *term.State
	input    chan KeyEvent
	stop     chan struct{}
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyCtrlC
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	// Terminal focus reports, sent after EnableFocusEvents.
	KeyFocusIn
	KeyFocusOut
)

// NewKeyboardReader puts stdin into raw mode and starts reading it.
func NewKeyboardReader() (*KeyboardReader, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	kr := newKeyboardReader(os.Stdin)
	kr.fd = fd
	kr.oldState = oldState
	go kr.readInput()
	return kr, nil
}

func newKeyboardReader(in io.Reader) *KeyboardReader {
	return &KeyboardReader{
		in:    in,
		fd:    -1,
		input: make(chan KeyEvent, 32),
		stop:  make(chan struct{}),
	}
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 64)

	for {
		n, err := kr.in.Read(buf)
		if err != nil {
			if err != io.EOF {
				util.LogDebugf("Keyboard read stopped: %v", err)
			}
			return
		}

		for _, event := range parseInput(buf[:n]) {
			select {
			case kr.input <- event:
			case <-kr.stop:
				return
			}
		}
	}
}

// parseInput splits one read into key events. A single read may carry several
// keys when the user types fast or pastes.
func parseInput(buf []byte) []KeyEvent {
	var events []KeyEvent
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b == 3:
			events = append(events, KeyEvent{Key: 3, Type: KeyCtrlC})
			i++
		case b == '\r' || b == '\n':
			events = append(events, KeyEvent{Key: '\r', Type: KeyEnter})
			i++
		case b == 127 || b == 8:
			events = append(events, KeyEvent{Key: 127, Type: KeyBackspace})
			i++
		case b == 27:
			event, size := parseEscape(buf[i:])
			events = append(events, event)
			i += size
		case b < 32:
			// Other control characters are ignored
			i++
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError {
				events = append(events, KeyEvent{Key: r, Type: KeyChar})
			}
			i += size
		}
	}
	return events
}

// parseEscape decodes CSI (ESC [) and SS3 (ESC O) sequences. Anything else is
// a bare escape key.
func parseEscape(buf []byte) (KeyEvent, int) {
	if len(buf) >= 3 && (buf[1] == '[' || buf[1] == 'O') {
		switch buf[2] {
		case 'A':
			return KeyEvent{Type: KeyUp}, 3
		case 'B':
			return KeyEvent{Type: KeyDown}, 3
		case 'C':
			return KeyEvent{Type: KeyRight}, 3
		case 'D':
			return KeyEvent{Type: KeyLeft}, 3
		}
		if buf[1] == '[' {
			switch buf[2] {
			case 'I':
				return KeyEvent{Type: KeyFocusIn}, 3
			case 'O':
				return KeyEvent{Type: KeyFocusOut}, 3
			}
		}
	}
	return KeyEvent{Key: 27, Type: KeyEscape}, 1
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	close(kr.stop)
	if kr.oldState == nil {
		return nil
	}
	return term.Restore(kr.fd, kr.oldState)
}
