package widget

import (
	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/presentation/display"
	"github.com/jol333/TaskTimer/internal/presentation/interaction"
)

// DisplayController handles terminal display operations
type DisplayController interface {
	EnterAlternateScreen()
	ExitAlternateScreen()
	Render(view display.View)
	// SetWidth changes the preferred widget width
	SetWidth(width int)
	// Resize re-measures the terminal after a size change
	Resize()
}

// KeySource delivers keyboard and focus events
type KeySource interface {
	Events() <-chan interaction.KeyEvent
	Close() error
}

// ChangeSource reports changes to the configuration file
type ChangeSource interface {
	Events() <-chan model.FileEvent
	Close() error
}
