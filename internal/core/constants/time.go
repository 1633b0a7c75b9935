package constants

import "time"

const (
	// Session ticking
	TickInterval = 100 * time.Millisecond
	SaveInterval = 5 * time.Second

	// Widget visibility
	HideDelay         = 2 * time.Second
	AnimationDuration = 300 * time.Millisecond
)

// Default widget geometry, in terminal rows.
const (
	BaseHeight       = 4
	SessionRowHeight = 1
	FooterHeight     = 1
)
