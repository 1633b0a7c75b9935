package session

import (
	"math"
	"time"

	"github.com/jol333/TaskTimer/internal/core/constants"
	"github.com/jol333/TaskTimer/internal/core/model"
)

// Geometry describes the display height the manager reports. Units are
// whatever the view layer uses (pixels for a window, rows for a terminal).
type Geometry struct {
	Base       float64 // height with a single session
	PerSession float64 // added for every session after the first
	Footer     float64 // the "add" control
}

// Config controls session timing and labelling
type Config struct {
	// TickInterval is how often a running session advances
	TickInterval time.Duration

	// SaveInterval is the target cadence of periodic snapshot writes while running.
	// It is converted to a tick count, so suspended ticks stretch it in wall time.
	SaveInterval time.Duration

	// DefaultLabel names sessions that have not been renamed
	DefaultLabel string

	Geometry Geometry
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		TickInterval: constants.TickInterval,
		SaveInterval: constants.SaveInterval,
		DefaultLabel: model.DefaultLabel,
		Geometry: Geometry{
			Base:       constants.BaseHeight,
			PerSession: constants.SessionRowHeight,
			Footer:     constants.FooterHeight,
		},
	}
}

// normalize fills zero values with defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.SaveInterval <= 0 {
		c.SaveInterval = def.SaveInterval
	}
	if c.DefaultLabel == "" {
		c.DefaultLabel = def.DefaultLabel
	}
	if c.Geometry == (Geometry{}) {
		c.Geometry = def.Geometry
	}
	return c
}

// ticksPerSave is the number of ticks between periodic snapshot writes.
func (c Config) ticksPerSave() int {
	n := int(math.Round(float64(c.SaveInterval) / float64(c.TickInterval)))
	if n < 1 {
		return 1
	}
	return n
}
