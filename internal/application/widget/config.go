package widget

import (
	"time"

	"github.com/jol333/TaskTimer/internal/config"
	"github.com/jol333/TaskTimer/internal/core/session"
)

// WidgetConfig contains configuration for the widget command
type WidgetConfig struct {
	// Settings loaded from the config file
	Config *config.Config

	// ConfigPath is watched for live changes. Empty disables watching.
	ConfigPath string

	// UIRefresh is how often the display is redrawn while nothing else happens
	UIRefresh time.Duration

	// StatusTimeout is how long a status message stays on screen
	StatusTimeout time.Duration
}

// Validate checks if the configuration is valid
func (c *WidgetConfig) Validate() error {
	if c.Config == nil {
		c.Config = config.DefaultConfig()
	}
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.UIRefresh == 0 {
		c.UIRefresh = 250 * time.Millisecond
	}
	if c.StatusTimeout == 0 {
		c.StatusTimeout = 3 * time.Second
	}
	return nil
}

// SessionConfig maps file settings onto the session manager's configuration.
func SessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		TickInterval: cfg.Timing.TickInterval,
		SaveInterval: cfg.Timing.SaveInterval,
		DefaultLabel: cfg.DefaultLabel,
		Geometry:     Geometry(cfg),
	}
}

// Geometry is the layout section expressed as session geometry.
func Geometry(cfg *config.Config) session.Geometry {
	return session.Geometry{
		Base:       cfg.Layout.BaseHeight,
		PerSession: cfg.Layout.SessionRowHeight,
		Footer:     cfg.Layout.FooterHeight,
	}
}
