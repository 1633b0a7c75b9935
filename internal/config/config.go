package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jol333/TaskTimer/internal/core/constants"
	"github.com/jol333/TaskTimer/internal/core/model"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDir      = "~/.go-task-timer"
	DefaultFile     = DefaultDir + "/config.yaml"
	DefaultDataDir  = DefaultDir + "/data"
	DefaultLogFile  = DefaultDir + "/logs/app.log"
	DefaultBackend  = "file"
	DefaultLogLevel = "info"
)

// Config is the on-disk widget configuration
type Config struct {
	Timing       TimingConfig  `yaml:"timing"`
	Layout       LayoutConfig  `yaml:"layout"`
	Storage      StorageConfig `yaml:"storage"`
	DefaultLabel string        `yaml:"default_label"`
	LogLevel     string        `yaml:"log_level"`
}

type TimingConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	SaveInterval time.Duration `yaml:"save_interval"`
	HideDelay    time.Duration `yaml:"hide_delay"`
	Animation    time.Duration `yaml:"animation"`
}

// LayoutConfig is measured in terminal rows and columns.
type LayoutConfig struct {
	BaseHeight       float64 `yaml:"base_height"`
	SessionRowHeight float64 `yaml:"session_row_height"`
	FooterHeight     float64 `yaml:"footer_height"`
	Width            int     `yaml:"width"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	DataDir string `yaml:"data_dir"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Timing: TimingConfig{
			TickInterval: constants.TickInterval,
			SaveInterval: constants.SaveInterval,
			HideDelay:    constants.HideDelay,
			Animation:    constants.AnimationDuration,
		},
		Layout: LayoutConfig{
			BaseHeight:       constants.BaseHeight,
			SessionRowHeight: constants.SessionRowHeight,
			FooterHeight:     constants.FooterHeight,
			Width:            40,
		},
		Storage: StorageConfig{
			Backend: DefaultBackend,
			DataDir: DefaultDataDir,
		},
		DefaultLabel: model.DefaultLabel,
		LogLevel:     DefaultLogLevel,
	}
}

// Validate fills unset fields with defaults and rejects values that cannot work.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Timing.TickInterval == 0 {
		c.Timing.TickInterval = def.Timing.TickInterval
	}
	if c.Timing.SaveInterval == 0 {
		c.Timing.SaveInterval = def.Timing.SaveInterval
	}
	if c.Timing.HideDelay == 0 {
		c.Timing.HideDelay = def.Timing.HideDelay
	}
	if c.Timing.Animation == 0 {
		c.Timing.Animation = def.Timing.Animation
	}
	if c.Layout.BaseHeight == 0 {
		c.Layout.BaseHeight = def.Layout.BaseHeight
	}
	if c.Layout.SessionRowHeight == 0 {
		c.Layout.SessionRowHeight = def.Layout.SessionRowHeight
	}
	if c.Layout.FooterHeight == 0 {
		c.Layout.FooterHeight = def.Layout.FooterHeight
	}
	if c.Layout.Width == 0 {
		c.Layout.Width = def.Layout.Width
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = def.Storage.DataDir
	}
	if c.DefaultLabel == "" {
		c.DefaultLabel = def.DefaultLabel
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	var errs []error
	if c.Timing.TickInterval < 0 || c.Timing.SaveInterval < 0 ||
		c.Timing.HideDelay < 0 || c.Timing.Animation < 0 {
		errs = append(errs, errors.New("timing values must not be negative"))
	}
	if c.Timing.SaveInterval > 0 && c.Timing.SaveInterval < c.Timing.TickInterval {
		errs = append(errs, fmt.Errorf("save_interval %s is shorter than tick_interval %s",
			c.Timing.SaveInterval, c.Timing.TickInterval))
	}
	if c.Layout.BaseHeight < 0 || c.Layout.SessionRowHeight < 0 || c.Layout.FooterHeight < 0 {
		errs = append(errs, errors.New("layout heights must not be negative"))
	}
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	return errors.Join(errs...)
}

// Manager loads and saves the configuration file.
type Manager struct {
	config *Config
	path   string
}

// NewManager loads path, creating it with defaults when it does not exist.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}

	cfg, err := Load(path)
	switch {
	case err == nil:
		m.config = cfg
	case errors.Is(err, os.ErrNotExist):
		m.config = DefaultConfig()
		if err := m.Save(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return m, nil
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the current configuration.
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(m.path, data, 0644)
}

// Reload re-reads the file. On error the previous configuration is kept.
func (m *Manager) Reload() (*Config, error) {
	cfg, err := Load(m.path)
	if err != nil {
		return m.config, err
	}
	m.config = cfg
	return cfg, nil
}

func (m *Manager) Config() *Config {
	return m.config
}

func (m *Manager) Path() string {
	return m.path
}
