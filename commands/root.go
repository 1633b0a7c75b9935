package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jol333/TaskTimer/internal/application/widget"
	"github.com/jol333/TaskTimer/internal/config"
	"github.com/jol333/TaskTimer/internal/data/store"
	"github.com/jol333/TaskTimer/internal/util"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Config and storage
	configPath   string
	dataDir      string
	storeBackend string

	rootCmd = &cobra.Command{
		Use:   "tasktimer [flags]",
		Short: "Track time on several tasks from a small terminal widget",
		Long: `tasktimer keeps any number of labelled stopwatches in a small terminal widget.
Each timer starts and stops independently and survives restarts: a timer left
running when the widget exits resumes the next time it starts.

The widget collapses to a one line hotspot after a short idle delay and expands
again when the terminal regains focus or a key is pressed.

Examples:
  tasktimer                              # Run the widget
  tasktimer list                         # Print all timers
  tasktimer add "Write report"           # Add a timer
  tasktimer toggle 0                     # Start or stop the first timer
  tasktimer --store sqlite list -o json  # Use the sqlite store, JSON output`,
		SilenceUsage: true,
		RunE:         runWidget,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile,
		"Config file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Directory holding timer data (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "",
		"Storage backend: file, sqlite or memory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

// environment is the resolved configuration shared by every command.
type environment struct {
	config     *config.Config
	configPath string
}

// setup loads the config file, applies flag overrides and initializes logging.
func setup() (*environment, error) {
	path := expandPath(configPath)
	manager, err := config.NewManager(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := manager.Config()

	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if storeBackend != "" {
		cfg.Storage.Backend = storeBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir)

	// Determine log level based on debug flag
	logLevel := cfg.LogLevel
	if debug {
		logLevel = "debug"
	}

	// Initialize logging next to the config file
	logFile := filepath.Join(filepath.Dir(path), "logs", "app.log")
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(logLevel, logFile, debug); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return &environment{config: cfg, configPath: path}, nil
}

// openStore opens the configured backend.
func (env *environment) openStore() (store.Store, error) {
	st := env.config.Storage
	if st.Backend != store.BackendMemory {
		if err := ensureDir(st.DataDir); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	s, err := store.Open(st.Backend, st.DataDir)
	if errors.Is(err, store.ErrLocked) {
		return nil, fmt.Errorf("timer data in %s is in use by another tasktimer process", st.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", st.Backend, err)
	}
	util.LogDebugf("Opened %s store in %s", st.Backend, st.DataDir)
	return s, nil
}

func runWidget(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	orchestrator, err := widget.NewOrchestrator(&widget.WidgetConfig{
		Config:     env.config,
		ConfigPath: env.configPath,
	}, st, clockwork.NewRealClock())
	if err != nil {
		return err
	}

	// Set up signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return orchestrator.Run(ctx)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
