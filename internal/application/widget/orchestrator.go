package widget

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"unicode/utf8"

	"github.com/jol333/TaskTimer/internal/config"
	"github.com/jol333/TaskTimer/internal/core/clock"
	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/core/session"
	"github.com/jol333/TaskTimer/internal/core/visibility"
	"github.com/jol333/TaskTimer/internal/data/store"
	"github.com/jol333/TaskTimer/internal/presentation/display"
	"github.com/jol333/TaskTimer/internal/presentation/interaction"
	"github.com/jol333/TaskTimer/internal/util"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sys/unix"
)

// Orchestrator coordinates all components of the widget. Every core mutation
// happens on the goroutine running Run.
type Orchestrator struct {
	config *WidgetConfig

	// Core components
	dispatcher   *clock.Dispatcher
	manager      *session.Manager
	scheduler    *visibility.Scheduler
	stateManager *StateManager

	// UI components
	display  DisplayController
	keyboard KeySource

	// Config monitoring
	watcher ChangeSource

	// focused is true while the terminal reports having focus
	focused bool

	uiSub     clock.Subscription
	statusSub clock.Subscription
	closed    bool
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithDisplay replaces the terminal display.
func WithDisplay(d DisplayController) Option {
	return func(o *Orchestrator) { o.display = d }
}

// WithKeySource replaces the raw-mode keyboard reader.
func WithKeySource(k KeySource) Option {
	return func(o *Orchestrator) { o.keyboard = k }
}

// WithChangeSource replaces the config file watcher.
func WithChangeSource(w ChangeSource) Option {
	return func(o *Orchestrator) { o.watcher = w }
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(cfg *WidgetConfig, st store.Store, clk clockwork.Clock, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dispatcher := clock.NewDispatcher(clk, 256)
	manager := session.NewManager(st, dispatcher, session.WithConfig(SessionConfig(cfg.Config)))
	scheduler := visibility.NewScheduler(dispatcher,
		visibility.WithHideDelay(cfg.Config.Timing.HideDelay),
		visibility.WithAnimator(visibility.ClockAnimator{Clock: dispatcher, Duration: cfg.Config.Timing.Animation}),
	)

	o := &Orchestrator{
		config:       cfg,
		dispatcher:   dispatcher,
		manager:      manager,
		scheduler:    scheduler,
		stateManager: NewStateManager(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.display == nil {
		o.display = display.NewTerminalDisplay(&display.DisplayConfig{Width: cfg.Config.Layout.Width})
	}

	scheduler.OnChange(func(state visibility.State, settled bool) {
		util.LogDebugf("Widget %s (settled=%t)", state, settled)
		o.updateDisplay()
	})
	return o, nil
}

// Manager exposes the session manager
func (o *Orchestrator) Manager() *session.Manager {
	return o.manager
}

// Scheduler exposes the visibility scheduler
func (o *Orchestrator) Scheduler() *visibility.Scheduler {
	return o.scheduler
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting task timer widget")

	// Ensure cleanup on exit
	defer o.Close()

	// Phase 1: Initialize keyboard
	if o.keyboard == nil {
		keyboard, err := interaction.NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.keyboard = keyboard
	}
	defer o.keyboard.Close()

	// Enter alternate screen mode
	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	// Phase 2: Restore sessions and arm the idle hide
	o.prepare()

	// Phase 3: Start config monitoring
	o.startWatcher()
	var configEvents <-chan model.FileEvent
	if o.watcher != nil {
		configEvents = o.watcher.Events()
	}

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, unix.SIGWINCH)
	defer signal.Stop(resize)

	// Phase 4: Main event loop
	o.uiSub = o.dispatcher.Every(o.config.UIRefresh, o.updateDisplay)
	o.updateDisplay()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down task timer widget")
			return nil

		case fn := <-o.dispatcher.Callbacks():
			// Session ticks, hides, animations and redraws
			fn()

		case event := <-configEvents:
			o.handleConfigChange(event)

		case <-resize:
			o.display.Resize()
			o.updateDisplay()

		case keyEvent := <-o.keyboard.Events():
			if o.handleKeyboard(keyEvent) {
				return nil // Exit requested
			}
			o.updateDisplay()
		}
	}
}

// prepare restores persisted sessions and starts the scheduler.
func (o *Orchestrator) prepare() {
	o.manager.EnsureDefault()
	o.stateManager.ClampSelection(o.manager.Len())
	o.scheduler.Start()
}

func (o *Orchestrator) startWatcher() {
	if o.watcher != nil || o.config.ConfigPath == "" {
		return
	}
	watcher, err := config.NewWatcher(o.config.ConfigPath)
	if err != nil {
		util.LogWarnf("Config changes will not be picked up: %v", err)
		return
	}
	o.watcher = watcher
}

// view builds the frame for the current state.
func (o *Orchestrator) view() display.View {
	sessions := o.manager.Sessions()
	rows := make([]model.SessionRow, len(sessions))
	for i, s := range sessions {
		rows[i] = model.SessionRow{
			Index:   i,
			ID:      s.ID(),
			Label:   s.Label(),
			Display: s.DisplayString(),
			Running: s.Running(),
		}
	}
	return display.View{
		Rows:    rows,
		State:   o.stateManager.GetInteractionState(),
		Compact: !o.scheduler.Expanded(),
		Height:  o.manager.RequiredHeight(),
	}
}

// updateDisplay updates the terminal display
func (o *Orchestrator) updateDisplay() {
	if o.closed {
		return
	}
	o.display.Render(o.view())
}

// selected returns the highlighted session, or nil when there are none.
func (o *Orchestrator) selected() *session.Session {
	return o.manager.At(o.stateManager.GetInteractionState().Selected)
}

func (o *Orchestrator) selectIndex(i int) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.Selected = i
	})
	o.stateManager.ClampSelection(o.manager.Len())
}

// handleKeyboard handles keyboard events. It returns true when the widget should exit.
func (o *Orchestrator) handleKeyboard(event interaction.KeyEvent) bool {
	// Focus reports stand in for the pointer entering and leaving the widget
	switch event.Type {
	case interaction.KeyFocusIn:
		o.focused = true
		o.scheduler.HoverEnter()
		return false
	case interaction.KeyFocusOut:
		o.focused = false
		o.scheduler.HoverExit()
		return false
	}

	// Any key press counts as hovering. Without focus reports the idle hide restarts.
	o.scheduler.HoverEnter()
	if !o.focused {
		o.scheduler.HoverExit()
	}

	state := o.stateManager.GetInteractionState()

	// Handle confirm dialog inputs first
	if state.ConfirmDialog != nil {
		return o.handleDialogKey(state.ConfirmDialog, event)
	}

	if state.Editing {
		return o.handleEditKey(event)
	}

	if state.ShowHelp {
		if event.Type == interaction.KeyEscape || event.Key == 'h' || event.Key == '?' {
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.ShowHelp = false
			})
			return false
		}
	}

	switch event.Type {
	case interaction.KeyCtrlC:
		return true
	case interaction.KeyUp:
		o.selectIndex(state.Selected - 1)
	case interaction.KeyDown:
		o.selectIndex(state.Selected + 1)
	case interaction.KeyEnter:
		o.toggleSelected()
	case interaction.KeyEscape:
		// Nothing open to close
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q':
			return true
		case 'k':
			o.selectIndex(state.Selected - 1)
		case 'j':
			o.selectIndex(state.Selected + 1)
		case 'K':
			o.moveSelected(-1)
		case 'J':
			o.moveSelected(1)
		case ' ':
			o.toggleSelected()
		case 'a', 'A':
			o.manager.AddSession()
			o.selectIndex(o.manager.Len() - 1)
		case 'd', 'D':
			o.confirmRemove()
		case 'r':
			if s := o.selected(); s != nil {
				s.Reset()
			}
		case 'R':
			o.confirmResetAll()
		case 'e', 'E':
			o.beginEdit()
		case 'h', 'H', '?':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.ShowHelp = !s.ShowHelp
			})
		}
	}
	return false
}

func (o *Orchestrator) handleDialogKey(dialog *model.ConfirmDialog, event interaction.KeyEvent) bool {
	closeDialog := func() {
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ConfirmDialog = nil
		})
	}

	switch {
	case event.Type == interaction.KeyChar && (event.Key == 'y' || event.Key == 'Y'):
		closeDialog()
		if dialog.OnConfirm != nil {
			dialog.OnConfirm()
		}
	case event.Type == interaction.KeyEscape,
		event.Type == interaction.KeyChar && (event.Key == 'n' || event.Key == 'N'):
		closeDialog()
		if dialog.OnCancel != nil {
			dialog.OnCancel()
		}
	case event.Type == interaction.KeyCtrlC:
		return true
	}
	return false // Ignore other keys when dialog is open
}

func (o *Orchestrator) toggleSelected() {
	if s := o.selected(); s != nil {
		s.Toggle()
	}
}

func (o *Orchestrator) moveSelected(delta int) {
	from := o.stateManager.GetInteractionState().Selected
	if o.manager.Move(from, from+delta) {
		o.selectIndex(from + delta)
	}
}

// confirmRemove asks before removing the selected session. The dialog carries
// the session id so a later selection change cannot redirect it.
func (o *Orchestrator) confirmRemove() {
	s := o.selected()
	if s == nil {
		return
	}
	id, label := s.ID(), s.Label()
	o.stateManager.UpdateInteractionState(func(st *model.InteractionState) {
		st.ConfirmDialog = &model.ConfirmDialog{
			Title:   "Remove Timer",
			Message: fmt.Sprintf("Remove %q and its recorded time?", label),
			OnConfirm: func() {
				o.manager.RemoveSessionByID(id)
				o.stateManager.ClampSelection(o.manager.Len())
			},
		}
	})
}

func (o *Orchestrator) confirmResetAll() {
	o.stateManager.UpdateInteractionState(func(st *model.InteractionState) {
		st.ConfirmDialog = &model.ConfirmDialog{
			Title:     "Reset All Timers",
			Message:   "Stop every timer and set it back to zero?",
			OnConfirm: o.manager.ResetAll,
		}
	})
}

func (o *Orchestrator) beginEdit() {
	s := o.selected()
	if s == nil {
		return
	}
	o.stateManager.UpdateInteractionState(func(st *model.InteractionState) {
		st.Editing = true
		st.EditBuffer = s.Label()
	})
	o.scheduler.EditBegin()
}

func (o *Orchestrator) handleEditKey(event interaction.KeyEvent) bool {
	s := o.selected()
	if s == nil {
		o.finishEdit()
		return false
	}

	switch event.Type {
	case interaction.KeyChar:
		o.stateManager.UpdateInteractionState(func(st *model.InteractionState) {
			st.EditBuffer += string(event.Key)
		})
	case interaction.KeyBackspace:
		o.stateManager.UpdateInteractionState(func(st *model.InteractionState) {
			if _, size := utf8.DecodeLastRuneInString(st.EditBuffer); size > 0 {
				st.EditBuffer = st.EditBuffer[:len(st.EditBuffer)-size]
			}
		})
	case interaction.KeyEnter, interaction.KeyEscape:
		o.finishEdit()
		return false
	case interaction.KeyCtrlC:
		o.finishEdit()
		return true
	default:
		return false
	}

	s.Rename(o.stateManager.GetInteractionState().EditBuffer)
	return false
}

// finishEdit persists the label and lets the widget collapse again.
func (o *Orchestrator) finishEdit() {
	if s := o.selected(); s != nil {
		s.EndEdit()
	}
	o.stateManager.UpdateInteractionState(func(st *model.InteractionState) {
		st.Editing = false
		st.EditBuffer = ""
	})
	o.scheduler.EditEnd()
	if o.focused {
		o.scheduler.HoverEnter()
	}
}

// handleConfigChange applies settings that can change while running.
func (o *Orchestrator) handleConfigChange(event model.FileEvent) {
	util.LogDebugf("Config changed: %s (%s)", event.Path, event.Operation)

	cfg, err := config.Load(o.config.ConfigPath)
	if err != nil {
		util.LogWarnf("Ignoring config change: %v", err)
		o.setStatus("Config not applied: see log")
		return
	}
	o.applyConfig(cfg)
	o.setStatus("Config reloaded")
}

func (o *Orchestrator) applyConfig(cfg *config.Config) {
	prev := o.config.Config
	o.config.Config = cfg

	o.scheduler.SetHideDelay(cfg.Timing.HideDelay)
	o.manager.SetGeometry(Geometry(cfg))
	o.display.SetWidth(cfg.Layout.Width)

	if prev == nil {
		return
	}
	if prev.Timing.TickInterval != cfg.Timing.TickInterval ||
		prev.Timing.SaveInterval != cfg.Timing.SaveInterval {
		util.LogInfo("Timing changes apply after restart")
	}
	// The open store was chosen at startup, possibly by flags.
	cfg.Storage = prev.Storage
}

// setStatus shows msg until the status timeout passes.
func (o *Orchestrator) setStatus(msg string) {
	o.stateManager.SetStatusMessage(msg)
	if o.statusSub != nil {
		o.statusSub.Cancel()
	}
	o.statusSub = o.dispatcher.AfterFunc(o.config.StatusTimeout, func() {
		o.statusSub = nil
		o.stateManager.SetStatusMessage("")
		o.updateDisplay()
	})
}

// Close saves every session and releases timers and watchers.
func (o *Orchestrator) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	for _, sub := range []clock.Subscription{o.uiSub, o.statusSub} {
		if sub != nil {
			sub.Cancel()
		}
	}
	o.scheduler.Stop()
	o.manager.Shutdown()
	o.dispatcher.Wait()

	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close config watcher: %w", err)
		}
	}
	return nil
}
