package widget

import (
	"sync"

	"github.com/jol333/TaskTimer/internal/core/model"
)

// StateManager holds the widget's interaction state
type StateManager struct {
	mu               sync.RWMutex
	interactionState model.InteractionState
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{}
}

// GetInteractionState returns a copy of the current interaction state
func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.interactionState
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	updateFunc(&sm.interactionState)
}

// ClampSelection keeps the selected row inside [0, count).
func (sm *StateManager) ClampSelection(count int) {
	sm.UpdateInteractionState(func(s *model.InteractionState) {
		if s.Selected >= count {
			s.Selected = count - 1
		}
		if s.Selected < 0 {
			s.Selected = 0
		}
	})
}

// SetStatusMessage replaces the status line
func (sm *StateManager) SetStatusMessage(msg string) {
	sm.UpdateInteractionState(func(s *model.InteractionState) {
		s.StatusMessage = msg
	})
}
