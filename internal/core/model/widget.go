package model

// FileEvent represents a file system change
type FileEvent struct {
	Path      string
	Operation string
}

// InteractionState represents the current UI interaction state
type InteractionState struct {
	Selected      int    // Index of the highlighted row
	Editing       bool   // A label is being edited
	EditBuffer    string // Label text while editing
	ShowHelp      bool
	StatusMessage string // Status message to display
	ConfirmDialog *ConfirmDialog
}

// ConfirmDialog represents a confirmation dialog
type ConfirmDialog struct {
	Title     string
	Message   string
	OnConfirm func()
	OnCancel  func()
}

// SessionRow is the read-only view of one session handed to the renderer
type SessionRow struct {
	Index   int
	ID      string
	Label   string
	Display string
	Running bool
}
