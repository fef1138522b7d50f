package tui

import (
	"github.com/kindling-io/kindling/internal/generator"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/workspace"
)

// workspaceEventMsg carries a workspace change or notice.
type workspaceEventMsg struct {
	Event workspace.Event
}

// ProjectsLoadedMsg carries the signed-in user's projects.
type ProjectsLoadedMsg struct {
	Projects []*models.Project
}

// ProjectDeletedMsg signals a project was removed from the store.
type ProjectDeletedMsg struct {
	ProjectID string
}

// ProjectCreatedMsg signals a template was instantiated and checked out.
type ProjectCreatedMsg struct {
	Project *models.Project
}

// GeneratedMsg carries generator output for the chat or assistant panel.
type GeneratedMsg struct {
	Mode generator.Mode
	Code string
	Err  error
}

// CommandDoneMsg signals a routed command finished.
type CommandDoneMsg struct {
	Err error
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// clearToastMsg clears the toast with the matching sequence number.
type clearToastMsg struct {
	seq int
}

// tickMsg refreshes relative times in the status bar.
type tickMsg struct{}
