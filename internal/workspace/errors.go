package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrNoProject is returned when an operation needs a selected project.
	ErrNoProject = errors.New("no project selected")
	// ErrInvalidTransition is returned when an operation is not allowed from the current view.
	ErrInvalidTransition = errors.New("not allowed from the current view")
	// ErrCreationInProgress is returned while a template is already being instantiated.
	ErrCreationInProgress = errors.New("a project is already being created")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("workspace closed")
)

// ProjectCreationError reports a failed template instantiation.
type ProjectCreationError struct {
	Template  string
	ProjectID string // set when the create succeeded but applying the code failed
	Err       error
}

func (e *ProjectCreationError) Error() string {
	return fmt.Sprintf("failed to create project from template %q: %v", e.Template, e.Err)
}

func (e *ProjectCreationError) Unwrap() error { return e.Err }

// PersistenceError reports a failed debounced or explicit save.
type PersistenceError struct {
	ProjectID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save project %s: %v", e.ProjectID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UnknownCommandError is produced for command ids outside the router's set.
// Dispatch logs and discards it.
type UnknownCommandError struct {
	ID CommandID
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", string(e.ID))
}
