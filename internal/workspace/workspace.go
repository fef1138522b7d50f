// Package workspace is the view state machine behind the TUI: which screen
// is active, which project is checked out, the in-memory code buffer, and
// the debounced pipeline that persists it.
//
// All state is guarded by a single mutex. Store calls are made without
// holding it, so the workspace stays responsive while a save is in flight.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kindling-io/kindling/internal/clock"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
)

// Clipboard receives share links.
type Clipboard interface {
	WriteAll(text string) error
}

// Options configures a Workspace. Store is required.
type Options struct {
	Store       store.Store
	Clock       clock.Clock
	Logger      *slog.Logger
	Debounce    time.Duration
	ShareOrigin string
	Clipboard   Clipboard
	// SaveTimeout bounds each debounced store call.
	SaveTimeout time.Duration
}

// Workspace owns the view, the checked-out project and the editor buffer.
type Workspace struct {
	store       store.Store
	clock       clock.Clock
	logger      *slog.Logger
	debounce    time.Duration
	saveTimeout time.Duration
	origin      string
	clipboard   Clipboard

	mu       sync.Mutex
	view     View
	project  *models.Project
	editor   EditorState
	save     SaveStatus
	auth     models.AuthState
	creating bool
	closed   bool
	slots    map[string]*saveSlot

	inflight sync.WaitGroup
	events   chan Event
}

// Snapshot is a consistent copy of the workspace state.
type Snapshot struct {
	View     View
	Project  *models.Project
	Editor   EditorState
	Save     SaveStatus
	Auth     models.AuthState
	Layout   PanelLayout
	IsOwner  bool
	ShareURL string
	Creating bool
}

// New creates a workspace on the landing view with the session still loading.
func New(opts Options) *Workspace {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = models.DefaultSaveDebounce
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 30 * time.Second
	}
	if opts.Clipboard == nil {
		opts.Clipboard = SystemClipboard()
	}
	return &Workspace{
		store:       opts.Store,
		clock:       opts.Clock,
		logger:      opts.Logger.With("component", "workspace"),
		debounce:    opts.Debounce,
		saveTimeout: opts.SaveTimeout,
		origin:      opts.ShareOrigin,
		clipboard:   opts.Clipboard,
		view:        ViewLanding,
		auth:        models.AuthState{Loading: true},
		save:        SaveStatus{Status: BuildSuccess},
		slots:       make(map[string]*saveSlot),
		events:      make(chan Event, eventBuffer),
	}
}

// Events returns the change and notice stream. It is never closed.
func (w *Workspace) Events() <-chan Event {
	return w.events
}

// Store returns the backing project store.
func (w *Workspace) Store() store.Store {
	return w.store
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		View:     w.view,
		Project:  w.project.Clone(),
		Editor:   w.editor,
		Save:     w.save,
		Auth:     w.auth,
		Layout:   LayoutFor(w.editor),
		IsOwner:  w.isOwnerLocked(),
		Creating: w.creating,
	}
	if w.project != nil {
		s.ShareURL = ShareURL(w.origin, w.project.ProjectID)
	}
	return s
}

// View returns the active view.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// IsOwner reports whether the signed-in user owns the selected project.
func (w *Workspace) IsOwner() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isOwnerLocked()
}

func (w *Workspace) isOwnerLocked() bool {
	return w.project != nil && w.auth.User != nil && w.project.OwnerID == w.auth.User.UID
}

// RequestNewProject opens the template picker from the project list or the
// workspace. Leaving the workspace releases the selected project.
func (w *Workspace) RequestNewProject() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.view != ViewProjectManager && w.view != ViewWorkspace {
		return ErrInvalidTransition
	}
	w.releaseLocked()
	w.view = ViewTemplatePicker
	w.logger.Debug("starting new project flow")
	w.changed()
	return nil
}

// CancelTemplateSelection returns from the template picker to the project list.
func (w *Workspace) CancelTemplateSelection() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.view != ViewTemplatePicker {
		return ErrInvalidTransition
	}
	w.view = ViewProjectManager
	w.changed()
	return nil
}

// ChooseTemplate creates a project from tpl, applies its code and opens it.
// Any store failure is returned as *ProjectCreationError and the view stays
// on the template picker.
func (w *Workspace) ChooseTemplate(ctx context.Context, tpl models.Template) (*models.Project, error) {
	w.mu.Lock()
	switch {
	case w.closed:
		w.mu.Unlock()
		return nil, ErrClosed
	case !w.auth.Authenticated():
		w.mu.Unlock()
		return nil, ErrNotAuthenticated
	case w.view != ViewTemplatePicker:
		w.mu.Unlock()
		return nil, ErrInvalidTransition
	case w.creating:
		w.mu.Unlock()
		return nil, ErrCreationInProgress
	}
	owner := w.auth.User.UID
	w.creating = true
	w.changed()
	w.mu.Unlock()

	p, err := w.instantiate(ctx, tpl, owner)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.creating = false

	if err != nil {
		w.logger.Error("project creation failed", "template", tpl.Name, "error", err)
		w.notice(NoticeError, "Could not create a project from the template", err)
		w.changed()
		return nil, err
	}

	// The user may have cancelled or signed out while the store was busy.
	if w.view != ViewTemplatePicker || w.auth.User == nil || w.auth.User.UID != owner {
		w.logger.Info("discarding created project, view changed", "project_id", p.ProjectID)
		w.changed()
		return p, ErrInvalidTransition
	}

	w.checkoutLocked(p)
	w.notice(NoticeSuccess, fmt.Sprintf("Project %q created from template", tpl.Name), nil)
	return p.Clone(), nil
}

func (w *Workspace) instantiate(ctx context.Context, tpl models.Template, owner string) (*models.Project, error) {
	created, err := w.store.Create(ctx, store.CreateOptions{
		Name:        tpl.Name,
		Description: tpl.Description,
		OwnerID:     owner,
	})
	if err != nil {
		return nil, &ProjectCreationError{Template: tpl.Name, Err: err}
	}
	w.logger.Info("project created", "project_id", created.ProjectID, "template", tpl.Name)

	updated, err := w.store.Update(ctx, created.ProjectID, store.CodeUpdate(tpl.Code))
	if err != nil {
		return nil, &ProjectCreationError{Template: tpl.Name, ProjectID: created.ProjectID, Err: err}
	}
	if updated == nil {
		updated = created
	}
	p := updated.Clone()
	p.Code = tpl.Code
	return p, nil
}

// ChooseProject checks out p and loads its code, discarding unsaved edits
// and any pending save. Choosing the already selected project reloads it.
func (w *Workspace) ChooseProject(p *models.Project) error {
	if p == nil || p.ProjectID == "" {
		return ErrNoProject
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.auth.Authenticated() {
		return ErrNotAuthenticated
	}
	w.checkoutLocked(p)
	w.notice(NoticeSuccess, fmt.Sprintf("Project %q loaded", p.Name), nil)
	return nil
}

// NavigateToProjectList releases the project and shows the project list.
func (w *Workspace) NavigateToProjectList() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.auth.Authenticated() {
		return ErrNotAuthenticated
	}
	w.releaseLocked()
	w.view = ViewProjectManager
	w.changed()
	return nil
}

// checkoutLocked selects p and moves to the workspace view.
func (w *Workspace) checkoutLocked(p *models.Project) {
	w.cancelAllTimersLocked()
	w.project = p.Clone()
	w.editor.CurrentCode = p.Code
	w.save = SaveStatus{Status: BuildSuccess}
	w.view = ViewWorkspace
	w.logger.Info("project checked out", "project_id", p.ProjectID)
	w.changed()
}

// releaseLocked drops the selected project and its pending save.
func (w *Workspace) releaseLocked() {
	if w.project == nil {
		w.editor.CurrentCode = ""
		return
	}
	w.cancelAllTimersLocked()
	w.logger.Debug("project released", "project_id", w.project.ProjectID)
	w.project = nil
	w.editor.CurrentCode = ""
	w.save = SaveStatus{Status: BuildSuccess}
}

// ToggleDevMode flips dev mode and returns the new value.
func (w *Workspace) ToggleDevMode() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.editor.DevMode = !w.editor.DevMode
	if w.editor.DevMode {
		w.notice(NoticeSuccess, "Developer mode enabled", nil)
	} else {
		w.notice(NoticeSuccess, "Normal mode enabled", nil)
	}
	w.changed()
	return w.editor.DevMode
}

// ToggleAIAssistant flips the assistant panel and returns the new value.
func (w *Workspace) ToggleAIAssistant() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.editor.ShowAIAssistant = !w.editor.ShowAIAssistant
	w.changed()
	return w.editor.ShowAIAssistant
}

// SetCommandPalette shows or hides the command palette.
func (w *Workspace) SetCommandPalette(open bool) {
	w.setFlag(&w.editor.ShowCommandPalette, open)
}

// SetShortcutsHelp shows or hides the shortcuts overlay.
func (w *Workspace) SetShortcutsHelp(open bool) {
	w.setFlag(&w.editor.ShowShortcutsHelp, open)
}

// ToggleShortcutsHelp flips the shortcuts overlay.
func (w *Workspace) ToggleShortcutsHelp() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.editor.ShowShortcutsHelp = !w.editor.ShowShortcutsHelp
	w.changed()
	return w.editor.ShowShortcutsHelp
}

// SetSettings shows or hides the settings dialog.
func (w *Workspace) SetSettings(open bool) {
	w.setFlag(&w.editor.ShowSettings, open)
}

func (w *Workspace) setFlag(flag *bool, v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if *flag == v {
		return
	}
	*flag = v
	w.changed()
}

// Notify forwards a notice from a collaborator (panels, delegates) to the shell.
func (w *Workspace) Notify(level NoticeLevel, msg string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notice(level, msg, err)
}
