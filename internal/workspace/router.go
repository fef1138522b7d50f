package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kindling-io/kindling/internal/models"
)

// CommandID names a routable command.
type CommandID string

const (
	CmdNewProject         CommandID = "newProject"
	CmdSaveProject        CommandID = "saveProject"
	CmdShareProject       CommandID = "shareProject"
	CmdExportProject      CommandID = "exportProject"
	CmdToggleDevMode      CommandID = "toggleDevMode"
	CmdOpenVersionHistory CommandID = "openVersionHistory"
	CmdToggleAIAssistant  CommandID = "toggleAIAssistant"
	CmdOpenSettings       CommandID = "openSettings"
)

// Payload carries optional command arguments.
type Payload map[string]any

// Delegate handles the commands the workspace does not own.
type Delegate interface {
	ExportProject(ctx context.Context, p *models.Project, code string, args Payload) error
	OpenVersionHistory(ctx context.Context, p *models.Project, args Payload) error
}

// Command describes a routable command for the palette.
type Command struct {
	ID          CommandID
	Title       string
	Description string
	Category    string
}

var commands = []Command{
	{CmdNewProject, "New project", "Start a project from a template", "Project"},
	{CmdSaveProject, "Save project", "Save the current code now", "Project"},
	{CmdShareProject, "Share project", "Copy the share link to the clipboard", "Project"},
	{CmdExportProject, "Export project", "Write the code to a file", "Project"},
	{CmdOpenVersionHistory, "Version history", "Browse earlier versions", "Project"},
	{CmdToggleDevMode, "Toggle developer mode", "Switch between editor and preview layouts", "View"},
	{CmdToggleAIAssistant, "Toggle AI assistant", "Show or hide the assistant panel", "View"},
	{CmdOpenSettings, "Settings", "Open the settings dialog", "General"},
}

// Router maps command ids onto workspace operations. It is the single
// entry point for the palette, key bindings and bus signals.
type Router struct {
	ws     *Workspace
	logger *slog.Logger

	mu       sync.RWMutex
	delegate Delegate
}

// NewRouter returns a router driving ws.
func NewRouter(ws *Workspace, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{ws: ws, logger: logger.With("component", "router")}
}

// SetDelegate installs the handler for delegated commands.
func (r *Router) SetDelegate(d Delegate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delegate = d
}

// Commands lists every routable command in palette order.
func (r *Router) Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// Lookup returns the command for id.
func (r *Router) Lookup(id CommandID) (Command, error) {
	for _, c := range commands {
		if c.ID == id {
			return c, nil
		}
	}
	return Command{}, &UnknownCommandError{ID: id}
}

// Dispatch runs the command named id. Unknown ids are logged and ignored.
// Errors from the underlying operation (a failed save, a failed export)
// are returned to the caller.
func (r *Router) Dispatch(ctx context.Context, id CommandID, args Payload) error {
	if _, err := r.Lookup(id); err != nil {
		r.logger.Debug("ignoring command", "error", err)
		return nil
	}
	r.logger.Debug("dispatch", "command", string(id))

	switch id {
	case CmdNewProject:
		if err := r.ws.RequestNewProject(); err != nil {
			r.logger.Debug("new project ignored", "error", err)
		}
		return nil
	case CmdSaveProject:
		return r.ws.SaveNow(ctx)
	case CmdShareProject:
		_, err := r.ws.Share()
		if errors.Is(err, ErrNoProject) {
			return nil
		}
		return err
	case CmdToggleDevMode:
		r.ws.ToggleDevMode()
		return nil
	case CmdToggleAIAssistant:
		r.ws.ToggleAIAssistant()
		return nil
	case CmdOpenSettings:
		r.ws.SetSettings(true)
		return nil
	case CmdExportProject, CmdOpenVersionHistory:
		return r.delegated(ctx, id, args)
	}
	return nil
}

func (r *Router) delegated(ctx context.Context, id CommandID, args Payload) error {
	r.mu.RLock()
	d := r.delegate
	r.mu.RUnlock()
	if d == nil {
		return nil
	}

	snap := r.ws.Snapshot()
	if snap.Project == nil {
		r.ws.Notify(NoticeError, "Select a project first", ErrNoProject)
		return nil
	}
	if id == CmdExportProject {
		return d.ExportProject(ctx, snap.Project, snap.Editor.CurrentCode, args)
	}
	return d.OpenVersionHistory(ctx, snap.Project, args)
}
