// Package tui implements the interactive TUI for Kindling.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kindling-io/kindling/internal/generator"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/templates"
	"github.com/kindling-io/kindling/internal/workspace"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Options wires the shell to the workspace and its collaborators.
type Options struct {
	Workspace *workspace.Workspace
	Router    *workspace.Router
	Registry  *workspace.Registry
	Bus       *workspace.Bus
	Auth      workspace.AuthSource
	Templates *templates.Catalog
	Generator generator.Generator // nil disables chat and assistant prompts
	Settings  *models.Settings
	Backend   string
	Logger    *slog.Logger
}

// Run launches the TUI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Workspace == nil || opts.Router == nil || opts.Registry == nil {
		return errors.New("tui: workspace, router and registry are required")
	}
	if opts.Bus == nil {
		opts.Bus = workspace.NewBus(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &programRef{}
	model := NewModel(ctx, opts, ref)

	opts.Router.SetDelegate(newDelegate(opts.Workspace, opts.Logger))

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Store program reference for goroutine sends
	ref.Set(p)

	if opts.Auth != nil {
		go opts.Workspace.FollowSession(ctx, opts.Auth)
	}
	go forwardEvents(ctx, opts.Workspace, ref)
	go func() {
		_ = opts.Bus.Run(ctx, func(ctx context.Context, msg workspace.Message) {
			if err := opts.Router.HandleSignal(ctx, msg); err != nil {
				ref.Send(ErrorMsg{Err: err})
			}
		})
	}()

	_, err := p.Run()
	cancel()
	ref.Clear()
	opts.Workspace.Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// forwardEvents relays workspace events into the program until ctx ends.
func forwardEvents(ctx context.Context, ws *workspace.Workspace, ref *programRef) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ws.Events():
			ref.Send(workspaceEventMsg{Event: ev})
		}
	}
}
