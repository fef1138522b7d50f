package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/generator"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
	"github.com/kindling-io/kindling/internal/workspace"
)

func listProjectsCmd(st store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		projects, err := st.List(ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load projects: %w", err)}
		}
		return ProjectsLoadedMsg{Projects: projects}
	}
}

func deleteProjectCmd(st store.Store, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := st.Delete(ctx, projectID); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to delete project: %w", err)}
		}
		return ProjectDeletedMsg{ProjectID: projectID}
	}
}

func chooseTemplateCmd(ctx context.Context, ws *workspace.Workspace, tpl models.Template) tea.Cmd {
	return func() tea.Msg {
		p, err := ws.ChooseTemplate(ctx, tpl)
		if err != nil {
			// Creation failures are already toasted by the workspace.
			var pce *workspace.ProjectCreationError
			if errors.As(err, &pce) || errors.Is(err, workspace.ErrInvalidTransition) {
				return ProjectCreatedMsg{}
			}
			return ErrorMsg{Err: err}
		}
		return ProjectCreatedMsg{Project: p}
	}
}

func dispatchCmd(ctx context.Context, router *workspace.Router, id workspace.CommandID) tea.Cmd {
	return func() tea.Msg {
		return CommandDoneMsg{Err: router.Dispatch(ctx, id, nil)}
	}
}

func runBindingCmd(ctx context.Context, b workspace.Binding) tea.Cmd {
	if b.Run == nil {
		return nil
	}
	return func() tea.Msg {
		return CommandDoneMsg{Err: b.Run(ctx)}
	}
}

func generateCmd(ctx context.Context, gen generator.Generator, req generator.Request) tea.Cmd {
	return func() tea.Msg {
		code, err := gen.Generate(ctx, req)
		return GeneratedMsg{Mode: req.Mode, Code: code, Err: err}
	}
}

func applyGeneratedCmd(ctx context.Context, ws *workspace.Workspace, code string) tea.Cmd {
	return func() tea.Msg {
		return CommandDoneMsg{Err: ws.ApplyGeneratedCode(ctx, code)}
	}
}

// flushCmd saves pending edits and waits for queued saves before quitting.
func flushCmd(ctx context.Context, ws *workspace.Workspace) tea.Cmd {
	return func() tea.Msg {
		err := ws.SaveNow(ctx)
		ws.Wait()
		if snap := ws.Snapshot(); err == nil && snap.Save.Status == workspace.BuildError {
			err = snap.Save.Err
		}
		return flushedMsg{Err: err}
	}
}

type flushedMsg struct {
	Err error
}

func saveSettingsCmd(ws *workspace.Workspace, settings models.Settings) tea.Cmd {
	return func() tea.Msg {
		if err := config.SaveSettings(&settings); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save settings: %w", err)}
		}
		ws.Notify(workspace.NoticeSuccess, "Settings saved", nil)
		return nil
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func clearToastAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(15*time.Second, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}
