package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindling-io/kindling/internal/clock"
	"github.com/kindling-io/kindling/internal/generator"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
	"github.com/kindling-io/kindling/internal/templates"
	"github.com/kindling-io/kindling/internal/workspace"
)

var alice = &models.Identity{UID: "alice", Email: "alice@example.com", DisplayName: "Alice"}

type harness struct {
	m     Model
	ws    *workspace.Workspace
	store *store.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := store.NewMemory()
	return newHarnessOn(t, mem, mem)
}

// newHarnessOn builds the harness over st; mem is the memory store st
// ultimately reads from.
func newHarnessOn(t *testing.T, st store.Store, mem *store.Memory) *harness {
	t.Helper()
	ws := workspace.New(workspace.Options{
		Store:     st,
		Clock:     clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Logger:    discardLogger(),
		Debounce:  time.Second,
		Clipboard: nopClipboard{},
	})
	t.Cleanup(ws.Close)

	router := workspace.NewRouter(ws, discardLogger())
	router.SetDelegate(newDelegate(ws, discardLogger()))
	bindings, err := workspace.DefaultBindings(router, nil)
	require.NoError(t, err)
	registry := workspace.NewRegistry()
	registry.Register(bindings...)

	catalog, err := templates.Builtin()
	require.NoError(t, err)

	ws.SessionChanged(models.AuthState{User: alice})

	h := &harness{ws: ws, store: mem}
	h.m = NewModel(context.Background(), Options{
		Workspace: ws,
		Router:    router,
		Registry:  registry,
		Templates: catalog,
		Logger:    discardLogger(),
		Backend:   "memory",
	}, &programRef{})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.send(workspaceEventMsg{})
	return h
}

// failingStore fails code updates while fail is set.
type failingStore struct {
	*store.Memory

	mu   sync.Mutex
	fail error
}

func (s *failingStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *failingStore) Update(ctx context.Context, id string, opts store.UpdateOptions) (*models.Project, error) {
	s.mu.Lock()
	err := s.fail
	s.mu.Unlock()
	if err != nil {
		return nil, &store.StoreError{Op: "update", ProjectID: id, Err: err}
	}
	return s.Memory.Update(ctx, id, opts)
}

type nopClipboard struct{}

func (nopClipboard) WriteAll(string) error { return nil }

// send delivers msg and returns the command the model produced.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// run delivers msg and feeds every resulting message back into the model.
func (h *harness) run(msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		msg, queue = queue[0], queue[1:]
		queue = append(queue, execCmd(h.send(msg))...)
	}
}

// execCmd runs cmd and any batch it returns, skipping ticks.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil // timers
	}
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, execCmd(c)...)
		}
		return out
	case tea.QuitMsg:
		return nil
	}
	return []tea.Msg{msg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelCreatesProjectFromTemplate(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, workspace.ViewProjectManager, h.m.snap.View)

	h.run(keyRunes("n"))
	assert.Equal(t, workspace.ViewTemplatePicker, h.m.snap.View)
	assert.Contains(t, h.m.View(), "Choose a template")

	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, workspace.ViewWorkspace, h.m.snap.View)
	require.NotNil(t, h.m.snap.Project)
	assert.NotEmpty(t, h.m.snap.Editor.CurrentCode)

	projects, err := h.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestModelTemplatePickerEscGoesBack(t *testing.T) {
	h := newHarness(t)
	h.run(keyRunes("n"))
	h.run(tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, workspace.ViewProjectManager, h.m.snap.View)
}

func TestModelPaletteRunsCommand(t *testing.T) {
	h := newHarness(t)
	h.run(keyRunes("n"))
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, workspace.ViewWorkspace, h.m.snap.View)

	h.run(tea.KeyMsg{Type: tea.KeyCtrlK})
	h.run(workspaceEventMsg{})
	require.True(t, h.m.palette.IsOpen())
	assert.Contains(t, h.m.View(), "Command Palette")

	for _, r := range "developer" {
		h.run(keyRunes(string(r)))
	}
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	h.run(workspaceEventMsg{})

	assert.False(t, h.m.palette.IsOpen())
	assert.True(t, h.m.snap.Editor.DevMode)
	assert.Equal(t, workspace.PanelEditor, h.m.snap.Layout.Main)
}

func TestModelEditorEditsWorkspace(t *testing.T) {
	h := newHarness(t)
	h.run(keyRunes("n"))
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	h.run(tea.KeyMsg{Type: tea.KeyCtrlD})
	h.run(workspaceEventMsg{})
	require.Equal(t, workspace.PanelEditor, h.m.snap.Layout.Main)

	h.run(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, workspace.PanelEditor, h.m.focusedPanel())

	before := h.m.snap.Editor.CurrentCode
	h.run(keyRunes("Z"))
	assert.NotEqual(t, before, h.m.snap.Editor.CurrentCode)
	assert.Contains(t, h.m.snap.Editor.CurrentCode, "Z")
	assert.Equal(t, workspace.BuildBuilding, h.m.snap.Save.Status)
}

func TestModelQuitFlushesPendingSave(t *testing.T) {
	h := newHarness(t)
	h.run(keyRunes("n"))
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	id := h.m.snap.Project.ProjectID

	h.ws.Edit("<main>flushed</main>")
	h.run(workspaceEventMsg{})

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, flushedMsg{}, msg)

	quit := h.send(msg)
	require.NotNil(t, quit)
	assert.Equal(t, tea.QuitMsg{}, quit())

	p, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "<main>flushed</main>", p.Code)
}

func TestModelQuitAsksWhenFlushFails(t *testing.T) {
	mem := store.NewMemory()
	st := &failingStore{Memory: mem}
	h := newHarnessOn(t, st, mem)
	h.run(keyRunes("n"))
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, workspace.ViewWorkspace, h.m.snap.View)

	st.setFail(errors.New("disk full"))
	h.ws.Edit("<main>unsaved</main>")
	h.run(workspaceEventMsg{})

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	msg := cmd()
	flushed, ok := msg.(flushedMsg)
	require.True(t, ok)
	require.Error(t, flushed.Err)

	h.send(msg)
	assert.Equal(t, confirmQuit, h.m.confirmMode)
	assert.False(t, h.m.quitting)
	assert.Contains(t, h.m.View(), "Quit anyway?")

	quit := h.send(keyRunes("y"))
	require.NotNil(t, quit)
	assert.Equal(t, tea.QuitMsg{}, quit())
}

func TestModelQuitWithoutChanges(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModelDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Create(context.Background(), store.CreateOptions{Name: "Old", OwnerID: alice.UID})
	require.NoError(t, err)
	h.run(keyRunes("r"))
	require.NotNil(t, h.m.projectList.SelectedProject())

	h.run(keyRunes("x"))
	assert.Equal(t, confirmDelete, h.m.confirmMode)
	assert.Contains(t, h.m.View(), `Delete project "Old"?`)

	h.run(keyRunes("n"))
	assert.Equal(t, confirmNone, h.m.confirmMode)
	assert.Equal(t, workspace.ViewProjectManager, h.m.snap.View, "n answers the prompt, it does not start a project")

	h.run(keyRunes("x"))
	h.run(keyRunes("y"))
	assert.Nil(t, h.m.projectList.SelectedProject())
	projects, err := h.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestModelNoticeShowsToast(t *testing.T) {
	h := newHarness(t)
	h.send(workspaceEventMsg{Event: workspace.Event{
		Kind:    workspace.EventNotice,
		Level:   workspace.NoticeSuccess,
		Message: "Project saved",
	}})
	assert.Contains(t, h.m.View(), "Project saved")

	h.send(clearToastMsg{seq: h.m.toastSeq})
	assert.NotContains(t, h.m.View(), "Project saved")
}

func TestModelTooSmall(t *testing.T) {
	h := newHarness(t)
	h.send(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, h.m.View(), "Terminal too small")
}

func TestModelGeneratedCodeWithoutGenerator(t *testing.T) {
	h := newHarness(t)
	h.run(keyRunes("n"))
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, workspace.PanelChat, h.m.focusedPanel())

	h.run(keyRunes("a hero section"))
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, h.m.chat.Pending())
	require.Len(t, h.m.chat.history, 2)
	assert.Equal(t, "a hero section", h.m.chat.history[0].text)
	assert.True(t, h.m.chat.history[1].failed)
	assert.Equal(t, generator.ErrNotConfigured.Error(), h.m.chat.history[1].text)
}
