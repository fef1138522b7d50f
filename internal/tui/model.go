package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/generator"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/workspace"
)

// Model is the root Bubbletea model for the TUI. It renders the workspace
// snapshot and turns keys into workspace operations.
type Model struct {
	ctx      context.Context
	ws       *workspace.Workspace
	router   *workspace.Router
	registry *workspace.Registry
	bus      *workspace.Bus
	gen      generator.Generator
	settings *models.Settings
	backend  string
	logger   *slog.Logger

	// Program reference for goroutine Send()
	program *programRef

	snap   workspace.Snapshot
	focus  int // slot index within the workspace layout
	width  int
	height int

	// Child components
	projectList    *ProjectList
	templatePicker *TemplatePicker
	palette        *Palette
	settingsForm   *SettingsForm
	chat           *PromptPanel
	assistant      *PromptPanel
	editor         *EditorPanel
	preview        *PreviewPanel

	// Confirm mode
	confirmMode    int
	confirmProject *models.Project

	// Status display
	err      error
	toast    string
	toastSeq int
	quitting bool
}

// NewModel creates the initial TUI model.
func NewModel(ctx context.Context, opts Options, program *programRef) Model {
	settings := opts.Settings
	if settings == nil {
		settings = models.NewSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := opts.Bus
	if bus == nil {
		bus = workspace.NewBus(0)
	}
	m := Model{
		ctx:            ctx,
		ws:             opts.Workspace,
		router:         opts.Router,
		registry:       opts.Registry,
		bus:            bus,
		gen:            opts.Generator,
		settings:       settings,
		backend:        opts.Backend,
		logger:         logger.With("component", "tui"),
		program:        program,
		focus:          slotLeft,
		projectList:    NewProjectList(),
		templatePicker: NewTemplatePicker(opts.Templates),
		palette:        NewPalette(opts.Router.Commands()),
		settingsForm:   NewSettingsForm(),
		chat:           NewPromptPanel("Describe the page you want", "Tell Kindling what to build. The answer replaces the code."),
		assistant:      NewPromptPanel("Ask for a snippet", "Ask for a snippet. Suggestions are appended to the code with Ctrl+y."),
		editor:         NewEditorPanel(),
		preview:        NewPreviewPanel(),
	}
	if m.backend == "" {
		m.backend = settings.Store.Backend
	}
	m.snap = m.ws.Snapshot()
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	if m.snap.View == workspace.ViewProjectManager {
		return tea.Batch(tickCmd(), listProjectsCmd(m.ws.Store()))
	}
	return tickCmd()
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	// ── Mouse events ───────────────────────────────────────────────
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	// ── Workspace state ────────────────────────────────────────────
	case workspaceEventMsg:
		if msg.Event.Kind == workspace.EventNotice {
			m.toastSeq++
			m.toast = renderToastLine(msg.Event.Level, msg.Event.Message)
			cmds = append(cmds, clearToastAfter(3*time.Second, m.toastSeq))
		}
		cmds = append(cmds, m.refresh())
		return m, tea.Batch(cmds...)

	// ── Project data ───────────────────────────────────────────────
	case ProjectsLoadedMsg:
		m.projectList.SetProjects(msg.Projects, m.userID(), time.Now())
		return m, nil

	case ProjectDeletedMsg:
		m.projectList.Remove(msg.ProjectID, m.userID(), time.Now())
		m.ws.Notify(workspace.NoticeSuccess, "Project deleted", nil)
		return m, nil

	case ProjectCreatedMsg:
		m.templatePicker.SetCreating("")
		return m, m.refresh()

	// ── Generator output ───────────────────────────────────────────
	case GeneratedMsg:
		return m, m.handleGenerated(msg)

	case CommandDoneMsg:
		if msg.Err != nil {
			return m, m.showError(msg.Err)
		}
		return m, nil

	case flushedMsg:
		if msg.Err != nil {
			m.quitting = false
			m.confirmMode = confirmQuit
			return m, nil
		}
		return m, m.doQuit()

	// ── Error handling ─────────────────────────────────────────────
	case ErrorMsg:
		return m, m.showError(msg.Err)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tickMsg:
		return m, tickCmd()
	}

	return m, nil
}

// refresh re-reads the workspace snapshot and syncs child components.
func (m *Model) refresh() tea.Cmd {
	prev := m.snap
	m.snap = m.ws.Snapshot()

	var cmd tea.Cmd
	if m.snap.View == workspace.ViewProjectManager && prev.View != workspace.ViewProjectManager {
		m.projectList.SetLoading()
		cmd = listProjectsCmd(m.ws.Store())
	}
	if m.snap.View != workspace.ViewTemplatePicker {
		m.templatePicker.SetCreating("")
	}
	if m.snap.View == workspace.ViewWorkspace && (prev.Project == nil ||
		m.snap.Project == nil || prev.Project.ProjectID != m.snap.Project.ProjectID) {
		m.focus = slotLeft
	}

	if m.snap.Editor.ShowCommandPalette {
		m.palette.Open()
	} else {
		m.palette.Close()
	}
	if m.snap.Editor.ShowSettings && !m.settingsForm.IsEditing() {
		m.settingsForm.Load(m.snap.Editor, m.settings)
	}

	m.editor.SetValue(m.snap.Editor.CurrentCode)
	m.preview.SetContent(m.snap.Editor.CurrentCode)
	m.updateDimensions()
	m.applyFocus()
	return cmd
}

func (m *Model) userID() string {
	if m.snap.Auth.User == nil {
		return ""
	}
	return m.snap.Auth.User.UID
}

func (m *Model) showError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.logger.Debug("showing error", "error", err)
	m.err = err
	return clearErrorAfter(5 * time.Second)
}

func (m *Model) overlayOpen() bool {
	e := m.snap.Editor
	return e.ShowCommandPalette || e.ShowSettings || e.ShowShortcutsHelp
}

// focusedPanel returns the panel in the focused slot.
func (m *Model) focusedPanel() workspace.Panel {
	l := m.snap.Layout
	return [slotCount]workspace.Panel{l.Left, l.Main, l.Side}[m.focus]
}

// applyFocus gives keyboard focus to the input of the focused panel.
func (m *Model) applyFocus() {
	m.chat.Blur()
	m.assistant.Blur()
	m.editor.Blur()
	if m.snap.View != workspace.ViewWorkspace || m.overlayOpen() || m.confirmMode != confirmNone {
		return
	}
	switch m.focusedPanel() {
	case workspace.PanelChat:
		m.chat.Focus()
	case workspace.PanelAssistant:
		m.assistant.Focus()
	case workspace.PanelEditor:
		m.editor.Focus()
	}
}

// chordLabel returns the display form of a registry binding, or fallback.
func (m *Model) chordLabel(name, fallback string) string {
	for _, b := range m.registry.Bindings() {
		if b.Name == name {
			return formatChord(b.Chord)
		}
	}
	return fallback
}

func (m *Model) now() time.Time {
	return time.Now()
}

// handleKey processes key events.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Confirm mode captures everything
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if key.Matches(msg, globalKeys.Quit) {
		return m.requestQuit()
	}

	// Overlays capture everything except quit
	if m.snap.Editor.ShowShortcutsHelp {
		if key.Matches(msg, overlayKeys.Cancel) || m.matchesBinding(msg, "showShortcuts") {
			m.ws.SetShortcutsHelp(false)
			return m.refresh()
		}
		return nil
	}
	if m.palette.IsOpen() {
		return m.handlePaletteKey(msg)
	}
	if m.snap.Editor.ShowSettings {
		return m.handleSettingsKey(msg)
	}

	// Inside the editor ctrl+s goes through the signal bus.
	if m.snap.View == workspace.ViewWorkspace && m.focusedPanel() == workspace.PanelEditor &&
		key.Matches(msg, panelKeys.Save) {
		if err := m.bus.Publish(workspace.SignalSaveProject, nil); err != nil {
			return m.showError(err)
		}
		return nil
	}

	// Workspace shortcuts
	if chord, err := workspace.ParseChord(msg.String()); err == nil {
		if b, ok := m.registry.Match(chord); ok {
			return runBindingCmd(m.ctx, b)
		}
	}

	switch m.snap.View {
	case workspace.ViewProjectManager:
		return m.handleProjectListKey(msg)
	case workspace.ViewTemplatePicker:
		return m.handleTemplateKey(msg)
	case workspace.ViewWorkspace:
		return m.handleWorkspaceKey(msg)
	}
	return nil
}

func (m *Model) matchesBinding(msg tea.KeyMsg, name string) bool {
	chord, err := workspace.ParseChord(msg.String())
	if err != nil {
		return false
	}
	b, ok := m.registry.Match(chord)
	return ok && b.Name == name
}

func (m *Model) handleProjectListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		m.projectList.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.projectList.MoveDown()
	case key.Matches(msg, listKeys.Enter):
		p := m.projectList.SelectedProject()
		if p == nil {
			return nil
		}
		if err := m.ws.ChooseProject(p); err != nil {
			return m.showError(err)
		}
		return m.refresh()
	case key.Matches(msg, listKeys.New):
		if err := m.ws.RequestNewProject(); err != nil {
			return m.showError(err)
		}
		return m.refresh()
	case key.Matches(msg, listKeys.Delete):
		if p := m.projectList.SelectedProject(); p != nil {
			m.confirmMode = confirmDelete
			m.confirmProject = p
		}
	case key.Matches(msg, listKeys.Reload):
		m.projectList.SetLoading()
		return listProjectsCmd(m.ws.Store())
	}
	return nil
}

func (m *Model) handleTemplateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		m.templatePicker.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.templatePicker.MoveDown()
	case key.Matches(msg, listKeys.Enter):
		if m.snap.Creating {
			return nil
		}
		tpl, ok := m.templatePicker.SelectedTemplate()
		if !ok {
			return nil
		}
		m.templatePicker.SetCreating(tpl.Name)
		return chooseTemplateCmd(m.ctx, m.ws, tpl)
	case key.Matches(msg, listKeys.Back):
		if err := m.ws.CancelTemplateSelection(); err != nil {
			return m.showError(err)
		}
		return m.refresh()
	}
	return nil
}

func (m *Model) handleWorkspaceKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, globalKeys.Tab):
		m.focus = (m.focus + 1) % slotCount
		m.applyFocus()
		return nil
	case key.Matches(msg, globalKeys.Back):
		if err := m.ws.NavigateToProjectList(); err != nil {
			return m.showError(err)
		}
		return m.refresh()
	}

	switch m.focusedPanel() {
	case workspace.PanelChat:
		if key.Matches(msg, panelKeys.Submit) {
			return m.submitPrompt(m.chat, generator.ModeGenerate)
		}
		m.chat.Update(msg)

	case workspace.PanelAssistant:
		switch {
		case key.Matches(msg, panelKeys.Submit):
			return m.submitPrompt(m.assistant, generator.ModeSuggest)
		case key.Matches(msg, panelKeys.Apply):
			if s := m.assistant.TakeSuggestion(); s != "" {
				m.ws.ApplySuggestion(s)
				return m.refresh()
			}
			return nil
		}
		m.assistant.Update(msg)

	case workspace.PanelEditor:
		if m.editor.Update(msg) {
			m.ws.Edit(m.editor.Value())
			return m.refresh()
		}

	case workspace.PanelPreview:
		switch {
		case key.Matches(msg, panelKeys.Up):
			m.preview.ScrollUp(3)
		case key.Matches(msg, panelKeys.Down):
			m.preview.ScrollDown(3)
		}
	}
	return nil
}

func (m *Model) submitPrompt(panel *PromptPanel, mode generator.Mode) tea.Cmd {
	prompt := panel.Submit()
	if prompt == "" {
		return nil
	}
	if m.gen == nil {
		panel.Resolve("", generator.ErrNotConfigured)
		return nil
	}
	return generateCmd(m.ctx, m.gen, generator.Request{
		Mode:   mode,
		Prompt: prompt,
		Code:   m.snap.Editor.CurrentCode,
	})
}

func (m *Model) handleGenerated(msg GeneratedMsg) tea.Cmd {
	if msg.Mode == generator.ModeSuggest {
		if msg.Err != nil {
			m.assistant.Resolve("", msg.Err)
			return nil
		}
		m.assistant.Resolve("Here is a suggestion.", nil)
		m.assistant.SetSuggestion(msg.Code)
		return nil
	}

	if msg.Err != nil {
		m.chat.Resolve("", msg.Err)
		return nil
	}
	// The project may have been closed while the generator ran.
	if m.snap.View != workspace.ViewWorkspace {
		m.chat.Resolve("", errors.New("no project open, code discarded"))
		return nil
	}
	m.chat.Resolve(fmt.Sprintf("Updated the code (%d lines).", countLines(msg.Code)), nil)
	return applyGeneratedCmd(m.ctx, m.ws, msg.Code)
}

func (m *Model) handlePaletteKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, overlayKeys.Cancel):
		m.ws.SetCommandPalette(false)
		return m.refresh()
	case key.Matches(msg, overlayKeys.Up):
		m.palette.MoveUp()
	case key.Matches(msg, overlayKeys.Down):
		m.palette.MoveDown()
	case key.Matches(msg, overlayKeys.Enter):
		c, ok := m.palette.Selected()
		m.ws.SetCommandPalette(false)
		cmd := m.refresh()
		if !ok {
			return cmd
		}
		return tea.Batch(cmd, dispatchCmd(m.ctx, m.router, c.ID))
	default:
		m.palette.Update(msg)
	}
	return nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	if m.settingsForm.IsEditing() {
		switch msg.Type {
		case tea.KeyEnter:
			changed, k, v := m.settingsForm.FinishEdit()
			if changed {
				return m.applySettingChange(k, v)
			}
			return nil
		case tea.KeyEscape:
			m.settingsForm.CancelEdit()
			return nil
		default:
			// Forward to text input
			ti := m.settingsForm.InputModel()
			newTI, _ := ti.Update(msg)
			*ti = newTI
			return nil
		}
	}

	switch {
	case key.Matches(msg, overlayKeys.Cancel):
		m.ws.SetSettings(false)
		return m.refresh()
	case key.Matches(msg, listKeys.Up):
		m.settingsForm.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.settingsForm.MoveDown()
	case key.Matches(msg, overlayKeys.Toggle):
		if changed, k, v := m.settingsForm.Toggle(); changed {
			return m.applySettingChange(k, v)
		}
	case key.Matches(msg, overlayKeys.Enter):
		if m.settingsForm.StartEdit() {
			return nil
		}
		if changed, k, v := m.settingsForm.Toggle(); changed {
			return m.applySettingChange(k, v)
		}
	}
	return nil
}

func (m *Model) applySettingChange(k string, v any) tea.Cmd {
	switch k {
	case settingDevMode:
		if on, _ := v.(bool); on != m.snap.Editor.DevMode {
			m.ws.ToggleDevMode()
		}
		return m.refresh()
	case settingAIAssistant:
		if on, _ := v.(bool); on != m.snap.Editor.ShowAIAssistant {
			m.ws.ToggleAIAssistant()
		}
		return m.refresh()
	}
	s, _ := v.(string)
	applySetting(m.settings, k, s)
	return saveSettingsCmd(m.ws, *m.settings)
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		switch m.confirmMode {
		case confirmDelete:
			m.confirmMode = confirmNone
			p := m.confirmProject
			m.confirmProject = nil
			if p != nil {
				return deleteProjectCmd(m.ws.Store(), p.ProjectID)
			}
		case confirmQuit:
			m.confirmMode = confirmNone
			return m.doQuit()
		}
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
		m.confirmProject = nil
		m.applyFocus()
	}
	return nil
}

// requestQuit flushes unsaved edits first; a failed flush asks before quitting.
func (m *Model) requestQuit() tea.Cmd {
	if m.quitting {
		return nil
	}
	if m.snap.View == workspace.ViewWorkspace && m.snap.Save.Status != workspace.BuildSuccess {
		m.quitting = true
		return flushCmd(m.ctx, m.ws)
	}
	return m.doQuit()
}

// doQuit clears the program ref and quits.
func (m *Model) doQuit() tea.Cmd {
	m.program.Clear()
	return tea.Quit
}

// ── Mouse handling ───────────────────────────────────────────────

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.snap.View != workspace.ViewWorkspace || m.overlayOpen() {
		return
	}
	layout := computeLayout(m.width, m.height)
	slot := layout.slotAt(msg.X)

	if msg.Action == tea.MouseActionPress {
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.focus = slot
			m.applyFocus()
		case tea.MouseButtonWheelUp:
			if m.panelAt(slot) == workspace.PanelPreview {
				m.preview.ScrollUp(3)
			}
		case tea.MouseButtonWheelDown:
			if m.panelAt(slot) == workspace.PanelPreview {
				m.preview.ScrollDown(3)
			}
		}
	}
}

func (m *Model) panelAt(slot int) workspace.Panel {
	l := m.snap.Layout
	return [slotCount]workspace.Panel{l.Left, l.Main, l.Side}[slot]
}

// ── Dimension helpers ────────────────────────────────────────────

func (m *Model) updateDimensions() {
	if m.width == 0 || m.height == 0 {
		return
	}
	layout := computeLayout(m.width, m.height)
	for s := 0; s < slotCount; s++ {
		w, h := layout.inner(s)
		switch m.panelAt(s) {
		case workspace.PanelChat:
			m.chat.SetSize(w, h)
		case workspace.PanelAssistant:
			m.assistant.SetSize(w, h)
		case workspace.PanelEditor:
			m.editor.SetSize(w, h)
		case workspace.PanelPreview:
			m.preview.SetSize(w, h)
		}
	}

	listHeight := layout.contentHeight - 4
	m.projectList.SetHeight(listHeight)
	m.templatePicker.SetHeight(listHeight)

	formWidth := m.width - 10
	if formWidth > 72 {
		formWidth = 72
	}
	m.settingsForm.SetWidth(formWidth)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the TUI.
func (m Model) View() string {
	// Minimum size check
	if m.width < 80 || m.height < 24 {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					"Need 80x24, have "+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	layout := computeLayout(m.width, m.height)
	header := renderHeader(m.snap, m.width)

	var body string
	switch m.snap.View {
	case workspace.ViewLanding:
		body = m.renderLanding(layout.contentHeight)
	case workspace.ViewProjectManager:
		body = m.renderSingle(m.projectList.View(m.width-4), layout.contentHeight)
	case workspace.ViewTemplatePicker:
		body = m.renderSingle(m.templatePicker.View(m.width-4), layout.contentHeight)
	case workspace.ViewWorkspace:
		body = m.renderWorkspace(layout)
	}

	statusBar := renderStatusBar(&m, m.width)
	view := lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)

	// Overlay
	var overlayContent string
	switch {
	case m.snap.Editor.ShowShortcutsHelp:
		overlayContent = renderHelp(m.registry.Bindings(), m.width)
	case m.palette.IsOpen():
		overlayContent = m.palette.View(m.width)
	case m.snap.Editor.ShowSettings:
		overlayContent = m.settingsForm.View()
	}
	if overlayContent != "" {
		view = renderOverlay(view, overlayContent, m.width, m.height)
	}

	return renderToast(view, m.toast, m.width)
}

func (m Model) renderLanding(height int) string {
	var lines []string
	lines = append(lines,
		logoStyle.Render("🔥 Kindling"),
		taglineStyle.Render("Describe a page. Watch it catch."),
		"",
	)
	switch {
	case m.snap.Auth.Loading:
		lines = append(lines, hintStyle.Render("Checking your session..."))
	default:
		lines = append(lines,
			hintStyle.Render("Sign in from another shell to get started:"),
			"",
			keyStyle.Render("kindling login --email you@example.com"),
		)
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (m Model) renderSingle(content string, height int) string {
	inner := height - 2
	if inner < 1 {
		inner = 1
	}
	return focusedBorderStyle.
		Width(m.width - 2).
		Height(inner).
		Render(truncateContent(content, m.width-2, inner))
}

func (m Model) renderWorkspace(layout panelLayout) string {
	var contents, titles [slotCount]string
	for s := 0; s < slotCount; s++ {
		p := m.panelAt(s)
		titles[s] = panelTitle(p)
		w, _ := layout.inner(s)
		switch p {
		case workspace.PanelChat:
			contents[s] = m.chat.View()
		case workspace.PanelAssistant:
			contents[s] = m.assistant.View()
		case workspace.PanelEditor:
			contents[s] = m.editor.View()
		case workspace.PanelPreview:
			contents[s] = m.preview.View()
		case workspace.PanelCollaboration:
			contents[s] = renderCollaboration(m.snap, w)
		}
	}
	return renderPanels(contents, titles, layout, m.focus)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
