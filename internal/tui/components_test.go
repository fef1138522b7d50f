package tui

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
	"github.com/kindling-io/kindling/internal/workspace"
)

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Landing Page", "landing-page.html"},
		{"  My  Site!! ", "my-site.html"},
		{"Café 2", "café-2.html"},
		{"???", "project.html"},
		{"", "project.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportFileName(tt.name))
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"future", now.Add(time.Minute), "just now"},
		{"seconds", now.Add(-5 * time.Second), "just now"},
		{"half minute", now.Add(-30 * time.Second), "30s ago"},
		{"minutes", now.Add(-3 * time.Minute), "3m ago"},
		{"hours", now.Add(-5 * time.Hour), "5h ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeTime(now, tt.t))
		})
	}
}

func TestListViewSkipsHeaders(t *testing.T) {
	l := listView{}
	l.SetItems([]listItem{
		{isHeader: true, title: "A"},
		{title: "a1", index: 0},
		{title: "a2", index: 1},
		{isHeader: true, title: "B"},
		{title: "b1", index: 2},
	})
	assert.Equal(t, 0, l.Selected())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected(), "cursor never lands on a header")

	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected(), "cursor stops at the last item")

	l.MoveUp()
	assert.Equal(t, 1, l.Selected())
}

func TestListViewEmpty(t *testing.T) {
	l := listView{empty: "nothing here"}
	l.MoveDown()
	assert.Equal(t, -1, l.Selected())
	assert.Contains(t, l.View(40), "nothing here")
}

func TestProjectListFiltersAndSorts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pl := NewProjectList()
	pl.SetProjects([]*models.Project{
		{ProjectID: "1", Name: "Old", OwnerID: "alice", UpdatedAt: now.Add(-time.Hour)},
		{ProjectID: "2", Name: "Theirs", OwnerID: "bob", UpdatedAt: now},
		{ProjectID: "3", Name: "New", OwnerID: "alice", UpdatedAt: now.Add(-time.Minute)},
	}, "alice", now)

	require.NotNil(t, pl.SelectedProject())
	assert.Equal(t, "3", pl.SelectedProject().ProjectID)
	pl.MoveDown()
	assert.Equal(t, "1", pl.SelectedProject().ProjectID)

	view := pl.View(60)
	assert.Contains(t, view, "Your projects (2)")
	assert.NotContains(t, view, "Theirs")

	pl.Remove("1", "alice", now)
	assert.Equal(t, "3", pl.SelectedProject().ProjectID)
	pl.Remove("3", "alice", now)
	assert.Nil(t, pl.SelectedProject())
}

func TestPaletteFilter(t *testing.T) {
	r := workspace.NewRouter(workspace.New(workspace.Options{Store: store.NewMemory()}), discardLogger())
	p := NewPalette(r.Commands())
	p.Open()

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("dev")})
	c, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, workspace.CmdToggleDevMode, c.ID)

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})
	_, ok = p.Selected()
	assert.False(t, ok)

	// Reopening clears the query.
	p.Close()
	p.Open()
	c, ok = p.Selected()
	require.True(t, ok)
	assert.Equal(t, workspace.CmdNewProject, c.ID)
}

func TestSettingsFormToggle(t *testing.T) {
	s := NewSettingsForm()
	s.Load(workspace.EditorState{}, models.NewSettings())

	changed, k, v := s.Toggle()
	assert.True(t, changed)
	assert.Equal(t, settingDevMode, k)
	assert.Equal(t, true, v)

	s.MoveDown()
	s.MoveDown()
	changed, _, _ = s.Toggle()
	assert.False(t, changed, "text fields do not toggle")
}

func TestSettingsFormEdit(t *testing.T) {
	s := NewSettingsForm()
	s.Load(workspace.EditorState{}, models.NewSettings())
	s.MoveDown()
	s.MoveDown()

	require.True(t, s.StartEdit())
	s.InputModel().SetValue("not a url")
	changed, _, _ := s.FinishEdit()
	assert.False(t, changed)
	assert.Contains(t, s.View(), "Share origin must be an absolute URL")

	require.True(t, s.StartEdit())
	s.InputModel().SetValue(" https://sites.example.com ")
	changed, k, v := s.FinishEdit()
	assert.True(t, changed)
	assert.Equal(t, settingShareOrigin, k)
	assert.Equal(t, "https://sites.example.com", v)
	assert.False(t, s.IsEditing())
}

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		key, value string
		ok         bool
	}{
		{settingShareOrigin, "https://kindling.dev", true},
		{settingShareOrigin, "kindling.dev", false},
		{settingSaveDebounce, "500ms", true},
		{settingSaveDebounce, "0s", false},
		{settingSaveDebounce, "soon", false},
		{settingStoreBackend, "sqlite", true},
		{settingStoreBackend, "postgres", false},
		{settingLogLevel, "DEBUG", true},
		{settingLogLevel, "trace", false},
		{settingGenerator, "anything goes", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.ok, validateSetting(tt.key, tt.value) == "")
		})
	}
}

func TestApplySetting(t *testing.T) {
	s := models.NewSettings()
	applySetting(s, settingShareOrigin, "https://x.dev")
	applySetting(s, settingSaveDebounce, "2s")
	applySetting(s, settingGenerator, "kindling-gen")
	applySetting(s, settingStoreBackend, models.StoreBackendSQLite)
	applySetting(s, settingLogLevel, "WARN")

	assert.Equal(t, "https://x.dev", s.ShareOrigin)
	assert.Equal(t, "2s", s.SaveDebounce)
	assert.Equal(t, "kindling-gen", s.Generator.Command)
	assert.Equal(t, models.StoreBackendSQLite, s.Store.Backend)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestFormatChord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ctrl+k", "Ctrl+k"},
		{"ctrl+/", "Ctrl+/"},
		{"ctrl+shift+p", "Ctrl+Shift+p"},
		{"ctrl++", "Ctrl++"},
		{"f1", "f1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := workspace.ParseChord(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatChord(c))
		})
	}
}

func TestComputeLayout(t *testing.T) {
	l := computeLayout(100, 30)
	assert.Equal(t, [slotCount]int{25, 45, 30}, l.widths)
	assert.Equal(t, 28, l.contentHeight)

	assert.Equal(t, slotLeft, l.slotAt(0))
	assert.Equal(t, slotLeft, l.slotAt(24))
	assert.Equal(t, slotMain, l.slotAt(25))
	assert.Equal(t, slotSide, l.slotAt(70))
	assert.Equal(t, slotSide, l.slotAt(99))

	w, h := l.inner(slotMain)
	assert.Equal(t, 43, w)
	assert.Equal(t, 26, h)

	narrow := computeLayout(60, 24)
	assert.Equal(t, 20, narrow.widths[slotLeft])
	assert.Equal(t, 20, narrow.widths[slotMain])
	assert.Equal(t, 20, narrow.widths[slotSide])
}

func TestDelegateExport(t *testing.T) {
	ws := workspace.New(workspace.Options{Store: store.NewMemory(), Logger: discardLogger()})
	t.Cleanup(ws.Close)
	d := newDelegate(ws, discardLogger())
	d.dir = t.TempDir()

	p := &models.Project{ProjectID: "p1", Name: "Landing Page"}
	require.NoError(t, d.ExportProject(context.Background(), p, "<html/>", nil))

	data, err := os.ReadFile(filepath.Join(d.dir, "landing-page.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html/>", string(data))

	custom := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, d.ExportProject(context.Background(), p, "<p/>", workspace.Payload{"path": custom}))
	data, err = os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "<p/>", string(data))

	err = d.ExportProject(context.Background(), p, "x", workspace.Payload{"path": filepath.Join(d.dir, "missing", "x.html")})
	assert.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
