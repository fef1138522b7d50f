package workspace

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindling-io/kindling/internal/models"
)

func TestNewWorkspaceStartsOnLanding(t *testing.T) {
	f := newFixture(t)
	snap := f.ws.Snapshot()

	assert.Equal(t, ViewLanding, snap.View)
	assert.True(t, snap.Auth.Loading)
	assert.Nil(t, snap.Project)
	assert.Equal(t, BuildSuccess, snap.Save.Status)
}

func TestSessionGate(t *testing.T) {
	tests := []struct {
		name  string
		auth  []models.AuthState
		want  View
		check func(t *testing.T, s Snapshot)
	}{
		{
			name: "loading keeps landing",
			auth: []models.AuthState{{Loading: true}},
			want: ViewLanding,
		},
		{
			name: "signed out shows landing",
			auth: []models.AuthState{{}},
			want: ViewLanding,
		},
		{
			name: "signed in without selection shows project list",
			auth: []models.AuthState{{User: alice}},
			want: ViewProjectManager,
		},
		{
			name: "loading after sign in changes nothing",
			auth: []models.AuthState{{User: alice}, {User: alice, Loading: true}},
			want: ViewProjectManager,
		},
		{
			name: "sign out after sign in returns to landing",
			auth: []models.AuthState{{User: alice}, {}},
			want: ViewLanding,
			check: func(t *testing.T, s Snapshot) {
				assert.Nil(t, s.Auth.User)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, a := range tt.auth {
				f.ws.SessionChanged(a)
			}
			snap := f.ws.Snapshot()
			assert.Equal(t, tt.want, snap.View)
			if tt.check != nil {
				tt.check(t, snap)
			}
		})
	}
}

func TestSignOutReleasesProjectAndPendingSave(t *testing.T) {
	f := newFixture(t)
	f.open(t, "<p>a</p>")
	f.ws.Edit("<p>b</p>")

	f.ws.SessionChanged(models.AuthState{})
	f.settle()

	snap := f.ws.Snapshot()
	assert.Equal(t, ViewLanding, snap.View)
	assert.Nil(t, snap.Project)
	assert.Empty(t, snap.Editor.CurrentCode)
	assert.Empty(t, f.store.calls())
}

func TestSessionRefreshKeepsSelection(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "code")

	f.signIn(alice)

	snap := f.ws.Snapshot()
	assert.Equal(t, ViewWorkspace, snap.View)
	assert.Equal(t, p.ProjectID, snap.Project.ProjectID)
}

func TestSwitchingUserReleasesProject(t *testing.T) {
	f := newFixture(t)
	f.open(t, "code")

	f.signIn(bob)

	snap := f.ws.Snapshot()
	assert.Equal(t, ViewProjectManager, snap.View)
	assert.Nil(t, snap.Project)
}

func TestUnauthenticatedVisitorCannotReachProjects(t *testing.T) {
	f := newFixture(t)
	f.ws.SessionChanged(models.AuthState{})
	p := f.seed(t, "Demo", alice.UID, "x")

	assert.ErrorIs(t, f.ws.ChooseProject(p), ErrNotAuthenticated)
	assert.ErrorIs(t, f.ws.RequestNewProject(), ErrInvalidTransition)
	assert.ErrorIs(t, f.ws.NavigateToProjectList(), ErrNotAuthenticated)
	_, err := f.ws.ChooseTemplate(context.Background(), models.Template{Name: "T"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	f.ws.Edit("typed")
	f.settle()
	assert.Empty(t, f.store.calls())
	assert.Equal(t, ViewLanding, f.ws.View())
}

func TestNewProjectFromTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.signIn(alice)
	require.Equal(t, ViewProjectManager, f.ws.View())

	require.NoError(t, f.ws.RequestNewProject())
	require.Equal(t, ViewTemplatePicker, f.ws.View())

	p, err := f.ws.ChooseTemplate(ctx, models.Template{Name: "Landing Page", Description: "hero", Code: "<html/>"})
	require.NoError(t, err)

	snap := f.ws.Snapshot()
	assert.Equal(t, ViewWorkspace, snap.View)
	assert.Equal(t, "<html/>", snap.Editor.CurrentCode)
	require.NotNil(t, snap.Project)
	assert.Equal(t, p.ProjectID, snap.Project.ProjectID)
	assert.True(t, snap.IsOwner)
	assert.False(t, snap.Creating)

	stored, err := f.store.Get(ctx, p.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Landing Page", stored.Name)
	assert.Equal(t, "hero", stored.Description)
	assert.Equal(t, "<html/>", stored.Code)
	assert.Equal(t, alice.UID, stored.OwnerID)

	assert.Contains(t, notices(drain(f.ws)), `Project "Landing Page" created from template`)
}

func TestChooseTemplateFailureStaysOnPicker(t *testing.T) {
	t.Run("create fails", func(t *testing.T) {
		f := newFixture(t)
		f.signIn(alice)
		require.NoError(t, f.ws.RequestNewProject())
		f.store.failCreate = errDown

		_, err := f.ws.ChooseTemplate(context.Background(), models.Template{Name: "Blank"})

		var pce *ProjectCreationError
		require.True(t, errors.As(err, &pce))
		assert.Equal(t, "Blank", pce.Template)
		assert.Empty(t, pce.ProjectID)
		assert.ErrorIs(t, err, errDown)
		assert.Equal(t, ViewTemplatePicker, f.ws.View())
		assert.Nil(t, f.ws.Snapshot().Project)
	})

	t.Run("applying code fails", func(t *testing.T) {
		f := newFixture(t)
		f.signIn(alice)
		require.NoError(t, f.ws.RequestNewProject())
		f.store.setFailUpdate(errDown)

		_, err := f.ws.ChooseTemplate(context.Background(), models.Template{Name: "Blank", Code: "x"})

		var pce *ProjectCreationError
		require.True(t, errors.As(err, &pce))
		assert.NotEmpty(t, pce.ProjectID)
		assert.Equal(t, ViewTemplatePicker, f.ws.View())
		assert.Contains(t, notices(drain(f.ws)), "Could not create a project from the template")
	})
}

func TestChooseTemplateOnlyFromPicker(t *testing.T) {
	f := newFixture(t)
	f.signIn(alice)

	_, err := f.ws.ChooseTemplate(context.Background(), models.Template{Name: "Blank"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	list, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCancelTemplateSelection(t *testing.T) {
	f := newFixture(t)
	f.signIn(alice)
	require.NoError(t, f.ws.RequestNewProject())

	require.NoError(t, f.ws.CancelTemplateSelection())
	assert.Equal(t, ViewProjectManager, f.ws.View())

	assert.ErrorIs(t, f.ws.CancelTemplateSelection(), ErrInvalidTransition)
}

func TestRequestNewProjectFromWorkspaceReleasesProject(t *testing.T) {
	f := newFixture(t)
	f.open(t, "code")

	require.NoError(t, f.ws.RequestNewProject())

	snap := f.ws.Snapshot()
	assert.Equal(t, ViewTemplatePicker, snap.View)
	assert.Nil(t, snap.Project)

	assert.ErrorIs(t, f.ws.RequestNewProject(), ErrInvalidTransition)
}

func TestChooseProjectLoadsStoredCode(t *testing.T) {
	f := newFixture(t)
	f.signIn(alice)
	a := f.seed(t, "A", alice.UID, "<a/>")
	b := f.seed(t, "B", alice.UID, "<b/>")

	require.NoError(t, f.ws.ChooseProject(a))
	assert.Equal(t, "<a/>", f.ws.Snapshot().Editor.CurrentCode)

	f.ws.Edit("unsaved")
	require.NoError(t, f.ws.ChooseProject(b))

	snap := f.ws.Snapshot()
	assert.Equal(t, "<b/>", snap.Editor.CurrentCode)
	assert.Equal(t, b.ProjectID, snap.Project.ProjectID)
	assert.Equal(t, BuildSuccess, snap.Save.Status)
}

func TestChooseSameProjectReloads(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "original")

	f.ws.Edit("local edit")
	require.NoError(t, f.ws.ChooseProject(p))
	f.settle()

	assert.Equal(t, "original", f.ws.Snapshot().Editor.CurrentCode)
	assert.Empty(t, f.store.calls())
}

func TestChooseProjectRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	f.signIn(alice)

	assert.ErrorIs(t, f.ws.ChooseProject(nil), ErrNoProject)
	assert.ErrorIs(t, f.ws.ChooseProject(&models.Project{Name: "no id"}), ErrNoProject)
	assert.Equal(t, ViewProjectManager, f.ws.View())
}

func TestNavigateToProjectList(t *testing.T) {
	f := newFixture(t)
	f.open(t, "code")

	require.NoError(t, f.ws.NavigateToProjectList())

	snap := f.ws.Snapshot()
	assert.Equal(t, ViewProjectManager, snap.View)
	assert.Nil(t, snap.Project)
	assert.Empty(t, snap.Editor.CurrentCode)
}

func TestIsOwner(t *testing.T) {
	f := newFixture(t)
	f.signIn(alice)
	mine := f.seed(t, "Mine", alice.UID, "")
	theirs := f.seed(t, "Theirs", bob.UID, "")

	assert.False(t, f.ws.IsOwner())

	require.NoError(t, f.ws.ChooseProject(mine))
	assert.True(t, f.ws.IsOwner())

	require.NoError(t, f.ws.ChooseProject(theirs))
	assert.False(t, f.ws.IsOwner())
}

func TestToggleParity(t *testing.T) {
	f := newFixture(t)

	before := f.ws.Snapshot().Editor
	assert.True(t, f.ws.ToggleDevMode())
	assert.False(t, f.ws.ToggleDevMode())
	assert.Equal(t, before.DevMode, f.ws.Snapshot().Editor.DevMode)

	assert.True(t, f.ws.ToggleAIAssistant())
	assert.Equal(t, !before.ShowAIAssistant, f.ws.Snapshot().Editor.ShowAIAssistant)
	f.ws.ToggleAIAssistant()
	assert.Equal(t, before.ShowAIAssistant, f.ws.Snapshot().Editor.ShowAIAssistant)

	assert.Equal(t, []string{"Developer mode enabled", "Normal mode enabled"}, notices(drain(f.ws)))
}

func TestOverlayFlags(t *testing.T) {
	f := newFixture(t)

	f.ws.SetCommandPalette(true)
	f.ws.SetSettings(true)
	assert.True(t, f.ws.ToggleShortcutsHelp())

	e := f.ws.Snapshot().Editor
	assert.True(t, e.ShowCommandPalette)
	assert.True(t, e.ShowSettings)
	assert.True(t, e.ShowShortcutsHelp)

	f.ws.SetShortcutsHelp(false)
	f.ws.SetCommandPalette(false)
	e = f.ws.Snapshot().Editor
	assert.False(t, e.ShowShortcutsHelp)
	assert.False(t, e.ShowCommandPalette)
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		name   string
		editor EditorState
		want   PanelLayout
	}{
		{"default", EditorState{}, PanelLayout{PanelChat, PanelPreview, PanelCollaboration}},
		{"assistant", EditorState{ShowAIAssistant: true}, PanelLayout{PanelChat, PanelPreview, PanelAssistant}},
		{"dev mode", EditorState{DevMode: true}, PanelLayout{PanelChat, PanelEditor, PanelPreview}},
		{"dev mode wins", EditorState{DevMode: true, ShowAIAssistant: true}, PanelLayout{PanelChat, PanelEditor, PanelPreview}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LayoutFor(tt.editor))
		})
	}
}

// Random navigation never leaves a project selected outside the
// workspace view, nor the workspace view without a project.
func TestNavigationKeepsSelectionConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, "Demo", alice.UID, "x")
	tpl := models.Template{Name: "T", Code: "t"}

	ops := []func(){
		func() { f.signIn(alice) },
		func() { f.ws.SessionChanged(models.AuthState{}) },
		func() { f.ws.SessionChanged(models.AuthState{User: alice, Loading: true}) },
		func() { _ = f.ws.RequestNewProject() },
		func() { _ = f.ws.CancelTemplateSelection() },
		func() { _, _ = f.ws.ChooseTemplate(ctx, tpl) },
		func() { _ = f.ws.ChooseProject(p) },
		func() { _ = f.ws.NavigateToProjectList() },
		func() { f.ws.Edit("edit") },
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		ops[rng.Intn(len(ops))]()
		f.clock.Advance(time.Duration(rng.Intn(1500)) * time.Millisecond)
		f.ws.Wait()

		snap := f.ws.Snapshot()
		if snap.View == ViewWorkspace {
			require.NotNil(t, snap.Project, "step %d", i)
		} else {
			require.Nil(t, snap.Project, "step %d view %s", i, snap.View)
		}
		if snap.Auth.User == nil && !snap.Auth.Loading {
			require.Equal(t, ViewLanding, snap.View, "step %d", i)
		}
	}
}
