package workspace

import (
	"context"

	"github.com/kindling-io/kindling/internal/models"
)

// SessionChanged applies a new auth state:
//   - while loading, nothing moves;
//   - signed out, the workspace falls back to the landing view and drops
//     the selected project, its buffer and any pending save;
//   - signed in with nothing selected, the project list is shown (the
//     template picker is left alone);
//   - a different user than before releases the previous user's project.
func (w *Workspace) SessionChanged(auth models.AuthState) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.auth
	w.auth = auth

	switch {
	case auth.Loading:
	case auth.User == nil:
		w.releaseLocked()
		w.editor.ShowCommandPalette = false
		w.editor.ShowSettings = false
		w.view = ViewLanding
	default:
		if prev.User != nil && prev.User.UID != auth.User.UID {
			w.releaseLocked()
			w.view = ViewProjectManager
		}
		if w.project == nil && w.view != ViewTemplatePicker {
			w.view = ViewProjectManager
		}
	}
	w.logger.Debug("session changed", "loading", auth.Loading, "signed_in", auth.User != nil, "view", w.view.String())
	w.changed()
}

// AuthSource is the part of auth.Provider the gate consumes.
type AuthSource interface {
	Current() models.AuthState
	Changes() <-chan models.AuthState
}

// FollowSession applies the provider's current state and then every
// change until ctx is done.
func (w *Workspace) FollowSession(ctx context.Context, src AuthSource) {
	w.SessionChanged(src.Current())
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-src.Changes():
			w.SessionChanged(state)
		}
	}
}
