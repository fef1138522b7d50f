// Package auth exposes who is signed in. The session itself lives in
// ~/.kindling/session.yaml and is written by `kindling login`.
package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
)

// Provider reports the current session and its changes.
type Provider interface {
	Current() models.AuthState
	// Changes delivers the latest state whenever it changes. Slow readers
	// only see the most recent state.
	Changes() <-chan models.AuthState
}

// ErrEmailRequired is returned by Login without an email.
var ErrEmailRequired = errors.New("email is required")

// IdentityFor builds a stable identity for an email; the uid is a
// name-based UUID so the same email always maps to the same owner.
func IdentityFor(email, displayName string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}
	return &models.Identity{
		UID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email:       email,
		DisplayName: displayName,
	}, nil
}

// Login writes the session file for email.
func Login(email, displayName string) (*models.Identity, error) {
	id, err := IdentityFor(email, displayName)
	if err != nil {
		return nil, err
	}
	if err := config.SaveSession(models.NewSession(id)); err != nil {
		return nil, err
	}
	return id, nil
}

// Logout removes the session file.
func Logout() error {
	return config.RemoveSession()
}

// Static is a Provider with a fixed state, for tests and one-shot commands.
type Static struct {
	state   models.AuthState
	changes chan models.AuthState
}

// NewStatic returns a provider signed in as user, or signed out when user is nil.
func NewStatic(user *models.Identity) *Static {
	return &Static{
		state:   models.AuthState{User: user},
		changes: make(chan models.AuthState),
	}
}

func (s *Static) Current() models.AuthState        { return s.state }
func (s *Static) Changes() <-chan models.AuthState { return s.changes }
