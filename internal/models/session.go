package models

import "time"

// Identity is the signed-in user.
type Identity struct {
	UID         string `yaml:"uid"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
}

// Session represents ~/.kindling/session.yaml.
type Session struct {
	Version  int       `yaml:"version"`
	User     *Identity `yaml:"user"`
	SignedIn time.Time `yaml:"signed_in"`
}

// NewSession creates a session for the given identity.
func NewSession(user *Identity) *Session {
	return &Session{
		Version:  1,
		User:     user,
		SignedIn: time.Now().UTC(),
	}
}

// AuthState is the observable session: who is signed in, and whether that is still being resolved.
type AuthState struct {
	User    *Identity
	Loading bool
}

// Authenticated reports whether a user is signed in and resolution has finished.
func (a AuthState) Authenticated() bool {
	return !a.Loading && a.User != nil
}
