package config

import (
	"os"

	"github.com/kindling-io/kindling/internal/models"
)

// LoadSession loads ~/.kindling/session.yaml. Returns nil, nil when nobody is signed in.
func LoadSession() (*models.Session, error) {
	path, err := GlobalSessionFile()
	if err != nil {
		return nil, err
	}
	if !FileExists(path) {
		return nil, nil
	}

	var session models.Session
	if err := LoadYAML(path, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveSession writes ~/.kindling/session.yaml.
func SaveSession(session *models.Session) error {
	path, err := GlobalSessionFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, session)
}

// RemoveSession deletes the session file. Missing files are not an error.
func RemoveSession() error {
	path, err := GlobalSessionFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
