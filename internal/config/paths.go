// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global Kindling directory.
	GlobalDirName = ".kindling"

	// HomeEnv overrides the global directory location.
	HomeEnv = "KINDLING_HOME"

	// ProjectsDirName holds one directory per project for the file store.
	ProjectsDirName = "projects"

	// TemplatesDirName holds user-supplied template files.
	TemplatesDirName = "templates"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"
)

// File names
const (
	DaemonFileName   = "daemon.yaml"
	ProjectsFileName = "projects.yaml"
	SettingsFileName = "settings.yaml"
	SessionFileName  = "session.yaml"
	ProjectFileName  = "project.yaml"
	DatabaseFileName = "kindling.db"
	LogFileName      = "kindling.log"
)

// GlobalDir returns the path to the global Kindling directory (~/.kindling/),
// or $KINDLING_HOME when set.
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

func globalPath(elem ...string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml file.
func GlobalDaemonFile() (string, error) { return globalPath(DaemonFileName) }

// GlobalProjectsFile returns the path to the projects.yaml file.
func GlobalProjectsFile() (string, error) { return globalPath(ProjectsFileName) }

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) { return globalPath(SettingsFileName) }

// GlobalSessionFile returns the path to the session.yaml file.
func GlobalSessionFile() (string, error) { return globalPath(SessionFileName) }

// GlobalDatabaseFile returns the default sqlite database path.
func GlobalDatabaseFile() (string, error) { return globalPath(DatabaseFileName) }

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) { return globalPath(LogsDirName) }

// GlobalTemplatesDir returns the path to the user templates directory.
func GlobalTemplatesDir() (string, error) { return globalPath(TemplatesDirName) }

// ProjectDir returns the directory holding a stored project.
func ProjectDir(projectID string) (string, error) {
	return globalPath(ProjectsDirName, projectID)
}

// ProjectFile returns the path to a stored project's project.yaml file.
func ProjectFile(projectID string) (string, error) {
	return globalPath(ProjectsDirName, projectID, ProjectFileName)
}

// EnsureGlobalDir creates the global Kindling directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
