package config

import (
	"os"
	"syscall"

	"github.com/kindling-io/kindling/internal/models"
)

// LoadDaemonInfo loads the store daemon connection info from ~/.kindling/daemon.yaml.
// Returns nil if the file doesn't exist.
func LoadDaemonInfo() (*models.DaemonInfo, error) {
	path, err := GlobalDaemonFile()
	if err != nil {
		return nil, err
	}
	if !FileExists(path) {
		return nil, nil
	}

	var info models.DaemonInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveDaemonInfo saves the daemon connection info to ~/.kindling/daemon.yaml.
func SaveDaemonInfo(info *models.DaemonInfo) error {
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveDaemonInfo removes the daemon.yaml file.
func RemoveDaemonInfo() error {
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsDaemonRunning reports whether daemon.yaml names a live process.
// A stale file left by a crashed daemon is removed.
func IsDaemonRunning() (bool, *models.DaemonInfo, error) {
	info, err := LoadDaemonInfo()
	if err != nil || info == nil {
		return false, nil, err
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return false, info, nil
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemoveDaemonInfo()
		return false, info, nil
	}
	return true, info, nil
}
