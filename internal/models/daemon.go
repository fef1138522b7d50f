package models

import (
	"fmt"
	"time"
)

// DaemonInfo represents the store daemon connection information.
// This corresponds to ~/.kindling/daemon.yaml.
type DaemonInfo struct {
	Version   int       `yaml:"version"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	PID       int       `yaml:"pid"`
	Backend   string    `yaml:"backend"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(host string, port, pid int, backend string) *DaemonInfo {
	return &DaemonInfo{
		Version:   1,
		Host:      host,
		Port:      port,
		PID:       pid,
		Backend:   backend,
		StartedAt: time.Now().UTC(),
	}
}

// Address returns host:port.
func (d *DaemonInfo) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
