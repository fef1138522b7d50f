package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kindling-io/kindling/internal/config"
)

const daemonBinary = "kindlingd"

// EnsureDaemon makes sure the store daemon is running, starting it if necessary.
func EnsureDaemon(backend string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		return nil
	}

	// Clean up stale daemon info if it exists
	if info != nil {
		_ = config.RemoveDaemonInfo()
	}

	return startDaemon(backend)
}

// startDaemon starts kindlingd in the background and waits for daemon.yaml.
func startDaemon(backend string) error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	var args []string
	if backend != "" {
		args = append(args, "--backend", backend)
	}
	cmd := exec.Command(daemonPath, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	go func() { _ = cmd.Wait() }()

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

// findDaemonBinary locates kindlingd: next to this executable first, then PATH.
func findDaemonBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		daemonPath := filepath.Join(filepath.Dir(execPath), daemonBinary)
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	if path, err := exec.LookPath(daemonBinary); err == nil {
		return path, nil
	}

	// Try build directory
	if _, err := os.Stat("./build/" + daemonBinary); err == nil {
		return "./build/" + daemonBinary, nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", daemonBinary)
}
