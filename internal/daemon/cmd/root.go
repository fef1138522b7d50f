// Package cmd implements the kindlingd command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/daemon/server"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
)

var (
	flagHost    string
	flagPort    int
	flagBackend string
)

var rootCmd = &cobra.Command{
	Use:           "kindlingd",
	Short:         "Serve the local project store over gRPC",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

func init() {
	rootCmd.Flags().StringVar(&flagHost, "host", "127.0.0.1", "Address to bind")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "Port to listen on (0 for dynamic allocation)")
	rootCmd.Flags().StringVar(&flagBackend, "backend", "", "Store backend to serve (file, sqlite, memory); defaults to settings")
}

// Execute runs the daemon command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "kindlingd: %v\n", err)
		return err
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	json := !term.IsTerminal(int(os.Stderr.Fd()))
	return config.NewLogger(os.Stderr, level, json).With("component", "kindlingd")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	logger := newLogger(settings.LogLevel)

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon already running on port %d (PID %d)", info.Port, info.PID)
	}

	if flagBackend != "" {
		settings.Store.Backend = flagBackend
	}
	if settings.Store.Backend == models.StoreBackendRemote {
		// Serving a remote store from itself would loop back to this daemon.
		settings.Store.Backend = models.StoreBackendFile
	}

	st, err := store.Open(settings)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	srv, err := server.New(flagHost, flagPort, st, logger)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	daemonInfo := models.NewDaemonInfo(flagHost, srv.Port(), os.Getpid(), settings.Store.Backend)
	if err := config.SaveDaemonInfo(daemonInfo); err != nil {
		srv.Stop()
		return fmt.Errorf("failed to write daemon info: %w", err)
	}

	logger.Info("daemon started", "port", srv.Port(), "pid", os.Getpid(), "backend", settings.Store.Backend)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	srv.Stop()
	if err := config.RemoveDaemonInfo(); err != nil {
		logger.Warn("failed to remove daemon info", "error", err)
	}

	fmt.Println("Daemon stopped")
	return serveErr
}
