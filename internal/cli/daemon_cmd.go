package cli

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindling-io/kindling/internal/config"
)

var flagDaemonBackend string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the kindlingd store daemon",
	Long: `Manage kindlingd, which serves the local project store over gRPC.
Set store.backend to "remote" to have workspaces share it.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	daemonStartCmd.Flags().StringVar(&flagDaemonBackend, "backend", "", "Store backend to serve (file, sqlite, memory); defaults to settings")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running && info != nil {
		fmt.Fprintf(out, "Daemon is already running (PID %d, %s).\n", info.PID, info.Address())
		return nil
	}

	fmt.Fprint(out, "Starting daemon...")
	if startErr := EnsureDaemon(flagDaemonBackend); startErr != nil {
		fmt.Fprintln(out)
		return startErr
	}

	// Fetch fresh status to display
	_, freshInfo, err := config.IsDaemonRunning()
	if err != nil || freshInfo == nil {
		fmt.Fprintln(out, " started.")
		return nil
	}

	fmt.Fprintf(out, " started (PID %d, %s).\n", freshInfo.PID, freshInfo.Address())
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running || info == nil {
		fmt.Fprintln(out, "Daemon is not running.")
		return nil
	}

	uptime := time.Since(info.StartedAt).Truncate(time.Second)

	fmt.Fprintln(out, "Daemon is running.")
	fmt.Fprintf(out, "  Address:    %s\n", info.Address())
	fmt.Fprintf(out, "  PID:        %d\n", info.PID)
	fmt.Fprintf(out, "  Backend:    %s\n", info.Backend)
	fmt.Fprintf(out, "  Uptime:     %s\n", uptime)

	settings, err := config.LoadSettings()
	if err == nil && settings.Store.Backend != "remote" {
		fmt.Fprintln(out, styleHint.Render("\nThis workspace uses the "+settings.Store.Backend+" store. Run 'kindling settings set store.backend remote' to use the daemon."))
	}
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running || info == nil {
		fmt.Fprintln(out, "Daemon is not running.")
		return nil
	}

	// Send SIGTERM to the daemon process
	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	// Poll for shutdown (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stillRunning, _, err := config.IsDaemonRunning()
		if err == nil && !stillRunning {
			fmt.Fprintln(out, "Daemon stopped.")
			return nil
		}
	}

	return fmt.Errorf("daemon did not stop within timeout")
}
