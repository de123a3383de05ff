package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/service"
	"github.com/soba-dev/soba/pkg/errors"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Display the current status of soba",
		Long: `Display the current status of soba including:
- Daemon process status
- Tmux session information
- Issue processing state`,
		RunE: runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	log := GetLogFactory().CreateComponentLogger("status")
	ctx := context.Background()

	currentDir, err := os.Getwd()
	if err != nil {
		return errors.WrapInternal(err, "failed to get current directory")
	}

	configPath := filepath.Join(currentDir, ".soba", "config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	runtime, err := service.NewRuntime(currentDir, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build runtime: %w", err)
	}

	status, err := runtime.Status.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), formatStatus(status))

	// spec §6: exit 0 when running or absent, 1 when stale (PID file
	// present but the process it names is gone).
	if status.Daemon != nil && status.Daemon.Stale {
		return fmt.Errorf("daemon status is stale: pid %d is not running", status.Daemon.PID)
	}

	return nil
}

func formatStatus(status *service.Status) string {
	var output strings.Builder

	if status.Daemon != nil {
		switch {
		case status.Daemon.Running:
			output.WriteString(fmt.Sprintf("Daemon Status: Running (PID: %d", status.Daemon.PID))
			if status.Daemon.Uptime != "" {
				output.WriteString(fmt.Sprintf(", Uptime: %s", status.Daemon.Uptime))
			}
			output.WriteString(")\n")
		case status.Daemon.Stale:
			output.WriteString(fmt.Sprintf("Daemon Status: Stale (PID %d is not running)\n", status.Daemon.PID))
		default:
			output.WriteString("Daemon Status: Not Running\n")
		}

		if len(status.Daemon.LogTail) > 0 {
			output.WriteString("\nDaemon Log (last lines):\n")
			for _, line := range status.Daemon.LogTail {
				output.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}

	if status.Tmux != nil && len(status.Tmux.Sessions) > 0 {
		output.WriteString("\nTmux Sessions:\n")
		for _, session := range status.Tmux.Sessions {
			output.WriteString(fmt.Sprintf("  - %s\n", session))
		}
	}

	if len(status.Issues) > 0 {
		output.WriteString("\nActive Issues:\n")
		for _, issue := range status.Issues {
			output.WriteString(fmt.Sprintf("  #%d [%s] %s\n", issue.Number, issue.State, issue.Title))
		}
	} else {
		output.WriteString("\nNo active issues with soba labels\n")
	}

	return output.String()
}
