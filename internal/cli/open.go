package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soba-dev/soba/internal/infra/tmux"
)

const defaultSessionName = "soba"

type openCmd struct {
	tmuxClient      tmux.TmuxClient
	attachToSession func(sessionName string) error
}

func newOpenCmd() *cobra.Command {
	o := &openCmd{
		tmuxClient: tmux.NewClient(),
	}
	// デフォルトの実装を設定
	o.attachToSession = o.defaultAttachToSession

	cmd := &cobra.Command{
		Use:   "open [<issue-number>]",
		Short: "Open tmux session",
		Long: `Opens a tmux session and attaches to it.

With an Issue number, attaches to that Issue's own session (soba-<n>), the
session the daemon's Executor drives for that Issue's phases — creating it
first if it doesn't exist yet.

With no argument, falls back to the legacy per-repository session name
calculated from the github.repository setting in the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: o.runOpen,
	}

	return cmd
}

func (o *openCmd) runOpen(cmd *cobra.Command, args []string) error {
	sessionName, err := o.targetSessionName(args)
	if err != nil {
		return err
	}

	if o.tmuxClient.SessionExists(sessionName) {
		fmt.Printf("Attaching to session '%s'\n", sessionName)
		return o.attachToSession(sessionName)
	}

	fmt.Printf("Creating session '%s'\n", sessionName)
	if err := o.tmuxClient.CreateSession(sessionName); err != nil {
		return fmt.Errorf("Failed to create session: %w", err)
	}

	return o.attachToSession(sessionName)
}

// targetSessionName resolves the session open should attach to: the
// per-Issue session soba-<n> the daemon's Executor actually creates, when
// an Issue number is given; the legacy per-repository name otherwise.
func (o *openCmd) targetSessionName(args []string) (string, error) {
	if len(args) == 0 {
		repository := viper.GetString("github.repository")
		return o.generateSessionName(repository), nil
	}

	issueNumber, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid issue number %q", args[0])
	}
	return fmt.Sprintf("soba-%d", issueNumber), nil
}

func (o *openCmd) generateSessionName(repository string) string {
	if repository == "" {
		return defaultSessionName
	}

	parts := strings.Split(repository, "/")
	if len(parts) < 2 {
		return defaultSessionName
	}

	// 空文字列の部分を除外
	validParts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			validParts = append(validParts, part)
		}
	}

	if len(validParts) < 2 {
		return defaultSessionName
	}

	return defaultSessionName + "-" + strings.Join(validParts, "-")
}

func (o *openCmd) defaultAttachToSession(sessionName string) error {
	cmd := exec.Command("tmux", "attach-session", "-t", sessionName)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
