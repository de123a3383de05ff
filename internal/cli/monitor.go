package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	sessionLogDir            = "sessions"
	defaultMonitorCleanupAge = 7 // days
)

func newMonitorCmd() *cobra.Command {
	var followLogFlag bool
	var list bool
	var cleanupDays int

	cmd := &cobra.Command{
		Use:   "monitor [<issue-number>]",
		Short: "Attach to or list per-Issue session logs",
		Long: `Inspect the tmux session logs soba captures per Issue under
.soba/sessions/soba-<n>.log (spec's persisted-state layout).

With an Issue number and no other flags, tails that Issue's session log.
--follow-log follows it like tail -f.
--list lists every captured session log instead of tailing one.
--cleanup [days] removes session logs older than the given number of days
(default 7) and exits; bare --cleanup uses the default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, args, followLogFlag, list, cleanupDays)
		},
	}

	cmd.Flags().BoolVar(&followLogFlag, "follow-log", false, "follow the session log output")
	cmd.Flags().BoolVar(&list, "list", false, "list captured session logs")
	cmd.Flags().IntVar(&cleanupDays, "cleanup", defaultMonitorCleanupAge, "remove session logs older than N days and exit")
	cmd.Flags().Lookup("cleanup").NoOptDefVal = strconv.Itoa(defaultMonitorCleanupAge)

	return cmd
}

// runMonitor never returns a non-nil error for ordinary "nothing to show"
// cases — spec's CLI table gives monitor a single exit code (0) across all
// its forms, so unexpected input is reported on stderr and swallowed here.
func runMonitor(cmd *cobra.Command, args []string, follow, list bool, cleanupDays int) error {
	if cmd.Flags().Changed("cleanup") {
		return runMonitorCleanup(cmd, cleanupDays)
	}

	if list {
		return runMonitorList(cmd)
	}

	if len(args) == 0 {
		return runMonitorList(cmd)
	}

	issueNumber, err := strconv.Atoi(args[0])
	if err != nil {
		cmd.PrintErrf("invalid issue number %q\n", args[0])
		return nil
	}

	logPath := sessionLogPath(issueNumber)
	if _, err := os.Stat(logPath); err != nil {
		cmd.PrintErrf("no session log found at %s\n", logPath)
		return nil
	}

	if follow {
		return followLog(cmd, logPath)
	}
	return tailLog(cmd, logPath, 30)
}

// runMonitorList lists every *.log file under .soba/sessions, one per line.
func runMonitorList(cmd *cobra.Command) error {
	entries, err := os.ReadDir(filepath.Join(".soba", sessionLogDir))
	if err != nil {
		if os.IsNotExist(err) {
			cmd.Println("No session logs captured yet")
			return nil
		}
		cmd.PrintErrf("failed to list session logs: %v\n", err)
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		cmd.Println("No session logs captured yet")
		return nil
	}

	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

// runMonitorCleanup removes session logs whose mtime is older than days.
func runMonitorCleanup(cmd *cobra.Command, days int) error {
	if days <= 0 {
		days = defaultMonitorCleanupAge
	}
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	dir := filepath.Join(".soba", sessionLogDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			cmd.Printf("removed 0 session log(s) older than %d days\n", days)
			return nil
		}
		cmd.PrintErrf("failed to read session log directory: %v\n", err)
		return nil
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	cmd.Printf("removed %d session log(s) older than %d days\n", removed, days)
	return nil
}

// sessionLogPath mirrors service.sessionLogPath: the captured stdout/stderr
// of Issue n's tmux session (spec §4.3, persisted-state layout).
func sessionLogPath(issueNumber int) string {
	return filepath.Join(".soba", sessionLogDir, fmt.Sprintf("soba-%d.log", issueNumber))
}
