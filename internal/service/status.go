package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/infra/github"
	"github.com/soba-dev/soba/internal/infra/tmux"
)

// daemonLogTailLines is the number of trailing daemon-log lines spec §4.7
// requires the status surface to report.
const daemonLogTailLines = 10

// Status is the full snapshot returned by `soba status` (spec §6).
type Status struct {
	Daemon *DaemonStatus
	Tmux   *TmuxStatus
	Issues []IssueStatus
}

// DaemonStatus reports whether the daemon's PID file points at a live
// process (Running), points at a dead one (Stale — process exited without
// cleaning up its PID file), or is simply absent (neither Running nor
// Stale). LogTail holds the last daemonLogTailLines of the daemon's own
// log file, when one could be located.
type DaemonStatus struct {
	Running bool
	Stale   bool
	PID     int
	Uptime  string
	LogTail []string
}

// TmuxStatus lists the per-Issue tmux sessions (soba-<issue-number>) that
// are currently alive.
type TmuxStatus struct {
	Sessions []string
}

// IssueStatus summarizes one Issue soba is tracking.
type IssueStatus struct {
	Number int
	Title  string
	Labels []string
	State  string
}

// StatusService reports the combined daemon/tmux/Issue state.
type StatusService interface {
	GetStatus(ctx context.Context) (*Status, error)
}

type statusService struct {
	cfg          *config.Config
	githubClient GitHubAPI
	tmuxClient   tmux.TmuxClient
}

// NewStatusService builds the status reporter used by `soba status`.
func NewStatusService(cfg *config.Config, githubClient GitHubAPI, tmuxClient tmux.TmuxClient) StatusService {
	return &statusService{
		cfg:          cfg,
		githubClient: githubClient,
		tmuxClient:   tmuxClient,
	}
}

func (s *statusService) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{
		Daemon: s.getDaemonStatus(),
		Tmux:   s.getTmuxStatus(),
	}

	issues, err := s.getIssuesStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues status: %w", err)
	}
	status.Issues = issues

	return status, nil
}

func (s *statusService) getDaemonStatus() *DaemonStatus {
	status := &DaemonStatus{Running: false}

	pidData, err := os.ReadFile(filepath.Join(".soba", "soba.pid"))
	if err != nil {
		// No PID file at all: absent, not stale.
		return status
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return status
	}

	status.PID = pid
	status.LogTail = readLastLines(daemonLogPath(pid), daemonLogTailLines)

	process, err := os.FindProcess(pid)
	if err != nil {
		status.Stale = true
		return status
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		// PID file present but the process it names is gone: stale.
		status.Stale = true
		return status
	}

	status.Running = true
	status.Uptime = s.getProcessUptime(pid)

	return status
}

// daemonLogPath mirrors config.setDefaults' default Log.OutputPath.
func daemonLogPath(pid int) string {
	return filepath.Join(".soba", "logs", fmt.Sprintf("soba-%d.log", pid))
}

// readLastLines returns up to n trailing lines of path, or nil if the file
// can't be read — a missing or unreadable log is not itself an error for
// status reporting.
func readLastLines(path string, n int) []string {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if scanner.Err() != nil {
		return nil
	}
	return lines
}

// getProcessUptime shells out to ps since neither os nor syscall expose a
// process start time portably.
func (s *statusService) getProcessUptime(pid int) string {
	// #nosec G204 - pid comes from our own PID file, not user input
	cmd := exec.Command("ps", "-o", "etime=", "-p", strconv.Itoa(pid))
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	etime := strings.TrimSpace(string(output))
	if etime == "" {
		return ""
	}
	return formatElapsedTime(etime)
}

// formatElapsedTime turns ps's DD-HH:MM:SS into "<n>d HH:MM:SS"; the
// shorter HH:MM:SS and MM:SS forms are returned unchanged.
func formatElapsedTime(etime string) string {
	if parts := strings.SplitN(etime, "-", 2); len(parts) == 2 {
		return fmt.Sprintf("%sd %s", parts[0], parts[1])
	}
	return etime
}

// getTmuxStatus lists the live per-Issue sessions (soba-<n>); sessions that
// don't match the naming scheme (left over from a prior run, or created by
// hand) are not soba's to report on and are skipped.
func (s *statusService) getTmuxStatus() *TmuxStatus {
	sessions, err := s.tmuxClient.ListSessions()
	if err != nil {
		return &TmuxStatus{}
	}

	var owned []string
	for _, session := range sessions {
		if _, ok := parseIssueSession(session); ok {
			owned = append(owned, session)
		}
	}

	return &TmuxStatus{Sessions: owned}
}

// getIssuesStatus reports open Issues that carry a soba: workflow label,
// using the label itself to show which phase the Issue is in.
func (s *statusService) getIssuesStatus(ctx context.Context) ([]IssueStatus, error) {
	owner, repo, err := splitRepository(s.cfg.GitHub.Repository)
	if err != nil {
		return nil, err
	}

	var statuses []IssueStatus
	page := 1
	for {
		issues, hasNext, err := s.githubClient.ListOpenIssues(ctx, owner, repo, &github.ListIssuesOptions{
			State:   "open",
			Page:    page,
			PerPage: 100,
		})
		if err != nil {
			return nil, err
		}

		for _, issue := range issues {
			if status, ok := issueStatusFromLabels(issue); ok {
				statuses = append(statuses, status)
			}
		}

		if !hasNext {
			break
		}
		page++
	}

	return statuses, nil
}

func issueStatusFromLabels(issue github.Issue) (IssueStatus, bool) {
	labelNames := make([]string, len(issue.Labels))
	state := ""
	for i, label := range issue.Labels {
		labelNames[i] = label.Name
		if state == "" && strings.HasPrefix(label.Name, "soba:") {
			state = label.Name
		}
	}

	if state == "" {
		return IssueStatus{}, false
	}

	return IssueStatus{
		Number: issue.Number,
		Title:  issue.Title,
		Labels: labelNames,
		State:  state,
	}, true
}
