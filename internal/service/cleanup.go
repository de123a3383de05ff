package service

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/soba-dev/soba/internal/infra/metrics"
	"github.com/soba-dev/soba/internal/infra/tmux"
	"github.com/soba-dev/soba/pkg/logging"
)

// CleanupService kills tmux sessions soba-<n> and tears down the matching
// Git worktree whose Issue n is no longer open — the recurring half of
// spec §4.7's reconciliation. The scheduler's startup pass only logs
// stale sessions; this loop is what actually removes them and their
// worktrees, on its own configurable interval so a long-running daemon
// doesn't accumulate one session and worktree per closed Issue forever.
type CleanupService struct {
	client     IssueClient
	tmux       tmux.TmuxClient
	workspace  GitWorkspaceManager
	repository string
	enabled    bool
	interval   time.Duration
	logger     logging.Logger
	metrics    *metrics.Collectors
}

// NewCleanupService builds a CleanupService. A nil logger discards
// everything; collectors may be nil to skip metrics; workspace may be nil
// when the daemon isn't configured to manage Git worktrees at all, in
// which case the sweep only kills stale sessions.
func NewCleanupService(client IssueClient, tmuxClient tmux.TmuxClient, workspace GitWorkspaceManager, collectors *metrics.Collectors, logger logging.Logger) *CleanupService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CleanupService{client: client, tmux: tmuxClient, workspace: workspace, metrics: collectors, logger: logger}
}

// Configure updates the target repository and schedule. enabled=false
// makes Start a no-op, matching workflow.closed_issue_cleanup_enabled.
func (s *CleanupService) Configure(repository string, enabled bool, interval time.Duration) {
	s.repository = repository
	s.enabled = enabled
	s.interval = interval
}

// Enabled reports whether the cleanup sweep should be scheduled at all.
func (s *CleanupService) Enabled() bool {
	return s.enabled
}

// Interval is the configured sweep period.
func (s *CleanupService) Interval() time.Duration {
	return s.interval
}

// Run performs one cleanup sweep. It is registered on the scheduler's
// cron clock rather than driving its own ticker, so it shares a single
// clock with the tick loop and the PR merge watcher.
func (s *CleanupService) Run(ctx context.Context) error {
	sessions, err := s.tmux.ListSessions()
	if err != nil {
		return err
	}

	openIssues, err := s.client.ListOpenIssues(ctx, s.repository)
	if err != nil {
		return err
	}
	open := make(map[int]bool, len(openIssues))
	for _, issue := range openIssues {
		open[issue.Number] = true
	}

	for _, session := range sessions {
		issueNumber, ok := parseIssueSession(session)
		if !ok || open[issueNumber] {
			continue
		}

		if !isKillableSession(session) {
			s.logger.Debug(ctx, "refusing to kill session outside test-mode allowlist",
				logging.Field{Key: "session", Value: session},
			)
			continue
		}

		if err := s.tmux.KillSession(session); err != nil {
			s.logger.Warn(ctx, "failed to kill stale session",
				logging.Field{Key: "session", Value: session},
				logging.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		s.logger.Info(ctx, "killed stale session for closed issue",
			logging.Field{Key: "session", Value: session},
			logging.Field{Key: "issue", Value: issueNumber},
		)

		if s.workspace != nil {
			if err := s.workspace.CleanupWorkspace(issueNumber); err != nil {
				s.logger.Warn(ctx, "failed to clean up stale workspace",
					logging.Field{Key: "issue", Value: issueNumber},
					logging.Field{Key: "error", Value: err.Error()},
				)
			}
		}

		if s.metrics != nil {
			s.metrics.StaleSessionsTotal.Inc()
		}
	}

	return nil
}

// isKillableSession enforces spec §8 S6: the cleanup sweep may only ever
// kill sessions under the daemon's reserved "soba-" prefix, and in test
// mode (SOBA_TEST_MODE=true) it narrows that further to "soba-test-"
// names, so a test run can never reach out and kill a real daemon's
// session.
func isKillableSession(session string) bool {
	if !strings.HasPrefix(session, "soba-") {
		return false
	}
	if os.Getenv(envTestMode) == envValueTrue {
		return strings.HasPrefix(session, "soba-test-")
	}
	return true
}
