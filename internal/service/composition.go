package service

import (
	"context"
	"net/http"
	"time"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/infra/git"
	"github.com/soba-dev/soba/internal/infra/github"
	"github.com/soba-dev/soba/internal/infra/metrics"
	"github.com/soba-dev/soba/internal/infra/slack"
	"github.com/soba-dev/soba/internal/infra/tmux"
	"github.com/soba-dev/soba/pkg/logging"
)

// Runtime bundles every long-lived component `soba start`/`soba stop`/
// `soba status` need, built once from a loaded Config. It is the one
// place that wires the service layer onto its infra.* adapters — callers
// under internal/cli construct a Runtime and call through it rather than
// assembling GitHubAPI/tmux.TmuxClient/etc. themselves.
type Runtime struct {
	Config  *config.Config
	Daemon  DaemonService
	Status  StatusService
	Metrics *metrics.Collectors

	githubClient *github.Client
	tmuxClient   tmux.TmuxClient
}

// NewRuntime wires a Config into a Runtime: a GitHub API client (via the
// gh-cli/env token chain), a tmux client, an optional Git worktree
// manager, an optional Slack notifier, a metrics registry, and the
// Scheduler with the PR-merge and stale-session watchers registered onto
// its cron clock — the latter also tears down the worktree for any
// Issue whose session it kills, when a Git workspace manager is
// configured. workDir is the directory containing .soba/ (the current
// directory for an interactive invocation).
func NewRuntime(workDir string, cfg *config.Config, logger logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var tokenProvider github.TokenProvider
	switch cfg.GitHub.AuthMethod {
	case "gh":
		tokenProvider = github.NewGhCliTokenProvider()
	case "env":
		tokenProvider = github.NewEnvTokenProvider("GITHUB_TOKEN")
	default:
		tokenProvider = github.NewChainTokenProvider(
			github.NewEnvTokenProvider("SOBA_GITHUB_TOKEN"),
			github.NewGhCliTokenProvider(),
			github.NewEnvTokenProvider("GITHUB_TOKEN"),
		)
	}
	githubClient, err := github.NewClient(tokenProvider, &github.ClientOptions{Logger: logger})
	if err != nil {
		return nil, err
	}

	tmuxClient := tmux.NewClient()

	var workspace GitWorkspaceManager
	if cfg.Git.SetupWorkspace {
		gitClient, gitErr := git.NewClient(workDir)
		if gitErr == nil {
			coordinator := git.NewWorkspaceManager(gitClient, cfg.Git.WorktreeBasePath, cfg.Git.BaseBranch)
			workspace = NewGitWorkspaceManager(coordinator)
		} else {
			logger.Warn(context.Background(), "git workspace unavailable, phases requiring a worktree will fail",
				logging.Field{Key: "error", Value: gitErr.Error()})
		}
	}

	var notifier *slack.Notifier
	if cfg.Slack.NotificationsEnabled && cfg.Slack.WebhookURL != "" {
		slackClient := slack.NewClient(cfg.Slack.WebhookURL, 10*time.Second)
		notifier = slack.NewNotifier(slackClient, &cfg.Slack, logger)
	}

	var collectors *metrics.Collectors
	if cfg.Metrics.Enabled {
		collectors = metrics.New()
	}

	issueClient := NewIssueClient(githubClient, logger)
	blocking := NewBlockingChecker(issueClient, cfg.Blocking.BlockOnOpenPR, logger)
	executor := NewExecutor(tmuxClient, workspace, logger)
	scheduler := NewScheduler(workDir, issueClient, blocking, executor, tmuxClient, collectors, logger)

	prMerge := NewPRMergeService(githubClient, notifier, collectors, cfg, logger)
	if cfg.Workflow.AutoMergeEnabled {
		if err := scheduler.RegisterRecurring("pr-merge", prMerge.Interval(), prMerge.Run); err != nil {
			return nil, err
		}
	}

	cleanup := NewCleanupService(issueClient, tmuxClient, workspace, collectors, logger)
	cleanup.Configure(cfg.GitHub.Repository, cfg.Workflow.ClosedIssueCleanupEnabled,
		time.Duration(cfg.Workflow.ClosedIssueCleanupInterval)*time.Second)
	if cleanup.Enabled() {
		if err := scheduler.RegisterRecurring("closed-issue-cleanup", cleanup.Interval(), cleanup.Run); err != nil {
			return nil, err
		}
	}

	return &Runtime{
		Config:       cfg,
		Daemon:       scheduler,
		Status:       NewStatusService(cfg, githubClient, tmuxClient),
		Metrics:      collectors,
		githubClient: githubClient,
		tmuxClient:   tmuxClient,
	}, nil
}

// MetricsHandler returns the HTTP handler for the /metrics endpoint, or
// nil if metrics collection is disabled.
func (r *Runtime) MetricsHandler() http.Handler {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics.Handler()
}
