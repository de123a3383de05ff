package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/domain"
	"github.com/soba-dev/soba/internal/infra/github"
	"github.com/soba-dev/soba/internal/infra/metrics"
	"github.com/soba-dev/soba/internal/infra/slack"
	"github.com/soba-dev/soba/pkg/logging"
)

// PRMergeService watches for pull requests carrying soba:lgtm and squash-
// merges them — the auto-merge half of spec §4's lifecycle, running
// alongside the Scheduler on its own tick.
type PRMergeService struct {
	api      GitHubAPI
	notifier *slack.Notifier
	config   *config.Config
	interval time.Duration
	logger   logging.Logger
	metrics  *metrics.Collectors
}

// NewPRMergeService builds a PRMergeService. notifier and collectors may
// both be nil to skip Slack notifications and metrics, respectively.
func NewPRMergeService(api GitHubAPI, notifier *slack.Notifier, collectors *metrics.Collectors, cfg *config.Config, logger logging.Logger) *PRMergeService {
	if cfg.Workflow.Interval <= 0 {
		cfg.Workflow.Interval = 20
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PRMergeService{
		api:      api,
		notifier: notifier,
		config:   cfg,
		interval: time.Duration(cfg.Workflow.Interval) * time.Second,
		logger:   logger,
		metrics:  collectors,
	}
}

// Interval is the configured watch period.
func (m *PRMergeService) Interval() time.Duration {
	return m.interval
}

// Run performs one merge-watch cycle. It is registered on the
// scheduler's cron clock rather than driving its own ticker, so it
// shares a single clock with the tick loop and the cleanup sweep.
func (m *PRMergeService) Run(ctx context.Context) error {
	owner, repo, err := splitRepository(m.config.GitHub.Repository)
	if err != nil {
		return err
	}

	prs, _, err := m.api.ListPullRequests(ctx, owner, repo, &github.ListPullRequestsOptions{
		State:   "open",
		Page:    1,
		PerPage: 100,
	})
	if err != nil {
		return err
	}

	for _, pr := range prs {
		if !hasAnyLabel(pr.Labels, domain.LabelLGTM) {
			continue
		}
		if err := m.mergePullRequest(ctx, owner, repo, pr); err != nil {
			m.logger.Error(ctx, "failed to merge PR",
				logging.Field{Key: "number", Value: pr.Number},
				logging.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	return nil
}

// mergePullRequest squash-merges pr once it is confirmed clean. GitHub
// computes mergeable_state asynchronously — an empty state means "still
// computing", so this re-fetches the PR up to three times before giving
// up for this tick.
func (m *PRMergeService) mergePullRequest(ctx context.Context, owner, repo string, pr github.PullRequest) error {
	for attempt := 0; pr.MergeableState == "" && attempt < 3; attempt++ {
		detailed, _, err := m.api.GetPullRequest(ctx, owner, repo, pr.Number)
		if err != nil {
			return err
		}
		pr = *detailed
		if pr.MergeableState != "" {
			break
		}
		time.Sleep(2 * time.Second)
	}

	if !pr.Mergeable || pr.MergeableState != "clean" {
		m.logger.Debug(ctx, "PR not yet mergeable",
			logging.Field{Key: "number", Value: pr.Number},
			logging.Field{Key: "mergeableState", Value: pr.MergeableState},
		)
		return nil
	}

	resp, err := m.api.MergePullRequest(ctx, owner, repo, pr.Number, &github.MergeRequest{
		CommitTitle: fmt.Sprintf("feat: %s (#%d)", pr.Title, pr.Number),
		MergeMethod: "squash",
	})
	if err != nil {
		return err
	}

	if !resp.Merged {
		m.logger.Warn(ctx, "PR merge reported unsuccessful",
			logging.Field{Key: "number", Value: pr.Number},
			logging.Field{Key: "message", Value: resp.Message},
		)
		return nil
	}

	m.logger.Info(ctx, "merged PR",
		logging.Field{Key: "number", Value: pr.Number},
		logging.Field{Key: "sha", Value: resp.SHA},
	)

	if m.metrics != nil {
		m.metrics.PRsMergedTotal.Inc()
	}

	if m.notifier != nil {
		issueNumber := extractIssueNumber(pr.Title)
		if err := m.notifier.NotifyPRMerged(pr.Number, issueNumber); err != nil {
			m.logger.Warn(ctx, "failed to send merge notification", logging.Field{Key: "error", Value: err.Error()})
		}
	}

	return nil
}

// extractIssueNumber pulls the "(#n)" suffix soba writes into PR titles
// when it opens them, so the merge notification can reference the Issue.
func extractIssueNumber(title string) int {
	parts := strings.Split(title, "(#")
	if len(parts) < 2 {
		return 0
	}
	numberPart := strings.Split(parts[1], ")")[0]
	n, err := strconv.Atoi(numberPart)
	if err != nil {
		return 0
	}
	return n
}
