package service

import (
	"context"

	"github.com/soba-dev/soba/internal/domain"
	"github.com/soba-dev/soba/internal/infra/github"
	"github.com/soba-dev/soba/pkg/logging"
)

// BlockingChecker implements the pure predicate of spec §4.5:
// may_start_new_cycle(issues) → bool, evaluated once per tick before the
// Scheduler picks a plan/queued_to_planning candidate. It never blocks
// implement, review, or revise — those advance work already in flight.
type BlockingChecker struct {
	client        IssueClient
	blockOnOpenPR bool
	logger        logging.Logger
}

// NewBlockingChecker builds a BlockingChecker. blockOnOpenPR mirrors
// config.BlockingConfig.BlockOnOpenPR.
func NewBlockingChecker(client IssueClient, blockOnOpenPR bool, logger logging.Logger) *BlockingChecker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BlockingChecker{client: client, blockOnOpenPR: blockOnOpenPR, logger: logger}
}

// MayStartNewCycle reports whether the Scheduler may begin a new
// plan/queued_to_planning cycle this tick, given the full open-Issue
// snapshot for repository.
func (b *BlockingChecker) MayStartNewCycle(ctx context.Context, repository string, issues []github.Issue) (bool, error) {
	for _, issue := range issues {
		if domain.IsInProgress(labelNames(issue.Labels)) {
			b.logger.Debug(ctx, "blocking new cycle: issue in progress",
				logging.Field{Key: "issue", Value: issue.Number},
			)
			return false, nil
		}
	}

	if !b.blockOnOpenPR {
		return true, nil
	}

	for _, issue := range issues {
		prs, err := b.client.ListOpenPRsReferencing(ctx, repository, issue.Number)
		if err != nil {
			return false, err
		}
		for _, pr := range prs {
			if !hasAnyLabel(pr.Labels, domain.LabelLGTM, domain.LabelMerged) {
				b.logger.Debug(ctx, "blocking new cycle: open PR unresolved",
					logging.Field{Key: "issue", Value: issue.Number},
					logging.Field{Key: "pr", Value: pr.Number},
				)
				return false, nil
			}
		}
	}

	return true, nil
}

func labelNames(labels []github.Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func hasAnyLabel(labels []github.Label, names ...string) bool {
	for _, l := range labels {
		for _, n := range names {
			if l.Name == n {
				return true
			}
		}
	}
	return false
}
