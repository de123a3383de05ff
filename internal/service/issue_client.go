package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/soba-dev/soba/internal/infra/github"
	"github.com/soba-dev/soba/pkg/errors"
	"github.com/soba-dev/soba/pkg/logging"
)

// GitHubAPI is the subset of the REST transport the service layer depends
// on — the Issue Client port (spec §4.2) and the PR merge loop both build
// on this single seam, so every real GitHub call in the daemon goes
// through one mockable interface.
type GitHubAPI interface {
	ListOpenIssues(ctx context.Context, owner, repo string, opts *github.ListIssuesOptions) ([]github.Issue, bool, error)
	GetIssueLabels(ctx context.Context, owner, repo string, issueNumber int) ([]github.Label, error)
	AddLabelToIssue(ctx context.Context, owner, repo string, issueNumber int, label string) error
	RemoveLabelFromIssue(ctx context.Context, owner, repo string, issueNumber int, label string) error
	CreateComment(ctx context.Context, owner, repo string, issueNumber int, body string) error
	ListPullRequests(ctx context.Context, owner, repo string, opts *github.ListPullRequestsOptions) ([]github.PullRequest, bool, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, bool, error)
	MergePullRequest(ctx context.Context, owner, repo string, number int, req *github.MergeRequest) (*github.MergeResponse, error)
}

// IssueClient is the Issue Client port (spec §4.2): everything the
// Scheduler and Blocking Checker need from the external Issue/PR provider.
type IssueClient interface {
	// ListOpenIssues returns every open Issue in repository with its full
	// label set.
	ListOpenIssues(ctx context.Context, repository string) ([]github.Issue, error)

	// SwapLabel moves an Issue from one trigger/in-progress label to the
	// next. It re-reads the Issue's current labels immediately before
	// acting; if from is not present at that moment it returns a conflict
	// error (pkg/errors.IsConflictError) and makes no change — another
	// actor already won the race.
	SwapLabel(ctx context.Context, repository string, issueNumber int, from, to string) error

	// AddComment posts a comment to the Issue.
	AddComment(ctx context.Context, repository string, issueNumber int, body string) error

	// ListOpenPRsReferencing returns open pull requests that mention the
	// Issue number, for the Blocking Checker's open-PR policy.
	ListOpenPRsReferencing(ctx context.Context, repository string, issueNumber int) ([]github.PullRequest, error)
}

type issueClient struct {
	api    GitHubAPI
	logger logging.Logger
}

// NewIssueClient builds the real Issue Client port over a GitHub REST
// transport. A nil logger discards everything.
func NewIssueClient(api GitHubAPI, logger logging.Logger) IssueClient {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &issueClient{api: api, logger: logger}
}

func (c *issueClient) ListOpenIssues(ctx context.Context, repository string) ([]github.Issue, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	var all []github.Issue
	page := 1
	for {
		issues, hasNext, err := c.api.ListOpenIssues(ctx, owner, repo, &github.ListIssuesOptions{
			State:   "open",
			Page:    page,
			PerPage: 100,
		})
		if err != nil {
			return nil, errors.WrapExternal(err, "failed to list open issues")
		}
		all = append(all, issues...)
		if !hasNext {
			break
		}
		page++
	}

	return all, nil
}

// SwapLabel implements the reference atomicity model from spec §4.2: re-read
// the Issue's labels, confirm from is still present, add to, then remove
// from. If from has already disappeared by the time of the re-read, the
// swap is abandoned as a conflict before any write happens.
func (c *issueClient) SwapLabel(ctx context.Context, repository string, issueNumber int, from, to string) error {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return err
	}

	labels, err := c.api.GetIssueLabels(ctx, owner, repo, issueNumber)
	if err != nil {
		return errors.WrapExternal(err, "failed to read issue labels")
	}

	if !hasLabel(labels, from) {
		return errors.NewConflictError("label swap conflict: issue no longer carries " + from)
	}

	if err := c.api.AddLabelToIssue(ctx, owner, repo, issueNumber, to); err != nil {
		return errors.WrapExternal(err, "failed to add label "+to)
	}

	if err := c.api.RemoveLabelFromIssue(ctx, owner, repo, issueNumber, from); err != nil {
		c.logger.Warn(ctx, "label added but failed to remove prior label, issue now carries both",
			logging.Field{Key: "issue", Value: issueNumber},
			logging.Field{Key: "from", Value: from},
			logging.Field{Key: "to", Value: to},
		)
		return errors.WrapExternal(err, "failed to remove label "+from)
	}

	return nil
}

func (c *issueClient) AddComment(ctx context.Context, repository string, issueNumber int, body string) error {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return err
	}
	if err := c.api.CreateComment(ctx, owner, repo, issueNumber, body); err != nil {
		return errors.WrapExternal(err, "failed to add comment")
	}
	return nil
}

func (c *issueClient) ListOpenPRsReferencing(ctx context.Context, repository string, issueNumber int) ([]github.PullRequest, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	prs, _, err := c.api.ListPullRequests(ctx, owner, repo, &github.ListPullRequestsOptions{
		State:   "open",
		Page:    1,
		PerPage: 100,
	})
	if err != nil {
		return nil, errors.WrapExternal(err, "failed to list open pull requests")
	}

	var referencing []github.PullRequest
	for _, pr := range prs {
		if referencesIssue(pr, issueNumber) {
			referencing = append(referencing, pr)
		}
	}
	return referencing, nil
}

func hasLabel(labels []github.Label, name string) bool {
	for _, l := range labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// referencesIssue matches a PR to an Issue the way GitHub closing keywords
// do: a literal "#<n>" in the title or body. It is a heuristic, not a
// timeline-API cross-reference lookup — good enough for the Blocking
// Checker's open-PR policy, which only needs to know "is some PR associated
// with this Issue still open".
func referencesIssue(pr github.PullRequest, issueNumber int) bool {
	needle := "#" + strconv.Itoa(issueNumber)
	return strings.Contains(pr.Title, needle) || strings.Contains(pr.Body, needle)
}
