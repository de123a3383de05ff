package git

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"
)

// WorkspaceManager implements spec §4.4's Workspace Manager: one Git
// worktree per Issue, rooted at <base>/issue-<n> on branch
// soba/issue-<n>, created lazily and torn down on merge or staleness.
//
// Concurrent EnsureWorkspace calls for the same Issue number coalesce
// onto a single `git worktree add` via singleflight — two ticks racing
// (e.g. a slow tick overlapping a retry) must not attempt to create the
// same worktree twice.
type WorkspaceManager struct {
	client     *Client
	basePath   string
	baseBranch string
	group      singleflight.Group
}

// NewWorkspaceManager builds a WorkspaceManager layered on an existing Git
// CLI client. basePath defaults to config.DefaultWorktreeBasePath and
// baseBranch to "main" when empty, matching the Scheduler's own defaults.
func NewWorkspaceManager(client *Client, basePath, baseBranch string) *WorkspaceManager {
	if basePath == "" {
		basePath = ".git/soba/worktrees"
	}
	if baseBranch == "" {
		baseBranch = "main"
	}
	return &WorkspaceManager{
		client:     client,
		basePath:   basePath,
		baseBranch: baseBranch,
	}
}

// WorktreePath returns the path an Issue's worktree would live at, whether
// or not it has been created yet.
func (w *WorkspaceManager) WorktreePath(issueNumber int) string {
	return filepath.Join(w.basePath, fmt.Sprintf("issue-%d", issueNumber))
}

// BranchName returns the per-Issue branch name.
func (w *WorkspaceManager) BranchName(issueNumber int) string {
	return fmt.Sprintf("soba/issue-%d", issueNumber)
}

// EnsureWorkspace returns the worktree path for issueNumber, creating it
// from the base branch if it doesn't already exist. Two goroutines calling
// EnsureWorkspace for the same Issue concurrently observe exactly one
// `git worktree add` between them; the second gets the first's result.
func (w *WorkspaceManager) EnsureWorkspace(issueNumber int) (string, error) {
	path := w.WorktreePath(issueNumber)

	v, err, _ := w.group.Do(strconv.Itoa(issueNumber), func() (interface{}, error) {
		if w.client.WorktreeExists(path) {
			return path, nil
		}
		if err := w.client.CreateWorktree(path, w.BranchName(issueNumber), w.baseBranch); err != nil {
			return "", err
		}
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// DestroyWorkspace removes the Issue's worktree, if any, and deletes its
// branch. Branch deletion failure (e.g. unmerged) is tolerated and
// swallowed — the worktree removal is the operation that matters for
// reclaiming disk, and a leftover branch is harmless.
func (w *WorkspaceManager) DestroyWorkspace(issueNumber int) error {
	path := w.WorktreePath(issueNumber)
	if w.client.WorktreeExists(path) {
		if err := w.client.RemoveWorktree(path); err != nil {
			return err
		}
	}
	_ = w.client.DeleteBranch(w.BranchName(issueNumber), false)
	return nil
}

// CleanupStale removes every tracked worktree whose Issue number is not in
// openIssueNumbers. It returns the Issue numbers it removed, for the
// caller to log. Nothing in the daemon calls it: the startup pass does not
// sweep worktrees, and the recurring cleanup sweep removes them one Issue
// at a time instead.
func (w *WorkspaceManager) CleanupStale(openIssueNumbers map[int]bool) ([]int, error) {
	paths, err := w.client.ListWorktrees()
	if err != nil {
		return nil, err
	}

	absBase, err := filepath.Abs(w.basePath)
	if err != nil {
		absBase = w.basePath
	}

	var removed []int
	for _, path := range paths {
		if !strings.HasPrefix(path, absBase) {
			continue // not one of ours (e.g. the primary checkout)
		}

		n, ok := issueNumberFromWorktreePath(path)
		if !ok {
			continue
		}

		if openIssueNumbers[n] {
			continue
		}

		if err := w.client.RemoveWorktree(path); err != nil {
			continue // best-effort: leave it for the next reconciliation pass
		}
		_ = w.client.DeleteBranch(w.BranchName(n), false)
		removed = append(removed, n)
	}

	return removed, nil
}

func issueNumberFromWorktreePath(path string) (int, bool) {
	base := filepath.Base(path)
	const prefix = "issue-"
	if !strings.HasPrefix(base, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
