package service

// GitWorkspaceManager is the Workspace Manager port (spec §4.4) the
// Workflow Executor depends on: one Git worktree per Issue, created
// lazily before a phase that needs a checkout and torn down once the
// Issue is merged, closed, or found stale.
type GitWorkspaceManager interface {
	// PrepareWorkspace ensures issueNumber's worktree exists, creating it
	// from the configured base branch if necessary.
	PrepareWorkspace(issueNumber int) error

	// CleanupWorkspace removes issueNumber's worktree and branch, if any.
	CleanupWorkspace(issueNumber int) error
}

// workspaceCoordinator is the subset of *git.WorkspaceManager this
// adapter depends on — narrow enough to fake in tests without standing
// up a real git repository.
type workspaceCoordinator interface {
	EnsureWorkspace(issueNumber int) (string, error)
	DestroyWorkspace(issueNumber int) error
}

type gitWorkspaceManager struct {
	coordinator workspaceCoordinator
}

// NewGitWorkspaceManager adapts a *git.WorkspaceManager (worktree path,
// branch naming, and EnsureWorkspace coalescing all live there) onto the
// service layer's GitWorkspaceManager port.
func NewGitWorkspaceManager(coordinator workspaceCoordinator) GitWorkspaceManager {
	return &gitWorkspaceManager{coordinator: coordinator}
}

func (g *gitWorkspaceManager) PrepareWorkspace(issueNumber int) error {
	_, err := g.coordinator.EnsureWorkspace(issueNumber)
	return err
}

func (g *gitWorkspaceManager) CleanupWorkspace(issueNumber int) error {
	return g.coordinator.DestroyWorkspace(issueNumber)
}
