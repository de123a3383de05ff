package config

const (
	DefaultWorkflowInterval           = 20
	MinWorkflowInterval               = 10
	DefaultClosedIssueCleanupInterval = 300
	DefaultTmuxCommandDelay           = 3
	DefaultWorktreeBasePath           = ".git/soba/worktrees"
	DefaultBaseBranch                 = "main"
	DefaultMetricsAddress             = ":9090"
)