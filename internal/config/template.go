package config

// TemplateOptions customizes the values `soba init` fills into the
// generated config template — everything else keeps GenerateTemplate's
// defaults.
type TemplateOptions struct {
	Repository string
	LogLevel   string
}

// GenerateTemplate generates the default configuration template for soba
func GenerateTemplate() string {
	return GenerateTemplateWithOptions(nil)
}

// GenerateTemplateWithOptions generates the configuration template for
// `soba init`, substituting the detected repository (and log level, if
// given) into otherwise-default values. opts may be nil.
func GenerateTemplateWithOptions(opts *TemplateOptions) string {
	repository := ""
	logLevel := "info"
	if opts != nil {
		repository = opts.Repository
		if opts.LogLevel != "" {
			logLevel = opts.LogLevel
		}
	}

	return `# GitHub settings
github:
  # Authentication method: 'gh', 'env', or omit for auto-detect
  # Use 'gh' to use GitHub CLI authentication (gh auth token)
  # Use 'env' to use environment variable
  auth_method: gh  # or 'env', or omit for auto-detect

  # Personal Access Token (required when auth_method is 'env' or omitted)
  # Can use environment variable
  # token: ${GITHUB_TOKEN}

  # Target repository (format: owner/repo)
  repository: ` + repository + `

# Workflow settings
workflow:
  # Issue polling interval in seconds (default: 20)
  interval: 20
  # Use tmux for Claude execution (default: true)
  use_tmux: true
  # Enable automatic PR merging (default: true)
  auto_merge_enabled: true
  # Clean up tmux windows for closed issues (default: true)
  closed_issue_cleanup_enabled: true
  # Cleanup interval in seconds (default: 300)
  closed_issue_cleanup_interval: 300
  # Command delay for tmux panes in seconds (default: 3)
  tmux_command_delay: 3

# Slack notifications
slack:
  # Webhook URL for Slack notifications
  # Get your webhook URL from: https://api.slack.com/messaging/webhooks
  webhook_url: ${SLACK_WEBHOOK_URL}
  # Enable notifications for phase starts (default: false)
  notifications_enabled: false

# Git settings
git:
  # Base path for git worktrees
  worktree_base_path: .git/soba/worktrees
  # Auto-setup workspace on phase start (default: true)
  setup_workspace: true

# Blocking checker
blocking:
  # Withhold new plan/queued_to_planning cycles while any PR is open
  # without soba:lgtm or soba:merged (default: false)
  block_on_open_pr: false

# Logging
log:
  level: ` + logLevel + `

# Prometheus metrics endpoint
metrics:
  enabled: false
  address: ':9090'

# Phase commands (optional - for custom Claude commands)
phase:
  plan:
    command: claude
    options:
      - --dangerously-skip-permissions
    parameter: '/soba:plan {{issue-number}}'
  implement:
    command: claude
    options:
      - --dangerously-skip-permissions
    parameter: '/soba:implement {{issue-number}}'
  review:
    command: claude
    options:
      - --dangerously-skip-permissions
    parameter: '/soba:review {{issue-number}}'
  revise:
    command: claude
    options:
      - --dangerously-skip-permissions
    parameter: '/soba:revise {{issue-number}}'
`
}
