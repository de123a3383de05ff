package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/domain"
	"github.com/soba-dev/soba/internal/infra/tmux"
	"github.com/soba-dev/soba/pkg/logging"
)

const (
	DefaultMaxPanes = 3
)

// Executor runs the command side of a phase (spec §4.6): it never touches
// Issue labels — that is the Scheduler's job, which swaps the label before
// calling Execute and rolls the swap back if Execute returns an error. The
// Executor's only contract is "get phaseDef's command running in the
// Issue's tmux session, or return an error before anything was started".
type Executor interface {
	// Execute starts phase's command for issueNumber in its own tmux
	// session and returns once the command has been sent — it does not
	// wait for the command to finish.
	Execute(ctx context.Context, cfg *config.Config, issueNumber int, phase domain.Phase) error
}

type executor struct {
	tmux      tmux.TmuxClient
	workspace GitWorkspaceManager
	logger    logging.Logger
	maxPanes  int
}

// NewExecutor builds the real Executor over a tmux session driver and an
// optional workspace manager (nil skips worktree preparation entirely).
func NewExecutor(tmuxClient tmux.TmuxClient, workspace GitWorkspaceManager, logger logging.Logger) Executor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &executor{
		tmux:      tmuxClient,
		workspace: workspace,
		logger:    logger,
		maxPanes:  DefaultMaxPanes,
	}
}

// sessionName is the spec §3/§4.6 per-Issue tmux session: one Issue, one
// session, for the life of that Issue's cycle. This intentionally departs
// from a single shared "soba" session — per-Issue sessions are what let
// the cleanup-stale pass (spec §8 S6) kill exactly the sessions whose
// Issues have closed, without touching sessions for Issues still in flight.
func sessionName(issueNumber int) string {
	return fmt.Sprintf("soba-%d", issueNumber)
}

func (e *executor) Execute(ctx context.Context, cfg *config.Config, issueNumber int, phase domain.Phase) error {
	phaseDef := domain.PhaseDefinitions[string(phase)]
	if phaseDef == nil {
		return NewWorkflowExecutionError("soba", string(phase), "phase not defined")
	}

	runID := uuid.NewString()

	e.logger.Info(ctx, "executing phase",
		logging.Field{Key: "runID", Value: runID},
		logging.Field{Key: "issue", Value: issueNumber},
		logging.Field{Key: "phase", Value: string(phase)},
	)

	switch phaseDef.ExecutionType {
	case domain.ExecutionTypeLabelOnly:
		e.logger.Debug(ctx, "label-only phase, nothing to execute",
			logging.Field{Key: "runID", Value: runID},
			logging.Field{Key: "issue", Value: issueNumber},
			logging.Field{Key: "phase", Value: string(phase)},
		)
		return nil
	case domain.ExecutionTypeCommand:
		return e.executeCommandPhase(ctx, cfg, issueNumber, phase, phaseDef, runID)
	default:
		return NewWorkflowExecutionError("soba", string(phase), fmt.Sprintf("unknown execution type: %s", phaseDef.ExecutionType))
	}
}

func (e *executor) executeCommandPhase(ctx context.Context, cfg *config.Config, issueNumber int, phase domain.Phase, phaseDef *domain.PhaseDefinition, runID string) error {
	if err := e.prepareWorkspaceIfNeeded(ctx, issueNumber, phaseDef, runID); err != nil {
		return err
	}

	session := sessionName(issueNumber)
	windowName := string(phase)

	windowCreated, err := e.setupTmuxSession(ctx, session, windowName, runID)
	if err != nil {
		return err
	}

	// A freshly created window already has one pane; only manage (rotate,
	// cap, resize) panes in a window that already existed.
	if phaseDef.RequiresPane && !windowCreated {
		if err := e.managePane(ctx, session, windowName); err != nil {
			return err
		}
	}

	if windowCreated {
		e.captureSessionLog(ctx, session, windowName, issueNumber, runID)
	}

	return e.executeCommand(ctx, cfg, issueNumber, phase, session, windowName, runID)
}

func (e *executor) prepareWorkspaceIfNeeded(ctx context.Context, issueNumber int, phaseDef *domain.PhaseDefinition, runID string) error {
	if !phaseDef.RequiresWorktree || e.workspace == nil {
		return nil
	}

	e.logger.Info(ctx, "preparing workspace",
		logging.Field{Key: "runID", Value: runID},
		logging.Field{Key: "issue", Value: issueNumber},
	)
	if err := e.workspace.PrepareWorkspace(issueNumber); err != nil {
		return WrapServiceError(err, "failed to prepare workspace")
	}
	return nil
}

// setupTmuxSession creates session and windowName if either is missing,
// reporting whether the window was newly created.
func (e *executor) setupTmuxSession(ctx context.Context, session, windowName, runID string) (bool, error) {
	if !e.tmux.SessionExists(session) {
		if err := e.tmux.CreateSession(session); err != nil {
			return false, NewTmuxManagementError("create session", session, err.Error())
		}
		e.logger.Debug(ctx, "created tmux session",
			logging.Field{Key: "runID", Value: runID},
			logging.Field{Key: "session", Value: session},
		)
	}

	exists, err := e.tmux.WindowExists(session, windowName)
	if err != nil {
		return false, NewTmuxManagementError("check window", windowName, err.Error())
	}

	if exists {
		return false, nil
	}

	if err := e.tmux.CreateWindow(session, windowName); err != nil {
		return false, NewTmuxManagementError("create window", windowName, err.Error())
	}
	e.logger.Debug(ctx, "created tmux window",
		logging.Field{Key: "runID", Value: runID},
		logging.Field{Key: "session", Value: session},
		logging.Field{Key: "window", Value: windowName},
	)
	return true, nil
}

// sessionLogPath is the captured stdout/stderr of Issue n's tmux session
// (spec §4.3, persisted-state layout: a per-session log, one per Issue).
func sessionLogPath(issueNumber int) string {
	return fmt.Sprintf(".soba/sessions/%s.log", sessionName(issueNumber))
}

// captureSessionLog pipes a freshly created window's first pane to its
// session log file. A failure here never aborts the phase: losing the log
// capture is a monitoring gap, not a reason to fail the Issue's transition.
func (e *executor) captureSessionLog(ctx context.Context, session, windowName string, issueNumber int, runID string) {
	if err := e.tmux.PipePane(session, windowName, 0, sessionLogPath(issueNumber)); err != nil {
		e.logger.Warn(ctx, "failed to capture session log",
			logging.Field{Key: "runID", Value: runID},
			logging.Field{Key: "issue", Value: issueNumber},
			logging.Field{Key: "error", Value: err.Error()},
		)
	}
}

func (e *executor) executeCommand(ctx context.Context, cfg *config.Config, issueNumber int, phase domain.Phase, session, windowName, runID string) error {
	phaseCommand := getPhaseCommand(cfg, phase)
	command := buildCommand(phaseCommand, issueNumber)

	if command == "" {
		e.logger.Info(ctx, "no command defined for phase, skipping execution",
			logging.Field{Key: "runID", Value: runID},
			logging.Field{Key: "issue", Value: issueNumber},
			logging.Field{Key: "phase", Value: string(phase)},
		)
		return nil
	}

	paneIndex, err := e.tmux.GetLastPaneIndex(session, windowName)
	if err != nil {
		return NewTmuxManagementError("get pane index", windowName, err.Error())
	}

	if requiresWorktree(phase) {
		worktreeDir := fmt.Sprintf("%s/issue-%d", cfg.Git.WorktreeBasePath, issueNumber)
		command = fmt.Sprintf("cd %s && %s", worktreeDir, command)
	}

	e.waitForPaneReady(ctx, cfg, issueNumber)

	if err := e.tmux.SendCommand(session, windowName, paneIndex, command); err != nil {
		return NewCommandExecutionError(command, string(phase), issueNumber, err.Error())
	}

	e.logger.Info(ctx, "command sent",
		logging.Field{Key: "runID", Value: runID},
		logging.Field{Key: "issue", Value: issueNumber},
		logging.Field{Key: "phase", Value: string(phase)},
		logging.Field{Key: "command", Value: command},
	)
	return nil
}

// waitForPaneReady gives the shell inside a freshly created pane time to
// finish its rc-file startup before a command is piped in; without it,
// fast-start commands can land before the shell is reading stdin.
func (e *executor) waitForPaneReady(ctx context.Context, cfg *config.Config, issueNumber int) {
	if cfg.Workflow.TmuxCommandDelay <= 0 {
		return
	}
	delay := time.Duration(cfg.Workflow.TmuxCommandDelay) * time.Second
	e.logger.Debug(ctx, "waiting for tmux pane to be ready",
		logging.Field{Key: "delay", Value: delay},
		logging.Field{Key: "issue", Value: issueNumber},
	)
	time.Sleep(delay)
}

func requiresWorktree(phase domain.Phase) bool {
	phaseDef := domain.PhaseDefinitions[string(phase)]
	return phaseDef != nil && phaseDef.RequiresWorktree
}

// managePane keeps windowName under e.maxPanes panes: if the cap is
// already reached it kills the oldest pane before creating a new one, then
// resizes so the new pane is usable immediately.
func (e *executor) managePane(ctx context.Context, session, windowName string) error {
	paneCount, err := e.tmux.GetPaneCount(session, windowName)
	if err != nil {
		return NewTmuxManagementError("get pane count", windowName, err.Error())
	}

	if paneCount >= e.maxPanes {
		firstPaneIndex, err := e.tmux.GetFirstPaneIndex(session, windowName)
		if err != nil {
			return NewTmuxManagementError("get first pane index", windowName, err.Error())
		}
		if err := e.tmux.DeletePane(session, windowName, firstPaneIndex); err != nil {
			return NewTmuxManagementError("delete pane", windowName, err.Error())
		}
		e.logger.Debug(ctx, "deleted oldest pane",
			logging.Field{Key: "session", Value: session},
			logging.Field{Key: "window", Value: windowName},
			logging.Field{Key: "index", Value: firstPaneIndex},
		)
	}

	if err := e.tmux.CreatePane(session, windowName); err != nil {
		return NewTmuxManagementError("create pane", windowName, err.Error())
	}
	if err := e.tmux.ResizePanes(session, windowName); err != nil {
		return NewTmuxManagementError("resize panes", windowName, err.Error())
	}
	return nil
}

// buildCommand renders a config.PhaseCommand into a shell command string,
// substituting the {{issue-number}} placeholder (and the legacy
// {issue_number} spelling) into the quoted parameter.
func buildCommand(phaseCommand config.PhaseCommand, issueNumber int) string {
	parts := []string{phaseCommand.Command}
	parts = append(parts, phaseCommand.Options...)

	if phaseCommand.Parameter != "" {
		param := phaseCommand.Parameter
		param = strings.ReplaceAll(param, "{{issue-number}}", strconv.Itoa(issueNumber))
		param = strings.ReplaceAll(param, "{issue_number}", strconv.Itoa(issueNumber))
		param = `"` + param + `"`
		parts = append(parts, param)
	}

	return strings.Join(parts, " ")
}

func getPhaseCommand(cfg *config.Config, phase domain.Phase) config.PhaseCommand {
	switch phase {
	case domain.PhaseQueuedToPlanning:
		return cfg.Phase.Plan
	case domain.PhasePlan:
		return cfg.Phase.Plan
	case domain.PhaseImplement:
		return cfg.Phase.Implement
	case domain.PhaseReview:
		return cfg.Phase.Review
	case domain.PhaseRevise:
		return cfg.Phase.Revise
	default:
		return config.PhaseCommand{}
	}
}
