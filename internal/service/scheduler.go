package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/domain"
	"github.com/soba-dev/soba/internal/infra/github"
	"github.com/soba-dev/soba/internal/infra/metrics"
	"github.com/soba-dev/soba/internal/infra/tmux"
	"github.com/soba-dev/soba/pkg/errors"
	"github.com/soba-dev/soba/pkg/logging"
)

// tickOrder is the fixed bucket-priority order of spec §4.7 step 4: one
// candidate (lowest Issue number) is picked per phase per tick, in this
// order. PhaseQueuedToPlanning and PhasePlan are the two buckets the
// Blocking Checker is allowed to suppress.
var tickOrder = []domain.Phase{
	domain.PhaseQueuedToPlanning,
	domain.PhasePlan,
	domain.PhaseImplement,
	domain.PhaseReview,
	domain.PhaseRevise,
}

// DaemonService is the scheduler's external contract: start in the
// foreground or as a detached background process, report whether an
// instance is already running, and stop a running instance.
type DaemonService interface {
	StartForeground(ctx context.Context, cfg *config.Config) error
	StartDaemon(ctx context.Context, cfg *config.Config) error
	IsRunning() bool
	Stop(ctx context.Context, repository string) error

	// RegisterRecurring adds another named watcher (PR auto-merge,
	// stale-session cleanup) onto the scheduler's own cron clock. Call
	// before StartForeground/StartDaemon.
	RegisterRecurring(name string, interval time.Duration, fn func(ctx context.Context) error) error
}

// Scheduler is the tick loop of spec §4.7: list Issues, bucket by phase,
// consult the Blocking Checker, swap one label per eligible bucket, and
// hand the winner to the Executor — rolling the swap back on executor
// failure, skipping on swap conflict.
type scheduler struct {
	workDir  string
	client   IssueClient
	blocking *BlockingChecker
	executor Executor
	tmux     tmux.TmuxClient
	logger   logging.Logger
	cron     *cron.Cron
	metrics  *metrics.Collectors

	cfg      *config.Config
	interval time.Duration
}

// NewScheduler builds the daemon scheduler. cfg may be replaced later via
// Configure (the foreground/daemon entry points load it after flags are
// parsed). The underlying cron.Cron is exposed via RegisterRecurring so
// the composition root can run the PR auto-merge and stale-session
// cleanup watchers as named entries on the same clock instead of three
// independent time.Ticker loops. collectors may be nil to skip metrics
// entirely.
func NewScheduler(workDir string, client IssueClient, blocking *BlockingChecker, executor Executor, tmuxClient tmux.TmuxClient, collectors *metrics.Collectors, logger logging.Logger) DaemonService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &scheduler{
		workDir:  workDir,
		client:   client,
		blocking: blocking,
		executor: executor,
		tmux:     tmuxClient,
		logger:   logger,
		cron:     cron.New(),
		metrics:  collectors,
	}
}

// RegisterRecurring adds fn as a named cron entry running every interval.
// It must be called before StartForeground/StartDaemon, which starts the
// shared cron clock. Failures from fn are logged under name and otherwise
// swallowed — one watcher misfiring must not interrupt the others.
func (s *scheduler) RegisterRecurring(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	seconds := int(interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTickTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error(ctx, "recurring job failed",
				logging.Field{Key: "job", Value: name},
				logging.Field{Key: "error", Value: err.Error()},
			)
		}
	})
	if err != nil {
		return errors.WrapInternal(err, "failed to register "+name+" job")
	}
	return nil
}

func (s *scheduler) Configure(cfg *config.Config) {
	s.cfg = cfg
	interval := cfg.Workflow.Interval
	if interval < 10 {
		interval = 20
	}
	s.interval = time.Duration(interval) * time.Second
}

const (
	pidFileName          = "soba.pid"
	envBackgroundProcess = "SOBA_BACKGROUND_PROCESS"
	envTestMode          = "SOBA_TEST_MODE"
	envValueTrue         = "true"
	defaultTickTimeout   = 30 * time.Second
)

func (s *scheduler) pidFilePath() string {
	return filepath.Join(s.workDir, ".soba", pidFileName)
}

// StartForeground runs startup reconciliation and the tick loop without
// forking, logging to stdout as well as the configured log file.
func (s *scheduler) StartForeground(ctx context.Context, cfg *config.Config) error {
	s.Configure(cfg)
	if err := s.reconcileOnStartup(ctx); err != nil {
		s.logger.Warn(ctx, "startup reconciliation failed", logging.Field{Key: "error", Value: err.Error()})
	}
	return s.runTickLoop(ctx)
}

// StartDaemon implements spec §4.7's startup sequence: refuse if a live
// PID file exists, fork a detached background process on first entry, and
// run the tick loop in the child after writing the PID file.
func (s *scheduler) StartDaemon(ctx context.Context, cfg *config.Config) error {
	s.Configure(cfg)

	if s.IsRunning() {
		return errors.NewConflictError("daemon is already running")
	}

	if os.Getenv(envBackgroundProcess) != envValueTrue {
		return s.forkAndExit()
	}

	if err := os.MkdirAll(filepath.Join(s.workDir, ".soba"), 0755); err != nil {
		return errors.WrapInternal(err, "failed to create .soba directory")
	}
	if err := s.writePIDFile(); err != nil {
		return err
	}

	if err := s.reconcileOnStartup(ctx); err != nil {
		s.logger.Warn(ctx, "startup reconciliation failed", logging.Field{Key: "error", Value: err.Error()})
	}

	s.logger.Info(ctx, "daemon started", logging.Field{Key: "pid", Value: os.Getpid()})
	return s.runTickLoop(ctx)
}

func (s *scheduler) forkAndExit() error {
	if os.Getenv(envTestMode) == envValueTrue {
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return errors.WrapInternal(err, "failed to get executable path")
	}

	cmd := exec.Command(execPath, os.Args[1:]...)
	cmd.Env = append(os.Environ(), envBackgroundProcess+"="+envValueTrue)
	cmd.SysProcAttr = getSysProcAttr()

	if devNull, err := os.Open(os.DevNull); err == nil {
		defer devNull.Close()
		cmd.Stdin = devNull
		cmd.Stdout = devNull
		cmd.Stderr = devNull
	}

	if err := cmd.Start(); err != nil {
		return errors.WrapInternal(err, "failed to start background process")
	}

	os.Exit(0)
	return nil
}

// reconcileOnStartup implements spec §4.7 step 5: every tmux session
// named "soba-<n>" whose Issue n is closed, merged, or no longer exists
// is logged as a cleanup candidate. It does not kill anything — the
// Closed Issue Cleanup loop owns that, on its own schedule.
func (s *scheduler) reconcileOnStartup(ctx context.Context) error {
	if s.tmux == nil || s.client == nil || s.cfg == nil {
		return nil
	}

	sessions, err := s.tmux.ListSessions()
	if err != nil {
		return errors.WrapExternal(err, "failed to list tmux sessions")
	}

	openIssues, err := s.client.ListOpenIssues(ctx, s.cfg.GitHub.Repository)
	if err != nil {
		return errors.WrapExternal(err, "failed to list open issues")
	}
	open := make(map[int]bool, len(openIssues))
	for _, issue := range openIssues {
		open[issue.Number] = true
	}

	for _, session := range sessions {
		n, ok := parseIssueSession(session)
		if !ok {
			continue
		}
		if !open[n] {
			s.logger.Info(ctx, "stale tmux session marked for cleanup",
				logging.Field{Key: "session", Value: session},
				logging.Field{Key: "issue", Value: n},
			)
		}
	}

	return nil
}

// parseIssueSession extracts n from a "soba-<n>" session name.
func parseIssueSession(session string) (int, bool) {
	const prefix = "soba-"
	if !strings.HasPrefix(session, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(session, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// runTickLoop drives spec §4.7's tick loop at s.interval until ctx is
// cancelled (SIGTERM/SIGINT translate to context cancellation upstream).
// The tick itself runs once immediately, then as a named "tick" entry on
// the shared cron clock alongside whatever RegisterRecurring added.
func (s *scheduler) runTickLoop(ctx context.Context) error {
	if err := s.tick(ctx); err != nil {
		s.logger.Error(ctx, "tick failed", logging.Field{Key: "error", Value: err.Error()})
	}

	if err := s.RegisterRecurring("tick", s.interval, s.tick); err != nil {
		return err
	}

	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.logger.Info(ctx, "scheduler stopped")
	_ = s.removePIDFile()
	return nil
}

// tick implements spec §4.7's six numbered steps for a single pass.
func (s *scheduler) tick(parent context.Context) (err error) {
	if s.metrics != nil {
		s.metrics.TicksTotal.Inc()
		defer func() {
			if err != nil {
				s.metrics.TickFailuresTotal.Inc()
			}
		}()
	}

	ctx, cancel := context.WithTimeout(parent, defaultTickTimeout)
	defer cancel()

	issues, err := s.client.ListOpenIssues(ctx, s.cfg.GitHub.Repository)
	if err != nil {
		return errors.WrapExternal(err, "failed to list open issues")
	}

	buckets := make(map[domain.Phase][]github.Issue)
	activeCount := 0
	for _, issue := range issues {
		names := labelNames(issue.Labels)
		phase := domain.DeterminePhase(names)
		if phase == domain.PhaseNone {
			if domain.IsInProgress(names) {
				activeCount++
			}
			continue
		}
		buckets[phase] = append(buckets[phase], issue)
		activeCount++
	}
	if s.metrics != nil {
		s.metrics.ActiveIssues.Set(float64(activeCount))
	}

	mayStart, err := s.blocking.MayStartNewCycle(ctx, s.cfg.GitHub.Repository, issues)
	if err != nil {
		return errors.WrapExternal(err, "blocking checker failed")
	}
	if !mayStart {
		delete(buckets, domain.PhasePlan)
		delete(buckets, domain.PhaseQueuedToPlanning)
	}

	for _, phase := range tickOrder {
		candidates, ok := buckets[phase]
		if !ok || len(candidates) == 0 {
			continue
		}
		candidate := lowestNumbered(candidates)
		s.processCandidate(ctx, phase, candidate)
	}

	return nil
}

func lowestNumbered(issues []github.Issue) github.Issue {
	lowest := issues[0]
	for _, issue := range issues[1:] {
		if issue.Number < lowest.Number {
			lowest = issue
		}
	}
	return lowest
}

// processCandidate implements spec §4.7 step 5: swap trigger→next, execute,
// and roll the swap back if the executor fails before launch. A swap
// conflict means another actor already won the race for this Issue this
// tick — move on silently.
func (s *scheduler) processCandidate(ctx context.Context, phase domain.Phase, issue github.Issue) {
	trigger := domain.TriggerLabel(phase)
	next := domain.NextLabel(phase)

	if err := s.client.SwapLabel(ctx, s.cfg.GitHub.Repository, issue.Number, trigger, next); err != nil {
		if errors.IsConflictError(err) {
			s.logger.Debug(ctx, "label swap conflict, skipping",
				logging.Field{Key: "issue", Value: issue.Number},
				logging.Field{Key: "phase", Value: string(phase)},
			)
			return
		}
		s.logger.Error(ctx, "label swap failed",
			logging.Field{Key: "issue", Value: issue.Number},
			logging.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	s.logger.Info(ctx, "starting phase",
		logging.Field{Key: "issue", Value: issue.Number},
		logging.Field{Key: "phase", Value: string(phase)},
	)

	if err := s.executor.Execute(ctx, s.cfg, issue.Number, phase); err != nil {
		if s.metrics != nil {
			s.metrics.PhaseFailedTotal.WithLabelValues(string(phase)).Inc()
		}
		s.logger.Error(ctx, "executor failed, rolling back label swap",
			logging.Field{Key: "issue", Value: issue.Number},
			logging.Field{Key: "phase", Value: string(phase)},
			logging.Field{Key: "error", Value: err.Error()},
		)
		if rollbackErr := s.client.SwapLabel(ctx, s.cfg.GitHub.Repository, issue.Number, next, trigger); rollbackErr != nil {
			s.logger.Error(ctx, "rollback swap also failed, issue stranded",
				logging.Field{Key: "issue", Value: issue.Number},
				logging.Field{Key: "error", Value: rollbackErr.Error()},
			)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.PhaseSpawnsTotal.WithLabelValues(string(phase)).Inc()
	}
}

// IsRunning reports whether the PID file names a currently live process.
func (s *scheduler) IsRunning() bool {
	pid, err := s.readPIDFile()
	if err != nil {
		return false
	}
	if err := syscall.Kill(pid, 0); err != nil {
		_ = s.removePIDFile()
		return false
	}
	return true
}

func (s *scheduler) readPIDFile() (int, error) {
	content, err := os.ReadFile(s.pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

func (s *scheduler) writePIDFile() error {
	content := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(s.pidFilePath(), []byte(content), 0600); err != nil {
		return errors.WrapInternal(err, "failed to write PID file")
	}
	return nil
}

func (s *scheduler) removePIDFile() error {
	if err := os.Remove(s.pidFilePath()); err != nil && !os.IsNotExist(err) {
		return errors.WrapInternal(err, "failed to remove PID file")
	}
	return nil
}

// Stop implements the "stop" CLI operation: SIGTERM, wait up to 10s,
// SIGKILL, remove the PID file. It does not touch tmux sessions — spec
// §4.7's shutdown leaves in-flight external processes running.
func (s *scheduler) Stop(ctx context.Context, repository string) error {
	pid, err := s.readPIDFile()
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("daemon is not running")
		}
		return errors.WrapInternal(err, "failed to read PID file")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.NewNotFoundError("process not found")
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = s.removePIDFile()
		return errors.NewNotFoundError("process not found")
	}

	s.logger.Info(ctx, "stopping daemon", logging.Field{Key: "pid", Value: pid})

	if err := process.Signal(syscall.SIGTERM); err == nil {
		stopped := false
		for i := 0; i < 100; i++ {
			time.Sleep(100 * time.Millisecond)
			if process.Signal(syscall.Signal(0)) != nil {
				stopped = true
				break
			}
		}
		if !stopped {
			s.logger.Warn(ctx, "process did not stop gracefully, sending SIGKILL", logging.Field{Key: "pid", Value: pid})
			_ = process.Signal(syscall.SIGKILL)
		}
	}

	_ = s.removePIDFile()
	s.logger.Info(ctx, "daemon stopped")
	return nil
}
