package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/service"
	"github.com/soba-dev/soba/pkg/errors"
	"github.com/soba-dev/soba/pkg/logging"
)

func newStartCmd() *cobra.Command {
	var daemon bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start Issue monitoring in foreground or daemon mode",
		Long: `Start Issue monitoring process. By default, runs in foreground mode.
Use -d/--daemon flag to run in daemon mode (background).
Use -v/--verbose flag to enable debug logging.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, args, daemon, verbose)
		},
	}

	cmd.Flags().BoolVarP(&daemon, "daemon", "d", false, "run in daemon mode (background)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// DaemonServiceInterface is the scheduler surface the start command
// depends on (narrow enough to fake in tests).
type DaemonServiceInterface interface {
	StartForeground(ctx context.Context, cfg *config.Config) error
	StartDaemon(ctx context.Context, cfg *config.Config) error
}

func runStart(cmd *cobra.Command, args []string, daemon, verbose bool) error {
	log := GetLogFactory().CreateComponentLogger("start")
	if verbose {
		if f, err := logging.NewFactory(logging.Config{Level: "debug", Format: "text"}); err == nil {
			log = f.CreateComponentLogger("start")
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error(ctx, "failed to get current directory", logging.Field{Key: "error", Value: err.Error()})
		return errors.WrapInternal(err, "failed to get current directory")
	}

	configPath := filepath.Join(currentDir, ".soba", "config.yml")
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		log.Error(ctx, "config file not found", logging.Field{Key: "path", Value: configPath})
		return errors.NewNotFoundError("config file not found. Please run 'soba init' first")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logging.Field{Key: "error", Value: err.Error()})
		// Wrap (not WrapInternal): a validation error here — e.g.
		// workflow.interval below the floor — must keep its
		// CodeValidation so main.go can exit 2 per spec §7.
		return errors.Wrap(err, "failed to load config")
	}

	runtime, err := service.NewRuntime(currentDir, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialize runtime", logging.Field{Key: "error", Value: err.Error()})
		return errors.WrapInternal(err, "failed to initialize runtime")
	}

	if handler := runtime.MetricsHandler(); handler != nil {
		serveMetrics(ctx, cfg.Metrics.Address, handler, log)
	}

	return runStartWithService(cmd, args, daemon, verbose, runtime.Daemon, cfg, log)
}

// serveMetrics starts the /metrics HTTP endpoint in the background. A
// listener failure only logs — a broken scrape target should never stop
// the daemon it is reporting on.
func serveMetrics(ctx context.Context, address string, handler http.Handler, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: address, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics server stopped", logging.Field{Key: "error", Value: err.Error()})
		}
	}()
	log.Info(ctx, "metrics endpoint listening", logging.Field{Key: "address", Value: address})
}

// runStartWithService allows dependency injection for testing
func runStartWithService(cmd *cobra.Command, _ []string, daemon, verbose bool, daemonService DaemonServiceInterface, cfg *config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if daemon {
		log.Info(ctx, "starting Issue monitoring in daemon mode", logging.Field{Key: "repository", Value: cfg.GitHub.Repository})
		err = daemonService.StartDaemon(ctx, cfg)
		if err == nil {
			cmd.Printf("Successfully started daemon mode\n")
		}
	} else {
		log.Info(ctx, "starting Issue monitoring in foreground mode", logging.Field{Key: "repository", Value: cfg.GitHub.Repository})
		err = daemonService.StartForeground(ctx, cfg)
		if err == nil {
			cmd.Printf("Issue monitoring stopped\n")
		}
	}

	return err
}
