package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/service"
	"github.com/soba-dev/soba/pkg/errors"
	"github.com/soba-dev/soba/pkg/logging"
)

func newStopCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon process",
		Long:  `Stop the running soba daemon process and remove its PID file. tmux sessions are left running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd, args, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// StopServiceInterface is the scheduler surface the stop command depends
// on (narrow enough to fake in tests).
type StopServiceInterface interface {
	Stop(ctx context.Context, repository string) error
}

func runStop(cmd *cobra.Command, args []string, verbose bool) error {
	log := GetLogFactory().CreateComponentLogger("stop")
	if verbose {
		if f, err := logging.NewFactory(logging.Config{Level: "debug", Format: "text"}); err == nil {
			log = f.CreateComponentLogger("stop")
		}
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error(context.Background(), "failed to get current directory", logging.Field{Key: "error", Value: err.Error()})
		return errors.WrapInternal(err, "failed to get current directory")
	}

	configPath := filepath.Join(currentDir, ".soba", "config.yml")

	var repository string
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		cfg, loadErr := config.Load(configPath)
		if loadErr != nil {
			log.Warn(context.Background(), "failed to load config, using empty repository", logging.Field{Key: "error", Value: loadErr.Error()})
		} else {
			repository = cfg.GitHub.Repository
		}
	} else {
		log.Debug(context.Background(), "config file not found, using empty repository", logging.Field{Key: "path", Value: configPath})
	}

	daemonService := service.NewScheduler(currentDir, nil, nil, nil, nil, nil, log)
	return runStopWithService(cmd, args, verbose, daemonService, repository, log)
}

// runStopWithService allows dependency injection for testing
func runStopWithService(cmd *cobra.Command, _ []string, verbose bool, daemonService StopServiceInterface, repository string, log logging.Logger) error {
	ctx := context.Background()

	log.Info(ctx, "stopping daemon process", logging.Field{Key: "repository", Value: repository})
	if err := daemonService.Stop(ctx, repository); err != nil {
		log.Error(ctx, "failed to stop daemon", logging.Field{Key: "error", Value: err.Error()})
		return err
	}

	cmd.Printf("Daemon stopped successfully\n")
	return nil
}
