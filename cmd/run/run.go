package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andrefdof/syncfiler/cmd/util"
	"github.com/andrefdof/syncfiler/pkg/config"
	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/fswatch"
	"github.com/andrefdof/syncfiler/pkg/logging"
	"github.com/andrefdof/syncfiler/pkg/sync"
)

// New creates a new `run` command.
func New() *cobra.Command {
	var flags util.SyncFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mirror the source directory into the replica on an interval",
		Long: "Mirror the source directory into the replica directory, and " +
			"repeat each time the interval elapses.\n\n" +
			"Files in the replica that aren't in the source are deleted. " +
			"Subdirectories are ignored.\n" +
			"Stop syncing with Ctrl-C.",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := util.ResolveConfig(cmd, flags)
			if err != nil {
				util.HandleFatalError(err)
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := Run(ctx, cfg, flags.Verbose); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	util.AddSyncFlags(cmd, &flags)
	return cmd
}

// Run syncs according to cfg until ctx is cancelled. Cancellation isn't
// treated as an error.
func Run(ctx context.Context, cfg config.Sync, verbose bool) error {
	logFile, err := logging.Configure(log.StandardLogger(), cfg.LogPath, verbose)
	if err != nil {
		return errors.WithContext(err, "configure logging")
	}
	defer logFile.Close()

	util.LogOptions(cfg)

	syncer := util.NewSyncer(cfg)
	sched := sync.Scheduler{
		Interval:  time.Duration(cfg.Interval),
		KeepGoing: cfg.KeepGoing,
		Log:       log.StandardLogger(),
	}

	if cfg.Watch {
		watcher, err := fswatch.Watch(cfg.Source)
		if err != nil {
			return errors.WithContext(err, "watch source")
		}
		defer watcher.Close()
		sched.Trigger = watcher.Events
	}

	err = sched.Run(ctx, func() (sync.Outcome, error) {
		return syncer.SyncOnce(cfg.Source, cfg.Replica)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
