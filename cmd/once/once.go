package once

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/buger/goterm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andrefdof/syncfiler/cmd/util"
	"github.com/andrefdof/syncfiler/pkg/config"
	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/logging"
	"github.com/andrefdof/syncfiler/pkg/sync"
)

// Mocked for unit testing.
var (
	stdout io.Writer = os.Stdout
	exit             = os.Exit
)

// New creates a new `once` command.
func New() *cobra.Command {
	var flags util.SyncFlags
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Mirror the source directory into the replica a single time",
		Long: "Mirror the source directory into the replica directory once, " +
			"and print a summary.\n\n" +
			"The exit code is 1 if any file couldn't be copied or deleted.",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := util.ResolveConfig(cmd, flags)
			if err != nil {
				util.HandleFatalError(err)
			}

			outcome, err := Run(cfg, flags.Verbose)
			if err != nil {
				util.HandleFatalError(err)
			}
			if outcome.Failed > 0 {
				exit(1)
			}
		},
	}
	util.AddSyncFlags(cmd, &flags)
	return cmd
}

// Run runs a single pass according to cfg, and prints its summary.
func Run(cfg config.Sync, verbose bool) (sync.Outcome, error) {
	logFile, err := logging.Configure(log.StandardLogger(), cfg.LogPath, verbose)
	if err != nil {
		return sync.Outcome{}, errors.WithContext(err, "configure logging")
	}
	defer logFile.Close()

	util.LogOptions(cfg)

	outcome, err := util.NewSyncer(cfg).SyncOnce(cfg.Source, cfg.Replica)
	if err != nil {
		return sync.Outcome{}, errors.WithContext(err, "sync")
	}

	printSummary(stdout, outcome)
	return outcome, nil
}

func printSummary(out io.Writer, outcome sync.Outcome) {
	color := goterm.GREEN
	if outcome.Failed > 0 {
		color = goterm.RED
	}

	fmt.Fprintf(out, "Copied:    %d\n", outcome.Copied)
	fmt.Fprintf(out, "Removed:   %d\n", outcome.Removed)
	fmt.Fprintf(out, "Unchanged: %d\n", outcome.Unchanged)
	fmt.Fprintf(out, "Failed:    %s\n", goterm.Color(fmt.Sprint(outcome.Failed), color))
	fmt.Fprintf(out, "\n%s (%s)\n", goterm.Color(outcome.Summary(), color),
		outcome.Duration.Round(time.Millisecond))
}
