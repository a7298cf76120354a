package util

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andrefdof/syncfiler/pkg/config"
	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/logging"
	"github.com/andrefdof/syncfiler/pkg/sync"
)

// SyncFlags are the command line flags shared by the commands that sync.
// Flags that are set override the values in the config file.
type SyncFlags struct {
	ConfigPath  string
	Source      string
	Replica     string
	Interval    string
	LogPath     string
	MaxAttempts int
	RetryDelay  string
	Workers     int
	Watch       bool
	KeepGoing   bool

	// Verbose enables debug logs. It isn't stored in the config file.
	Verbose bool
}

// Mocked for unit testing.
var (
	getWorkingDirectory = os.Getwd
	parseConfig         = config.Parse
)

// AddSyncFlags registers the sync flags on cmd.
func AddSyncFlags(cmd *cobra.Command, flags *SyncFlags) {
	defaults := config.Default()

	cmd.Flags().StringVar(&flags.ConfigPath, "config", config.DefaultPath,
		"The config file to read. Flags override its values. "+
			"Optional: It's ignored if it doesn't exist and isn't set explicitly.")
	cmd.Flags().StringVarP(&flags.Source, "source", "a", "",
		"The directory to mirror.")
	cmd.Flags().StringVarP(&flags.Replica, "replica", "b", "",
		"The directory to mirror into. Files that aren't in the source are deleted.")
	cmd.Flags().StringVarP(&flags.Interval, "interval", "c",
		time.Duration(defaults.Interval).String(),
		"The time between syncs, e.g. 1m30s or 01:30:00. Must be longer than 5s.")
	cmd.Flags().StringVarP(&flags.LogPath, "log", "d", "",
		"A file to append JSON logs to, in addition to the console.")
	cmd.Flags().IntVar(&flags.MaxAttempts, "max-attempts",
		defaults.Retry.MaxAttempts,
		"The number of times a copy or deletion is attempted before giving up on it for the current sync.")
	cmd.Flags().StringVar(&flags.RetryDelay, "retry-delay",
		time.Duration(defaults.Retry.Delay).String(),
		"The time to wait between attempts.")
	cmd.Flags().IntVar(&flags.Workers, "workers", defaults.Workers,
		"The number of files that may be copied or deleted at the same time.")
	cmd.Flags().BoolVar(&flags.Watch, "watch", false,
		"Sync as soon as the source directory changes, rather than waiting for the interval.")
	cmd.Flags().BoolVar(&flags.KeepGoing, "keep-going", false,
		"Keep running when a sync fails as a whole, e.g. because a directory is temporarily unavailable.")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false,
		"Log debug messages. Equivalent to setting "+logging.VerboseEnvVar+"=true.")
}

// ResolveConfig combines the config file with the flags that were set on cmd,
// and validates the result.
func ResolveConfig(cmd *cobra.Command, flags SyncFlags) (config.Sync, error) {
	cfg, err := parseConfig(flags.ConfigPath)
	if err != nil {
		if _, ok := err.(errors.FileNotFound); !ok || cmd.Flags().Changed("config") {
			return config.Sync{}, errors.WithContext(err, "read config")
		}
		log.WithError(err).Debug("No config file. Using flags only.")
		cfg = config.Default()
	}

	cwd, err := getWorkingDirectory()
	if err != nil {
		return config.Sync{}, errors.WithContext(err, "get working directory")
	}

	changed := cmd.Flags().Changed
	paths := []struct {
		flag  string
		value string
		field *string
	}{
		{"source", flags.Source, &cfg.Source},
		{"replica", flags.Replica, &cfg.Replica},
		{"log", flags.LogPath, &cfg.LogPath},
	}
	for _, path := range paths {
		if !changed(path.flag) {
			continue
		}

		resolved, err := config.ResolvePath(cwd, path.value)
		if err != nil {
			return config.Sync{}, errors.WithContext(err, "resolve "+path.flag)
		}
		*path.field = resolved
	}

	if changed("interval") {
		interval, err := config.ParseDuration(flags.Interval)
		if err != nil {
			return config.Sync{}, errors.NewFriendlyError(
				"Invalid --interval: %s", err)
		}
		cfg.Interval = config.Duration(interval)
	}

	if changed("retry-delay") {
		delay, err := config.ParseDuration(flags.RetryDelay)
		if err != nil {
			return config.Sync{}, errors.NewFriendlyError(
				"Invalid --retry-delay: %s", err)
		}
		cfg.Retry.Delay = config.Duration(delay)
	}

	if changed("max-attempts") {
		cfg.Retry.MaxAttempts = flags.MaxAttempts
	}
	if changed("workers") {
		cfg.Workers = flags.Workers
	}
	if changed("watch") {
		cfg.Watch = flags.Watch
	}
	if changed("keep-going") {
		cfg.KeepGoing = flags.KeepGoing
	}

	if err := cfg.Validate(); err != nil {
		if missing, ok := err.(errors.MissingFieldError); ok {
			return config.Sync{}, errors.NewFriendlyError(
				"The %s directory is required. Set it with --%s, "+
					"or in the config file at %s.",
				missing.Field, missing.Field, flags.ConfigPath)
		}
		return config.Sync{}, err
	}
	return cfg, nil
}

// NewSyncer creates a syncer that uses the retry and worker settings from cfg.
func NewSyncer(cfg config.Sync) *sync.Syncer {
	return sync.New(sync.Options{
		Retry:   cfg.RetryPolicy(),
		Workers: cfg.Workers,
	})
}

// LogOptions logs the options that syncing will run with.
func LogOptions(cfg config.Sync) {
	log.WithFields(log.Fields{
		"source":      cfg.Source,
		"replica":     cfg.Replica,
		"logPath":     cfg.LogPath,
		"interval":    time.Duration(cfg.Interval),
		"maxAttempts": cfg.Retry.MaxAttempts,
		"retryDelay":  time.Duration(cfg.Retry.Delay),
		"workers":     cfg.Workers,
		"watch":       cfg.Watch,
		"keepGoing":   cfg.KeepGoing,
	}).Info("Parsed options")
}
