package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/sync"
)

const (
	// DefaultPath is where the config is read from when no path is given.
	DefaultPath = "~/.syncfiler.yaml"

	// InitialSyncVersion is the first version of the syncfiler config.
	// Config files that do not specify a version will default to this
	// version.
	InitialSyncVersion = "v1alpha1"

	// SupportedSyncVersion is the config version supported by this binary.
	SupportedSyncVersion = "v1alpha1"
)

// Sync is the configuration for mirroring one directory into another.
type Sync struct {
	Version string `json:"version,omitempty"`

	// Source is the directory that's mirrored.
	Source string `json:"source"`

	// Replica is the directory that's made to match Source.
	Replica string `json:"replica"`

	// Interval is the time between the end of one pass and the start of the
	// next.
	Interval Duration `json:"interval"`

	// LogPath is the file that log entries are appended to. If it's empty,
	// logs are only written to the console.
	LogPath string `json:"logPath,omitempty"`

	Retry Retry `json:"retry"`

	// Workers is the number of copies and deletions that may run at once
	// within a pass.
	Workers int `json:"workers"`

	// Watch wakes the scheduler early when the source directory changes.
	Watch bool `json:"watch,omitempty"`

	// KeepGoing keeps the scheduler running after a pass fails, for example
	// because the source directory was temporarily unavailable.
	KeepGoing bool `json:"keepGoing,omitempty"`
}

// Retry controls how failed copies and deletions are retried.
type Retry struct {
	MaxAttempts int      `json:"maxAttempts"`
	Delay       Duration `json:"delay"`
}

// Default returns the configuration used for any fields that aren't set.
func Default() Sync {
	return Sync{
		Version:  InitialSyncVersion,
		Interval: Duration(30 * time.Second),
		Retry: Retry{
			MaxAttempts: sync.DefaultMaxAttempts,
			Delay:       Duration(sync.DefaultRetryDelay),
		},
		Workers: 1,
	}
}

// RetryPolicy returns the retry settings in the form used by the syncer.
func (c Sync) RetryPolicy() sync.RetryPolicy {
	return sync.RetryPolicy{
		MaxAttempts: c.Retry.MaxAttempts,
		Delay:       time.Duration(c.Retry.Delay),
	}
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// GetConfigPath returns the expanded path to the config file. If path is
// empty, the default path is used.
func GetConfigPath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	return homedirExpand(path)
}

// Parse reads the config at the given path. Fields that aren't set in the
// file take their values from Default. If the file doesn't exist, an
// errors.FileNotFound is returned so that callers can fall back to flags.
func Parse(path string) (Sync, error) {
	path, err := GetConfigPath(path)
	if err != nil {
		return Sync{}, errors.WithContext(err, "expand config path")
	}

	config := Default()
	if err := readSyncFile(path, &config); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return Sync{}, err
		}
		return Sync{}, errors.WithContext(err, "parse")
	}

	// Evaluate relative paths relative to the config path.
	base := filepath.Dir(path)
	for _, field := range []*string{&config.Source, &config.Replica, &config.LogPath} {
		if *field == "" {
			continue
		}

		expanded, err := ResolvePath(base, *field)
		if err != nil {
			return Sync{}, errors.WithContext(err, "resolve path")
		}
		*field = expanded
	}
	return config, nil
}

// ResolvePath expands ~ in path, and makes it absolute relative to base.
func ResolvePath(base, path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.WithContext(err, "expand homedir")
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(base, expanded)
	}
	return filepath.Clean(expanded), nil
}

// Write writes the given config to disk.
func Write(path string, cfg Sync) error {
	cfg.Version = SupportedSyncVersion
	path, err := GetConfigPath(path)
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// Validate checks that the config can be used to start syncing. The returned
// errors are meant to be shown to the user.
func (c Sync) Validate() error {
	if c.Source == "" {
		return errors.MissingFieldError{Field: "source"}
	}
	if c.Replica == "" {
		return errors.MissingFieldError{Field: "replica"}
	}

	if err := checkDirectory("source", c.Source); err != nil {
		return err
	}
	if err := checkDirectory("replica", c.Replica); err != nil {
		return err
	}

	if filepath.Clean(c.Source) == filepath.Clean(c.Replica) {
		return errors.NewFriendlyError("The source and replica directories "+
			"must be different, but both are %q.", c.Source)
	}

	if time.Duration(c.Interval) <= sync.MinInterval {
		return errors.NewFriendlyError("The sync interval must be longer "+
			"than %s, but it's %s.", sync.MinInterval, time.Duration(c.Interval))
	}

	if c.LogPath != "" {
		if info, err := fs.Stat(c.LogPath); err == nil && info.IsDir() {
			return errors.NewFriendlyError(
				"The log path %q is a directory. It must be a file.", c.LogPath)
		}

		logDir := filepath.Dir(c.LogPath)
		if info, err := fs.Stat(logDir); err != nil || !info.IsDir() {
			return errors.NewFriendlyError("The directory for the log file "+
				"%q doesn't exist. Please create %q first.", c.LogPath, logDir)
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return errors.NewFriendlyError("At least one attempt is required "+
			"per file, but retry.maxAttempts is %d.", c.Retry.MaxAttempts)
	}

	if c.Retry.Delay < 0 {
		return errors.NewFriendlyError("The retry delay can't be negative, "+
			"but it's %s.", time.Duration(c.Retry.Delay))
	}

	if c.Workers < 1 {
		return errors.NewFriendlyError("At least one worker is required, "+
			"but workers is %d.", c.Workers)
	}
	return nil
}

func checkDirectory(name, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFriendlyError(
				"The %s directory %q doesn't exist.", name, path)
		}
		return errors.WithContext(err, "stat "+name)
	}

	if !info.IsDir() {
		return errors.NewFriendlyError(
			"The %s path %q is not a directory.", name, path)
	}
	return nil
}
