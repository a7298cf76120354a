package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// badSyncFileTemplate is shown when a sync file isn't valid YAML for Sync.
// The parser's message is appended as is.
const badSyncFileTemplate = "The sync file %q could not be read as a " +
	"syncfiler config.\n" +
	"Check that:\n" +
	" - source and replica are strings\n" +
	" - interval and retry.delay are quoted durations (e.g. \"30s\" or \"00:05:00\")\n" +
	" - retry.maxAttempts and workers are whole numbers\n" +
	" - there are no keys other than the ones written by `syncfiler config`\n\n" +
	"Parser error:\n" +
	"%s"

// unsupportedVersionError is returned when the sync file declares a format
// version this build can't read.
type unsupportedVersionError struct {
	path, supported, found string
}

func (err unsupportedVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err unsupportedVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The sync file %q uses format version %q, but "+
		"this build of syncfiler only reads version %q.\n"+
		"Regenerate it with `syncfiler config`.",
		err.path, err.found, err.supported)
}

// readSyncFile decodes the sync file at path over cfg, so keys missing from
// the file keep whatever cfg already holds.
func readSyncFile(path string, cfg *Sync) error {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	// The lenient pass only needs to get the version out, so that a file
	// from another format version reports that rather than its unknown keys.
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return errors.NewFriendlyError(badSyncFileTemplate, path, err)
	}
	if cfg.Version != SupportedSyncVersion {
		return unsupportedVersionError{
			path:      path,
			supported: SupportedSyncVersion,
			found:     cfg.Version,
		}
	}

	err = yaml.UnmarshalStrict(contents, cfg, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(badSyncFileTemplate, path, err)
	}
	return nil
}
