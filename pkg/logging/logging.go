// Package logging configures logrus for syncfiler. Entries are written to the
// console for humans, and optionally appended to a log file as JSON so that
// they can be processed by other tools.
package logging

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/version"
)

// VerboseEnvVar enables debug logging when set to a true value.
const VerboseEnvVar = "SYNCFILER_LOG_VERBOSE"

// fs is used for mock tests. It will be overridden by afero.NewMemMapFs()
// in the tests.
var fs = afero.NewOsFs()

// fileFormatter formats the entries written to the log file.
var fileFormatter = &logrus.JSONFormatter{
	FieldMap: logrus.FieldMap{
		logrus.FieldKeyTime:  "timestamp",
		logrus.FieldKeyLevel: "status",
		logrus.FieldKeyMsg:   "message",
	},
}

// Configure sets the logger's console output and level, and if logPath isn't
// empty, adds a hook that appends every entry to logPath. The returned Closer
// closes the log file.
func Configure(logger *logrus.Logger, logPath string, verbose bool) (io.Closer, error) {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	logger.SetLevel(logrus.InfoLevel)
	if verbose || verboseFromEnv() {
		logger.SetLevel(logrus.DebugLevel)
	}

	if logPath == "" {
		return nopCloser{}, nil
	}

	f, err := fs.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.WithContext(err, "open log file")
	}
	logger.AddHook(NewFileHook(f))
	return f, nil
}

func verboseFromEnv() bool {
	verbose, err := strconv.ParseBool(os.Getenv(VerboseEnvVar))
	return err == nil && verbose
}

// NewFileHook creates a hook that writes entries of all levels to out as JSON.
func NewFileHook(out io.Writer) logrus.Hook {
	return &hook{levels: logrus.AllLevels, out: out}
}

type hook struct {
	levels []logrus.Level

	// Hooks are fired concurrently by logrus, so writes to out are
	// serialized.
	mu  sync.Mutex
	out io.Writer
}

func (h *hook) Levels() []logrus.Level {
	return h.levels
}

func (h *hook) Fire(entry *logrus.Entry) error {
	dataCopy := map[string]interface{}{
		"version": version.Version,
	}
	for k, v := range entry.Data {
		dataCopy[k] = v
	}

	// Copy the entry so that we don't change it when we add file-specific
	// values to Data.
	entryCopy := *entry
	entryCopy.Data = dataCopy

	// Panics are logged as fatal errors so that the file only contains the
	// levels that are shown to users.
	if entry.Level == logrus.PanicLevel {
		entryCopy.Level = logrus.FatalLevel
	}

	jsonBytes, err := fileFormatter.Format(&entryCopy)
	if err != nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Never return an error because doing so causes the error to be printed
	// directly to `stderr` for every entry:
	// https://github.com/Sirupsen/logrus/issues/116
	h.out.Write(jsonBytes)
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
