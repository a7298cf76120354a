package fswatch

import (
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

var fs = afero.NewOsFs()

// Watcher notifies when the contents of a directory change.
type Watcher struct {
	// Events receives a value whenever a file directly inside the watched
	// directory is created, written, removed, or renamed. Bursts of changes
	// are combined, so at most one event is pending at a time.
	Events <-chan struct{}

	watcher *fsnotify.Watcher
}

// Watch starts watching dir. Subdirectories aren't watched.
func Watch(dir string) (*Watcher, error) {
	fi, err := fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: dir}
		}
		return nil, errors.WithContext(err, "stat")
	}
	if !fi.IsDir() {
		return nil, errors.New("%q is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	if err := watcher.Add(dir); err != nil {
		// Close the watcher so that we release its file handles.
		if err := watcher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file watcher")
		}
		return nil, errors.WithContext(err, "watch")
	}

	go logErrors(watcher.Errors)
	return &Watcher{
		Events:  combineUpdates(watcher.Events),
		watcher: watcher,
	}, nil
}

// Close stops watching. The Events channel is not closed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func combineUpdates(updates <-chan fsnotify.Event) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for event := range updates {
			// Permission changes don't affect the mirrored contents.
			if event.Op == fsnotify.Chmod {
				continue
			}

			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

func logErrors(errs <-chan error) {
	for err := range errs {
		log.WithError(err).Warn("File watcher error")
	}
}
