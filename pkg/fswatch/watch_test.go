package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

func TestCombineUpdates(t *testing.T) {
	updates := make(chan fsnotify.Event)
	combined := combineUpdates(updates)

	updates <- fsnotify.Event{Name: "a", Op: fsnotify.Create}
	updates <- fsnotify.Event{Name: "a", Op: fsnotify.Write}
	updates <- fsnotify.Event{Name: "b", Op: fsnotify.Remove}

	// Chmod events are dropped, so once this send completes every previous
	// event has been handled.
	updates <- fsnotify.Event{Name: "b", Op: fsnotify.Chmod}
	close(updates)

	assert.Len(t, combined, 1)
	<-combined
	assert.Len(t, combined, 0)
}

func TestCombineUpdatesIgnoresChmod(t *testing.T) {
	updates := make(chan fsnotify.Event)
	combined := combineUpdates(updates)

	updates <- fsnotify.Event{Name: "a", Op: fsnotify.Chmod}
	close(updates)

	select {
	case <-combined:
		t.Fatal("chmod shouldn't trigger an update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchMissingDir(t *testing.T) {
	fs = afero.NewMemMapFs()
	defer func() { fs = afero.NewOsFs() }()

	_, err := Watch("/missing")
	assert.Equal(t, errors.FileNotFound{Path: "/missing"}, err)

	assert.NoError(t, afero.WriteFile(fs, "/file", []byte("contents"), 0644))
	_, err = Watch("/file")
	assert.EqualError(t, err, `"/file" is not a directory`)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()

	watcher, err := Watch(dir)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file1.txt"), []byte("A"), 0644))

	select {
	case <-watcher.Events:
	case <-time.After(5 * time.Second):
		t.Fatal("expected an event after creating a file")
	}
}
