package util

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	gosync "sync"
	"syscall"
	"time"

	"github.com/andrefdof/syncfiler/pkg/errors"
	"github.com/andrefdof/syncfiler/pkg/fswatch"
	"github.com/andrefdof/syncfiler/pkg/sync"
)

// TestHelper contains methods commonly used during integration tests.
type TestHelper struct {
	// Binary is the path to the syncfiler binary under test.
	Binary string

	Source  string
	Replica string
	LogPath string
}

// NewTestHelper creates a TestHelper with empty source and replica
// directories inside dir.
func NewTestHelper(binary, dir string) (*TestHelper, error) {
	helper := &TestHelper{
		Binary:  binary,
		Source:  filepath.Join(dir, "source"),
		Replica: filepath.Join(dir, "replica"),
		LogPath: filepath.Join(dir, "syncfiler.log"),
	}

	for _, d := range []string{helper.Source, helper.Replica} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, errors.WithContext(err, "create directory")
		}
	}
	return helper, nil
}

// SyncArgs returns the flags that point syncfiler at the helper's
// directories.
func (helper *TestHelper) SyncArgs() []string {
	return []string{
		"--source", helper.Source,
		"--replica", helper.Replica,
		"--log", helper.LogPath,
	}
}

// lockedBuffer is a bytes.Buffer that can be written by the command while the
// test reads it.
type lockedBuffer struct {
	mu  gosync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Start starts the given syncfiler command. It returns a function for reading
// the stderr output so far, and a channel for obtaining any errors after
// starting the command. When ctx is cancelled, the command is interrupted,
// and the channel receives the result of waiting for it to exit.
func (helper *TestHelper) Start(ctx context.Context, args ...string) (
	func() string, chan error, error) {

	cmd := exec.Command(helper.Binary, args...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	errChan := make(chan error, 1)
	go func() {
		waitErr := make(chan error)
		go func() {
			waitErr <- cmd.Wait()
			close(waitErr)
		}()

		defer close(errChan)
		select {
		case <-ctx.Done():
			if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
				errChan <- errors.WithContext(err, "interrupt")
				return
			}
			errChan <- <-waitErr
		case err := <-waitErr:
			errChan <- fmt.Errorf("crashed (%v): stderr: %s", err, stderr)
		}
	}()
	return stderr.String, errChan, nil
}

// Run runs the given syncfiler command, and returns its stdout.
func (helper *TestHelper) Run(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, helper.Binary, args...).Output()
}

// ErrNeverSynced is returned when the replica never matched the source.
var ErrNeverSynced = errors.New("never synced")

// WaitUntilMirrored blocks until the replica contains exactly the files in
// the source, with the same contents.
func (helper *TestHelper) WaitUntilMirrored(ctx context.Context) error {
	watcher, err := fswatch.Watch(helper.Replica)
	if err != nil {
		return errors.WithContext(err, "watch replica")
	}
	defer watcher.Close()

	isMirrored := func() bool {
		exp, err := readDir(helper.Source)
		if err != nil {
			return false
		}

		actual, err := readDir(helper.Replica)
		if err != nil || len(exp) != len(actual) {
			return false
		}

		for name, contents := range exp {
			if actual[name] != contents {
				return false
			}
		}
		return true
	}

	if !TestWithRetry(ctx, watcher.Events, isMirrored) {
		return ErrNeverSynced
	}
	return nil
}

func readDir(dir string) (map[string]string, error) {
	paths, err := sync.NewOsFS().List(dir)
	if err != nil {
		return nil, err
	}

	contents := map[string]string{}
	for _, path := range paths {
		fileContents, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		contents[filepath.Base(path)] = string(fileContents)
	}
	return contents, nil
}

// TestWithRetry runs test each time trigger fires, and with exponential
// backoff otherwise, until it passes or ctx is done.
func TestWithRetry(ctx context.Context, trigger <-chan struct{}, test func() bool) bool {
	if test() {
		return true
	}

	maxSleepTime := 5 * time.Second
	sleepTime := 100 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return test()
		case <-time.After(sleepTime):
			sleepTime *= 2
			if sleepTime > maxSleepTime {
				sleepTime = maxSleepTime
			}
		case <-trigger:
		}

		if test() {
			return true
		}
	}
}
