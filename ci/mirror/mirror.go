package mirror

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrefdof/syncfiler/ci/util"
)

// Test runs `syncfiler run` with the watcher enabled, and checks that the
// replica follows changes to the source until the process is interrupted.
func Test(t *testing.T, helper *util.TestHelper) {
	writeFile(t, helper.Source, "a.txt", "A")
	writeFile(t, helper.Source, "b.txt", "B")
	writeFile(t, helper.Replica, "b.txt", "stale")
	writeFile(t, helper.Replica, "orphan.txt", "O")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	args := append([]string{"run", "--watch", "--interval", "1m"}, helper.SyncArgs()...)
	stderr, cmdErr, err := helper.Start(ctx, args...)
	require.NoError(t, err)

	waitUntilMirrored(t, helper, cmdErr)

	// The interval is a minute, so these are only picked up this quickly
	// because of the watcher.
	writeFile(t, helper.Source, "c.txt", "C")
	require.NoError(t, os.Remove(filepath.Join(helper.Source, "a.txt")))
	writeFile(t, helper.Source, "b.txt", "B2")
	waitUntilMirrored(t, helper, cmdErr)

	cancel()
	select {
	case err := <-cmdErr:
		assert.NoError(t, err, "syncfiler should exit cleanly when interrupted")
	case <-time.After(30 * time.Second):
		t.Fatal("syncfiler didn't exit after being interrupted")
	}

	assert.Contains(t, stderr(), "Sync stopped")

	logs, err := ioutil.ReadFile(helper.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(logs),
		`"message":"Deleted: `+filepath.Join(helper.Replica, "orphan.txt")+`"`)
	assert.NotContains(t, string(logs), "Failed to")
}

// TestOnce checks the summary printed by `syncfiler once`.
func TestOnce(t *testing.T, helper *util.TestHelper) {
	writeFile(t, helper.Source, "a.txt", "A")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	args := append([]string{"once"}, helper.SyncArgs()...)
	out, err := helper.Run(ctx, args...)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Sync completed without errors")
	require.NoError(t, helper.WaitUntilMirrored(ctx))
}

func waitUntilMirrored(t *testing.T, helper *util.TestHelper, cmdErr chan error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mirrored := make(chan error, 1)
	go func() {
		mirrored <- helper.WaitUntilMirrored(ctx)
	}()

	select {
	case err := <-cmdErr:
		t.Fatalf("syncfiler crashed: %s", err)
	case err := <-mirrored:
		require.NoError(t, err)
	}
}

func writeFile(t *testing.T, dir, name, contents string) {
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
}
