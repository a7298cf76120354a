package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

func TestList(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, memFs.MkdirAll("/src/subdir", 0755))
	require.NoError(t, afero.WriteFile(memFs, "/src/b.txt", []byte("B"), 0644))
	require.NoError(t, afero.WriteFile(memFs, "/src/a.txt", []byte("A"), 0644))
	require.NoError(t, afero.WriteFile(memFs, "/src/subdir/nested.txt", []byte("N"), 0644))

	paths, err := NewFS(memFs).List("/src")
	assert.NoError(t, err)
	assert.Equal(t, []string{"/src/a.txt", "/src/b.txt"}, paths)

	_, err = NewFS(memFs).List("/missing")
	assert.Equal(t, errors.FileNotFound{Path: "/missing"}, err)
}

func TestFingerprint(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/a", []byte("A"), 0644))
	require.NoError(t, afero.WriteFile(memFs, "/b", []byte("A"), 0600))
	require.NoError(t, afero.WriteFile(memFs, "/c", []byte("B"), 0644))
	fs := NewFS(memFs)

	a, err := fs.Fingerprint("/a")
	assert.NoError(t, err)
	assert.Equal(t, Fingerprint("559aead08264d5795d3909718cdd05abd49572e84fe55590eef31a88a08fdffd"), a)

	// Only the contents matter.
	b, err := fs.Fingerprint("/b")
	assert.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := fs.Fingerprint("/c")
	assert.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = fs.Fingerprint("/missing")
	assert.Error(t, err)
}

func TestCopy(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/src/file", []byte("short"), 0644))
	require.NoError(t, afero.WriteFile(memFs, "/dst/file", []byte("much longer contents"), 0644))
	fs := NewFS(memFs)

	// Overwriting a longer file truncates it.
	assert.NoError(t, fs.Copy("/src/file", "/dst/file"))
	contents, err := afero.ReadFile(memFs, "/dst/file")
	assert.NoError(t, err)
	assert.Equal(t, "short", string(contents))

	assert.NoError(t, fs.Copy("/src/file", "/dst/new"))
	contents, err = afero.ReadFile(memFs, "/dst/new")
	assert.NoError(t, err)
	assert.Equal(t, "short", string(contents))

	assert.Error(t, fs.Copy("/src/missing", "/dst/missing"))
	exists, err := afero.Exists(memFs, "/dst/missing")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestRemove(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/file", []byte("A"), 0644))
	fs := NewFS(memFs)

	assert.True(t, fs.Accessible("/file"))
	assert.NoError(t, fs.Remove("/file"))
	assert.False(t, fs.Accessible("/file"))
	assert.Error(t, fs.Remove("/file"))
}

func TestAccessibleLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file1.txt")
	require.NoError(t, os.WriteFile(path, []byte("A"), 0644))
	fs := NewOsFS()

	assert.True(t, fs.Accessible(path))

	// Probing must not leave the file locked.
	assert.True(t, fs.Accessible(path))

	lock := flock.New(path)
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	assert.False(t, fs.Accessible(path))

	require.NoError(t, lock.Unlock())
	assert.True(t, fs.Accessible(path))

	// The accessibility check never creates files.
	missing := filepath.Join(filepath.Dir(path), "missing")
	assert.False(t, fs.Accessible(missing))
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err))
}
