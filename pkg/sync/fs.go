//go:generate mockery -name FileOps

package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// Fingerprint is the hex encoded sha256 hash of a file's contents. Files with
// equal fingerprints are treated as identical.
type Fingerprint string

// FileOps is the set of file system operations used by the syncer. FS is the
// real implementation.
type FileOps interface {
	// List returns the paths of the regular files directly inside dir.
	List(dir string) ([]string, error)

	// Accessible returns whether the file can currently be opened
	// exclusively for reading.
	Accessible(path string) bool

	// Copy overwrites dst with the contents of src.
	Copy(src, dst string) error

	// Remove deletes the file at path.
	Remove(path string) error

	// Fingerprint hashes the full contents of the file at path.
	Fingerprint(path string) (Fingerprint, error)
}

// FS implements FileOps on top of an afero filesystem.
type FS struct {
	fs afero.Fs

	// tryLock attempts to take and release an exclusive lock on the file. It's
	// only set when fs is backed by the OS, since locks are taken on real
	// paths.
	tryLock func(path string) (bool, error)
}

// NewOsFS returns an FS backed by the operating system's filesystem.
func NewOsFS() *FS {
	return &FS{fs: afero.NewOsFs(), tryLock: tryLockImpl}
}

// NewFS returns an FS backed by fs. No advisory locks are taken.
func NewFS(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

func (f *FS) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: dir}
		}
		return nil, errors.WithContext(err, "read dir")
	}

	var paths []string
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, info.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *FS) Accessible(path string) bool {
	file, err := f.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	file.Close()

	if f.tryLock == nil {
		return true
	}

	locked, err := f.tryLock(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("Failed to check file lock")
		return false
	}
	return locked
}

func (f *FS) Copy(src, dst string) error {
	in, err := f.fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer in.Close()

	out, err := f.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithContext(err, "write")
	}

	if err := out.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}
	return nil
}

func (f *FS) Remove(path string) error {
	return f.fs.Remove(path)
}

func (f *FS) Fingerprint(path string) (Fingerprint, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return "", errors.WithContext(err, "open")
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", errors.WithContext(err, "read")
	}
	return Fingerprint(hex.EncodeToString(hasher.Sum(nil))), nil
}

// tryLockImpl takes a non-blocking exclusive advisory lock on path, and
// releases it immediately. The file is opened read-only and is never created.
func tryLockImpl(path string) (bool, error) {
	lock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		return false, err
	}
	return true, lock.Unlock()
}
