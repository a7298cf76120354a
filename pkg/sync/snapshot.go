package sync

import (
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// Snapshot maps the name of each file in a directory to its path. Files are
// matched between the source and the replica by name.
type Snapshot map[string]string

// SnapshotDir returns the regular files directly inside dir.
func SnapshotDir(ops FileOps, dir string) (Snapshot, error) {
	paths, err := ops.List(dir)
	if err != nil {
		return nil, errors.WithContext(err, "list")
	}

	snapshot := Snapshot{}
	for _, path := range paths {
		snapshot[filepath.Base(path)] = path
	}
	return snapshot, nil
}

// Transfer is a scheduled copy of Source over Target.
type Transfer struct {
	Name   string
	Source string
	Target string

	// New is set if the replica didn't have the file yet.
	New bool
}

// Plan is the set of operations that make the replica match the source.
type Plan struct {
	ToCopy    []Transfer
	ToRemove  []string
	Unchanged []string
}

// Empty returns whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.ToCopy) == 0 && len(p.ToRemove) == 0
}

// Diff returns the operations necessary to make the replica match the source.
// * Files that only exist in the source are copied.
// * Files whose fingerprints differ are copied over the replica.
// * Files that only exist in the replica are removed.
// Neither snapshot is modified, and the plan is sorted by name so that it
// doesn't depend on map iteration order.
func (source Snapshot) Diff(ops FileOps, replica Snapshot, replicaDir string) Plan {
	var plan Plan
	handled := map[string]struct{}{}

	for name, srcPath := range source {
		dstPath, ok := replica[name]
		if !ok {
			plan.ToCopy = append(plan.ToCopy, Transfer{
				Name:   name,
				Source: srcPath,
				Target: filepath.Join(replicaDir, name),
				New:    true,
			})
			continue
		}

		handled[name] = struct{}{}
		if sameContents(ops, srcPath, dstPath) {
			plan.Unchanged = append(plan.Unchanged, name)
			continue
		}
		plan.ToCopy = append(plan.ToCopy, Transfer{
			Name:   name,
			Source: srcPath,
			Target: dstPath,
		})
	}

	for name, dstPath := range replica {
		if _, ok := handled[name]; !ok {
			plan.ToRemove = append(plan.ToRemove, dstPath)
		}
	}

	sort.Slice(plan.ToCopy, func(i, j int) bool {
		return plan.ToCopy[i].Name < plan.ToCopy[j].Name
	})
	sort.Strings(plan.ToRemove)
	sort.Strings(plan.Unchanged)
	return plan
}

// sameContents compares the fingerprints of the two files. If either can't be
// hashed, the files are treated as different so that the transfer's retries
// decide the outcome.
func sameContents(ops FileOps, a, b string) bool {
	aHash, err := ops.Fingerprint(a)
	if err != nil {
		log.WithError(err).WithField("path", a).Debug("Failed to fingerprint file")
		return false
	}

	bHash, err := ops.Fingerprint(b)
	if err != nil {
		log.WithError(err).WithField("path", b).Debug("Failed to fingerprint file")
		return false
	}
	return aHash == bHash
}
