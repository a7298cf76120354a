package sync

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// Options configures a Syncer. Zero values are replaced with defaults. An
// unset Retry uses DefaultRetryPolicy, while a Retry with MaxAttempts set
// and a zero Delay retries without waiting.
type Options struct {
	// Ops performs the file operations. Defaults to the OS filesystem.
	Ops FileOps

	// Clock is used for retry delays and pass timing.
	Clock clockwork.Clock

	// Retry bounds the attempts made for each copy and removal.
	Retry RetryPolicy

	// Workers is the number of file operations that may run at the same
	// time within a pass. Defaults to 1, i.e. operations run one after the
	// other.
	Workers int

	Log log.FieldLogger
}

// Syncer mirrors a source directory into a replica directory.
type Syncer struct {
	ops     FileOps
	clock   clockwork.Clock
	retry   RetryPolicy
	workers int
	log     log.FieldLogger
}

// New creates a Syncer from opts.
func New(opts Options) *Syncer {
	s := &Syncer{
		ops:     opts.Ops,
		clock:   opts.Clock,
		retry:   opts.Retry,
		workers: opts.Workers,
		log:     opts.Log,
	}

	if s.ops == nil {
		s.ops = NewOsFS()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.retry == (RetryPolicy{}) {
		s.retry = DefaultRetryPolicy()
	}
	if s.retry.MaxAttempts < 1 {
		s.retry.MaxAttempts = DefaultMaxAttempts
	}
	if s.retry.Delay < 0 {
		s.retry.Delay = 0
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	return s
}

// Outcome is the result of a single pass. The counts only cover that pass.
type Outcome struct {
	PassID string

	Copied    int
	Removed   int
	Unchanged int

	// Failed is the number of copies and removals that still failed after
	// their last attempt.
	Failed int

	Duration time.Duration
}

// Summary returns a human readable description of the outcome.
func (o Outcome) Summary() string {
	if o.Failed == 0 {
		return "Sync completed without errors"
	}
	return fmt.Sprintf("Sync completed with %d errors", o.Failed)
}

// SyncOnce runs a single pass that makes replicaDir match sourceDir.
// Failures of individual files are counted in the Outcome. An error is only
// returned if one of the directories couldn't be listed, in which case
// nothing was changed.
func (s *Syncer) SyncOnce(sourceDir, replicaDir string) (Outcome, error) {
	start := s.clock.Now()
	outcome := Outcome{PassID: uuid.NewString()}
	passLog := s.log.WithField("pass", outcome.PassID)

	passLog.WithFields(log.Fields{
		"event":   "pass-start",
		"source":  sourceDir,
		"replica": replicaDir,
	}).Info("Sync operation started")

	source, err := SnapshotDir(s.ops, sourceDir)
	if err != nil {
		return s.abortPass(passLog, outcome, start,
			errors.WithContext(err, "snapshot source"))
	}

	replica, err := SnapshotDir(s.ops, replicaDir)
	if err != nil {
		return s.abortPass(passLog, outcome, start,
			errors.WithContext(err, "snapshot replica"))
	}

	plan := source.Diff(s.ops, replica, replicaDir)
	outcome.Unchanged = len(plan.Unchanged)

	outcome.Copied = s.runAll(len(plan.ToCopy), func(i int) bool {
		return s.transfer(passLog, plan.ToCopy[i])
	})
	outcome.Removed = s.runAll(len(plan.ToRemove), func(i int) bool {
		return s.remove(passLog, plan.ToRemove[i])
	})
	outcome.Failed = len(plan.ToCopy) - outcome.Copied +
		len(plan.ToRemove) - outcome.Removed
	outcome.Duration = s.clock.Since(start)

	passLog.WithFields(log.Fields{
		"event":     "pass-end",
		"copied":    outcome.Copied,
		"removed":   outcome.Removed,
		"unchanged": outcome.Unchanged,
		"failures":  outcome.Failed,
		"duration":  outcome.Duration,
	}).Info(outcome.Summary())
	return outcome, nil
}

// abortPass ends a pass that failed before any file was touched, so that
// every pass-start entry still has a matching pass-end entry.
func (s *Syncer) abortPass(passLog log.FieldLogger, outcome Outcome,
	start time.Time, err error) (Outcome, error) {

	outcome.Duration = s.clock.Since(start)
	passLog.WithError(err).WithFields(log.Fields{
		"event":    "pass-end",
		"duration": outcome.Duration,
	}).Error("Sync failed")
	return outcome, err
}

// runAll calls op for 0 <= i < n with at most s.workers calls in flight, and
// returns how many of them succeeded. Each call writes only its own result
// slot, so the count is aggregated after all calls finish.
func (s *Syncer) runAll(n int, op func(i int) bool) int {
	succeeded := make([]bool, n)

	var group errgroup.Group
	group.SetLimit(s.workers)
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			succeeded[i] = op(i)
			return nil
		})
	}
	// The ops never return errors.
	_ = group.Wait()

	var count int
	for _, ok := range succeeded {
		if ok {
			count++
		}
	}
	return count
}
