package sync

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// MinInterval is the shortest interval the scheduler may be configured with.
// Intervals must be strictly longer.
const MinInterval = 5 * time.Second

// Scheduler runs passes on a fixed interval.
type Scheduler struct {
	Interval time.Duration

	// Clock defaults to the real clock.
	Clock clockwork.Clock

	// Trigger, if set, wakes the scheduler before the interval has elapsed.
	// It's only read between passes.
	Trigger <-chan struct{}

	// KeepGoing makes the scheduler log pass errors and wait for the next
	// pass, rather than returning them.
	KeepGoing bool

	Log log.FieldLogger
}

// Run calls pass immediately, and then again each time the interval elapses
// after the previous pass finished. Passes never overlap, so a pass that takes
// longer than the interval delays the next one rather than causing a burst.
//
// The context is only checked while waiting between passes. Once it's done,
// Run returns the context's error without starting another pass.
func (sched Scheduler) Run(ctx context.Context, pass func() (Outcome, error)) error {
	clock := sched.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := sched.Log
	if logger == nil {
		logger = log.StandardLogger()
	}

	for {
		if _, err := pass(); err != nil {
			if !sched.KeepGoing {
				return errors.WithContext(err, "sync")
			}
			logger.WithError(err).Errorf("Sync failed. Will retry in %s.", sched.Interval)
		}

		// A cancellation during the pass wins over a wake that was queued
		// in the meantime.
		if ctx.Err() != nil {
			logger.Info("Sync stopped")
			return ctx.Err()
		}

		// A timer rather than a ticker, so that ticks don't queue up while a
		// pass is running.
		timer := clock.NewTimer(sched.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Sync stopped")
			return ctx.Err()
		case <-timer.Chan():
		case <-sched.Trigger:
			timer.Stop()
			logger.Debug("Change detected in source. Starting sync early.")
		}

		// select picks randomly between ready cases, so the context may
		// have been done when the timer or trigger was chosen.
		if ctx.Err() != nil {
			logger.Info("Sync stopped")
			return ctx.Err()
		}
	}
}

// Run mirrors sourceDir into replicaDir every interval until ctx is done. It
// returns ctx's error once cancelled, or the error of a pass that failed as a
// whole.
func (s *Syncer) Run(ctx context.Context, sourceDir, replicaDir string,
	interval time.Duration) error {

	sched := Scheduler{
		Interval: interval,
		Clock:    s.clock,
		Log:      s.log,
	}
	return sched.Run(ctx, func() (Outcome, error) {
		return s.SyncOnce(sourceDir, replicaDir)
	})
}
