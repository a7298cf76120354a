package sync

import (
	log "github.com/sirupsen/logrus"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// transfer copies t.Source over t.Target, retrying according to the syncer's
// policy. It returns whether the copy eventually succeeded.
func (s *Syncer) transfer(passLog log.FieldLogger, t Transfer) bool {
	fileLog := passLog.WithFields(log.Fields{
		"source": t.Source,
		"target": t.Target,
	})

	if t.New {
		fileLog.Infof("Creating file %s.", t.Name)
	}

	attempts, err := s.retry.retry(s.clock,
		func() error { return s.copyOnce(t.Source, t.Target) },
		func(attempt int, err error) {
			fileLog.WithError(err).WithFields(log.Fields{
				"attempt":     attempt,
				"maxAttempts": s.retry.MaxAttempts,
			}).Errorf("Error copying file %s. Attempt %d/%d",
				t.Source, attempt, s.retry.MaxAttempts)
		})
	if err != nil {
		fileLog.WithError(err).WithField("attempts", attempts).Errorf(
			"Failed to copy file after %d attempts: %s", attempts, t.Source)
		return false
	}

	fileLog.Infof("Copied: %s to %s", t.Source, t.Target)
	return true
}

// copyOnce makes a single attempt at copying src to dst. The copy only
// succeeds if both files hash to the same fingerprint afterwards.
func (s *Syncer) copyOnce(src, dst string) error {
	if !s.ops.Accessible(src) {
		return errors.WithContext(errors.ErrNotAccessible, src)
	}

	if err := s.ops.Copy(src, dst); err != nil {
		return errors.WithContext(err, "copy")
	}

	srcHash, err := s.ops.Fingerprint(src)
	if err != nil {
		return errors.WithContext(err, "fingerprint source")
	}

	dstHash, err := s.ops.Fingerprint(dst)
	if err != nil {
		return errors.WithContext(err, "fingerprint target")
	}

	if srcHash != dstHash {
		return errors.WithContext(errors.ErrFileChanged, dst)
	}
	return nil
}
