package sync

import (
	log "github.com/sirupsen/logrus"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// remove deletes a stale replica file, retrying according to the syncer's
// policy. It returns whether the file was eventually removed.
func (s *Syncer) remove(passLog log.FieldLogger, path string) bool {
	fileLog := passLog.WithField("target", path)

	attempts, err := s.retry.retry(s.clock,
		func() error { return s.removeOnce(path) },
		func(attempt int, err error) {
			fileLog.WithError(err).WithFields(log.Fields{
				"attempt":     attempt,
				"maxAttempts": s.retry.MaxAttempts,
			}).Errorf("Error deleting file %s. Attempt %d/%d",
				path, attempt, s.retry.MaxAttempts)
		})
	if err != nil {
		fileLog.WithError(err).WithField("attempts", attempts).Errorf(
			"Failed to delete file after %d attempts: %s", attempts, path)
		return false
	}

	fileLog.Warnf("Deleted: %s", path)
	return true
}

// removeOnce makes a single attempt at deleting path. A file that can't be
// opened isn't assumed to be deletable.
func (s *Syncer) removeOnce(path string) error {
	if !s.ops.Accessible(path) {
		return errors.WithContext(errors.ErrNotAccessible, path)
	}

	if err := s.ops.Remove(path); err != nil {
		return errors.WithContext(err, "remove")
	}
	return nil
}
