package sync

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultMaxAttempts is the number of times an operation is attempted
	// before it's counted as a failure. It includes the first attempt.
	DefaultMaxAttempts = 4

	// DefaultRetryDelay is how long to wait between attempts.
	DefaultRetryDelay = 100 * time.Millisecond
)

// RetryPolicy bounds how many times a single copy or removal is attempted.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay}
}

// retry calls attempt until it succeeds or the policy's attempts are used up.
// onFailure is called after each failed attempt with its 1-indexed number.
// The delay is slept between attempts, but not after the last one. It returns
// the number of attempts made and the last error.
func (p RetryPolicy) retry(clock clockwork.Clock, attempt func() error,
	onFailure func(attempt int, err error)) (int, error) {

	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for i := 1; i <= maxAttempts; i++ {
		if err = attempt(); err == nil {
			return i, nil
		}

		onFailure(i, err)
		if i < maxAttempts && p.Delay > 0 {
			clock.Sleep(p.Delay)
		}
	}
	return maxAttempts, err
}
