package application

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// retry runs op up to maxAttempts times, waiting delay between attempts, and
// returns the last error if every attempt failed.
func retry(
	ctx context.Context, name string, op func(ctx context.Context) error,
	delay time.Duration, maxAttempts int,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(delay), uint64(maxAttempts-1),
		),
		ctx,
	)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		if err := op(ctx); err != nil {
			log.WithError(err).Debugf(
				"%s failed (attempt %d/%d)", name, attempt, maxAttempts,
			)
			return err
		}
		return nil
	}, policy)
}

// sleep waits for d and returns false if ctx is done first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
