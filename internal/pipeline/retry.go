package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/gradeview/internal/backend"
)

// RetryPolicy bounds how often and how patiently a backend call is retried.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// DefaultRetry tries three times with exponential backoff from one second.
var DefaultRetry = RetryPolicy{Attempts: 3, Base: time.Second, Max: 30 * time.Second}

// Delay returns the wait before retry n (0-indexed) with up to 50% jitter.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Base <= 0 {
		return 0
	}
	d := p.Base << uint(min(attempt, 16))
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts run out. onRetry is called before each wait.
func (p RetryPolicy) Do(ctx context.Context, fn func() error, onRetry func(attempt int, err error)) error {
	attempts := max(p.Attempts, 1)
	var err error
	for attempt := range attempts {
		if err = fn(); err == nil || !backend.IsRetryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		select {
		case <-time.After(p.Delay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
