package database

import (
	"context"
	"time"

	"github.com/recordbook/recordbook/pkg/logger"
)

// Backoff controls how Retry spaces out connection attempts.
type Backoff struct {
	Attempts int
	Initial  time.Duration
}

// DefaultBackoff tolerates a database container that starts a few seconds
// after the service.
var DefaultBackoff = Backoff{Attempts: 5, Initial: time.Second}

// Retry calls connect until it succeeds, the attempts are used up or ctx is
// done. The wait doubles after every failure.
func Retry[T any](ctx context.Context, what string, b Backoff, connect func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	wait := b.Initial
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		out, err = connect(ctx)
		if err == nil {
			return out, nil
		}
		logger.Warnf("attempt %d/%d: failed to connect to %s: %v", attempt, b.Attempts, what, err)
		if attempt == b.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return out, err
}
