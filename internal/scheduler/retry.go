package scheduler

import (
	"context"
	"log"
	"time"
)

// RetryPolicy is how many times a failed task is run again and how long to
// wait between attempts.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Retries: 3, Delay: 15 * time.Minute}
}

// Retry runs task until it succeeds, at most 1+p.Retries times, and returns
// the last error.
func Retry(ctx context.Context, p RetryPolicy, name string, task Task) error {
	attempts := 1 + max(p.Retries, 0)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := task(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == attempts {
			break
		}
		log.Printf("[%s] attempt=%d/%d failed err=%v retry_in=%s", name, attempt, attempts, err, p.Delay)
		if err := sleepWithContext(ctx, p.Delay); err != nil {
			return err
		}
	}
	return lastErr
}
