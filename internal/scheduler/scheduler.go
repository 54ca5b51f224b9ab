// Package scheduler runs tasks once, on an interval or daily at a wall-clock
// time, and retries failed tasks under an explicit policy.
package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task now and then on every tick until ctx is done. A tick that
// fires while task is still running is dropped, not queued.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	run(ctx, name, task)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run(ctx, name, task)
		}
	}
}

// Daily runs task every day at hour:minute local time until ctx is done.
// Missed slots are never caught up: after each run the next slot is
// computed from the current time.
func Daily(ctx context.Context, hour, minute int, name string, task Task) {
	for {
		next := nextRunTime(time.Now(), hour, minute)
		log.Printf("[%s] next run at %s", name, next.Format(time.RFC3339))
		if err := sleepUntil(ctx, next); err != nil {
			return
		}
		run(ctx, name, task)
	}
}

func run(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	if err := task(ctx); err != nil {
		log.Printf("[%s] error: %v", name, err)
	}
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func sleepUntil(ctx context.Context, target time.Time) error {
	return sleepWithContext(ctx, time.Until(target))
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
