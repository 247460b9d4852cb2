package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/pianopractice/practice-tracker/internal/state"
)

const maxBackoff = 30 * time.Second

// StartPoller launches a background goroutine that refreshes the coordinator
// every interval, backing off while refreshes keep failing. It returns
// immediately; the goroutine exits when ctx is cancelled.
func StartPoller(ctx context.Context, coord *state.Coordinator, interval time.Duration, logger *slog.Logger) {
	if coord == nil || interval <= 0 {
		return
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			tick, err := coord.BumpRefresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				if logger != nil {
					logger.Warn("refresh failed", "error", err, "failures", failures, "tick", tick)
				}
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff (or base, when base is already larger).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	limit := maxBackoff
	if base > limit {
		limit = base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= limit {
			return limit
		}
	}
	return wait
}
