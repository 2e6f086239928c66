package calendar

import (
	"context"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// DefaultTolerance is the wall/monotonic disagreement treated as a clock jump.
const DefaultTolerance = 2 * time.Second

// Watcher polls a Source and reports wall clock jumps and time zone changes.
// It compares the wall time elapsed between ticks with the monotonic time elapsed.
type Watcher struct {
	// source is the clock being observed.
	source Source
	// interval is the polling period.
	interval time.Duration
	// tolerance is the accepted drift between wall and monotonic time per tick.
	tolerance time.Duration
	// onChange is invoked once per detected jump.
	onChange func(ctx context.Context)
}

// NewWatcher creates a watcher; onChange runs on the watcher goroutine.
func NewWatcher(source Source, interval, tolerance time.Duration, onChange func(ctx context.Context)) *Watcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	return &Watcher{
		source:    source,
		interval:  interval,
		tolerance: tolerance,
		onChange:  onChange,
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "calendar")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	lastMono := time.Now()
	lastWall := w.source.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		mono := time.Now()
		wall := w.source.Now()

		elapsedMono := mono.Sub(lastMono)
		elapsedWall := wall.Round(0).Sub(lastWall.Round(0))
		drift := (elapsedWall - elapsedMono).Abs()

		_, lastOffset := lastWall.Zone()
		_, offset := wall.Zone()

		if drift > w.tolerance || offset != lastOffset || wall.Location() != lastWall.Location() {
			logger.InfoKV(ctx, "Clock change detected",
				"drift", drift,
				"zone", wall.Location().String(),
				"offset_seconds", offset,
			)

			w.onChange(ctx)
		}

		lastMono, lastWall = mono, wall
	}
}
