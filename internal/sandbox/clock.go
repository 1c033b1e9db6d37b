package sandbox

import (
	"context"
	"time"
)

// Clock reports seconds elapsed since the session started and the wall
// time used for sound cooldowns.
type Clock interface {
	Elapsed() float64
	Now() time.Time
}

// WallClock reports real time since it was created.
type WallClock struct {
	start time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Elapsed() float64 { return time.Since(c.start).Seconds() }
func (c *WallClock) Now() time.Time   { return time.Now() }

// ManualClock only moves when told to. Headless runs and tests use it.
type ManualClock struct {
	origin  time.Time
	elapsed float64
}

func NewManualClock() *ManualClock {
	return &ManualClock{origin: time.Unix(0, 0)}
}

func (c *ManualClock) Advance(seconds float64) { c.elapsed += seconds }

func (c *ManualClock) Elapsed() float64 { return c.elapsed }

func (c *ManualClock) Now() time.Time {
	return c.origin.Add(time.Duration(c.elapsed * float64(time.Second)))
}

// Frames emits a frame signal fps times per second until ctx is done.
func Frames(ctx context.Context, fps int) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
