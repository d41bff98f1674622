package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces outgoing page requests. A nil *Limiter never waits.
type Limiter struct {
	rate  *rate.Limiter
	clock Timer
}

// New returns a limiter allowing one request per interval, or nil when interval is not positive.
// Waiting goes through clock; nil means the wall clock.
func New(interval time.Duration, clock Timer) *Limiter {
	if interval <= 0 {
		return nil
	}

	if clock == nil {
		clock = NewClock()
	}

	return &Limiter{
		rate:  rate.NewLimiter(rate.Every(interval), 1),
		clock: clock,
	}
}

// FromOptions builds a limiter from a fixed delay or a requests-per-second cap.
// RPS overrides delay.
func FromOptions(delay time.Duration, rps float64, clock Timer) *Limiter {
	return New(Interval(delay, rps), clock)
}

// Interval resolves delay and rps into the spacing between requests.
func Interval(delay time.Duration, rps float64) time.Duration {
	if rps > 0 {
		interval := time.Duration(float64(time.Second) / rps)
		if interval <= 0 {
			return time.Nanosecond
		}

		return interval
	}

	if delay < 0 {
		return 0
	}

	return delay
}

// Wait blocks until the next request may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	now := l.clock.Now()
	reservation := l.rate.ReserveN(now, 1)

	if err := l.clock.Sleep(ctx, reservation.DelayFrom(now)); err != nil {
		reservation.CancelAt(now)

		return err
	}

	return nil
}
