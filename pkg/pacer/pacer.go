// Package pacer inserts randomized pauses between outbound requests.
package pacer

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer blocks for a duration somewhere in [min, max].
type Pacer interface {
	Pause(ctx context.Context, min, max time.Duration) (time.Duration, error)
}

// Random picks a uniform duration in the range and sleeps for it.
type Random struct {
	float func() float64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRandom returns a Pacer backed by math/rand and a context-aware timer.
func NewRandom() *Random {
	return &Random{float: rand.Float64, sleep: Sleep}
}

// Pause sleeps for a random duration in [min, max]. A max below min is treated as min.
func (p *Random) Pause(ctx context.Context, min, max time.Duration) (time.Duration, error) {
	d := Pick(min, max, p.float())
	if d <= 0 {
		return 0, nil
	}
	return d, p.sleep(ctx, d)
}

// Pick maps f in [0,1) onto [min, max].
func Pick(min, max time.Duration, f float64) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(f*float64(max-min))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Nop never sleeps. It records every requested range, which is handy in tests.
type Nop struct {
	Calls [][2]time.Duration
}

func (n *Nop) Pause(_ context.Context, min, max time.Duration) (time.Duration, error) {
	n.Calls = append(n.Calls, [2]time.Duration{min, max})
	return 0, nil
}
