package verification

import (
	"context"
	"time"
)

// Poller calls a check function at a fixed interval, sleeping before each
// call, until the check reports done, fails or ctx ends.
type Poller struct {
	Interval time.Duration
	// Sleep waits for d; tests replace it to avoid real delays
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller returns a poller that really sleeps.
func NewPoller(interval time.Duration) Poller {
	return Poller{Interval: interval, Sleep: sleepContext}
}

// Poll runs check until it returns done or an error.
func (p Poller) Poll(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	for {
		if err := sleep(ctx, p.Interval); err != nil {
			return err
		}
		done, err := check(ctx)
		if err != nil || done {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
