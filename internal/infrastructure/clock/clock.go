// Package clock abstracts the time source so narrative pacing delays
// and jail timers are controllable in tests.
package clock

import (
	"context"
	"time"
)

// Clock is the engine's time source. Sleep is cancellable: it returns
// the context error as soon as the context is done.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the wall-clock implementation.
type System struct{}

func NewSystem() System { return System{} }

func (System) Now() time.Time { return time.Now() }

func (System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Fake is a manually advanced clock for tests. Sleeps return
// immediately; the fake only tracks the current instant.
type Fake struct {
	Current time.Time
}

func NewFake(start time.Time) *Fake { return &Fake{Current: start} }

func (f *Fake) Now() time.Time { return f.Current }

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Current = f.Current.Add(d)
	return nil
}

// Advance moves the fake clock forward.
func (f *Fake) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
