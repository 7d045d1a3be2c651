package roundutil

import "time"

// Clock abstracts the current time so that date parsing and scheduling can
// be tested deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is a fake implementation of the Clock interface.
type FakeClock struct {
	NowFn func() time.Time
}

func (f *FakeClock) Now() time.Time {
	if f.NowFn != nil {
		return f.NowFn()
	}
	return time.Now()
}

// FixedClock returns a FakeClock that always reports t.
func FixedClock(t time.Time) *FakeClock {
	return &FakeClock{NowFn: func() time.Time { return t }}
}
