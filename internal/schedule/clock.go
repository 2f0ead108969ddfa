package schedule

import "time"

// Clock returns the current time. Tests inject a MockClock.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// MockClock always reports MockTime.
type MockClock struct {
	MockTime time.Time
}

func (m MockClock) Now() time.Time { return m.MockTime }
