package pace

import "time"

// Clock abstracts time measurement and waiting so the pacing logic can
// be driven deterministically in tests and simulations. Production code
// uses the system clock; pass a custom Clock via WithClock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for at least d. Implementations may return
	// immediately for non-positive durations.
	Sleep(d time.Duration)
}

// systemClock is the default Clock backed by the time package.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// sleepUntil blocks on c until t has passed. No-op if t is already past.
func sleepUntil(c Clock, t time.Time) {
	c.Sleep(t.Sub(c.Now()))
}
