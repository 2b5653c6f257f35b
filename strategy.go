package pace

// Capabilities describes what the platform's presentation path supports.
// A backend adapter fills this in once, at initialization, typically from
// a display-timing extension query.
type Capabilities struct {
	// TimedPresentation reports whether the platform accepts an explicit
	// presentation timestamp for the next present call.
	TimedPresentation bool
}

// Strategy is the presentation timing strategy selected for a surface.
// It is chosen once at capability-probe time and never re-probed; the
// two implementations are TimedPresentStrategy and FallbackStrategy.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// TimedPresentation reports whether the pacer should hand explicit
	// presentation timestamps to the platform. When false, the pacer
	// itself waits out the pacing delay before presenting.
	TimedPresentation() bool
}

// TimedPresentStrategy paces by requesting explicit presentation
// timestamps from the platform. The present call is issued immediately;
// the display holds the frame until the requested time.
type TimedPresentStrategy struct{}

// Name implements Strategy.
func (TimedPresentStrategy) Name() string { return "timed-present" }

// TimedPresentation implements Strategy.
func (TimedPresentStrategy) TimedPresentation() bool { return true }

// FallbackStrategy paces without platform support for timed
// presentation: the pacer sleeps until one refresh period before the
// deadline and then presents as soon as possible.
type FallbackStrategy struct{}

// Name implements Strategy.
func (FallbackStrategy) Name() string { return "fallback" }

// TimedPresentation implements Strategy.
func (FallbackStrategy) TimedPresentation() bool { return false }

// ProbeStrategy selects a Strategy from probed platform capabilities.
func ProbeStrategy(caps Capabilities) Strategy {
	if caps.TimedPresentation {
		return TimedPresentStrategy{}
	}
	return FallbackStrategy{}
}
