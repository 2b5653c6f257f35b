package pace

import "time"

// Option configures a Pacer during creation.
// Use functional options to customize Pacer behavior.
//
// Example:
//
//	// 60 Hz display, defaults for everything else
//	p, err := pace.New(pace.WithRefreshPeriod(16666 * time.Microsecond))
//
//	// Fixed cadence of 2 refresh periods, no auto-tuning
//	p, err := pace.New(
//	    pace.WithRefreshPeriod(16666*time.Microsecond),
//	    pace.WithSwapInterval(2),
//	    pace.WithAutoSwapInterval(false),
//	)
type Option func(*pacerOptions)

// pacerOptions holds optional configuration for Pacer creation.
type pacerOptions struct {
	refreshPeriod       time.Duration
	swapInterval        int
	fenceTimeout        time.Duration
	autoSwapInterval    bool
	autoPipelineMode    bool
	blockingWait        bool
	maxAutoSwapDuration time.Duration
	frameWindow         int
	intervalMargin      time.Duration
	statsEnabled        bool
	clock               Clock
	strategy            Strategy
	sink                HistogramSink
}

// defaultPacerOptions returns the default pacer options.
// The refresh period has no default; it must be provided.
func defaultPacerOptions() pacerOptions {
	return pacerOptions{
		swapInterval:        1,
		fenceTimeout:        50 * time.Millisecond,
		autoSwapInterval:    true,
		autoPipelineMode:    true,
		blockingWait:        true,
		maxAutoSwapDuration: 50 * time.Millisecond,
		frameWindow:         10,
		intervalMargin:      time.Millisecond,
		statsEnabled:        true,
		clock:               systemClock{},
		strategy:            nil, // probed as FallbackStrategy if nil
	}
}

func (o *pacerOptions) validate() error {
	if o.refreshPeriod <= 0 {
		return ErrNoRefreshPeriod
	}
	if o.swapInterval < 1 {
		return &InvalidOptionError{Option: "WithSwapInterval", Reason: "must be at least 1"}
	}
	if o.fenceTimeout <= 0 {
		return &InvalidOptionError{Option: "WithFenceTimeout", Reason: "must be positive"}
	}
	if o.frameWindow < 1 {
		return &InvalidOptionError{Option: "WithFrameWindow", Reason: "must be at least 1"}
	}
	if o.intervalMargin < 0 {
		return &InvalidOptionError{Option: "WithSwapIntervalMargin", Reason: "must not be negative"}
	}
	if o.maxAutoSwapDuration < o.refreshPeriod {
		return &InvalidOptionError{Option: "WithMaxAutoSwapDuration", Reason: "must be at least one refresh period"}
	}
	return nil
}

// WithRefreshPeriod sets the display's refresh period. Required.
// The value normally comes from the platform's display-timing query and
// can be updated later with [Pacer.SetRefreshPeriod] on variable-refresh
// displays.
func WithRefreshPeriod(d time.Duration) Option {
	return func(o *pacerOptions) { o.refreshPeriod = d }
}

// WithSwapInterval sets the initial pacing cadence as a multiple of the
// refresh period. Default 1. Auto-tuning may change it later unless
// disabled with WithAutoSwapInterval(false).
func WithSwapInterval(n int) Option {
	return func(o *pacerOptions) { o.swapInterval = n }
}

// WithFenceTimeout bounds the blocking wait for the previous frame's
// present to complete. Default 50ms. On timeout the frame proceeds with
// the best available timestamps; the pacer never deadlocks on a fence.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *pacerOptions) { o.fenceTimeout = d }
}

// WithAutoSwapInterval enables or disables cadence self-tuning from
// observed frame durations. Default enabled.
func WithAutoSwapInterval(enabled bool) Option {
	return func(o *pacerOptions) { o.autoSwapInterval = enabled }
}

// WithAutoPipelineMode enables or disables pipeline mode self-selection.
// Default enabled.
func WithAutoPipelineMode(enabled bool) Option {
	return func(o *pacerOptions) { o.autoPipelineMode = enabled }
}

// WithBlockingWait enables or disables blocking on the previous frame's
// completion fence. Default enabled. When disabled, an incomplete frame
// is noted and the cycle proceeds immediately.
func WithBlockingWait(enabled bool) Option {
	return func(o *pacerOptions) { o.blockingWait = enabled }
}

// WithMaxAutoSwapDuration caps the cadence that auto-tuning may choose.
// Default 50ms. Sustained GPU times beyond the cap no longer slow the
// swap interval down.
func WithMaxAutoSwapDuration(d time.Duration) Option {
	return func(o *pacerOptions) { o.maxAutoSwapDuration = d }
}

// WithFrameWindow sets how many consecutive frames the auto-tuner
// observes before it may change the cadence. Default 10. Larger windows
// mean more hysteresis: single-frame spikes never change the interval.
func WithFrameWindow(n int) Option {
	return func(o *pacerOptions) { o.frameWindow = n }
}

// WithSwapIntervalMargin sets the headroom the auto-tuner requires
// before speeding the cadence back up. Default 1ms.
func WithSwapIntervalMargin(d time.Duration) Option {
	return func(o *pacerOptions) { o.intervalMargin = d }
}

// WithStats enables or disables frame statistics collection. Default
// enabled.
func WithStats(enabled bool) Option {
	return func(o *pacerOptions) { o.statsEnabled = enabled }
}

// WithClock sets a custom Clock for dependency injection.
// Tests and simulations use this to drive the pacer deterministically.
func WithClock(c Clock) Option {
	return func(o *pacerOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithStrategy sets the presentation timing strategy explicitly,
// bypassing ProbeStrategy. Backend adapters normally derive this from
// their Capabilities instead.
func WithStrategy(s Strategy) Option {
	return func(o *pacerOptions) { o.strategy = s }
}

// WithHistogramSink forwards each frame's measured duration, in
// milliseconds, to a statistics sink such as *histogram.Histogram.
func WithHistogramSink(sink HistogramSink) Option {
	return func(o *pacerOptions) { o.sink = sink }
}
