package pace

import "errors"

// Errors.
var (
	// ErrNoRefreshPeriod is returned by New when no refresh period was
	// configured. The refresh period is the one input the pacer cannot
	// guess; it must come from the platform's display-timing query.
	ErrNoRefreshPeriod = errors.New("pace: refresh period is required")

	// ErrNoSwapBuffers is returned by Swap when the handler set has no
	// SwapBuffers callback. Without it there is nothing to present.
	ErrNoSwapBuffers = errors.New("pace: SwapHandlers.SwapBuffers is required")
)

// InvalidOptionError indicates an option carried an out-of-range value.
type InvalidOptionError struct {
	Option string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return "pace: invalid option " + e.Option + ": " + e.Reason
}
