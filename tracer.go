package pace

import (
	"sync"
	"time"
)

// Tracer is a set of observability callbacks invoked at fixed points in
// the per-frame pacing cycle. Any callback may be nil. UserData is
// passed back verbatim to every callback.
//
// For a single cycle the phases fire in the order StartFrame, PreWait,
// PostWait, PreSwap, PostSwap; SwapIntervalChanged fires between
// PostWait and PreSwap on the cycle where the cadence changes.
// Callbacks within a phase run in registration order.
type Tracer struct {
	// UserData is handed back to every callback.
	UserData any

	// StartFrame fires at the top of the cycle with the frame number
	// and the deadline computed for the previous frame.
	StartFrame func(userData any, frame uint64, target time.Time)

	// PreWait fires before the pacer waits for the previous frame's
	// present to complete.
	PreWait func(userData any)

	// PostWait fires after the wait, with the measured CPU and GPU
	// durations of the previous frame.
	PostWait func(userData any, cpuTime, gpuTime time.Duration)

	// PreSwap fires just before the platform swap call, with the
	// presentation deadline for the frame being presented.
	PreSwap func(userData any, target time.Time)

	// PostSwap fires after the platform swap call returns.
	PostSwap func(userData any, target time.Time)

	// SwapIntervalChanged fires when auto-tuning changes the pacing
	// cadence.
	SwapIntervalChanged func(userData any, interval time.Duration)
}

// TracerToken identifies a registered Tracer for later removal.
// The zero token is never issued.
type TracerToken uint64

// tracerList holds registered tracers in registration order.
//
// The list has its own lock so registration is safe from a different
// goroutine than the render loop. A registration mid-cycle may or may
// not observe that cycle's remaining callbacks.
type tracerList struct {
	mu      sync.Mutex
	next    TracerToken
	entries []tracerEntry
}

type tracerEntry struct {
	token  TracerToken
	tracer Tracer
}

// register appends t and returns its removal token.
func (l *tracerList) register(t Tracer) TracerToken {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	l.entries = append(l.entries, tracerEntry{token: l.next, tracer: t})
	return l.next
}

// unregister removes the tracer identified by token. It reports whether
// a tracer was removed; an unknown token is a no-op.
func (l *tracerList) unregister(token TracerToken) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.token == token {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot copies the current tracers so dispatch runs without the lock.
func (l *tracerList) snapshot() []Tracer {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}
	out := make([]Tracer, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.tracer
	}
	return out
}

func (l *tracerList) startFrame(frame uint64, target time.Time) {
	for _, t := range l.snapshot() {
		if t.StartFrame != nil {
			t.StartFrame(t.UserData, frame, target)
		}
	}
}

func (l *tracerList) preWait() {
	for _, t := range l.snapshot() {
		if t.PreWait != nil {
			t.PreWait(t.UserData)
		}
	}
}

func (l *tracerList) postWait(cpuTime, gpuTime time.Duration) {
	for _, t := range l.snapshot() {
		if t.PostWait != nil {
			t.PostWait(t.UserData, cpuTime, gpuTime)
		}
	}
}

func (l *tracerList) preSwap(target time.Time) {
	for _, t := range l.snapshot() {
		if t.PreSwap != nil {
			t.PreSwap(t.UserData, target)
		}
	}
}

func (l *tracerList) postSwap(target time.Time) {
	for _, t := range l.snapshot() {
		if t.PostSwap != nil {
			t.PostSwap(t.UserData, target)
		}
	}
}

func (l *tracerList) swapIntervalChanged(interval time.Duration) {
	for _, t := range l.snapshot() {
		if t.SwapIntervalChanged != nil {
			t.SwapIntervalChanged(t.UserData, interval)
		}
	}
}
