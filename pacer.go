package pace

import (
	"log/slog"
	"sync"
	"time"
)

// SwapHandlers injects the platform presentation path into a Swap call.
// Only SwapBuffers is required; missing feedback callbacks degrade the
// corresponding pacing features rather than failing the call.
type SwapHandlers struct {
	// LastFrameIsComplete reports whether the previous frame's present
	// operation has completed (fence signaled). Nil means "always
	// complete": the wait phase is skipped.
	LastFrameIsComplete func() bool

	// PrevFrameGPUTime returns the GPU render duration of the most
	// recently completed frame. Nil disables GPU-time driven tuning.
	PrevFrameGPUTime func() time.Duration

	// SetPresentationTime asks the platform to display the next buffer
	// no earlier than t. Nil when the platform has no timed
	// presentation; the pacer then waits locally instead.
	SetPresentationTime func(t time.Time) error

	// SwapBuffers issues the platform swap/present call. Required.
	SwapBuffers func() error
}

// Pacer times buffer swaps against the display refresh cadence for one
// surface. Create one Pacer per swapchain/surface with New; drive it
// from the render loop by calling Swap once per frame.
//
// A Pacer must not be driven from two goroutines at once. Control
// methods (SetSwapInterval, EnableFramePacing, ...) and Stats are safe
// to call from other goroutines.
type Pacer struct {
	clock   Clock
	tracers tracerList
	stats   frameStats

	mu               sync.Mutex
	strategy         Strategy
	refreshPeriod    time.Duration
	swapInterval     time.Duration
	presentationTime time.Time
	pipelineMode     PipelineMode
	autoSwapInterval bool
	autoPipelineMode bool
	blockingWait     bool
	pacingEnabled    bool
	fenceTimeout     time.Duration
	tuner            intervalTuner

	frame       uint64
	lastSwapEnd time.Time
}

// New creates a Pacer. WithRefreshPeriod is required; everything else
// has defaults (see the Option constructors).
func New(opts ...Option) (*Pacer, error) {
	o := defaultPacerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	strategy := o.strategy
	if strategy == nil {
		strategy = ProbeStrategy(Capabilities{})
	}

	p := &Pacer{
		clock:            o.clock,
		strategy:         strategy,
		refreshPeriod:    o.refreshPeriod,
		swapInterval:     time.Duration(o.swapInterval) * o.refreshPeriod,
		pipelineMode:     PipelineOn,
		autoSwapInterval: o.autoSwapInterval,
		autoPipelineMode: o.autoPipelineMode,
		blockingWait:     o.blockingWait,
		pacingEnabled:    true,
		fenceTimeout:     o.fenceTimeout,
		tuner:            newIntervalTuner(o.frameWindow, o.intervalMargin, o.maxAutoSwapDuration),
	}
	p.stats.enabled = o.statsEnabled
	p.stats.sink = o.sink

	Logger().Info("pace: pacer created",
		slog.Duration("refresh_period", p.refreshPeriod),
		slog.Duration("swap_interval", p.swapInterval),
		slog.String("strategy", strategy.Name()))
	return p, nil
}

// Swap runs one pacing cycle and issues the platform swap call.
//
// The cycle is: start-frame and pre-wait tracers, wait for the previous
// frame's present to complete (bounded by the fence timeout), post-wait
// tracers, cadence auto-tuning, presentation deadline computation with
// skipped-frame catch-up, pre-swap tracers, the platform swap, and
// post-swap tracers. When frame pacing is disabled the call degrades to
// an immediate passthrough swap.
//
// The returned error is the SwapBuffers error, if any; pacing failures
// never fail the present call.
func (p *Pacer) Swap(h SwapHandlers) error {
	if h.SwapBuffers == nil {
		return ErrNoSwapBuffers
	}
	if !p.Enabled() {
		return h.SwapBuffers()
	}

	target := p.onPreSwap(h)

	if p.needPresentationTime(target) && h.SetPresentationTime != nil {
		if err := h.SetPresentationTime(target); err != nil {
			// Non-fatal: present ASAP instead.
			Logger().Warn("pace: set presentation time failed", slog.Any("error", err))
		}
	}

	swapStart := p.clock.Now()
	err := h.SwapBuffers()
	p.onPostSwap(target, swapStart, err)
	return err
}

// onPreSwap runs the pre-present half of the cycle and returns the
// presentation deadline for this frame.
func (p *Pacer) onPreSwap(h SwapHandlers) time.Time {
	p.mu.Lock()
	frame := p.frame + 1
	p.frame = frame
	lastTarget := p.presentationTime
	p.mu.Unlock()

	p.stats.recordFrame()
	p.tracers.startFrame(frame, lastTarget)
	p.tracers.preWait()

	cpuStart := p.lastSwapEnd
	p.waitForFrameComplete(h)

	now := p.clock.Now()
	var cpuTime time.Duration
	if !cpuStart.IsZero() {
		cpuTime = now.Sub(cpuStart)
	}
	var gpuTime time.Duration
	if h.PrevFrameGPUTime != nil {
		gpuTime = h.PrevFrameGPUTime()
	}

	p.tracers.postWait(cpuTime, gpuTime)
	p.stats.recordFrameDuration(cpuTime + gpuTime)
	p.autoTune(cpuTime, gpuTime)

	target := p.advancePresentationTime()

	p.tracers.preSwap(target)

	if !p.Strategy().TimedPresentation() {
		// No timed presentation: hold the frame back ourselves until
		// one refresh period before the deadline.
		sleepUntil(p.clock, target.Add(-p.RefreshPeriod()))
	}
	return target
}

// onPostSwap runs the post-present half of the cycle.
func (p *Pacer) onPostSwap(target, swapStart time.Time, err error) {
	end := p.clock.Now()
	p.stats.recordSwap(end.Sub(swapStart))
	p.lastSwapEnd = end

	p.tracers.postSwap(target)

	if err != nil {
		Logger().Warn("pace: swap buffers failed", slog.Any("error", err))
	}
}

// waitForFrameComplete blocks until the previous frame's present has
// completed or the fence timeout elapses. On timeout the frame proceeds
// anyway; the condition is recorded, never fatal.
func (p *Pacer) waitForFrameComplete(h SwapHandlers) {
	if h.LastFrameIsComplete == nil || h.LastFrameIsComplete() {
		return
	}
	if !p.BlockingWait() {
		return
	}

	timeout := p.FenceTimeout()
	poll := p.RefreshPeriod() / 4
	if poll <= 0 {
		poll = time.Millisecond
	}
	deadline := p.clock.Now().Add(timeout)
	for !h.LastFrameIsComplete() {
		if !p.clock.Now().Before(deadline) {
			p.stats.recordFenceTimeout()
			Logger().Warn("pace: fence wait timed out",
				slog.Duration("timeout", timeout))
			return
		}
		p.clock.Sleep(poll)
	}
}

// autoTune adjusts the swap interval and pipeline mode from the
// measured frame durations, when auto modes are enabled.
func (p *Pacer) autoTune(cpuTime, gpuTime time.Duration) {
	p.mu.Lock()
	auto := p.autoSwapInterval
	autoPipeline := p.autoPipelineMode
	if auto {
		p.tuner.add(cpuTime, gpuTime)
	}
	interval := p.swapInterval
	refresh := p.refreshPeriod
	mode := p.pipelineMode
	p.mu.Unlock()

	if autoPipeline {
		next := SelectPipelineMode(cpuTime, gpuTime, interval)
		if next != mode {
			p.mu.Lock()
			p.pipelineMode = next
			p.mu.Unlock()
			Logger().Debug("pace: pipeline mode changed", slog.String("mode", next.String()))
			mode = next
		}
	}

	if !auto {
		return
	}
	next := func() time.Duration {
		p.mu.Lock()
		defer p.mu.Unlock()
		n := p.tuner.decide(interval, refresh, mode)
		if n != 0 && n != p.swapInterval {
			p.swapInterval = n
			p.tuner.reset()
			return n
		}
		return 0
	}()
	if next != 0 {
		Logger().Info("pace: swap interval changed", slog.Duration("interval", next))
		p.tracers.swapIntervalChanged(next)
	}
}

// advancePresentationTime computes the deadline for the frame about to
// be presented. A stale deadline is caught up by whole refresh periods;
// every period beyond the first is a skipped frame.
func (p *Pacer) advancePresentationTime() time.Time {
	now := p.clock.Now()

	p.mu.Lock()
	if p.presentationTime.IsZero() {
		p.presentationTime = now.Add(p.swapInterval)
		target := p.presentationTime
		p.mu.Unlock()
		return target
	}

	target := p.presentationTime.Add(p.swapInterval)
	periods := 0
	for !target.After(now) {
		target = target.Add(p.refreshPeriod)
		periods++
	}
	p.presentationTime = target
	p.mu.Unlock()

	if periods > 1 {
		p.stats.recordSkipped(periods - 1)
		Logger().Debug("pace: catch-up", slog.Int("skipped_frames", periods-1))
	}
	return target
}

// needPresentationTime reports whether an explicit presentation
// timestamp should be handed to the platform for this frame. When the
// deadline is within one refresh period, presenting ASAP is equivalent.
func (p *Pacer) needPresentationTime(target time.Time) bool {
	if !p.Strategy().TimedPresentation() {
		return false
	}
	return target.Sub(p.clock.Now()) > p.RefreshPeriod()
}

// RecordPresentFeedback feeds the platform-reported actual present time
// for a frame back into the statistics. Backends with display-timing
// feedback call this when a past present's timing becomes known.
func (p *Pacer) RecordPresentFeedback(requested, actual time.Time) {
	p.stats.recordPresentOffset(requested, actual)
}

// RegisterTracer adds a set of observability callbacks and returns a
// token for UnregisterTracer. Safe to call from any goroutine.
func (p *Pacer) RegisterTracer(t Tracer) TracerToken {
	return p.tracers.register(t)
}

// UnregisterTracer removes a previously registered tracer. Unknown
// tokens are a benign no-op; the return value reports whether a tracer
// was removed.
func (p *Pacer) UnregisterTracer(token TracerToken) bool {
	return p.tracers.unregister(token)
}

// PresentationTime returns the deadline computed for the most recent
// frame.
func (p *Pacer) PresentationTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presentationTime
}

// RefreshPeriod returns the configured display refresh period.
func (p *Pacer) RefreshPeriod() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshPeriod
}

// SetRefreshPeriod updates the refresh period at runtime, for
// variable-refresh displays. The swap interval keeps its multiplier.
func (p *Pacer) SetRefreshPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	mult := p.swapInterval / p.refreshPeriod
	if mult < 1 {
		mult = 1
	}
	p.refreshPeriod = d
	p.swapInterval = mult * d
	p.tuner.reset()
}

// SwapInterval returns the current pacing cadence. It is always a
// positive whole multiple of the refresh period.
func (p *Pacer) SwapInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapInterval
}

// SetSwapInterval sets the cadence to n refresh periods and disables
// auto-tuning of the interval. Values below 1 are ignored.
func (p *Pacer) SetSwapInterval(n int) {
	if n < 1 {
		return
	}
	var changed time.Duration
	p.mu.Lock()
	p.autoSwapInterval = false
	next := time.Duration(n) * p.refreshPeriod
	if next != p.swapInterval {
		p.swapInterval = next
		p.tuner.reset()
		changed = next
	}
	p.mu.Unlock()
	if changed != 0 {
		p.tracers.swapIntervalChanged(changed)
	}
}

// SetAutoSwapInterval enables or disables cadence self-tuning.
func (p *Pacer) SetAutoSwapInterval(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoSwapInterval = enabled
	if !enabled {
		p.tuner.reset()
	}
}

// SetAutoPipelineMode enables or disables pipeline mode self-selection.
func (p *Pacer) SetAutoPipelineMode(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoPipelineMode = enabled
}

// SetMaxAutoSwapDuration caps the cadence auto-tuning may choose.
func (p *Pacer) SetMaxAutoSwapDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tuner.maxDur = d
}

// CurrentPipelineMode returns the pipeline mode in effect.
func (p *Pacer) CurrentPipelineMode() PipelineMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pipelineMode
}

// FenceTimeout returns the bound on the blocking fence wait.
func (p *Pacer) FenceTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fenceTimeout
}

// SetFenceTimeout sets the bound on the blocking fence wait.
// Non-positive values are ignored.
func (p *Pacer) SetFenceTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fenceTimeout = d
}

// BlockingWait reports whether the pacer blocks on the previous frame's
// completion fence.
func (p *Pacer) BlockingWait() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blockingWait
}

// EnableBlockingWait enables or disables blocking on the completion
// fence. An in-flight wait is not interrupted.
func (p *Pacer) EnableBlockingWait(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blockingWait = enabled
}

// Enabled reports whether frame pacing is active.
func (p *Pacer) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pacingEnabled
}

// EnableFramePacing enables or disables pacing, starting with the next
// Swap call. While disabled, Swap degrades to an immediate passthrough.
func (p *Pacer) EnableFramePacing(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pacingEnabled = enabled
}

// ResetFramePacing discards learned pacing state: the presentation
// deadline and the auto-tuner's observation window. The next Swap
// starts a fresh cadence from "now".
func (p *Pacer) ResetFramePacing() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presentationTime = time.Time{}
	p.tuner.reset()
}

// Strategy returns the presentation timing strategy in effect.
func (p *Pacer) Strategy() Strategy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.strategy
}

// SwapDuration returns the mean measured duration of the platform swap
// call.
func (p *Pacer) SwapDuration() time.Duration {
	return p.stats.snapshot().MeanSwapDuration
}

// Stats returns a snapshot of the frame statistics.
func (p *Pacer) Stats() StatsSnapshot {
	return p.stats.snapshot()
}

// ClearStats resets the frame statistics.
func (p *Pacer) ClearStats() {
	p.stats.clear()
}

// EnableStats enables or disables statistics collection.
func (p *Pacer) EnableStats(enabled bool) {
	p.stats.setEnabled(enabled)
}
