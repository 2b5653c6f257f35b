package pace

import "time"

// frameDuration records the measured stage durations of one frame.
type frameDuration struct {
	cpu time.Duration
	gpu time.Duration
}

// total returns the effective duration of the frame for cadence
// decisions: with pipelining the stages overlap, so the longer stage
// bounds the frame; without, they run back to back.
func (f frameDuration) total(mode PipelineMode) time.Duration {
	if mode == PipelineOn {
		if f.cpu > f.gpu {
			return f.cpu
		}
		return f.gpu
	}
	return f.cpu + f.gpu
}

// intervalTuner decides when to change the swap interval, with
// hysteresis: a cadence change requires a full observation window on
// the same side of the threshold, so single-frame spikes never flip
// the interval. The window restarts after every change.
//
// The window length and headroom margin are configuration, not
// contract; tune them against target-device behavior.
type intervalTuner struct {
	window int
	margin time.Duration
	maxDur time.Duration

	frames []frameDuration
	n      int // frames observed since last reset, capped at len(frames)
	idx    int // next write position
}

func newIntervalTuner(window int, margin, maxDur time.Duration) intervalTuner {
	return intervalTuner{
		window: window,
		margin: margin,
		maxDur: maxDur,
		frames: make([]frameDuration, window),
	}
}

// add records one frame's measured durations.
func (t *intervalTuner) add(cpu, gpu time.Duration) {
	t.frames[t.idx] = frameDuration{cpu: cpu, gpu: gpu}
	t.idx = (t.idx + 1) % len(t.frames)
	if t.n < len(t.frames) {
		t.n++
	}
}

// reset discards the observation window. Called after every cadence
// change and on ResetFramePacing.
func (t *intervalTuner) reset() {
	t.n = 0
	t.idx = 0
}

func (t *intervalTuner) full() bool { return t.n == len(t.frames) }

// bounds returns the shortest and longest effective frame durations in
// the window.
func (t *intervalTuner) bounds(mode PipelineMode) (min, max time.Duration) {
	for i := 0; i < t.n; i++ {
		d := t.frames[i].total(mode)
		if i == 0 || d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// decide returns the swap interval the pacer should move to, or 0 for
// no change. interval and the returned value are whole multiples of
// refresh.
func (t *intervalTuner) decide(interval, refresh time.Duration, mode PipelineMode) time.Duration {
	if !t.full() || refresh <= 0 {
		return 0
	}

	best, worst := t.bounds(mode)

	// Sustained excess: every frame in the window ran long. A single
	// spike leaves best below the interval and changes nothing.
	if best > interval {
		need := ceilMultiple(worst, refresh)
		if limit := floorMultiple(t.maxDur, refresh); need > limit {
			need = limit
		}
		if need > interval {
			return need
		}
		return 0
	}

	// Sustained headroom: the whole window fits a faster cadence with
	// margin to spare.
	if interval > refresh && worst < interval-refresh-t.margin {
		need := ceilMultiple(worst+t.margin, refresh)
		if need < refresh {
			need = refresh
		}
		if need < interval {
			return need
		}
	}
	return 0
}

// ceilMultiple rounds d up to a whole multiple of unit, minimum one unit.
func ceilMultiple(d, unit time.Duration) time.Duration {
	if d <= unit {
		return unit
	}
	n := d / unit
	if d%unit != 0 {
		n++
	}
	return n * unit
}

// floorMultiple rounds d down to a whole multiple of unit, minimum one unit.
func floorMultiple(d, unit time.Duration) time.Duration {
	if d <= unit {
		return unit
	}
	return (d / unit) * unit
}
