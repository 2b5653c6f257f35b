package pace

import (
	"sync"
	"time"
)

// HistogramSink receives frame duration samples in milliseconds.
// *histogram.Histogram satisfies this interface.
type HistogramSink interface {
	Add(sampleMS float64)
}

// StatsSnapshot is a point-in-time copy of a Pacer's frame statistics.
type StatsSnapshot struct {
	// TotalFrames is the number of pacing cycles completed.
	TotalFrames uint64

	// SkippedFrames counts whole refresh periods skipped during
	// presentation-time catch-up.
	SkippedFrames uint64

	// FenceTimeouts counts cycles where the previous frame's present
	// did not complete within the fence timeout.
	FenceTimeouts uint64

	// MinSwapDuration, MaxSwapDuration and MeanSwapDuration describe
	// the measured duration of the platform swap call.
	MinSwapDuration  time.Duration
	MaxSwapDuration  time.Duration
	MeanSwapDuration time.Duration

	// MeanPresentOffset is the mean absolute offset between the
	// requested presentation time and the platform-reported actual
	// present time, where feedback is available.
	MeanPresentOffset time.Duration
}

// frameStats accumulates frame statistics for one Pacer.
// It has its own lock so snapshots may be taken from another goroutine
// (e.g. a metrics scraper) while the render loop is running.
type frameStats struct {
	mu      sync.Mutex
	enabled bool

	totalFrames   uint64
	skippedFrames uint64
	fenceTimeouts uint64

	swapCount uint64
	swapSum   time.Duration
	swapMin   time.Duration
	swapMax   time.Duration

	offsetCount uint64
	offsetSum   time.Duration

	sink HistogramSink
}

func (s *frameStats) recordFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.totalFrames++
}

func (s *frameStats) recordSkipped(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || n <= 0 {
		return
	}
	s.skippedFrames += uint64(n)
}

func (s *frameStats) recordFenceTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.fenceTimeouts++
}

func (s *frameStats) recordSwap(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	if s.swapCount == 0 || d < s.swapMin {
		s.swapMin = d
	}
	if d > s.swapMax {
		s.swapMax = d
	}
	s.swapCount++
	s.swapSum += d
}

// recordFrameDuration forwards a frame's measured duration to the
// histogram sink, if one is attached.
func (s *frameStats) recordFrameDuration(d time.Duration) {
	s.mu.Lock()
	sink := s.sink
	enabled := s.enabled
	s.mu.Unlock()

	// The sink is called outside the lock; histogram Add is single-writer
	// by contract and the render loop is the only caller here.
	if enabled && sink != nil {
		sink.Add(float64(d) / float64(time.Millisecond))
	}
}

func (s *frameStats) recordPresentOffset(requested, actual time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	off := actual.Sub(requested)
	if off < 0 {
		off = -off
	}
	s.offsetCount++
	s.offsetSum += off
}

func (s *frameStats) setEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *frameStats) snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalFrames:     s.totalFrames,
		SkippedFrames:   s.skippedFrames,
		FenceTimeouts:   s.fenceTimeouts,
		MinSwapDuration: s.swapMin,
		MaxSwapDuration: s.swapMax,
	}
	if s.swapCount > 0 {
		snap.MeanSwapDuration = s.swapSum / time.Duration(s.swapCount)
	}
	if s.offsetCount > 0 {
		snap.MeanPresentOffset = s.offsetSum / time.Duration(s.offsetCount)
	}
	return snap
}

func (s *frameStats) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalFrames = 0
	s.skippedFrames = 0
	s.fenceTimeouts = 0
	s.swapCount = 0
	s.swapSum = 0
	s.swapMin = 0
	s.swapMax = 0
	s.offsetCount = 0
	s.offsetSum = 0
}
