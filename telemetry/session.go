package telemetry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/pace/histogram"
)

// MetricID identifies one instrumented measurement point within a
// session, e.g. one pacer's frame-time stream.
type MetricID uint32

// ErrSessionFull is returned by CreateFrameTimeHistogram when the
// session already holds its maximum number of histograms.
var ErrSessionFull = errors.New("telemetry: session is full")

// ErrDuplicateMetric is returned when a metric id is registered twice
// in the same session.
var ErrDuplicateMetric = errors.New("telemetry: metric already registered")

// Session is one recording interval's worth of histograms.
//
// A session is created with a fixed capacity, filled by the render
// loop, and periodically drained by the uploader: BuildReport snapshots
// it and ClearData resets the histograms for the next interval.
type Session struct {
	id  string
	cap int

	mu        sync.Mutex
	metrics   map[MetricID]*histogram.Histogram
	startTime time.Time
	lastPing  time.Time
}

// NewSession creates an empty session that can hold up to capacity
// histograms. The session id is a fresh UUID.
func NewSession(capacity int) *Session {
	return &Session{
		id:      uuid.NewString(),
		cap:     capacity,
		metrics: make(map[MetricID]*histogram.Histogram, capacity),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// CreateFrameTimeHistogram registers a histogram for id and returns it.
// It returns ErrSessionFull at capacity and ErrDuplicateMetric when id
// is already registered.
func (s *Session) CreateFrameTimeHistogram(id MetricID, settings histogram.Settings) (*histogram.Histogram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.metrics[id]; ok {
		return nil, ErrDuplicateMetric
	}
	if len(s.metrics) >= s.cap {
		return nil, ErrSessionFull
	}
	h := histogram.New(settings)
	s.metrics[id] = h
	return h, nil
}

// Get returns the histogram registered for id, or nil.
func (s *Session) Get(id MetricID) *histogram.Histogram {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics[id]
}

// NonEmpty reports whether any histogram in the session holds samples.
func (s *Session) NonEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.metrics {
		if h.Count() > 0 {
			return true
		}
	}
	return false
}

// Ping records activity at time t. The first ping starts the session
// interval; Interval spans first to most recent ping.
func (s *Session) Ping(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		s.startTime = t
	}
	s.lastPing = t
}

// Interval returns the session's recording interval so far.
func (s *Session) Interval() (start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime, s.lastPing
}

// ClearData resets every histogram and the interval, keeping the
// registered metrics. Called after a successful upload.
func (s *Session) ClearData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.metrics {
		h.Clear()
	}
	s.startTime = time.Time{}
	s.lastPing = time.Time{}
}

// Clear removes all metrics and resets the interval. The session keeps
// its id and capacity.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = make(map[MetricID]*histogram.Histogram, s.cap)
	s.startTime = time.Time{}
	s.lastPing = time.Time{}
}

// Len returns the number of registered metrics.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.metrics)
}

// snapshot returns the metric map for report building. The histograms
// themselves are not copied; the caller must not mutate them.
func (s *Session) snapshot() map[MetricID]*histogram.Histogram {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[MetricID]*histogram.Histogram, len(s.metrics))
	for id, h := range s.metrics {
		out[id] = h
	}
	return out
}
