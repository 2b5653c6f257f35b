package telemetry

import (
	"sort"
	"time"

	"github.com/ohler55/ojg/oj"

	"github.com/gogpu/pace/histogram"
)

// MetricReport is the wire form of one histogram.
//
// Bucketed histograms carry bucket upper bounds and counts; events-only
// histograms carry the raw sample ring instead.
type MetricReport struct {
	ID MetricID `json:"id"`

	PMax   []float64 `json:"pmax,omitempty"`
	Counts []uint64  `json:"cnts,omitempty"`

	Events []float64 `json:"events,omitempty"`
}

// Report is the wire form of one session interval.
type Report struct {
	SessionID string `json:"session_id"`

	// StartMS and EndMS bound the recording interval, Unix milliseconds.
	StartMS int64 `json:"start_ms"`
	EndMS   int64 `json:"end_ms"`

	Metrics []MetricReport `json:"metrics"`
}

// BuildReport snapshots a session into a Report. Metrics are ordered by
// id so reports are deterministic. Histograms still in auto-range mode
// are reported as raw events; they have no buckets yet.
func BuildReport(s *Session) Report {
	start, end := s.Interval()
	r := Report{
		SessionID: s.ID(),
		StartMS:   unixMS(start),
		EndMS:     unixMS(end),
	}

	metrics := s.snapshot()
	ids := make([]MetricID, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		r.Metrics = append(r.Metrics, buildMetric(id, metrics[id]))
	}
	return r
}

func buildMetric(id MetricID, h *histogram.Histogram) MetricReport {
	m := MetricReport{ID: id}
	if h.Mode() == histogram.ModeHistogram {
		m.PMax = h.UpperBounds()
		counts := h.Counts()
		m.Counts = make([]uint64, len(counts))
		for i, c := range counts {
			m.Counts[i] = uint64(c)
		}
		return m
	}
	m.Events = h.Samples()
	return m
}

// Encode serializes the report as JSON.
func (r Report) Encode() ([]byte, error) {
	return oj.Marshal(r)
}

func unixMS(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
