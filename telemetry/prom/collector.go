// Package prom exposes pacer frame statistics as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/pace"
)

// Collector adapts a Pacer's statistics to the prometheus.Collector
// interface. Register it with a prometheus.Registry; every scrape takes
// a fresh snapshot.
type Collector struct {
	pacer *pace.Pacer

	framesTotal   *prometheus.Desc
	framesSkipped *prometheus.Desc
	fenceTimeouts *prometheus.Desc
	swapMin       *prometheus.Desc
	swapMax       *prometheus.Desc
	swapMean      *prometheus.Desc
	presentOffset *prometheus.Desc
	swapInterval  *prometheus.Desc
}

// NewCollector creates a collector for p.
func NewCollector(p *pace.Pacer) *Collector {
	return &Collector{
		pacer: p,
		framesTotal: prometheus.NewDesc(
			"pace_frames_total",
			"Pacing cycles completed.",
			nil, nil,
		),
		framesSkipped: prometheus.NewDesc(
			"pace_frames_skipped_total",
			"Refresh periods skipped during presentation-time catch-up.",
			nil, nil,
		),
		fenceTimeouts: prometheus.NewDesc(
			"pace_fence_timeouts_total",
			"Frames whose completion fence timed out.",
			nil, nil,
		),
		swapMin: prometheus.NewDesc(
			"pace_swap_duration_min_seconds",
			"Shortest observed platform swap call.",
			nil, nil,
		),
		swapMax: prometheus.NewDesc(
			"pace_swap_duration_max_seconds",
			"Longest observed platform swap call.",
			nil, nil,
		),
		swapMean: prometheus.NewDesc(
			"pace_swap_duration_mean_seconds",
			"Mean duration of the platform swap call.",
			nil, nil,
		),
		presentOffset: prometheus.NewDesc(
			"pace_present_offset_mean_seconds",
			"Mean absolute offset between requested and actual present time.",
			nil, nil,
		),
		swapInterval: prometheus.NewDesc(
			"pace_swap_interval_seconds",
			"Current pacing cadence.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesTotal
	ch <- c.framesSkipped
	ch <- c.fenceTimeouts
	ch <- c.swapMin
	ch <- c.swapMax
	ch <- c.swapMean
	ch <- c.presentOffset
	ch <- c.swapInterval
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.pacer.Stats()

	ch <- prometheus.MustNewConstMetric(c.framesTotal, prometheus.CounterValue, float64(snap.TotalFrames))
	ch <- prometheus.MustNewConstMetric(c.framesSkipped, prometheus.CounterValue, float64(snap.SkippedFrames))
	ch <- prometheus.MustNewConstMetric(c.fenceTimeouts, prometheus.CounterValue, float64(snap.FenceTimeouts))
	ch <- prometheus.MustNewConstMetric(c.swapMin, prometheus.GaugeValue, snap.MinSwapDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.swapMax, prometheus.GaugeValue, snap.MaxSwapDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.swapMean, prometheus.GaugeValue, snap.MeanSwapDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.presentOffset, prometheus.GaugeValue, snap.MeanPresentOffset.Seconds())
	ch <- prometheus.MustNewConstMetric(c.swapInterval, prometheus.GaugeValue, c.pacer.SwapInterval().Seconds())
}
