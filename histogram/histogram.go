// Package histogram provides adaptive frame-time histograms.
//
// A Histogram classifies a stream of duration samples (milliseconds)
// into buckets with fixed or auto-determined bounds, or retains raw
// samples, depending on its mode. It is pure computation: no I/O, no
// locking. Callers that aggregate across goroutines accumulate
// independent histograms and merge them with AddCounts.
package histogram

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Mode is a histogram's sample classification mode.
type Mode int

const (
	// ModeHistogram buckets samples into a fixed range with underflow
	// and overflow catch-all buckets at the ends.
	ModeHistogram Mode = iota

	// ModeAutoRange buffers raw samples until enough are seen to derive
	// bucket bounds from the batch statistics, then switches
	// irreversibly to ModeHistogram.
	ModeAutoRange

	// ModeEventsOnly keeps the most recent raw samples in a circular
	// buffer and never buckets.
	ModeEventsOnly
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeHistogram:
		return "Histogram"
	case ModeAutoRange:
		return "AutoRange"
	case ModeEventsOnly:
		return "EventsOnly"
	default:
		return "Unknown"
	}
}

const (
	// defaultNumBuckets is the total bucket count, including the two
	// catch-alls, used when Settings does not specify one.
	defaultNumBuckets = 200

	// autoRangeNumStdDev sets the derived range to mean ± k·stddev.
	autoRangeNumStdDev = 3.0

	// autoRangeMinBucketWidthMS is the floor on the derived bucket
	// width. A narrower derivation widens the range symmetrically
	// around the mean instead.
	autoRangeMinBucketWidthMS = 0.1
)

// ErrBadParameter indicates a parameter mismatch, e.g. an AddCounts
// vector whose length differs from the histogram's bucket count.
var ErrBadParameter = errors.New("histogram: bad parameter")

// Settings configures a Histogram.
type Settings struct {
	// BucketMin and BucketMax bound the bucketed range in milliseconds.
	// Both zero selects auto-ranging.
	BucketMin float64
	BucketMax float64

	// NumBuckets is the number of buckets between the bounds, not
	// counting the two catch-alls. Non-positive selects the default.
	NumBuckets int

	// NeverBucket keeps raw samples in a circular buffer instead of
	// bucketing (events-only mode).
	NeverBucket bool
}

// Histogram accumulates duration samples in milliseconds.
//
// The zero value is not usable; create histograms with New.
type Histogram struct {
	mode        Mode
	start       float64
	end         float64
	bucketWidth float64
	buckets     []uint32
	samples     []float64
	count       uint64
	nextEvent   int
}

// New creates a Histogram from settings. NeverBucket forces events-only
// mode; otherwise zero bounds select auto-ranging and non-zero bounds a
// fixed range.
func New(s Settings) *Histogram {
	numBuckets := defaultNumBuckets
	if s.NumBuckets > 0 {
		numBuckets = s.NumBuckets + 2
	}

	h := &Histogram{
		start:       s.BucketMin,
		end:         s.BucketMax,
		bucketWidth: (s.BucketMax - s.BucketMin) / float64(numBuckets-2),
		buckets:     make([]uint32, numBuckets),
	}

	switch {
	case s.NeverBucket:
		h.mode = ModeEventsOnly
		h.samples = make([]float64, numBuckets)
	case s.BucketMin == 0 && s.BucketMax == 0:
		h.mode = ModeAutoRange
		h.samples = make([]float64, 0, numBuckets)
	default:
		h.mode = ModeHistogram
	}
	return h
}

// Add classifies one sample (milliseconds) according to the mode.
//
// In auto-range mode the sample is buffered; the buffering Add that
// fills the buffer derives the bucket bounds, switches the mode to
// ModeHistogram for good, and replays the whole batch so every buffered
// sample is reflected in the bucket counts exactly once.
func (h *Histogram) Add(sample float64) {
	switch h.mode {
	case ModeHistogram:
		h.addToBucket(sample)
		h.count++
	case ModeAutoRange:
		h.samples = append(h.samples, sample)
		if len(h.samples) == cap(h.samples) {
			h.calcBucketsFromSamples()
			return
		}
		h.count++
	case ModeEventsOnly:
		h.samples[h.nextEvent] = sample
		h.nextEvent++
		if h.nextEvent >= len(h.samples) {
			h.nextEvent = 0
		}
		h.count++
	}
}

// addToBucket increments the bucket for sample. Bucket 0 and the last
// bucket are the underflow/overflow catch-alls.
func (h *Histogram) addToBucket(sample float64) {
	i := int(math.Floor((sample - h.start) / h.bucketWidth))
	switch {
	case i < 0:
		h.buckets[0]++
	case i+1 >= len(h.buckets):
		h.buckets[len(h.buckets)-1]++
	default:
		h.buckets[i+1]++
	}
}

// calcBucketsFromSamples derives the bucket bounds from the buffered
// batch (mean ± k·stddev, start clamped at zero, minimum bucket width
// enforced by widening symmetrically around the mean), then switches to
// ModeHistogram and replays the batch.
func (h *Histogram) calcBucketsFromSamples() {
	if h.mode != ModeAutoRange {
		return
	}

	var sum, sum2 float64
	for _, s := range h.samples {
		sum += s
		sum2 += s * s
	}
	n := float64(len(h.samples))
	mean := sum / n
	variance := sum2/n - mean*mean
	if variance < 0 {
		// Rounding error, the true variance is non-negative.
		variance = 0
	}
	stddev := math.Sqrt(variance)

	h.start = math.Max(mean-autoRangeNumStdDev*stddev, 0)
	h.end = mean + autoRangeNumStdDev*stddev
	h.bucketWidth = (h.end - h.start) / float64(len(h.buckets)-2)
	if h.bucketWidth < autoRangeMinBucketWidthMS {
		h.bucketWidth = autoRangeMinBucketWidthMS
		w := h.bucketWidth * float64(len(h.buckets)-2)
		h.start = mean - w/2
		h.end = mean + w/2
	}

	h.mode = ModeHistogram
	h.count = 0
	for _, s := range h.samples {
		h.addToBucket(s)
		h.count++
	}
}

// Clear resets the bucket counts and the sample count. Events-only
// histograms also zero the raw buffer and reset the write cursor. A
// histogram that has auto-ranged stays in ModeHistogram with its
// derived bounds.
func (h *Histogram) Clear() {
	for i := range h.buckets {
		h.buckets[i] = 0
	}
	if h.mode == ModeEventsOnly {
		for i := range h.samples {
			h.samples[i] = 0
		}
		h.nextEvent = 0
	} else {
		h.samples = h.samples[:0]
	}
	h.count = 0
}

// AddCounts merges an externally accumulated bucket-count vector into
// this histogram. The vector length must equal the total bucket count;
// on mismatch ErrBadParameter is returned and nothing is mutated.
func (h *Histogram) AddCounts(counts []uint32) error {
	if len(counts) != len(h.buckets) {
		return ErrBadParameter
	}
	for i, c := range counts {
		h.buckets[i] += c
	}
	return nil
}

// Equal reports whether two histograms have elementwise equal bucket
// counts and raw-sample buffers.
func (h *Histogram) Equal(other *Histogram) bool {
	return slices.Equal(h.buckets, other.buckets) &&
		slices.Equal(h.samples, other.samples)
}

// Mode returns the current classification mode.
func (h *Histogram) Mode() Mode { return h.mode }

// Count returns the total number of samples ever added since the last
// Clear. In events-only mode it keeps growing past buffer wraparound.
func (h *Histogram) Count() uint64 { return h.count }

// NumBuckets returns the total bucket count including the catch-alls.
func (h *Histogram) NumBuckets() int { return len(h.buckets) }

// Range returns the bucketed range bounds in milliseconds.
func (h *Histogram) Range() (start, end float64) { return h.start, h.end }

// BucketWidth returns the width of one interior bucket in milliseconds.
func (h *Histogram) BucketWidth() float64 { return h.bucketWidth }

// Counts returns a copy of the bucket counts.
func (h *Histogram) Counts() []uint32 {
	return slices.Clone(h.buckets)
}

// Samples returns a copy of the raw sample buffer (events-only and
// pre-transition auto-range histograms).
func (h *Histogram) Samples() []float64 {
	return slices.Clone(h.samples)
}

// overflowBound is the sentinel upper bound of the overflow bucket in
// the wire format.
const overflowBound = "99999"

// DebugJSON renders the wire format consumed by telemetry upload:
// {"events":[...]} for raw samples, {"pmax":[...],"cnts":[...]} for
// bucketed histograms, with bounds fixed to two decimals.
func (h *Histogram) DebugJSON() string {
	var b strings.Builder
	if h.mode != ModeHistogram {
		b.WriteString(`{"events":[`)
		for i, s := range h.samples {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(s, 'f', 2, 64))
		}
		b.WriteString("]}")
		return b.String()
	}

	b.WriteString(`{"pmax":[`)
	x := h.start
	for i := 0; i < len(h.buckets)-1; i++ {
		b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
		b.WriteByte(',')
		x += h.bucketWidth
	}
	b.WriteString(overflowBound)
	b.WriteString(`],"cnts":[`)
	for i, c := range h.buckets {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	b.WriteString("]}")
	return b.String()
}

// UpperBounds returns the bucket upper bounds in wire order: the
// underflow bound, each interior bound, and the overflow sentinel.
func (h *Histogram) UpperBounds() []float64 {
	bounds := make([]float64, len(h.buckets))
	x := h.start
	for i := 0; i < len(h.buckets)-1; i++ {
		bounds[i] = x
		x += h.bucketWidth
	}
	bounds[len(bounds)-1] = 99999
	return bounds
}
