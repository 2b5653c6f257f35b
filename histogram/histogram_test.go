package histogram

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestNewModes(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want Mode
	}{
		{"fixed range", Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5}, ModeHistogram},
		{"auto range", Settings{}, ModeAutoRange},
		{"auto range with buckets", Settings{NumBuckets: 10}, ModeAutoRange},
		{"never bucket", Settings{NeverBucket: true, NumBuckets: 3}, ModeEventsOnly},
		{"never bucket wins over range", Settings{BucketMin: 1, BucketMax: 5, NumBuckets: 3, NeverBucket: true}, ModeEventsOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.s)
			if got := h.Mode(); got != tt.want {
				t.Errorf("New(%+v).Mode() = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestNewBucketLayout(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	if got := h.NumBuckets(); got != 7 {
		t.Errorf("NumBuckets() = %d, want 7", got)
	}
	if got := h.BucketWidth(); got != 4 {
		t.Errorf("BucketWidth() = %v, want 4", got)
	}
	if start, end := h.Range(); start != 0 || end != 20 {
		t.Errorf("Range() = (%v, %v), want (0, 20)", start, end)
	}
}

func TestNewDefaultBucketCount(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 100})
	if got := h.NumBuckets(); got != defaultNumBuckets {
		t.Errorf("NumBuckets() = %d, want %d", got, defaultNumBuckets)
	}
}

// Concrete clamp-to-edge scenario: Histogram(start=0, end=20, buckets=5)
// gives bucket_width=4 and 7 buckets total.
func TestAddClampToEdge(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	h.Add(-1)
	h.Add(19.9)
	h.Add(100)

	want := []uint32{1, 0, 0, 0, 0, 1, 1}
	got := h.Counts()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket[%d] = %d, want %d (counts %v)", i, got[i], want[i], got)
		}
	}
	if h.Count() != 3 {
		t.Errorf("Count() = %d, want 3", h.Count())
	}
}

func TestAddBoundaries(t *testing.T) {
	tests := []struct {
		sample float64
		bucket int
	}{
		{-0.001, 0},   // just below start: underflow
		{0, 1},        // exactly start: first interior bucket
		{3.999, 1},    // last value of first interior bucket
		{4, 2},        // exact interior boundary
		{19.999, 5},   // last interior bucket
		{20, 6},       // exactly end: overflow
		{1e9, 6},      // far overflow
		{-1e9, 0},     // far underflow
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("sample=%v", tt.sample), func(t *testing.T) {
			h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
			h.Add(tt.sample)
			counts := h.Counts()
			for i, c := range counts {
				want := uint32(0)
				if i == tt.bucket {
					want = 1
				}
				if c != want {
					t.Errorf("Add(%v): bucket[%d] = %d, want %d", tt.sample, i, c, want)
				}
			}
		})
	}
}

// sum(buckets) == count must hold for any Add sequence in bucketed mode.
func TestSumOfBucketsEqualsCount(t *testing.T) {
	h := New(Settings{BucketMin: 5, BucketMax: 50, NumBuckets: 9})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		h.Add(rng.Float64()*100 - 20)
	}

	var sum uint64
	for _, c := range h.Counts() {
		sum += uint64(c)
	}
	if sum != h.Count() {
		t.Errorf("sum(buckets) = %d, count = %d", sum, h.Count())
	}
	if h.Count() != 1000 {
		t.Errorf("Count() = %d, want 1000", h.Count())
	}
}

func TestAutoRangeTransition(t *testing.T) {
	h := New(Settings{NumBuckets: 8}) // capacity 10 samples
	capacity := h.NumBuckets()

	for i := 0; i < capacity-1; i++ {
		h.Add(10 + float64(i))
		if h.Mode() != ModeAutoRange {
			t.Fatalf("mode flipped to %v after %d samples", h.Mode(), i+1)
		}
	}
	h.Add(30) // fills the buffer

	if h.Mode() != ModeHistogram {
		t.Fatalf("Mode() = %v after transition, want %v", h.Mode(), ModeHistogram)
	}

	// Every buffered sample must be reflected exactly once.
	if h.Count() != uint64(capacity) {
		t.Errorf("Count() = %d, want %d", h.Count(), capacity)
	}
	var sum uint64
	for _, c := range h.Counts() {
		sum += uint64(c)
	}
	if sum != uint64(capacity) {
		t.Errorf("sum(buckets) = %d, want %d", sum, capacity)
	}

	start, end := h.Range()
	if start < 0 {
		t.Errorf("derived start = %v, want >= 0", start)
	}
	if end <= start {
		t.Errorf("derived range (%v, %v) is empty", start, end)
	}

	// The transition is irreversible.
	h.Add(1)
	h.Clear()
	h.Add(2)
	if h.Mode() != ModeHistogram {
		t.Errorf("Mode() = %v after Clear, want %v", h.Mode(), ModeHistogram)
	}
}

func TestAutoRangeMinBucketWidth(t *testing.T) {
	h := New(Settings{NumBuckets: 8})
	// Identical samples: stddev 0 would derive a zero-width range.
	for i := 0; i < h.NumBuckets(); i++ {
		h.Add(16.6)
	}
	if h.Mode() != ModeHistogram {
		t.Fatalf("Mode() = %v, want %v", h.Mode(), ModeHistogram)
	}
	if got := h.BucketWidth(); got < autoRangeMinBucketWidthMS {
		t.Errorf("BucketWidth() = %v, want >= %v", got, autoRangeMinBucketWidthMS)
	}
	start, end := h.Range()
	if mid := (start + end) / 2; mid < 16.5 || mid > 16.7 {
		t.Errorf("widened range (%v, %v) not centered on the mean", start, end)
	}
}

// EVENTS_ONLY with capacity 3: Add(1),Add(2),Add(3),Add(4) leaves
// [4,2,3] with index 0 overwritten and count 4.
func TestEventsOnlyWraparound(t *testing.T) {
	h := New(Settings{NumBuckets: 1, NeverBucket: true}) // buffer size 3
	for _, v := range []float64{1, 2, 3, 4} {
		h.Add(v)
	}

	want := []float64{4, 2, 3}
	got := h.Samples()
	if len(got) != len(want) {
		t.Fatalf("Samples() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Samples()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if h.Count() != 4 {
		t.Errorf("Count() = %d, want 4", h.Count())
	}
}

func TestClearReproducesFreshState(t *testing.T) {
	sequence := []float64{-3, 0, 4.5, 12, 19.9, 20, 55}

	fresh := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	reused := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})

	for _, v := range sequence {
		reused.Add(v * 2)
	}
	reused.Clear()

	for _, v := range sequence {
		fresh.Add(v)
		reused.Add(v)
	}

	if !fresh.Equal(reused) {
		t.Errorf("cleared histogram diverged: fresh %v, reused %v", fresh.Counts(), reused.Counts())
	}
	if fresh.Count() != reused.Count() {
		t.Errorf("counts diverged: fresh %d, reused %d", fresh.Count(), reused.Count())
	}
}

func TestClearEventsOnly(t *testing.T) {
	h := New(Settings{NumBuckets: 1, NeverBucket: true})
	h.Add(1)
	h.Add(2)
	h.Clear()

	if h.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", h.Count())
	}
	for i, s := range h.Samples() {
		if s != 0 {
			t.Errorf("Samples()[%d] = %v after Clear, want 0", i, s)
		}
	}

	// The write cursor restarts at the front.
	h.Add(7)
	if got := h.Samples()[0]; got != 7 {
		t.Errorf("Samples()[0] = %v after Clear+Add, want 7", got)
	}
}

func TestAddCounts(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	h.Add(10) // bucket 3

	if err := h.AddCounts([]uint32{1, 0, 2, 0, 0, 0, 5}); err != nil {
		t.Fatalf("AddCounts() = %v, want nil", err)
	}
	want := []uint32{1, 0, 2, 1, 0, 0, 5}
	got := h.Counts()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// A 5-element vector against a 7-bucket histogram is a bad parameter
// and must leave the buckets untouched.
func TestAddCountsLengthMismatch(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	h.Add(10)
	before := h.Counts()

	if err := h.AddCounts([]uint32{1, 2, 3, 4, 5}); err != ErrBadParameter {
		t.Fatalf("AddCounts() = %v, want ErrBadParameter", err)
	}

	after := h.Counts()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("bucket[%d] mutated: %d -> %d", i, before[i], after[i])
		}
	}
}

func TestEqual(t *testing.T) {
	a := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	b := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})

	if !a.Equal(b) {
		t.Error("empty histograms should be equal")
	}
	a.Add(10)
	if a.Equal(b) {
		t.Error("histograms with different counts should not be equal")
	}
	b.Add(10)
	if !a.Equal(b) {
		t.Error("histograms with identical adds should be equal")
	}
}

func TestDebugJSONBucketed(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	h.Add(-1)
	h.Add(19.9)
	h.Add(100)

	want := `{"pmax":[0.00,4.00,8.00,12.00,16.00,20.00,99999],"cnts":[1,0,0,0,0,1,1]}`
	if got := h.DebugJSON(); got != want {
		t.Errorf("DebugJSON() = %s, want %s", got, want)
	}
}

func TestDebugJSONEvents(t *testing.T) {
	h := New(Settings{NumBuckets: 1, NeverBucket: true})
	h.Add(1.5)
	h.Add(2.25)

	want := `{"events":[1.50,2.25,0.00]}`
	if got := h.DebugJSON(); got != want {
		t.Errorf("DebugJSON() = %s, want %s", got, want)
	}
}

func TestUpperBounds(t *testing.T) {
	h := New(Settings{BucketMin: 0, BucketMax: 20, NumBuckets: 5})
	want := []float64{0, 4, 8, 12, 16, 20, 99999}
	got := h.UpperBounds()
	if len(got) != len(want) {
		t.Fatalf("UpperBounds() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UpperBounds()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
