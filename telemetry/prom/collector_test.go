package prom

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogpu/pace"
)

func TestCollectorRegisters(t *testing.T) {
	p, err := pace.New(pace.WithRefreshPeriod(16 * time.Millisecond))
	if err != nil {
		t.Fatalf("pace.New() = %v", err)
	}

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(p)); err != nil {
		t.Fatalf("Register() = %v", err)
	}

	if got := testutil.CollectAndCount(NewCollector(p)); got != 8 {
		t.Errorf("CollectAndCount() = %d, want 8", got)
	}
}

func TestCollectorReportsSwapInterval(t *testing.T) {
	p, err := pace.New(
		pace.WithRefreshPeriod(10*time.Millisecond),
		pace.WithSwapInterval(2),
		pace.WithAutoSwapInterval(false),
	)
	if err != nil {
		t.Fatalf("pace.New() = %v", err)
	}

	c := NewCollector(p)
	want := `
# HELP pace_swap_interval_seconds Current pacing cadence.
# TYPE pace_swap_interval_seconds gauge
pace_swap_interval_seconds 0.02
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want), "pace_swap_interval_seconds"); err != nil {
		t.Errorf("CollectAndCompare() = %v", err)
	}
}

func TestCollectorZeroStats(t *testing.T) {
	p, err := pace.New(pace.WithRefreshPeriod(16 * time.Millisecond))
	if err != nil {
		t.Fatalf("pace.New() = %v", err)
	}

	c := NewCollector(p)
	want := `
# HELP pace_frames_total Pacing cycles completed.
# TYPE pace_frames_total counter
pace_frames_total 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want), "pace_frames_total"); err != nil {
		t.Errorf("CollectAndCompare() = %v", err)
	}
}
