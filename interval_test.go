package pace

import (
	"testing"
	"time"
)

const tunerRefresh = 10 * time.Millisecond

func fillTuner(t *intervalTuner, cpu, gpu time.Duration) {
	for i := 0; i < t.window; i++ {
		t.add(cpu, gpu)
	}
}

func TestFrameDurationTotal(t *testing.T) {
	tests := []struct {
		name string
		f    frameDuration
		mode PipelineMode
		want time.Duration
	}{
		{"pipelined takes max (gpu bound)", frameDuration{cpu: 4 * time.Millisecond, gpu: 9 * time.Millisecond}, PipelineOn, 9 * time.Millisecond},
		{"pipelined takes max (cpu bound)", frameDuration{cpu: 12 * time.Millisecond, gpu: 9 * time.Millisecond}, PipelineOn, 12 * time.Millisecond},
		{"serial adds stages", frameDuration{cpu: 4 * time.Millisecond, gpu: 9 * time.Millisecond}, PipelineOff, 13 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.total(tt.mode); got != tt.want {
				t.Errorf("total(%v) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestTunerNoDecisionBeforeWindowFull(t *testing.T) {
	tuner := newIntervalTuner(5, time.Millisecond, 50*time.Millisecond)
	for i := 0; i < 4; i++ {
		tuner.add(0, 30*time.Millisecond)
		if got := tuner.decide(tunerRefresh, tunerRefresh, PipelineOn); got != 0 {
			t.Fatalf("decide() = %v with %d/5 frames observed, want 0", got, i+1)
		}
	}
}

func TestTunerIncreaseOnSustainedExcess(t *testing.T) {
	tuner := newIntervalTuner(4, time.Millisecond, 50*time.Millisecond)
	fillTuner(&tuner, 0, 23*time.Millisecond)

	got := tuner.decide(tunerRefresh, tunerRefresh, PipelineOn)
	if want := 30 * time.Millisecond; got != want {
		t.Errorf("decide() = %v, want %v", got, want)
	}
}

func TestTunerNoIncreaseOnSingleSpike(t *testing.T) {
	tuner := newIntervalTuner(4, time.Millisecond, 50*time.Millisecond)
	tuner.add(0, 2*time.Millisecond)
	tuner.add(0, 80*time.Millisecond) // spike
	tuner.add(0, 2*time.Millisecond)
	tuner.add(0, 2*time.Millisecond)

	if got := tuner.decide(tunerRefresh, tunerRefresh, PipelineOn); got != 0 {
		t.Errorf("decide() = %v with one spike in the window, want 0", got)
	}
}

func TestTunerIncreaseCappedByMaxDuration(t *testing.T) {
	tuner := newIntervalTuner(3, time.Millisecond, 35*time.Millisecond)
	fillTuner(&tuner, 0, 60*time.Millisecond)

	got := tuner.decide(tunerRefresh, tunerRefresh, PipelineOn)
	if want := 30 * time.Millisecond; got != want {
		t.Errorf("decide() = %v, want cap %v", got, want)
	}
}

func TestTunerNoChangeWhenAlreadyAtCap(t *testing.T) {
	tuner := newIntervalTuner(3, time.Millisecond, 35*time.Millisecond)
	fillTuner(&tuner, 0, 60*time.Millisecond)

	if got := tuner.decide(30*time.Millisecond, tunerRefresh, PipelineOn); got != 0 {
		t.Errorf("decide() = %v at the cap, want 0", got)
	}
}

func TestTunerDecreaseOnSustainedHeadroom(t *testing.T) {
	tuner := newIntervalTuner(4, time.Millisecond, 50*time.Millisecond)
	fillTuner(&tuner, 0, 3*time.Millisecond)

	got := tuner.decide(30*time.Millisecond, tunerRefresh, PipelineOn)
	if want := tunerRefresh; got != want {
		t.Errorf("decide() = %v, want %v", got, want)
	}
}

func TestTunerNoDecreaseWithoutMargin(t *testing.T) {
	tuner := newIntervalTuner(4, time.Millisecond, 50*time.Millisecond)
	// 19.5ms fits 20ms but leaves less than refresh+margin of headroom.
	fillTuner(&tuner, 0, 19500*time.Microsecond)

	if got := tuner.decide(20*time.Millisecond, tunerRefresh, PipelineOn); got != 0 {
		t.Errorf("decide() = %v, want 0 (insufficient headroom)", got)
	}
}

func TestTunerNoDecreaseBelowOneRefresh(t *testing.T) {
	tuner := newIntervalTuner(4, time.Millisecond, 50*time.Millisecond)
	fillTuner(&tuner, 0, time.Millisecond)

	if got := tuner.decide(tunerRefresh, tunerRefresh, PipelineOn); got != 0 {
		t.Errorf("decide() = %v at one refresh period, want 0", got)
	}
}

func TestTunerResetDiscardsWindow(t *testing.T) {
	tuner := newIntervalTuner(3, time.Millisecond, 50*time.Millisecond)
	fillTuner(&tuner, 0, 25*time.Millisecond)
	tuner.reset()

	if got := tuner.decide(tunerRefresh, tunerRefresh, PipelineOn); got != 0 {
		t.Errorf("decide() = %v after reset, want 0", got)
	}
}

func TestCeilFloorMultiple(t *testing.T) {
	tests := []struct {
		name      string
		d         time.Duration
		wantCeil  time.Duration
		wantFloor time.Duration
	}{
		{"below one unit", 3 * time.Millisecond, tunerRefresh, tunerRefresh},
		{"exact multiple", 20 * time.Millisecond, 20 * time.Millisecond, 20 * time.Millisecond},
		{"between multiples", 23 * time.Millisecond, 30 * time.Millisecond, 20 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ceilMultiple(tt.d, tunerRefresh); got != tt.wantCeil {
				t.Errorf("ceilMultiple(%v) = %v, want %v", tt.d, got, tt.wantCeil)
			}
			if got := floorMultiple(tt.d, tunerRefresh); got != tt.wantFloor {
				t.Errorf("floorMultiple(%v) = %v, want %v", tt.d, got, tt.wantFloor)
			}
		})
	}
}
