package wgpu

import (
	"testing"
	"time"
)

// The timing bookkeeping needs no live GPU; the core bindings are only
// exercised by NewPresenter, which integration environments cover.

func TestFrameLifecycle(t *testing.T) {
	p := &Presenter{}

	if !p.LastFrameIsComplete() {
		t.Error("LastFrameIsComplete() = false before any frame")
	}

	p.FrameSubmitted()
	if p.LastFrameIsComplete() {
		t.Error("LastFrameIsComplete() = true with a frame in flight")
	}

	p.FrameCompleted()
	if !p.LastFrameIsComplete() {
		t.Error("LastFrameIsComplete() = false after completion")
	}
	if p.PrevFrameGPUTime() < 0 {
		t.Errorf("PrevFrameGPUTime() = %v, want non-negative", p.PrevFrameGPUTime())
	}
}

func TestFrameCompletedWithoutSubmitIsNoOp(t *testing.T) {
	p := &Presenter{}
	p.FrameCompleted()
	if got := p.PrevFrameGPUTime(); got != 0 {
		t.Errorf("PrevFrameGPUTime() = %v, want 0", got)
	}
}

func TestCapabilitiesAreFallback(t *testing.T) {
	p := &Presenter{}
	if p.Capabilities().TimedPresentation {
		t.Error("TimedPresentation = true, want false for wgpu surfaces")
	}
}

func TestHandlersWiring(t *testing.T) {
	p := &Presenter{}

	presented := false
	h := p.Handlers(func() error {
		presented = true
		return nil
	})

	if h.LastFrameIsComplete == nil || h.PrevFrameGPUTime == nil || h.SwapBuffers == nil {
		t.Fatal("Handlers left a callback nil")
	}
	if err := h.SwapBuffers(); err != nil {
		t.Fatalf("SwapBuffers() = %v", err)
	}
	if !presented {
		t.Error("present callback not invoked")
	}

	p.FrameSubmitted()
	time.Sleep(time.Millisecond)
	p.FrameCompleted()
	if h.PrevFrameGPUTime() <= 0 {
		t.Errorf("PrevFrameGPUTime() = %v, want positive", h.PrevFrameGPUTime())
	}
}
