// Package wgpu binds a gogpu/wgpu device to the pacer.
//
// The Presenter observes frame timing around the application's own
// present call; it issues no GPU work itself.
package wgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/core"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/pace"
)

// GPUInfo describes the adapter the presenter runs on.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType types.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend types.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Presenter tracks frame submit and completion timestamps on one
// device and exposes them to the pacer as swap handlers.
//
// Call FrameSubmitted when the frame's command buffers are handed to
// the queue and FrameCompleted when the platform signals the frame
// done. The span between the two is reported as the frame's GPU time.
type Presenter struct {
	device core.DeviceID
	queue  core.QueueID
	info   *GPUInfo

	mu          sync.Mutex
	submittedAt time.Time
	gpuTime     time.Duration
	inFlight    bool
}

// NewPresenter binds a presenter to a device. The device's queue is
// resolved eagerly; adapter info is best-effort and only used for
// logging and capability probing.
func NewPresenter(device core.DeviceID, adapter core.AdapterID) (*Presenter, error) {
	queue, err := core.GetDeviceQueue(device)
	if err != nil {
		return nil, fmt.Errorf("wgpu: resolving device queue: %w", err)
	}

	p := &Presenter{device: device, queue: queue}

	if info, err := core.GetAdapterInfo(adapter); err == nil {
		p.info = &GPUInfo{
			Name:       info.Name,
			Vendor:     info.Vendor,
			DeviceType: info.DeviceType,
			Backend:    info.Backend,
			Driver:     info.Driver,
		}
		pace.Logger().Info("wgpu: presenter bound", "gpu", p.info.String())
	} else {
		pace.Logger().Warn("wgpu: adapter info unavailable", "error", err)
	}

	return p, nil
}

// Device returns the bound device.
func (p *Presenter) Device() core.DeviceID { return p.device }

// Queue returns the device's queue.
func (p *Presenter) Queue() core.QueueID { return p.queue }

// Info returns adapter information, or nil when the probe failed.
func (p *Presenter) Info() *GPUInfo { return p.info }

// Capabilities reports the presentation capabilities of this path.
// wgpu surfaces expose no timed-presentation extension, so the pacer
// always runs its fallback strategy here.
func (p *Presenter) Capabilities() pace.Capabilities {
	return pace.Capabilities{TimedPresentation: false}
}

// FrameSubmitted marks the start of GPU execution for the current
// frame.
func (p *Presenter) FrameSubmitted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submittedAt = time.Now()
	p.inFlight = true
}

// FrameCompleted marks the current frame's GPU work done and records
// its duration.
func (p *Presenter) FrameCompleted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inFlight {
		return
	}
	p.gpuTime = time.Since(p.submittedAt)
	p.inFlight = false
}

// LastFrameIsComplete reports whether the previously submitted frame
// has finished on the GPU.
func (p *Presenter) LastFrameIsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.inFlight
}

// PrevFrameGPUTime returns the measured GPU duration of the last
// completed frame.
func (p *Presenter) PrevFrameGPUTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gpuTime
}

// Handlers builds the pacer's swap handler set around the
// application's present call.
func (p *Presenter) Handlers(present func() error) pace.SwapHandlers {
	return pace.SwapHandlers{
		LastFrameIsComplete: p.LastFrameIsComplete,
		PrevFrameGPUTime:    p.PrevFrameGPUTime,
		SwapBuffers:         present,
	}
}
