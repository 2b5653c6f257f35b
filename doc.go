// Package pace provides frame pacing for Go rendering loops.
//
// # Overview
//
// pace times buffer swaps against the display's refresh cadence. Each
// frame, a Pacer decides how long to wait before presenting so that
// frames become visible at a steady multiple of the refresh period,
// using feedback from the platform (present completion, GPU render
// duration) to self-tune the cadence. It is designed to integrate with
// the GoGPU ecosystem but is backend-agnostic: the platform swap call
// is injected through SwapHandlers.
//
// # Quick Start
//
//	import "github.com/gogpu/pace"
//
//	p, err := pace.New(pace.WithRefreshPeriod(16 * time.Millisecond))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Render loop
//	for running {
//	    renderFrame()
//	    p.Swap(pace.SwapHandlers{
//	        LastFrameIsComplete: fenceDone,
//	        PrevFrameGPUTime:    gpuTime,
//	        SwapBuffers:         present,
//	    })
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: Pacer, Tracer, Pool, PipelineMode, StatsSnapshot
//   - Statistics: histogram (adaptive frame-time histograms)
//   - Telemetry: telemetry (sessions, reports, upload), telemetry/prom
//   - Backends: backend/wgpu (gogpu/wgpu adapter)
//
// # Concurrency
//
// A Pacer runs on whichever goroutine drives the render loop; it has no
// worker goroutine of its own. Tracer registration and the handle Pool
// are safe for concurrent use. A single Pacer must not be driven from
// two goroutines at once.
package pace

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
