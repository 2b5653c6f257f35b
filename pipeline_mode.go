package pace

import "time"

// PipelineMode selects how many frames of work may be in flight at once.
type PipelineMode int

const (
	// PipelineOff keeps at most one frame in flight: CPU recording and
	// GPU execution of a frame both complete within one swap interval.
	// Lowest latency, least tolerance for long frames.
	PipelineOff PipelineMode = iota

	// PipelineOn allows CPU recording of frame N+1 to overlap GPU
	// execution of frame N. Each stage gets a full swap interval.
	PipelineOn
)

// String returns the pipeline mode name.
func (m PipelineMode) String() string {
	switch m {
	case PipelineOff:
		return "Off"
	case PipelineOn:
		return "On"
	default:
		return "Unknown"
	}
}

// SelectPipelineMode chooses a pipeline mode from measured frame stage
// durations.
//
// Heuristics:
//   - If CPU and GPU work for one frame fit together inside the swap
//     interval, pipelining only adds a frame of latency: Off.
//   - Otherwise the stages must overlap to hold the cadence: On.
func SelectPipelineMode(cpuTime, gpuTime, swapInterval time.Duration) PipelineMode {
	if cpuTime+gpuTime <= swapInterval {
		return PipelineOff
	}
	return PipelineOn
}
