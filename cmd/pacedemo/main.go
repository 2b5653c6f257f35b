// Command pacedemo runs the pacer against a simulated display and
// prints the resulting frame statistics and frame-time histogram.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/gogpu/pace"
	"github.com/gogpu/pace/histogram"
)

func main() {
	var (
		hz      = flag.Float64("hz", 60, "display refresh rate")
		frames  = flag.Int("frames", 300, "frames to simulate")
		gpuMS   = flag.Float64("gpu", 4, "simulated GPU time per frame, ms")
		cpuMS   = flag.Float64("cpu", 2, "simulated CPU time per frame, ms")
		jitter  = flag.Float64("jitter", 1, "random extra GPU time, ms")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		pace.SetLogger(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		})))
	}

	refresh := time.Duration(float64(time.Second) / *hz)

	hist := histogram.New(histogram.Settings{}) // auto-range
	p, err := pace.New(
		pace.WithRefreshPeriod(refresh),
		pace.WithHistogramSink(hist),
	)
	if err != nil {
		log.Fatalf("Failed to create pacer: %v", err)
	}

	display := newSimulatedDisplay(*gpuMS, *jitter)
	handlers := display.handlers()

	for i := 0; i < *frames; i++ {
		time.Sleep(time.Duration(*cpuMS * float64(time.Millisecond)))
		display.submitFrame()
		if err := p.Swap(handlers); err != nil {
			log.Fatalf("Swap failed at frame %d: %v", i, err)
		}
	}

	printReport(p, hist, *frames)
}

// simulatedDisplay stands in for a GPU and swapchain: frames "complete"
// after a randomized GPU duration.
type simulatedDisplay struct {
	gpuMS    float64
	jitterMS float64

	submitted time.Time
	gpuTime   time.Duration
}

func newSimulatedDisplay(gpuMS, jitterMS float64) *simulatedDisplay {
	return &simulatedDisplay{gpuMS: gpuMS, jitterMS: jitterMS}
}

func (d *simulatedDisplay) submitFrame() {
	d.submitted = time.Now()
	ms := d.gpuMS + rand.Float64()*d.jitterMS
	d.gpuTime = time.Duration(ms * float64(time.Millisecond))
}

func (d *simulatedDisplay) handlers() pace.SwapHandlers {
	return pace.SwapHandlers{
		LastFrameIsComplete: func() bool {
			return time.Since(d.submitted) >= d.gpuTime
		},
		PrevFrameGPUTime: func() time.Duration {
			return d.gpuTime
		},
		SwapBuffers: func() error {
			return nil
		},
	}
}

func printReport(p *pace.Pacer, hist *histogram.Histogram, frames int) {
	stats := p.Stats()

	fmt.Printf("frames:          %d\n", frames)
	fmt.Printf("swap interval:   %v\n", p.SwapInterval())
	fmt.Printf("pipeline mode:   %v\n", p.CurrentPipelineMode())
	fmt.Printf("skipped frames:  %d\n", stats.SkippedFrames)
	fmt.Printf("fence timeouts:  %d\n", stats.FenceTimeouts)
	fmt.Printf("swap duration:   min %v  mean %v  max %v\n",
		stats.MinSwapDuration, stats.MeanSwapDuration, stats.MaxSwapDuration)
	fmt.Printf("frame times:     %s\n", hist.DebugJSON())
}
