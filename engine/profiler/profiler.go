package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, memory and sky recompute statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64

	recomputes    int
	reallocations int
	dispatches    int
	skipped       int
	totals        Totals
}

// Totals are the recompute counters accumulated since the profiler was created.
type Totals struct {
	Frames        int
	Recomputes    int
	Reallocations int
	Dispatches    int
	Skipped       int
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often Tick logs. Non-positive values are ignored.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// RecordFrame accumulates the sky work done in one frame.
//
// Parameters:
//   - dispatches: compute dispatches submitted this frame
//   - reallocated: whether the table set was reallocated
//   - skipped: whether rendering was skipped
func (p *Profiler) RecordFrame(dispatches int, reallocated, skipped bool) {
	p.totals.Frames++
	if dispatches > 0 {
		p.recomputes++
		p.totals.Recomputes++
		p.dispatches += dispatches
		p.totals.Dispatches += dispatches
	}
	if reallocated {
		p.reallocations++
		p.totals.Reallocations++
	}
	if skipped {
		p.skipped++
		p.totals.Skipped++
	}
}

// Totals returns the counters accumulated since creation.
func (p *Profiler) Totals() Totals {
	return p.totals
}

// Tick should be called once per frame to track frame timing.
// Logs FPS, heap usage, allocation rate and the sky recompute counters of the interval
// when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d | Sky recomputes: %d (%d dispatches) | Reallocations: %d | Skipped: %d",
		fps, allocMB, allocRateMB, p.memStats.NumGC, p.recomputes, p.dispatches, p.reallocations, p.skipped)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.recomputes = 0
	p.dispatches = 0
	p.reallocations = 0
	p.skipped = 0
	return true
}
