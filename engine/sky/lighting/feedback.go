package lighting

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/physmath"
	"github.com/go-gl/mathgl/mgl32"
)

// Feedback keeps a CPU copy of the transmittance table and turns it into per-body sky
// transmittance every frame.
//
// The CPU copy is replaced wholesale when a pending readback resolves. Resolve runs at the start of
// a frame and Evaluate later in the same frame, so the copy never changes while it is being read.
type Feedback interface {
	// SetPending replaces any pending readback. The previous one is released unresolved.
	//
	// Parameters:
	//   - rb: the readback of the transmittance table
	SetPending(rb gpu.Readback)

	// Resolve installs the pending readback if the GPU has finished it.
	//
	// Returns:
	//   - bool: true if a new table was installed
	//   - error: an error if the readback data could not be decoded; the old table is kept
	Resolve() (bool, error)

	// Clear drops the CPU copy and any pending readback. Transmittance reads as 1 afterwards.
	Clear()

	// HasTable reports whether a CPU copy is installed.
	HasTable() bool

	// Pending reports whether a readback is waiting to resolve.
	Pending() bool

	// Transmittance returns the sky transmittance from radius r towards view zenith cosine mu.
	//
	// Parameters:
	//   - r: distance from the planet center, inside the atmosphere
	//   - mu: cosine of the angle between the ray and the local zenith
	//   - planet: the planet and atmosphere radii
	//
	// Returns:
	//   - mgl32.Vec3: RGB transmittance, 1 without a CPU copy
	Transmittance(r, mu float32, planet config.Planet) mgl32.Vec3

	// Evaluate computes the lighting context of this frame and publishes it to Latest.
	//
	// Parameters:
	//   - camera: camera position in kilometres, with the ground at y = 0 below the origin
	//   - bodies: the active bodies
	//   - planet: the planet and atmosphere radii
	//
	// Returns:
	//   - *Context: the new context
	Evaluate(camera mgl32.Vec3, bodies []BodyInput, planet config.Planet) *Context

	// Latest returns the most recently evaluated context, or nil before the first Evaluate.
	Latest() *Context
}

// occlusionEpsilon keeps a camera standing on the ground from occluding bodies above the horizon.
const occlusionEpsilon = 1e-3

type feedback struct {
	mu        *sync.Mutex
	pool      worker.DynamicWorkerPool
	workers   int
	chunkRows int

	pending gpu.Readback
	table   *opticalDepthTable
	frame   uint64
	latest  atomic.Pointer[Context]
}

var _ Feedback = &feedback{}

// NewFeedback creates a Feedback with no CPU copy.
//
// Parameters:
//   - options: functional options to configure the feedback
//
// Returns:
//   - Feedback: the new feedback
func NewFeedback(options ...FeedbackBuilderOption) Feedback {
	f := &feedback{
		mu:        &sync.Mutex{},
		workers:   max(runtime.NumCPU()-1, 1),
		chunkRows: 16,
	}
	for _, opt := range options {
		opt(f)
	}
	f.pool = worker.NewDynamicWorkerPool(f.workers, 256, 1*time.Second)
	return f
}

func (f *feedback) SetPending(rb gpu.Readback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil && f.pending != rb {
		f.pending.Release()
	}
	f.pending = rb
}

func (f *feedback) Resolve() (bool, error) {
	f.mu.Lock()
	rb := f.pending
	if rb == nil || !rb.Ready() {
		f.mu.Unlock()
		return false, nil
	}
	f.pending = nil
	f.mu.Unlock()

	defer rb.Release()
	data, err := rb.Data()
	if err != nil {
		return false, fmt.Errorf("failed to read transmittance readback: %w", err)
	}
	t, err := decodeTable(f.pool, data, rb.RowPitch(), rb.Descriptor(), f.chunkRows)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	f.table = t
	f.mu.Unlock()
	return true, nil
}

func (f *feedback) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		f.pending.Release()
		f.pending = nil
	}
	f.table = nil
}

func (f *feedback) HasTable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.table != nil
}

func (f *feedback) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}

func (f *feedback) Transmittance(r, mu float32, planet config.Planet) mgl32.Vec3 {
	f.mu.Lock()
	t := f.table
	f.mu.Unlock()
	return transmittance(t, r, mu, planet)
}

func (f *feedback) Evaluate(camera mgl32.Vec3, bodies []BodyInput, planet config.Planet) *Context {
	f.mu.Lock()
	t := f.table
	f.frame++
	ctx := &Context{Frame: f.frame}
	f.mu.Unlock()

	origin := camera.Add(mgl32.Vec3{0, planet.Radius, 0})
	for _, b := range bodies {
		if ctx.Count == len(ctx.Bodies) {
			break
		}
		light := BodyLight{
			Slot:      b.Slot,
			Direction: b.Direction,
			BaseColor: b.BaseColor,
			Intensity: b.Intensity,
		}
		light.SkyTransmittance, light.Occluded = bodyTransmittance(t, origin, b.Direction, planet)
		ctx.Bodies[ctx.Count] = light
		ctx.Count++
	}

	f.latest.Store(ctx)
	return ctx
}

func (f *feedback) Latest() *Context {
	return f.latest.Load()
}

// bodyTransmittance tests the planet for occlusion and otherwise looks up the transmittance
// from the camera, or from where the ray enters the atmosphere, towards the body.
func bodyTransmittance(t *opticalDepthTable, origin, dir mgl32.Vec3, planet config.Planet) (mgl32.Vec3, bool) {
	if dir.Len() == 0 {
		return mgl32.Vec3{1, 1, 1}, false
	}
	dir = dir.Normalize()

	if _, far, hit := physmath.IntersectSphere(origin, dir, planet.Radius); hit && far > occlusionEpsilon {
		return mgl32.Vec3{}, true
	}

	top := planet.AtmosphereRadius()
	r := origin.Len()
	if r > top {
		near, far, hit := physmath.IntersectSphere(origin, dir, top)
		if !hit || far <= 0 {
			return mgl32.Vec3{1, 1, 1}, false
		}
		origin = origin.Add(dir.Mul(near))
		r = top
	}
	if r == 0 {
		return mgl32.Vec3{1, 1, 1}, false
	}
	mu := origin.Dot(dir) / r
	return transmittance(t, r, mu, planet), false
}

func transmittance(t *opticalDepthTable, r, mu float32, planet config.Planet) mgl32.Vec3 {
	if t == nil {
		return mgl32.Vec3{1, 1, 1}
	}
	u, v := physmath.MapRadiusMuToUV(r, mu, planet.AtmosphereRadius(), planet.Radius, -1, false)
	od := t.sample(u, v)
	return mgl32.Vec3{
		float32(math.Exp(-float64(od[0]))),
		float32(math.Exp(-float64(od[1]))),
		float32(math.Exp(-float64(od[2]))),
	}
}
