package frame

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/common"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/resource"
)

// ErrNoTables is returned when a frame is rendered without a precomputed table set.
// The frame is skipped; nothing is recorded.
var ErrNoTables = errors.New("frame: no precomputed tables")

// State is the render target state of an Orchestrator.
type State int

const (
	// StateSized means the render target pair matches the last requested size.
	StateSized State = iota

	// StateResizing means the pair is being released and reallocated.
	// An orchestrator stays here if reallocation failed.
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateSized:
		return "sized"
	case StateResizing:
		return "resizing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Camera is the view the screen target is rendered from. The cubemap target only uses Position.
type Camera struct {
	Position   [3]float32
	View       [16]float32
	Projection [16]float32
}

// Input is everything one frame of one output target needs.
type Input struct {
	// Width and Height are the target size in pixels. The cubemap target uses Width as its face size.
	Width, Height uint32
	Camera        Camera
	Time          float32
	Exposure      float32

	Tables *resource.TableSet
	// Night is optional; without it the sky pass binds no star or nebula textures.
	Night *resource.NightSkyTextures

	// Atmosphere and NightSky are pre-marshaled uniform blocks.
	Atmosphere []byte
	NightSky   []byte
	Bodies     GPUBodiesUniforms
	Clouds     GPUCloudUniforms

	// Output overrides the composite destination, e.g. with the presentation surface.
	// When nil the pair's own composite buffer is written.
	Output gpu.Table
}

// Result describes what one Render call did.
type Result struct {
	Skipped      bool
	Resized      bool
	Draws        int
	Passes       []gpu.PassIndex
	CursorBefore int
	CursorAfter  int
}

// Orchestrator drives the sky, clouds and composite passes of one output target and owns its
// cloud history.
type Orchestrator interface {
	// Render resizes the target if needed and records sky, clouds and composite in one submission.
	// The cloud history cursor swaps only after the submission succeeded.
	//
	// Parameters:
	//   - dev: the device to record into
	//   - in: the per-frame input
	//
	// Returns:
	//   - Result: what was recorded
	//   - error: ErrNoTables, an allocation error, or a device error; the frame is skipped on error
	Render(dev gpu.Device, in Input) (Result, error)

	// InvalidateHistory makes the next clouds pass ignore its history buffers.
	InvalidateHistory()

	// HistoryValid reports whether the next clouds pass may reproject from history.
	HistoryValid() bool

	// State returns the render target state.
	State() State

	// Target returns the output target this orchestrator renders.
	Target() resource.OutputTarget
}

type orchestrator struct {
	mu     *sync.Mutex
	pool   resource.Pool
	target resource.OutputTarget
	near   float32
	far    float32

	state        State
	historyValid bool
	prevViewProj [common.CubeFaceCount][16]float32
	block        *gpu.PropertyBlock
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator creates an Orchestrator for one output target.
//
// Parameters:
//   - pool: the pool the render target pair is allocated from
//   - target: the output target
//   - options: functional options to configure the orchestrator
//
// Returns:
//   - Orchestrator: the new orchestrator
func NewOrchestrator(pool resource.Pool, target resource.OutputTarget, options ...OrchestratorBuilderOption) Orchestrator {
	if pool == nil {
		panic("frame: NewOrchestrator requires a resource pool")
	}
	o := &orchestrator{
		mu:     &sync.Mutex{},
		pool:   pool,
		target: target,
		near:   0.1,
		far:    1000,
		state:  StateSized,
		block:  gpu.NewPropertyBlock(),
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *orchestrator) Target() resource.OutputTarget {
	return o.target
}

func (o *orchestrator) InvalidateHistory() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.historyValid = false
}

func (o *orchestrator) HistoryValid() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.historyValid
}

func (o *orchestrator) Render(dev gpu.Device, in Input) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	height := in.Height
	if o.target == resource.TargetCubemap {
		height = in.Width
	}
	// A skipped frame leaves the history buffers behind the camera, so the next drawn frame
	// must not reproject from them.
	skip := func(err error) (Result, error) {
		o.historyValid = false
		return Result{Skipped: true}, err
	}
	if in.Width == 0 || height == 0 {
		return skip(nil)
	}
	if in.Tables == nil {
		return skip(ErrNoTables)
	}

	resized, err := o.ensureTargets(in.Width, height)
	if err != nil {
		return skip(err)
	}
	pair := o.pool.Targets(o.target)

	res := Result{Resized: resized, CursorBefore: pair.Cursor()}
	faces := o.faces()
	frames := make([]GPUFrameUniforms, faces)
	for f := range frames {
		frames[f] = o.frameUniforms(f, in)
	}

	if err := dev.BeginCommands(); err != nil {
		return skip(fmt.Errorf("failed to begin %s frame: %w", o.target, err))
	}
	draws, err := o.record(dev, in, pair, frames, &res)
	if err != nil {
		if endErr := dev.EndCommands(); endErr != nil {
			err = errors.Join(err, endErr)
		}
		return skip(err)
	}
	if err := dev.EndCommands(); err != nil {
		return skip(fmt.Errorf("failed to submit %s frame: %w", o.target, err))
	}

	pair.Swap()
	for f := range frames {
		o.prevViewProj[f] = frames[f].ViewProj
	}
	o.historyValid = true

	res.Draws = draws
	res.CursorAfter = pair.Cursor()
	return res, nil
}

func (o *orchestrator) ensureTargets(width, height uint32) (bool, error) {
	if pair := o.pool.Targets(o.target); pair == nil || pair.Width != width || pair.Height != height {
		o.state = StateResizing
	}
	changed, err := o.pool.EnsureTargets(o.target, width, height)
	if err != nil {
		return false, err
	}
	o.state = StateSized
	if changed {
		o.historyValid = false
	}
	return changed, nil
}

func (o *orchestrator) faces() int {
	if o.target == resource.TargetCubemap {
		return common.CubeFaceCount
	}
	return 1
}

func (o *orchestrator) passes() (sky, clouds, composite gpu.PassIndex) {
	if o.target == resource.TargetCubemap {
		return gpu.PassSkyCubemap, gpu.PassCloudsCubemap, gpu.PassCompositeCubemap
	}
	return gpu.PassSkyFullscreen, gpu.PassCloudsFullscreen, gpu.PassCompositeFullscreen
}

// record issues every face of the sky pass, then the clouds pass, then the composite pass.
func (o *orchestrator) record(dev gpu.Device, in Input, pair *resource.RenderTargetPair, frames []GPUFrameUniforms, res *Result) (int, error) {
	skyPass, cloudsPass, compositePass := o.passes()
	depth := o.target == resource.TargetScreen
	cur, prev := pair.Current(), pair.Previous()
	output := in.Output
	if output == nil {
		output = pair.Composite
	}
	bodies := in.Bodies.Marshal()
	clouds := in.Clouds.Marshal()

	frameBytes := make([][]byte, len(frames))
	for f := range frames {
		frameBytes[f] = frames[f].Marshal()
	}

	draws := 0
	draw := func(cmd gpu.DrawCommand) error {
		if err := dev.Draw(cmd); err != nil {
			return fmt.Errorf("failed to draw %s face %d: %w", cmd.Pass, cmd.Layer, err)
		}
		draws++
		res.Passes = append(res.Passes, cmd.Pass)
		return nil
	}

	for f := range frames {
		o.block.Clear()
		o.bindTables(in)
		o.block.SetUniforms(gpu.UniformAtmosphere, in.Atmosphere)
		o.block.SetUniforms(gpu.UniformFrame, frameBytes[f])
		o.block.SetUniforms(gpu.UniformBodies, bodies)
		if in.NightSky != nil {
			o.block.SetUniforms(gpu.UniformNightSky, in.NightSky)
		}
		if err := draw(gpu.DrawCommand{Pass: skyPass, Properties: o.block, Targets: []gpu.Table{pair.Sky}, Depth: depth, Layer: uint32(f)}); err != nil {
			return draws, err
		}
	}

	for f := range frames {
		o.block.Clear()
		o.block.SetTexture(gpu.SlotTransmittance, in.Tables.Transmittance)
		o.block.SetTexture(gpu.SlotAerialPerspective, in.Tables.AerialPerspective[0])
		o.block.SetTexture(gpu.PropertyHistoryColor, prev.Color)
		o.block.SetTexture(gpu.PropertyHistoryTransmittance, prev.Transmittance)
		o.block.SetUniforms(gpu.UniformAtmosphere, in.Atmosphere)
		o.block.SetUniforms(gpu.UniformFrame, frameBytes[f])
		o.block.SetUniforms(gpu.UniformBodies, bodies)
		o.block.SetUniforms(gpu.UniformClouds, clouds)
		targets := []gpu.Table{cur.Color, cur.Transmittance}
		if err := draw(gpu.DrawCommand{Pass: cloudsPass, Properties: o.block, Targets: targets, Depth: depth, Layer: uint32(f)}); err != nil {
			return draws, err
		}
	}

	for f := range frames {
		o.block.Clear()
		o.block.SetTexture(gpu.PropertySkyColor, pair.Sky)
		o.block.SetTexture(gpu.PropertyCloudColor, cur.Color)
		o.block.SetTexture(gpu.PropertyCloudTransmittance, cur.Transmittance)
		o.block.SetUniforms(gpu.UniformFrame, frameBytes[f])
		if err := draw(gpu.DrawCommand{Pass: compositePass, Properties: o.block, Targets: []gpu.Table{output}, Layer: uint32(f)}); err != nil {
			return draws, err
		}
	}
	return draws, nil
}

func (o *orchestrator) bindTables(in Input) {
	t := in.Tables
	o.block.SetTexture(gpu.SlotTransmittance, t.Transmittance)
	o.block.SetTexture(gpu.SlotMultipleScattering, t.MultipleScattering)
	o.block.SetTexture(gpu.SlotSingleScattering, t.SingleScattering)
	o.block.SetTexture(gpu.SlotSingleScatteringNoShadow, t.SingleScatteringNoShadow)
	o.block.SetTexture(gpu.SlotMSAccumulation, t.MSAccumulation)
	o.block.SetTexture(gpu.SlotGroundIrradiance, t.GroundIrradiance)
	o.block.SetTexture(gpu.SlotLightPollution, t.LightPollution)
	o.block.SetTexture(gpu.SlotAerialPerspective, t.AerialPerspective[0])
	o.block.SetTexture(gpu.PropertyAerialPerspectiveFar, t.AerialPerspective[1])
	if in.Night != nil {
		o.block.SetTexture(gpu.SlotStars, in.Night.Stars)
		o.block.SetTexture(gpu.SlotNebulae, in.Night.Nebulae)
	}
}

func (o *orchestrator) frameUniforms(face int, in Input) GPUFrameUniforms {
	u := GPUFrameUniforms{
		CameraPosition: in.Camera.Position,
		Time:           in.Time,
		Face:           uint32(face),
		Exposure:       in.Exposure,
		PrevViewProj:   o.prevViewProj[face],
	}
	if o.target == resource.TargetCubemap {
		common.CubeFaceViewProj(u.ViewProj[:], face, in.Camera.Position, o.near, o.far)
		u.Resolution = [2]float32{float32(in.Width), float32(in.Width)}
		u.Cubemap = 1
	} else {
		common.Mul4(u.ViewProj[:], in.Camera.Projection[:], in.Camera.View[:])
		u.Resolution = [2]float32{float32(in.Width), float32(in.Height)}
	}
	if !common.Invert4(u.InvViewProj[:], u.ViewProj[:]) {
		common.Identity(u.InvViewProj[:])
	}
	if o.historyValid {
		u.HistoryValid = 1
	} else {
		u.PrevViewProj = u.ViewProj
	}
	return u
}
