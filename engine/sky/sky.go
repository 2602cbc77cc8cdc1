// Package sky ties the precomputation cache and the render orchestration together into a
// per-frame Update.
package sky

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/celestial"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/dirty"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/frame"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/lighting"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/physmath"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/precompute"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/quality"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameState is the per-frame input that does not come from the sky configuration.
type FrameState struct {
	// Camera is the screen camera. Its position is in kilometres with the ground at y = 0.
	Camera frame.Camera
	Time   float32

	ScreenWidth  uint32
	ScreenHeight uint32
	// CubemapSize is the face size of the omnidirectional target; 0 disables it.
	CubemapSize uint32

	// Output, when set, receives the screen composite instead of the pool's composite buffer.
	Output gpu.Table
}

// FrameReport describes the work one Update did.
type FrameReport struct {
	// Reallocated is true when the table set was released and allocated again.
	Reallocated     bool
	StageDispatches int
	NightDispatches int
	// Skipped is true when rendering was skipped because resources were unavailable.
	Skipped  bool
	Screen   frame.Result
	Cubemap  frame.Result
	Lighting *lighting.Context
}

// Sky is the per-frame entry point of the sky system.
type Sky interface {
	// Update runs one frame: validates cfg, recomputes whatever changed, renders both
	// output targets and evaluates the lighting context.
	//
	// Parameters:
	//   - cfg: the sky configuration; it is copied and never modified
	//   - state: camera, time and target sizes
	//
	// Returns:
	//   - FrameReport: what was done this frame
	//   - error: an allocation or device error; the frame was skipped and the next Update retries
	Update(cfg *config.Config, state FrameState) (FrameReport, error)

	// Lighting returns the most recent per-frame lighting context, or nil before the first frame.
	Lighting() *lighting.Context

	// Tracker returns the change tracker.
	Tracker() dirty.Tracker

	// Pool returns the resource pool.
	Pool() resource.Pool

	// Release frees every GPU resource.
	Release()
}

type sky struct {
	mu       *sync.Mutex
	device   gpu.Device
	pool     resource.Pool
	tracker  dirty.Tracker
	pipeline precompute.Pipeline
	feedback lighting.Feedback
	screen   frame.Orchestrator
	cubemap  frame.Orchestrator

	poolOptions     []resource.PoolBuilderOption
	feedbackOptions []lighting.FeedbackBuilderOption
	frameOptions    []frame.OrchestratorBuilderOption

	directions   [config.MaxBodies]mgl32.Vec3
	resolved     [config.MaxBodies]bool
	lastWarnings []config.Warning
}

var _ Sky = &sky{}

// NewSky creates a Sky that records into device.
//
// Parameters:
//   - device: the device every table, dispatch and draw goes to
//   - options: functional options to configure the sky
//
// Returns:
//   - Sky: the new sky with nothing allocated
func NewSky(device gpu.Device, options ...SkyBuilderOption) Sky {
	if device == nil {
		panic("sky: NewSky requires a device")
	}
	s := &sky{
		mu:      &sync.Mutex{},
		device:  device,
		tracker: dirty.NewTracker(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = precompute.NewPipeline()
	}
	s.pool = resource.NewPool(device, s.poolOptions...)
	s.feedback = lighting.NewFeedback(s.feedbackOptions...)
	s.screen = frame.NewOrchestrator(s.pool, resource.TargetScreen, s.frameOptions...)
	s.cubemap = frame.NewOrchestrator(s.pool, resource.TargetCubemap, s.frameOptions...)
	return s
}

func (s *sky) Lighting() *lighting.Context { return s.feedback.Latest() }
func (s *sky) Tracker() dirty.Tracker      { return s.tracker }
func (s *sky) Pool() resource.Pool         { return s.pool }

func (s *sky) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback.Clear()
	s.pool.Release()
}

func (s *sky) Update(cfg *config.Config, state FrameState) (FrameReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report FrameReport
	c := *cfg
	s.logWarnings(c.Validate())

	// The readback requested by a previous recompute is only consumed here, never mid-frame.
	if _, err := s.feedback.Resolve(); err != nil {
		log.Printf("[Sky] %v", err)
	}

	bodies := c.ActiveBodies()
	s.resolveDirections(&bodies)
	s.tracker.Update(&c)

	err := s.precompute(&c, &report)
	if err == nil {
		s.precomputeNightSky(&c, &report)
		if s.tracker.IsDirty(config.GroupCloud) {
			s.screen.InvalidateHistory()
			s.cubemap.InvalidateHistory()
			s.tracker.Accept(config.GroupCloud)
		}
		err = s.render(&c, &bodies, state, &report)
	}
	if err != nil {
		report.Skipped = true
		log.Printf("[Sky] frame skipped: %v", err)
	}

	report.Lighting = s.feedback.Evaluate(mgl32.Vec3(state.Camera.Position), s.bodyInputs(&bodies), c.Planet)
	return report, err
}

// precompute makes the table set match the configuration and reruns the stages when the sky
// group changed. A reallocation always forces a rerun because new tables hold no data.
func (s *sky) precompute(c *config.Config, report *FrameReport) error {
	active := c.ActiveLayers().Count
	changed, err := s.pool.EnsureTables(quality.Resolutions(c.Quality), active)
	if err != nil {
		s.tracker.Invalidate(config.GroupSky)
		s.feedback.Clear()
		return err
	}
	if changed {
		report.Reallocated = true
		s.tracker.Invalidate(config.GroupSky)
		s.feedback.Clear()
	}
	if !s.tracker.IsDirty(config.GroupSky) {
		return nil
	}

	tables := s.pool.Tables()
	if active == 0 {
		s.feedback.Clear()
		s.tracker.Accept(config.GroupSky)
		return nil
	}

	n, err := s.pipeline.Run(s.device, tables, c)
	report.StageDispatches = n
	if err != nil {
		return fmt.Errorf("failed to precompute sky tables: %w", err)
	}
	s.tracker.Accept(config.GroupSky)

	rb, err := s.device.RequestReadback(tables.Transmittance)
	if err != nil {
		log.Printf("[Sky] transmittance readback unavailable: %v", err)
		return nil
	}
	s.feedback.SetPending(rb)
	return nil
}

// precomputeNightSky regenerates the star and nebula cubemaps. Failures only lose the night sky.
func (s *sky) precomputeNightSky(c *config.Config, report *FrameReport) {
	changed, err := s.pool.EnsureNightSky(c.StarQuality)
	if err != nil {
		s.tracker.Invalidate(config.GroupNightSky)
		log.Printf("[Sky] night sky unavailable: %v", err)
		return
	}
	if changed {
		s.tracker.Invalidate(config.GroupNightSky)
	}
	if !s.tracker.IsDirty(config.GroupNightSky) {
		return
	}
	n, err := s.pipeline.RunNightSky(s.device, s.pool.NightSky(), c)
	report.NightDispatches = n
	if err != nil {
		log.Printf("[Sky] night sky generation failed: %v", err)
		return
	}
	s.tracker.Accept(config.GroupNightSky)
}

func (s *sky) render(c *config.Config, bodies *config.ActiveBodies, state FrameState, report *FrameReport) error {
	atmosphere := precompute.NewAtmosphereUniforms(c)
	in := frame.Input{
		Width:      state.ScreenWidth,
		Height:     state.ScreenHeight,
		Camera:     state.Camera,
		Time:       state.Time,
		Exposure:   c.Exposure,
		Tables:     s.pool.Tables(),
		Atmosphere: atmosphere.Marshal(),
		Bodies:     frame.NewBodiesUniforms(*bodies, s.activeDirections(bodies)),
		Clouds:     frame.NewCloudUniforms(c.Clouds),
		Output:     state.Output,
	}
	if night := s.pool.NightSky(); night != nil {
		u := precompute.NewNightSkyUniforms(c, night.Resolutions.StarFace)
		in.Night = night
		in.NightSky = u.Marshal()
	}

	res, err := s.screen.Render(s.device, in)
	report.Screen = res
	if err != nil {
		s.cubemap.InvalidateHistory()
		return fmt.Errorf("screen: %w", err)
	}

	if state.CubemapSize == 0 {
		s.cubemap.InvalidateHistory()
		return nil
	}
	in.Width, in.Height = state.CubemapSize, state.CubemapSize
	in.Output = nil
	res, err = s.cubemap.Render(s.device, in)
	report.Cubemap = res
	if err != nil {
		return fmt.Errorf("cubemap: %w", err)
	}
	return nil
}

// resolveDirections derives the direction of every date/time driven body. A malformed date keeps
// the last good direction, or the explicit one if there never was one.
func (s *sky) resolveDirections(bodies *config.ActiveBodies) {
	for i := range bodies.Count {
		b := &bodies.Items[i]
		slot := bodies.Slots[i]
		if !b.UseDateTime {
			s.directions[slot] = b.Direction
			s.resolved[slot] = true
			continue
		}
		t, err := config.ParseDateTime(b.DateTime)
		if err != nil {
			if !s.resolved[slot] {
				s.directions[slot] = b.Direction
				s.resolved[slot] = true
			}
			continue
		}
		if b.Kind == config.BodyMoon {
			s.directions[slot] = celestial.MoonDirection(t, b.Latitude, b.Longitude)
		} else {
			s.directions[slot] = celestial.SunDirection(t, b.Latitude, b.Longitude)
		}
		s.resolved[slot] = true
	}
}

func (s *sky) activeDirections(bodies *config.ActiveBodies) [config.MaxBodies]mgl32.Vec3 {
	var out [config.MaxBodies]mgl32.Vec3
	for i := range bodies.Count {
		out[i] = s.directions[bodies.Slots[i]]
	}
	return out
}

func (s *sky) bodyInputs(bodies *config.ActiveBodies) []lighting.BodyInput {
	out := make([]lighting.BodyInput, 0, bodies.Count)
	for i := range bodies.Count {
		b := bodies.Items[i]
		color := b.Color
		if b.UseTemperature {
			color = physmath.BlackbodyToRGB(b.Temperature)
		}
		out = append(out, lighting.BodyInput{
			Slot:      bodies.Slots[i],
			Direction: s.directions[bodies.Slots[i]],
			BaseColor: color,
			Intensity: b.LightIntensity,
		})
	}
	return out
}

// logWarnings logs configuration recoveries once, not every frame the same bad value is seen.
func (s *sky) logWarnings(warnings []config.Warning) {
	if slices.Equal(warnings, s.lastWarnings) {
		return
	}
	for _, w := range warnings {
		log.Printf("[SkyConfig] %s", w)
	}
	s.lastWarnings = warnings
}
