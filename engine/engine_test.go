package engine

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-sky/common"
	"github.com/Carmen-Shannon/oxy-sky/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/lighting"
)

type fakePresenter struct {
	surface  gpu.Table
	fail     bool
	begun    int
	presents int
	sizes    [][2]int
}

func (p *fakePresenter) BeginFrame() error {
	if p.fail {
		return errors.New("surface lost")
	}
	p.begun++
	return nil
}

func (p *fakePresenter) SurfaceTable() gpu.Table  { return p.surface }
func (p *fakePresenter) Present()                 { p.presents++ }
func (p *fakePresenter) Resize(width, height int) { p.sizes = append(p.sizes, [2]int{width, height}) }

func newPresenter(t *testing.T, rec *gputest.Recorder) *fakePresenter {
	t.Helper()
	surface, err := rec.CreateTable(gpu.TableDescriptor{
		Label:     "surface",
		Dimension: gpu.Dimension2D,
		Format:    gpu.FormatSurface,
		Width:     320,
		Height:    240,
		Depth:     1,
		Usage:     gpu.UsageRenderTarget,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &fakePresenter{surface: surface}
}

func frameCallback(cfg *config.Config) FrameCallback {
	return func(dt float32) (*config.Config, sky.FrameState) {
		st := sky.FrameState{ScreenWidth: 320, ScreenHeight: 240}
		common.Identity(st.Camera.View[:])
		common.Perspective(st.Camera.Projection[:], 1, 320.0/240.0, 0.1, 100)
		return cfg, st
	}
}

func TestRunFrameCompositesIntoSurface(t *testing.T) {
	rec := gputest.NewRecorder()
	p := newPresenter(t, rec)
	cfg := config.Default()
	e := NewEngine(
		WithSky(sky.NewSky(rec, sky.WithFeedbackOptions(lighting.WithWorkers(1)))),
		WithPresenter(p),
		WithFrameCallback(frameCallback(&cfg)),
	).(*engine)

	if !e.runFrame(0.016) {
		t.Fatal("frame did not run")
	}
	if p.begun != 1 || p.presents != 1 {
		t.Errorf("begun = %d, presents = %d", p.begun, p.presents)
	}
	report := e.LastReport()
	if report.Skipped || !report.Reallocated {
		t.Errorf("report = %+v", report)
	}

	var composited bool
	for _, d := range rec.Draws {
		if d.Pass == gpu.PassCompositeFullscreen && len(d.Targets) == 1 && d.Targets[0] == p.surface {
			composited = true
		}
	}
	if !composited {
		t.Error("screen composite did not target the surface")
	}
}

func TestRunFrameSkips(t *testing.T) {
	rec := gputest.NewRecorder()
	cfg := config.Default()

	tests := []struct {
		name    string
		options []EngineBuilderOption
	}{
		{"no sky", []EngineBuilderOption{WithFrameCallback(frameCallback(&cfg))}},
		{"no callback", []EngineBuilderOption{WithSky(sky.NewSky(rec))}},
		{"nil config", []EngineBuilderOption{
			WithSky(sky.NewSky(rec)),
			WithFrameCallback(func(float32) (*config.Config, sky.FrameState) { return nil, sky.FrameState{} }),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.options...).(*engine)
			if e.runFrame(0.016) {
				t.Error("frame ran")
			}
		})
	}
}

func TestRunFrameBeginFailure(t *testing.T) {
	rec := gputest.NewRecorder()
	p := newPresenter(t, rec)
	p.fail = true
	cfg := config.Default()
	e := NewEngine(
		WithSky(sky.NewSky(rec)),
		WithPresenter(p),
		WithFrameCallback(frameCallback(&cfg)),
	).(*engine)

	if e.runFrame(0.016) {
		t.Error("frame ran without a surface")
	}
	if p.presents != 0 || len(rec.Draws) != 0 {
		t.Errorf("presents = %d, draws = %d", p.presents, len(rec.Draws))
	}
}

func TestProfilerRecordsFrames(t *testing.T) {
	rec := gputest.NewRecorder()
	cfg := config.Default()
	e := NewEngine(
		WithSky(sky.NewSky(rec, sky.WithFeedbackOptions(lighting.WithWorkers(1)))),
		WithFrameCallback(frameCallback(&cfg)),
		WithProfiling(true),
	).(*engine)

	e.runFrame(0.016)
	e.runFrame(0.016)
	totals := e.Profiler().Totals()
	if totals.Frames != 2 || totals.Recomputes != 1 || totals.Reallocations != 1 {
		t.Errorf("totals = %+v", totals)
	}

	e.DisableProfiler()
	e.runFrame(0.016)
	if e.Profiler().Totals().Frames != 2 {
		t.Error("disabled profiler recorded a frame")
	}
}

func TestSuppliedProfilerCountsEachFrameOnce(t *testing.T) {
	rec := gputest.NewRecorder()
	cfg := config.Default()
	p := profiler.NewProfiler()
	e := NewEngine(
		WithSky(sky.NewSky(rec, sky.WithFeedbackOptions(lighting.WithWorkers(1)))),
		WithFrameCallback(frameCallback(&cfg)),
		WithProfiler(p),
		WithProfiling(true),
	).(*engine)

	for range 3 {
		e.runFrame(0.016)
	}
	if e.Profiler() != p {
		t.Fatal("engine did not keep the supplied profiler")
	}
	if totals := p.Totals(); totals.Frames != 3 || totals.Recomputes != 1 {
		t.Errorf("totals = %+v", totals)
	}
}

func TestResize(t *testing.T) {
	rec := gputest.NewRecorder()
	p := newPresenter(t, rec)
	var got [2]int
	e := NewEngine(WithPresenter(p)).(*engine)
	e.SetResizeCallback(func(w, h int) { got = [2]int{w, h} })

	e.resize(0, 100)
	e.resize(640, 480)
	if len(p.sizes) != 1 || p.sizes[0] != [2]int{640, 480} {
		t.Errorf("presenter sizes = %v", p.sizes)
	}
	if got != [2]int{640, 480} {
		t.Errorf("callback got %v", got)
	}
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetRenderFrameLimit(50)
	if e.renderFrameLimit != 20_000_000 {
		t.Errorf("limit = %v", e.renderFrameLimit)
	}
	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Errorf("limit = %v", e.renderFrameLimit)
	}
}
