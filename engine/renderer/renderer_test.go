package renderer

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-sky/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeBackend records what the renderer forwards to it. Tables come from a gputest.Recorder.
type fakeBackend struct {
	rec         *gputest.Recorder
	compiled    []string
	failCompile string
	width       int
	height      int
	presentMode *PresentMode
	dispatched  []pipeline.Pipeline
	drawn       []pipeline.Pipeline
	released    bool
}

var errCompile = errors.New("compile failed")

func (f *fakeBackend) Device() *wgpu.Device { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue   { return nil }
func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.width, f.height = width, height
}
func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = &mode }
func (f *fakeBackend) CompilePipeline(p pipeline.Pipeline) error {
	if p.PipelineKey() == f.failCompile {
		return errCompile
	}
	f.compiled = append(f.compiled, p.PipelineKey())
	return nil
}
func (f *fakeBackend) CreateTable(desc gpu.TableDescriptor) (gpu.Table, error) {
	return f.rec.CreateTable(desc)
}
func (f *fakeBackend) BeginCommands() error { return f.rec.BeginCommands() }
func (f *fakeBackend) Dispatch(p pipeline.Pipeline, cmd gpu.DispatchCommand) error {
	f.dispatched = append(f.dispatched, p)
	return f.rec.Dispatch(cmd)
}
func (f *fakeBackend) Draw(p pipeline.Pipeline, cmd gpu.DrawCommand) error {
	f.drawn = append(f.drawn, p)
	return f.rec.Draw(cmd)
}
func (f *fakeBackend) EndCommands() error { return f.rec.EndCommands() }
func (f *fakeBackend) RequestReadback(t gpu.Table) (gpu.Readback, error) {
	return f.rec.RequestReadback(t)
}
func (f *fakeBackend) BeginFrame() error       { return nil }
func (f *fakeBackend) SurfaceTable() gpu.Table { return nil }
func (f *fakeBackend) Present()                {}
func (f *fakeBackend) Release()                { f.released = true }

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{rec: gputest.NewRecorder()}
	r := newRenderer(options...)
	r.backend = fb
	if err := r.init(640, 480); err != nil {
		t.Fatal(err)
	}
	return r, fb
}

func TestInitRegistersOptions(t *testing.T) {
	r, fb := newTestRenderer(t,
		WithKernel(gpu.KernelTransmittance, KernelDescriptor{Source: "t"}),
		WithPass(gpu.PassSkyFullscreen, PassDescriptor{Source: "sky", Textures: []string{gpu.SlotTransmittance}}),
		WithPresentMode(PresentModeVSync),
	)

	if fb.width != 640 || fb.height != 480 {
		t.Errorf("surface = %dx%d", fb.width, fb.height)
	}
	if fb.presentMode == nil || *fb.presentMode != PresentModeVSync {
		t.Error("present mode not applied")
	}
	slices.Sort(fb.compiled)
	if !slices.Equal(fb.compiled, []string{gpu.KernelTransmittance, gpu.PassSkyFullscreen.String()}) {
		t.Errorf("compiled = %v", fb.compiled)
	}
	if k := r.Kernel(gpu.KernelTransmittance); k == nil || !slices.Equal(k.Slots(), gpu.KernelSlots[gpu.KernelTransmittance]) {
		t.Error("kernel slots must default to the kernel's table slots")
	}
	if p := r.Pass(gpu.PassSkyFullscreen); p == nil || p.Type() != pipeline.PipelineTypeRender {
		t.Error("pass not registered")
	}
}

func TestRegisterErrors(t *testing.T) {
	r, fb := newTestRenderer(t)

	if err := r.RegisterKernel("custom", KernelDescriptor{}); err == nil {
		t.Error("kernel without slots registered")
	}
	if err := r.RegisterKernel("custom", KernelDescriptor{Slots: []string{"a"}}); err != nil {
		t.Errorf("kernel with explicit slots: %v", err)
	}

	fb.failCompile = gpu.KernelStars
	if err := r.RegisterKernel(gpu.KernelStars, KernelDescriptor{}); !errors.Is(err, errCompile) {
		t.Errorf("err = %v", err)
	}
	if r.Kernel(gpu.KernelStars) != nil {
		t.Error("failed kernel was cached")
	}

	bad := newRenderer(WithKernel(gpu.KernelStars, KernelDescriptor{}))
	bad.backend = fb
	if err := bad.init(1, 1); !errors.Is(err, errCompile) {
		t.Errorf("init err = %v", err)
	}
}

func TestDeviceRouting(t *testing.T) {
	r, fb := newTestRenderer(t,
		WithKernel(gpu.KernelTransmittance, KernelDescriptor{Source: "t"}),
		WithPass(gpu.PassCompositeFullscreen, PassDescriptor{Source: "composite"}),
	)
	table, err := r.CreateTable(gpu.TableDescriptor{
		Label: "t", Dimension: gpu.Dimension2D, Width: 8, Height: 8, Depth: 1, Usage: gpu.UsageStorage,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := r.BeginCommands(); err != nil {
		t.Fatal(err)
	}
	err = r.Dispatch(gpu.DispatchCommand{
		Kernel:   gpu.KernelTransmittance,
		Bindings: []gpu.Binding{{Slot: gpu.SlotTransmittance, Table: table, Access: gpu.AccessWrite}},
		Groups:   [3]uint32{1, 1, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Dispatch(gpu.DispatchCommand{Kernel: "missing"}); !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("unknown kernel err = %v", err)
	}
	if err := r.Draw(gpu.DrawCommand{Pass: gpu.PassCompositeFullscreen, Properties: gpu.NewPropertyBlock(), Targets: []gpu.Table{table}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(gpu.DrawCommand{Pass: gpu.PassSkyCubemap}); !errors.Is(err, ErrUnknownPass) {
		t.Errorf("unknown pass err = %v", err)
	}
	if err := r.EndCommands(); err != nil {
		t.Fatal(err)
	}

	if len(fb.dispatched) != 1 || fb.dispatched[0].PipelineKey() != gpu.KernelTransmittance {
		t.Errorf("dispatched = %v", fb.dispatched)
	}
	if len(fb.drawn) != 1 || len(fb.rec.Draws) != 1 {
		t.Errorf("drawn = %d", len(fb.drawn))
	}

	r.Release()
	if !fb.released || r.Kernel(gpu.KernelTransmittance) != nil {
		t.Error("Release kept state")
	}
}

func TestAlignedRowPitch(t *testing.T) {
	tests := []struct {
		width uint32
		bpp   int
		want  uint32
	}{
		{64, 16, 1024},
		{10, 16, 256},
		{17, 16, 512},
		{1, 8, 256},
		{256, 8, 2048},
	}
	for _, tt := range tests {
		if got := alignedRowPitch(tt.width, tt.bpp); got != tt.want {
			t.Errorf("alignedRowPitch(%d, %d) = %d, want %d", tt.width, tt.bpp, got, tt.want)
		}
	}
}

func TestUniformBufferSize(t *testing.T) {
	for n, want := range map[int]uint64{16: 16, 20: 32, 832: 832, 240: 240, 1: 16} {
		if got := uniformBufferSize(n); got != want {
			t.Errorf("uniformBufferSize(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestTextureMapping(t *testing.T) {
	if got := textureFormat(gpu.FormatSurface, wgpu.TextureFormatBGRA8Unorm); got != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("surface format = %v", got)
	}
	if got := textureFormat(gpu.FormatRGBA32Float, wgpu.TextureFormatUndefined); got != wgpu.TextureFormatRGBA32Float {
		t.Errorf("rgba32float = %v", got)
	}

	usage := textureUsage(gpu.UsageSampled | gpu.UsageStorage | gpu.UsageCopySource)
	want := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst
	if usage != want {
		t.Errorf("usage = %v, want %v", usage, want)
	}

	if textureDimension(gpu.Dimension3D) != wgpu.TextureDimension3D || textureDimension(gpu.DimensionCube) != wgpu.TextureDimension2D {
		t.Error("texture dimension mapping")
	}
	if sampledViewDimension(gpu.DimensionCube) != wgpu.TextureViewDimensionCube {
		t.Error("cubes are sampled as cubes")
	}
	if storageViewDimension(gpu.DimensionCube) != wgpu.TextureViewDimension2DArray {
		t.Error("cubes are written as 2D arrays")
	}
	if sampleType(gpu.FormatRGBA32Float) != wgpu.TextureSampleTypeUnfilterableFloat || sampleType(gpu.FormatRGBA16Float) != wgpu.TextureSampleTypeFloat {
		t.Error("sample type mapping")
	}
}

func TestAsTableRejectsForeignTables(t *testing.T) {
	rec := gputest.NewRecorder()
	foreign, _ := rec.CreateTable(gpu.TableDescriptor{Label: "x", Width: 1, Height: 1, Depth: 1, Usage: gpu.UsageSampled})
	if _, err := asTable(foreign); err == nil {
		t.Error("recorder table accepted")
	}
	if _, err := asTable(nil); err == nil {
		t.Error("nil table accepted")
	}
}
