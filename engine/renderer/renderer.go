package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/Carmen-Shannon/oxy-sky/engine/window"
)

var (
	// ErrUnknownKernel is returned when a dispatch names a kernel that was never registered.
	ErrUnknownKernel = errors.New("renderer: unknown kernel")

	// ErrUnknownPass is returned when a draw names a pass index that was never registered.
	ErrUnknownPass = errors.New("renderer: unknown pass")
)

// KernelDescriptor declares the WGSL program of a compute kernel.
type KernelDescriptor struct {
	Source     string
	EntryPoint string
	// Slots overrides the table slots the kernel binds. Defaults to gpu.KernelSlots for the kernel name.
	Slots []string
}

// PassDescriptor declares the WGSL program of a full-screen pass and the properties it reads.
type PassDescriptor struct {
	Source             string
	VertexEntryPoint   string
	FragmentEntryPoint string
	// Textures and Uniforms name PropertyBlock entries in binding order.
	Textures []string
	Uniforms []string
	// Depth binds the scene depth texture after the last uniform block.
	Depth bool
	Blend bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	kernels map[string]pipeline.Pipeline
	passes  map[gpu.PassIndex]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingKernels       map[string]KernelDescriptor
	pendingPasses        map[gpu.PassIndex]PassDescriptor
}

// Renderer is the WebGPU implementation of gpu.Device.
//
// Compute kernels are registered by name and render passes by pass index before the first frame.
// Their pipelines are built on first use for the shapes of the tables actually bound, and cached.
// Frames that present to the window are bracketed by BeginFrame and Present; SurfaceTable is the
// composite target for the screen in between.
type Renderer interface {
	gpu.Device

	// RegisterKernel compiles the program of a compute kernel.
	//
	// Parameters:
	//   - name: one of the gpu.Kernel* names
	//   - desc: the kernel program
	//
	// Returns:
	//   - error: an error if the kernel has no slots or fails to compile
	RegisterKernel(name string, desc KernelDescriptor) error

	// RegisterPass compiles the program of a render pass.
	//
	// Parameters:
	//   - index: the pass index the program serves
	//   - desc: the pass program and its bindings
	//
	// Returns:
	//   - error: an error if the program fails to compile
	RegisterPass(index gpu.PassIndex, desc PassDescriptor) error

	// Kernel returns the registered kernel pipeline, or nil.
	Kernel(name string) pipeline.Pipeline

	// Pass returns the registered pass pipeline, or nil.
	Pass(index gpu.PassIndex) pipeline.Pipeline

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for it to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the swapchain texture. Must be paired with Present.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// SurfaceTable returns the swapchain image of the current frame as a render target, or nil
	// outside BeginFrame/Present.
	SurfaceTable() gpu.Table

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release releases every pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the window's surface.
//
// Parameters:
//   - window: the window whose surface is presented to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer with every kernel and pass from options registered
func NewRenderer(window window.Window, options ...RendererBuilderOption) Renderer {
	r := newRenderer(options...)

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if err := r.init(window.Width(), window.Height()); err != nil {
		panic(fmt.Sprintf("renderer: %v", err))
	}
	return r
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		kernels:        make(map[string]pipeline.Pipeline),
		passes:         make(map[gpu.PassIndex]pipeline.Pipeline),
		backendType:    BackendTypeWGPU,
		pendingKernels: make(map[string]KernelDescriptor),
		pendingPasses:  make(map[gpu.PassIndex]PassDescriptor),
	}
	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	return r
}

// init configures the surface and registers the kernels and passes collected from options.
func (r *renderer) init(width, height int) error {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(width, height)

	for name, desc := range r.pendingKernels {
		if err := r.RegisterKernel(name, desc); err != nil {
			return err
		}
	}
	for index, desc := range r.pendingPasses {
		if err := r.RegisterPass(index, desc); err != nil {
			return err
		}
	}
	r.pendingKernels, r.pendingPasses = nil, nil
	return nil
}

func (r *renderer) RegisterKernel(name string, desc KernelDescriptor) error {
	slots := desc.Slots
	if len(slots) == 0 {
		slots = gpu.KernelSlots[name]
	}
	if len(slots) == 0 {
		return fmt.Errorf("kernel %q binds no tables", name)
	}
	p := pipeline.NewPipeline(name, pipeline.PipelineTypeCompute, desc.Source,
		pipeline.WithComputeEntryPoint(desc.EntryPoint),
		pipeline.WithSlots(slots...),
	)
	if err := r.backend.CompilePipeline(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.kernels[name]; ok {
		old.Release()
	}
	r.kernels[name] = p
	return nil
}

func (r *renderer) RegisterPass(index gpu.PassIndex, desc PassDescriptor) error {
	p := pipeline.NewPipeline(index.String(), pipeline.PipelineTypeRender, desc.Source,
		pipeline.WithVertexEntryPoint(desc.VertexEntryPoint),
		pipeline.WithFragmentEntryPoint(desc.FragmentEntryPoint),
		pipeline.WithTextures(desc.Textures...),
		pipeline.WithUniforms(desc.Uniforms...),
		pipeline.WithDepth(desc.Depth),
		pipeline.WithBlendEnabled(desc.Blend),
	)
	if err := r.backend.CompilePipeline(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.passes[index]; ok {
		old.Release()
	}
	r.passes[index] = p
	return nil
}

func (r *renderer) Kernel(name string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kernels[name]
}

func (r *renderer) Pass(index gpu.PassIndex) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passes[index]
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) CreateTable(desc gpu.TableDescriptor) (gpu.Table, error) {
	return r.backend.CreateTable(desc)
}

func (r *renderer) BeginCommands() error {
	return r.backend.BeginCommands()
}

func (r *renderer) Dispatch(cmd gpu.DispatchCommand) error {
	p := r.Kernel(cmd.Kernel)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownKernel, cmd.Kernel)
	}
	return r.backend.Dispatch(p, cmd)
}

func (r *renderer) Draw(cmd gpu.DrawCommand) error {
	p := r.Pass(cmd.Pass)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPass, cmd.Pass)
	}
	return r.backend.Draw(p, cmd)
}

func (r *renderer) EndCommands() error {
	return r.backend.EndCommands()
}

func (r *renderer) RequestReadback(t gpu.Table) (gpu.Readback, error) {
	return r.backend.RequestReadback(t)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) SurfaceTable() gpu.Table {
	return r.backend.SurfaceTable()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for name, p := range r.kernels {
		p.Release()
		delete(r.kernels, name)
	}
	for index, p := range r.passes {
		p.Release()
		delete(r.passes, index)
	}
	r.mu.Unlock()
	r.backend.Release()
}
