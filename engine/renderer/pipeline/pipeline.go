package pipeline

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute kernel with a single compute entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a full-screen pass with vertex and fragment entry points.
	PipelineTypeRender
)

// Variant is the GPU state built for one binding layout signature of a Pipeline.
// Exactly one of Compute or Render is set, matching the pipeline type.
type Variant struct {
	Layout  *wgpu.BindGroupLayout
	Compute *wgpu.ComputePipeline
	Render  *wgpu.RenderPipeline
}

func (v *Variant) release() {
	if v.Compute != nil {
		v.Compute.Release()
	}
	if v.Render != nil {
		v.Render.Release()
	}
	if v.Layout != nil {
		v.Layout.Release()
	}
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	mu *sync.Mutex

	pipelineType PipelineType
	pipelineKey  string
	source       string

	computeEntryPoint  string
	vertexEntryPoint   string
	fragmentEntryPoint string

	// slots are the table slots of a compute kernel, in binding order.
	slots []string
	// textures, uniforms and depth describe the binding order of a render pass.
	textures []string
	uniforms []string
	depth    bool

	blendEnabled bool
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState

	module   *wgpu.ShaderModule
	variants map[string]*Variant
}

// Pipeline describes a WGSL program and the fixed binding convention the backend uses to feed it.
//
// All bindings live in group 0.
// Compute kernels bind their table slots at 0..n-1, the uniform block at n and a non-filtering sampler at n+1.
// Render passes bind their textures at 0..n-1, a filtering sampler at n, a non-filtering sampler at n+1,
// their uniform blocks from n+2 on and, when enabled, the scene depth texture after the last uniform block.
//
// GPU pipelines are built per binding layout signature, because the dimension and format of a bound
// table is only known once it is bound.
type Pipeline interface {
	// Type returns the type of the pipeline.
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the kernel name or pass name
	PipelineKey() string

	// Source returns the WGSL source of the pipeline.
	Source() string

	// ComputeEntryPoint returns the compute entry point name.
	ComputeEntryPoint() string

	// VertexEntryPoint returns the vertex entry point name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment entry point name.
	FragmentEntryPoint() string

	// Slots returns the table slots of a compute kernel in binding order.
	Slots() []string

	// Textures returns the texture property names of a render pass in binding order.
	Textures() []string

	// Uniforms returns the uniform block names of a render pass in binding order.
	Uniforms() []string

	// Depth reports whether a render pass binds the scene depth texture.
	Depth() bool

	// SlotBinding returns the binding index of a compute table slot.
	//
	// Parameters:
	//   - slot: the table slot name
	//
	// Returns:
	//   - uint32: the binding index
	//   - bool: false if the kernel does not bind slot
	SlotBinding(slot string) (uint32, bool)

	// TextureBinding returns the binding index of a render pass texture.
	//
	// Parameters:
	//   - name: the texture property name
	//
	// Returns:
	//   - uint32: the binding index
	//   - bool: false if the pass does not bind name
	TextureBinding(name string) (uint32, bool)

	// UniformBinding returns the binding index of a uniform block.
	// Compute kernels have a single block and ignore name.
	//
	// Parameters:
	//   - name: the uniform block name
	//
	// Returns:
	//   - uint32: the binding index
	//   - bool: false if the pipeline has no such block
	UniformBinding(name string) (uint32, bool)

	// SamplerBindings returns the binding indices of the filtering and non-filtering samplers.
	// Compute kernels only have the non-filtering sampler; filtering is then equal to it.
	SamplerBindings() (filtering, nonFiltering uint32)

	// DepthBinding returns the binding index of the scene depth texture.
	//
	// Returns:
	//   - uint32: the binding index
	//   - bool: false if the pass does not bind depth
	DepthBinding() (uint32, bool)

	// BlendEnabled returns whether blending is enabled for this pipeline.
	BlendEnabled() bool

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	BlendState() *wgpu.BlendState

	// Module returns the compiled shader module, or nil before registration.
	Module() *wgpu.ShaderModule

	// SetModule sets the compiled shader module.
	SetModule(m *wgpu.ShaderModule)

	// Variant returns the GPU state built for a binding layout signature.
	//
	// Parameters:
	//   - signature: the layout signature of the bind group
	//
	// Returns:
	//   - *Variant: the cached variant
	//   - bool: false if none was built yet
	Variant(signature string) (*Variant, bool)

	// SetVariant caches the GPU state for a binding layout signature, releasing any previous one.
	SetVariant(signature string, v *Variant)

	// VariantCount returns the number of cached variants.
	VariantCount() int

	// Release releases the shader module and every variant.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. A PipelineType must be specified upon creation.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: the type of pipeline to create (render or compute)
//   - source: the WGSL source of the program
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified type and configuration
func NewPipeline(pipelineKey string, pipelineType PipelineType, source string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		mu:                 &sync.Mutex{},
		pipelineKey:        pipelineKey,
		pipelineType:       pipelineType,
		source:             source,
		computeEntryPoint:  "main",
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
		writeMask:          wgpu.ColorWriteMaskAll,
		variants:           make(map[string]*Variant),
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType         { return p.pipelineType }
func (p *pipeline) PipelineKey() string        { return p.pipelineKey }
func (p *pipeline) Source() string             { return p.source }
func (p *pipeline) ComputeEntryPoint() string  { return p.computeEntryPoint }
func (p *pipeline) VertexEntryPoint() string   { return p.vertexEntryPoint }
func (p *pipeline) FragmentEntryPoint() string { return p.fragmentEntryPoint }
func (p *pipeline) Slots() []string            { return p.slots }
func (p *pipeline) Textures() []string         { return p.textures }
func (p *pipeline) Uniforms() []string         { return p.uniforms }
func (p *pipeline) Depth() bool                { return p.depth }
func (p *pipeline) BlendEnabled() bool         { return p.blendEnabled }
func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}
func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SlotBinding(slot string) (uint32, bool) {
	if p.pipelineType != PipelineTypeCompute {
		return 0, false
	}
	return indexOf(p.slots, slot)
}

func (p *pipeline) TextureBinding(name string) (uint32, bool) {
	if p.pipelineType != PipelineTypeRender {
		return 0, false
	}
	return indexOf(p.textures, name)
}

func (p *pipeline) UniformBinding(name string) (uint32, bool) {
	if p.pipelineType == PipelineTypeCompute {
		return uint32(len(p.slots)), true
	}
	i, ok := indexOf(p.uniforms, name)
	if !ok {
		return 0, false
	}
	return uint32(len(p.textures)) + 2 + i, true
}

func (p *pipeline) SamplerBindings() (uint32, uint32) {
	if p.pipelineType == PipelineTypeCompute {
		n := uint32(len(p.slots)) + 1
		return n, n
	}
	n := uint32(len(p.textures))
	return n, n + 1
}

func (p *pipeline) DepthBinding() (uint32, bool) {
	if p.pipelineType != PipelineTypeRender || !p.depth {
		return 0, false
	}
	return uint32(len(p.textures)+2+len(p.uniforms)), true
}

func (p *pipeline) Module() *wgpu.ShaderModule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.module
}

func (p *pipeline) SetModule(m *wgpu.ShaderModule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.module = m
}

func (p *pipeline) Variant(signature string) (*Variant, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.variants[signature]
	return v, ok
}

func (p *pipeline) SetVariant(signature string, v *Variant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.variants[signature]; ok && old != v {
		old.release()
	}
	p.variants[signature] = v
}

func (p *pipeline) VariantCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.variants)
}

func (p *pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for sig, v := range p.variants {
		v.release()
		delete(p.variants, sig)
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}

func indexOf(names []string, name string) (uint32, bool) {
	for i, n := range names {
		if n == name {
			return uint32(i), true
		}
	}
	return 0, false
}
