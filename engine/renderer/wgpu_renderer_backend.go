package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-sky/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// errNoSubmission is returned when a command is recorded outside BeginCommands/EndCommands.
var errNoSubmission = errors.New("renderer: no open command submission")

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	width, height uint32
	presentMode   wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)

	// depthTexture stands in for the scene depth buffer the sky pass tests against.
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	linearSampler *wgpu.Sampler
	pointSampler  *wgpu.Sampler

	// Submission state. Providers stay alive until the submission they were recorded into is queued.
	encoder   *wgpu.CommandEncoder
	transient []bind_group_provider.BindGroupProvider

	// Frame state between BeginFrame and Present.
	frameSurface *wgpu.Texture
	surfaceTable *wgpuTable
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	ConfigureSurface(width, height int)
	SetPresentMode(mode PresentMode)
	CompilePipeline(p pipeline.Pipeline) error
	CreateTable(desc gpu.TableDescriptor) (gpu.Table, error)
	BeginCommands() error
	Dispatch(p pipeline.Pipeline, cmd gpu.DispatchCommand) error
	Draw(p pipeline.Pipeline, cmd gpu.DrawCommand) error
	EndCommands() error
	RequestReadback(t gpu.Table) (gpu.Readback, error)
	BeginFrame() error
	SurfaceTable() gpu.Table
	Present()
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Sky Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.linearSampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Linear Clamp Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}
	w.pointSampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Point Clamp Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}
	return w
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device { return b.device }
func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue   { return b.queue }

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]
	b.width, b.height = uint32(width), uint32(height)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       b.width,
		Height:      b.height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Scene Depth Texture",
		Size: wgpu.Extent3D{
			Width:              b.width,
			Height:             b.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) CompilePipeline(p pipeline.Pipeline) error {
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile %q: %w", p.PipelineKey(), err)
	}
	p.SetModule(m)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateTable(desc gpu.TableDescriptor) (gpu.Table, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Format == gpu.FormatSurface {
		return nil, fmt.Errorf("%w: %q: surface tables come from SurfaceTable", gpu.ErrInvalidDescriptor, desc.Label)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	format := textureFormat(desc.Format, wgpu.TextureFormatUndefined)
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     textureUsage(desc.Usage),
		Dimension: textureDimension(desc.Dimension),
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Depth,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuTable{desc: desc, format: format, texture: tex}, nil
}

func (b *wgpuRendererBackendImpl) BeginCommands() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder != nil {
		return errors.New("renderer: a command submission is already open")
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.encoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) Dispatch(p pipeline.Pipeline, cmd gpu.DispatchCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return errNoSubmission
	}

	label := cmd.Label
	if label == "" {
		label = p.PipelineKey()
	}
	provider := bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithVisibility(wgpu.ShaderStageCompute))
	for _, slot := range p.Slots() {
		binding, _ := p.SlotBinding(slot)
		var bound *gpu.Binding
		for i := range cmd.Bindings {
			if cmd.Bindings[i].Slot == slot {
				bound = &cmd.Bindings[i]
				break
			}
		}
		if bound == nil {
			provider.Release()
			return fmt.Errorf("kernel %q: slot %q is not bound", p.PipelineKey(), slot)
		}
		t, err := asTable(bound.Table)
		if err != nil {
			provider.Release()
			return fmt.Errorf("kernel %q: slot %q: %w", p.PipelineKey(), slot, err)
		}
		if err := b.bindKernelTable(provider, binding, t, bound.Access); err != nil {
			provider.Release()
			return err
		}
	}
	if len(cmd.Uniforms) > 0 {
		binding, _ := p.UniformBinding("")
		buf, err := b.uniformBuffer(label, cmd.Uniforms)
		if err != nil {
			provider.Release()
			return err
		}
		provider.AddUniformBuffer(binding, buf, cmd.Uniforms, true)
	}
	_, nonFiltering := p.SamplerBindings()
	provider.AddSampler(nonFiltering, b.pointSampler, wgpu.SamplerBindingTypeNonFiltering)

	variant, err := b.computeVariant(p, provider)
	if err == nil {
		err = b.createBindGroup(provider, variant.Layout)
	}
	if err != nil {
		provider.Release()
		return fmt.Errorf("kernel %q: %w", p.PipelineKey(), err)
	}

	pass := b.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})
	pass.SetPipeline(variant.Compute)
	pass.SetBindGroup(0, provider.BindGroup(), nil)
	pass.DispatchWorkgroups(cmd.Groups[0], cmd.Groups[1], cmd.Groups[2])
	pass.End()
	pass.Release()

	b.transient = append(b.transient, provider)
	return nil
}

func (b *wgpuRendererBackendImpl) bindKernelTable(provider bind_group_provider.BindGroupProvider, binding uint32, t *wgpuTable, access gpu.Access) error {
	if access == gpu.AccessWrite {
		dim := storageViewDimension(t.desc.Dimension)
		view, err := t.view(dim, allLayers)
		if err != nil {
			return err
		}
		provider.AddStorageTexture(binding, view, wgpu.StorageTextureBindingLayout{
			Access:        wgpu.StorageTextureAccessWriteOnly,
			Format:        t.format,
			ViewDimension: dim,
		})
		return nil
	}
	dim := sampledViewDimension(t.desc.Dimension)
	view, err := t.view(dim, allLayers)
	if err != nil {
		return err
	}
	provider.AddTexture(binding, view, wgpu.TextureBindingLayout{
		SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
		ViewDimension: dim,
	})
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(p pipeline.Pipeline, cmd gpu.DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return errNoSubmission
	}
	if cmd.Properties == nil {
		return fmt.Errorf("pass %q: no property block", p.PipelineKey())
	}
	if len(cmd.Targets) == 0 {
		return fmt.Errorf("pass %q: no targets", p.PipelineKey())
	}

	label := fmt.Sprintf("%s/%d", p.PipelineKey(), cmd.Layer)
	provider := bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithVisibility(wgpu.ShaderStageVertex|wgpu.ShaderStageFragment))
	fail := func(err error) error {
		provider.Release()
		return fmt.Errorf("pass %q: %w", p.PipelineKey(), err)
	}

	for _, name := range p.Textures() {
		binding, _ := p.TextureBinding(name)
		bound, ok := cmd.Properties.Texture(name)
		if !ok {
			return fail(fmt.Errorf("texture %q is not bound", name))
		}
		t, err := asTable(bound)
		if err != nil {
			return fail(err)
		}
		dim := sampledViewDimension(t.desc.Dimension)
		view, err := t.view(dim, allLayers)
		if err != nil {
			return fail(err)
		}
		provider.AddTexture(binding, view, wgpu.TextureBindingLayout{SampleType: sampleType(t.desc.Format), ViewDimension: dim})
	}

	filtering, nonFiltering := p.SamplerBindings()
	provider.AddSampler(filtering, b.linearSampler, wgpu.SamplerBindingTypeFiltering)
	provider.AddSampler(nonFiltering, b.pointSampler, wgpu.SamplerBindingTypeNonFiltering)

	for _, name := range p.Uniforms() {
		binding, _ := p.UniformBinding(name)
		data, ok := cmd.Properties.Uniforms(name)
		if !ok || len(data) == 0 {
			return fail(fmt.Errorf("uniform block %q is not set", name))
		}
		buf, err := b.uniformBuffer(label+"."+name, data)
		if err != nil {
			return fail(err)
		}
		provider.AddUniformBuffer(binding, buf, data, true)
	}

	if binding, ok := p.DepthBinding(); ok {
		if b.depthView == nil {
			return fail(errors.New("scene depth is unavailable before the surface is configured"))
		}
		provider.AddTexture(binding, b.depthView, wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeDepth,
			ViewDimension: wgpu.TextureViewDimension2D,
		})
	}

	attachments := make([]wgpu.RenderPassColorAttachment, len(cmd.Targets))
	formats := make([]wgpu.TextureFormat, len(cmd.Targets))
	for i, target := range cmd.Targets {
		t, err := asTable(target)
		if err != nil {
			return fail(err)
		}
		view, err := t.view(wgpu.TextureViewDimension2D, int(cmd.Layer))
		if err != nil {
			return fail(err)
		}
		formats[i] = t.format
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
		}
	}

	variant, err := b.renderVariant(p, provider, formats)
	if err == nil {
		err = b.createBindGroup(provider, variant.Layout)
	}
	if err != nil {
		return fail(err)
	}

	pass := b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            label,
		ColorAttachments: attachments,
	})
	pass.SetPipeline(variant.Render)
	pass.SetBindGroup(0, provider.BindGroup(), nil)
	// Full-screen triangle generated from the vertex index.
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()

	b.transient = append(b.transient, provider)
	return nil
}

func (b *wgpuRendererBackendImpl) EndCommands() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return errNoSubmission
	}
	defer b.releaseTransient()

	encoder := b.encoder
	b.encoder = nil
	defer encoder.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish submission: %w", err)
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTransient() {
	for _, p := range b.transient {
		p.Release()
	}
	b.transient = b.transient[:0]
}

func (b *wgpuRendererBackendImpl) RequestReadback(table gpu.Table) (gpu.Readback, error) {
	t, err := asTable(table)
	if err != nil {
		return nil, err
	}
	desc := t.desc
	if !desc.Usage.Has(gpu.UsageCopySource) {
		return nil, fmt.Errorf("table %q was not created for readback", desc.Label)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pitch := alignedRowPitch(desc.Width, desc.Format.BytesPerTexel())
	size := uint64(pitch) * uint64(desc.Height)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label + " Readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		buf.Release()
		return nil, err
	}
	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  pitch,
				RowsPerImage: desc.Height,
			},
		},
		&wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("failed to copy %q: %w", desc.Label, err)
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		buf.Release()
		return nil, err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	rb := &wgpuReadback{device: b.device, buffer: buf, desc: desc, pitch: pitch, size: size}
	err = buf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			rb.state.Store(readbackMapped)
		} else {
			rb.state.Store(readbackFailed)
		}
	})
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("failed to map %q: %w", desc.Label, err)
	}
	return rb, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another fails in wgpu-native.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.surfaceFormat == nil {
		return errors.New("renderer: surface is not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	// Nothing renders scene geometry here, so the depth buffer is reset to the far plane.
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Scene Depth Clear",
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	pass.End()
	pass.Release()
	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.frameSurface = surfaceTexture
	b.surfaceTable = &wgpuTable{
		desc: gpu.TableDescriptor{
			Label:     "surface",
			Dimension: gpu.Dimension2D,
			Format:    gpu.FormatSurface,
			Width:     b.width,
			Height:    b.height,
			Depth:     1,
			Usage:     gpu.UsageRenderTarget,
		},
		format:   *b.surfaceFormat,
		texture:  surfaceTexture,
		external: true,
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceTable() gpu.Table {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surfaceTable == nil {
		return nil
	}
	return b.surfaceTable
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	b.surfaceTable.Release()
	b.surfaceTable = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTransient()
	if b.encoder != nil {
		b.encoder.Release()
		b.encoder = nil
	}
	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
		b.depthView, b.depthTexture = nil, nil
	}
	b.linearSampler.Release()
	b.pointSampler.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// uniformBuffer creates a buffer sized for data. The data itself is written with the provider's writes.
func (b *wgpuRendererBackendImpl) uniformBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Uniforms",
		Size:  uniformBufferSize(len(data)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
}

func (b *wgpuRendererBackendImpl) createBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout) error {
	for _, w := range provider.Writes() {
		b.queue.WriteBuffer(w.Buffer, w.Offset, w.Data)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: provider.Entries(),
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bg)
	return nil
}

func (b *wgpuRendererBackendImpl) computeVariant(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) (*pipeline.Variant, error) {
	signature := provider.Signature()
	if v, ok := p.Variant(signature); ok {
		return v, nil
	}
	layout, pipelineLayout, err := b.layouts(p, provider)
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     p.Module(),
			EntryPoint: p.ComputeEntryPoint(),
		},
	})
	if err != nil {
		layout.Release()
		return nil, err
	}
	v := &pipeline.Variant{Layout: layout, Compute: created}
	p.SetVariant(signature, v)
	return v, nil
}

func (b *wgpuRendererBackendImpl) renderVariant(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, formats []wgpu.TextureFormat) (*pipeline.Variant, error) {
	var sb strings.Builder
	sb.WriteString(provider.Signature())
	for _, f := range formats {
		fmt.Fprintf(&sb, "|%d", f)
	}
	signature := sb.String()
	if v, ok := p.Variant(signature); ok {
		return v, nil
	}

	layout, pipelineLayout, err := b.layouts(p, provider)
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	targets := make([]wgpu.ColorTargetState, len(formats))
	for i, f := range formats {
		targets[i] = wgpu.ColorTargetState{Format: f, WriteMask: p.WriteMask()}
		if p.BlendEnabled() {
			targets[i].Blend = p.BlendState()
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.Module(),
			EntryPoint: p.VertexEntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.Module(),
			EntryPoint: p.FragmentEntryPoint(),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		layout.Release()
		return nil, err
	}
	v := &pipeline.Variant{Layout: layout, Render: created}
	p.SetVariant(signature, v)
	return v, nil
}

func (b *wgpuRendererBackendImpl) layouts(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) (*wgpu.BindGroupLayout, *wgpu.PipelineLayout, error) {
	if p.Module() == nil {
		return nil, nil, fmt.Errorf("%q was never compiled", p.PipelineKey())
	}
	desc := provider.LayoutDescriptor()
	layout, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bind group layout: %w", err)
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, nil, err
	}
	return layout, pipelineLayout, nil
}

func asTable(t gpu.Table) (*wgpuTable, error) {
	wt, ok := t.(*wgpuTable)
	if !ok || wt == nil {
		return nil, fmt.Errorf("table %T was not created by this renderer", t)
	}
	return wt, nil
}
