package bind_group_provider

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// entry is one binding of a provider: its layout and the resource bound to it.
type entry struct {
	layout wgpu.BindGroupLayoutEntry
	group  wgpu.BindGroupEntry
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label      string
	visibility wgpu.ShaderStage

	entries map[uint32]entry

	// The following fields are GPU allocated resources. They are populated by the Renderer, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup *wgpu.BindGroup
	// owned holds the buffers created for this provider alone, released with it.
	owned []*wgpu.Buffer
	// writes are uniform uploads staged until the provider's bind group is created.
	writes []BufferWrite
}

// BindGroupProvider collects the resources of a single dispatch or draw into one bind group.
// Each command gets its own provider, which lives until the command's submission completes.
//
// Usage pattern:
//  1. The Renderer creates a provider for the command and adds every texture, sampler and buffer
//  2. The Renderer looks up or builds the pipeline variant for Signature() using LayoutDescriptor()
//  3. The Renderer flushes Writes() and creates the bind group from Entries()
//  4. The provider is released after the submission it was recorded into
type BindGroupProvider interface {
	// Release releases the bind group and every buffer owned by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// AddTexture binds a sampled texture view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the texture view
	//   - layout: the sample type and view dimension
	AddTexture(binding uint32, view *wgpu.TextureView, layout wgpu.TextureBindingLayout)

	// AddStorageTexture binds a write-only storage texture view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the texture view
	//   - layout: the access, format and view dimension
	AddStorageTexture(binding uint32, view *wgpu.TextureView, layout wgpu.StorageTextureBindingLayout)

	// AddSampler binds a sampler.
	//
	// Parameters:
	//   - binding: the binding index
	//   - sampler: the sampler
	//   - kind: the sampler binding type
	AddSampler(binding uint32, sampler *wgpu.Sampler, kind wgpu.SamplerBindingType)

	// AddUniformBuffer binds a uniform buffer and stages data to be written into it.
	// When owned is true the buffer is released with the provider.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer, sized for data
	//   - data: the uniform bytes
	//   - owned: whether the provider owns buf
	AddUniformBuffer(binding uint32, buf *wgpu.Buffer, data []byte, owned bool)

	// Len returns the number of bindings added.
	Len() int

	// Signature returns a stable description of the binding layout.
	// Two providers with the same signature can share a bind group layout and pipeline.
	//
	// Returns:
	//   - string: the layout signature
	Signature() string

	// LayoutDescriptor returns the bind group layout descriptor, entries sorted by binding.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	LayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// Entries returns the bind group entries, sorted by binding.
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: the entries
	Entries() []wgpu.BindGroupEntry

	// Writes returns the staged uniform uploads.
	//
	// Returns:
	//   - []BufferWrite: the uploads, in the order they were added
	Writes() []BufferWrite

	// BindGroup returns the created bind group, or nil if it was not created yet.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// SetBindGroup stores the created bind group.
	//
	// Parameters:
	//   - bg: the bind group
	SetBindGroup(bg *wgpu.BindGroup)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider.
//
// Parameters:
//   - label: the debug label
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider, visible to the fragment stage unless configured otherwise
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:      label,
		visibility: wgpu.ShaderStageFragment,
		entries:    make(map[uint32]entry),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string                   { return p.label }
func (p *bindGroupProvider) Len() int                        { return len(p.entries) }
func (p *bindGroupProvider) Writes() []BufferWrite           { return p.writes }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup      { return p.bindGroup }
func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) { p.bindGroup = bg }

func (p *bindGroupProvider) AddTexture(binding uint32, view *wgpu.TextureView, layout wgpu.TextureBindingLayout) {
	p.entries[binding] = entry{
		layout: wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: p.visibility, Texture: layout},
		group:  wgpu.BindGroupEntry{Binding: binding, TextureView: view},
	}
}

func (p *bindGroupProvider) AddStorageTexture(binding uint32, view *wgpu.TextureView, layout wgpu.StorageTextureBindingLayout) {
	p.entries[binding] = entry{
		layout: wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: p.visibility, StorageTexture: layout},
		group:  wgpu.BindGroupEntry{Binding: binding, TextureView: view},
	}
}

func (p *bindGroupProvider) AddSampler(binding uint32, sampler *wgpu.Sampler, kind wgpu.SamplerBindingType) {
	p.entries[binding] = entry{
		layout: wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: p.visibility,
			Sampler:    wgpu.SamplerBindingLayout{Type: kind},
		},
		group: wgpu.BindGroupEntry{Binding: binding, Sampler: sampler},
	}
}

func (p *bindGroupProvider) AddUniformBuffer(binding uint32, buf *wgpu.Buffer, data []byte, owned bool) {
	p.entries[binding] = entry{
		layout: wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: p.visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(len(data)),
			},
		},
		group: wgpu.BindGroupEntry{Binding: binding, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
	}
	if owned && buf != nil {
		p.owned = append(p.owned, buf)
	}
	p.writes = append(p.writes, BufferWrite{Provider: p, Binding: int(binding), Buffer: buf, Offset: 0, Data: data})
}

func (p *bindGroupProvider) bindings() []uint32 {
	keys := make([]uint32, 0, len(p.entries))
	for b := range p.entries {
		keys = append(keys, b)
	}
	slices.Sort(keys)
	return keys
}

func (p *bindGroupProvider) Signature() string {
	var sb strings.Builder
	for _, b := range p.bindings() {
		l := p.entries[b].layout
		switch {
		case l.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			fmt.Fprintf(&sb, "%d:t%d/%d;", b, l.Texture.SampleType, l.Texture.ViewDimension)
		case l.StorageTexture.Access != wgpu.StorageTextureAccessUndefined:
			fmt.Fprintf(&sb, "%d:s%d/%d/%d;", b, l.StorageTexture.Access, l.StorageTexture.Format, l.StorageTexture.ViewDimension)
		case l.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			fmt.Fprintf(&sb, "%d:p%d;", b, l.Sampler.Type)
		default:
			fmt.Fprintf(&sb, "%d:u%d;", b, l.Buffer.MinBindingSize)
		}
	}
	return sb.String()
}

func (p *bindGroupProvider) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	keys := p.bindings()
	out := make([]wgpu.BindGroupLayoutEntry, len(keys))
	for i, b := range keys {
		out[i] = p.entries[b].layout
	}
	return wgpu.BindGroupLayoutDescriptor{Label: p.label + " Bind Group Layout", Entries: out}
}

func (p *bindGroupProvider) Entries() []wgpu.BindGroupEntry {
	keys := p.bindings()
	out := make([]wgpu.BindGroupEntry, len(keys))
	for i, b := range keys {
		out[i] = p.entries[b].group
	}
	return out
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for _, buf := range p.owned {
		buf.Release()
	}
	p.owned = nil
	p.writes = nil
	clear(p.entries)
}
