package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func sampled(dim wgpu.TextureViewDimension) wgpu.TextureBindingLayout {
	return wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeUnfilterableFloat, ViewDimension: dim}
}

func TestEntriesAreSortedByBinding(t *testing.T) {
	p := NewBindGroupProvider("SS", WithVisibility(wgpu.ShaderStageCompute))
	p.AddUniformBuffer(3, nil, make([]byte, 832), false)
	p.AddTexture(0, nil, sampled(wgpu.TextureViewDimension2D))
	p.AddStorageTexture(1, nil, wgpu.StorageTextureBindingLayout{
		Access:        wgpu.StorageTextureAccessWriteOnly,
		Format:        wgpu.TextureFormatRGBA16Float,
		ViewDimension: wgpu.TextureViewDimension2DArray,
	})
	p.AddSampler(4, nil, wgpu.SamplerBindingTypeNonFiltering)

	layout := p.LayoutDescriptor()
	entries := p.Entries()
	if len(layout.Entries) != 4 || len(entries) != 4 || p.Len() != 4 {
		t.Fatalf("got %d layout entries, %d entries", len(layout.Entries), len(entries))
	}
	for i, want := range []uint32{0, 1, 3, 4} {
		if layout.Entries[i].Binding != want || entries[i].Binding != want {
			t.Errorf("entry %d binding = %d/%d, want %d", i, layout.Entries[i].Binding, entries[i].Binding, want)
		}
		if layout.Entries[i].Visibility != wgpu.ShaderStageCompute {
			t.Errorf("entry %d visibility = %v", i, layout.Entries[i].Visibility)
		}
	}
	if got := layout.Entries[2].Buffer.MinBindingSize; got != 832 {
		t.Errorf("uniform min binding size = %d", got)
	}
	if entries[2].Size != wgpu.WholeSize {
		t.Error("uniform entry must bind the whole buffer")
	}
}

func TestSignature(t *testing.T) {
	a := NewBindGroupProvider("a")
	a.AddTexture(0, nil, sampled(wgpu.TextureViewDimension2D))
	a.AddSampler(1, nil, wgpu.SamplerBindingTypeFiltering)

	b := NewBindGroupProvider("b")
	b.AddSampler(1, nil, wgpu.SamplerBindingTypeFiltering)
	b.AddTexture(0, nil, sampled(wgpu.TextureViewDimension2D))

	if a.Signature() != b.Signature() {
		t.Errorf("insertion order changed the signature: %q vs %q", a.Signature(), b.Signature())
	}

	c := NewBindGroupProvider("c")
	c.AddTexture(0, nil, sampled(wgpu.TextureViewDimension3D))
	c.AddSampler(1, nil, wgpu.SamplerBindingTypeFiltering)
	if a.Signature() == c.Signature() {
		t.Error("view dimension must change the signature")
	}

	d := NewBindGroupProvider("d")
	d.AddTexture(0, nil, sampled(wgpu.TextureViewDimension2D))
	d.AddSampler(1, nil, wgpu.SamplerBindingTypeNonFiltering)
	if a.Signature() == d.Signature() {
		t.Error("sampler type must change the signature")
	}
}

func TestWritesAndRelease(t *testing.T) {
	p := NewBindGroupProvider("composite")
	p.AddUniformBuffer(2, nil, []byte{1, 2, 3, 4}, true)
	p.AddUniformBuffer(3, nil, []byte{5, 6, 7, 8}, false)

	writes := p.Writes()
	if len(writes) != 2 || writes[0].Binding != 2 || writes[1].Data[0] != 5 {
		t.Fatalf("writes = %+v", writes)
	}
	if writes[0].Provider != p {
		t.Error("write does not point back at its provider")
	}

	p.Release()
	if p.Len() != 0 || len(p.Writes()) != 0 || p.BindGroup() != nil {
		t.Error("Release kept state")
	}
}
