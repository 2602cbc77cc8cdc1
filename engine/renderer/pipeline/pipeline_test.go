package pipeline

import "testing"

func TestComputeBindings(t *testing.T) {
	p := NewPipeline("SS", PipelineTypeCompute, "", WithSlots("transmittance", "singleScattering", "singleScatteringNoShadow"))

	for i, slot := range []string{"transmittance", "singleScattering", "singleScatteringNoShadow"} {
		b, ok := p.SlotBinding(slot)
		if !ok || b != uint32(i) {
			t.Errorf("SlotBinding(%q) = %d, %v", slot, b, ok)
		}
	}
	if _, ok := p.SlotBinding("stars"); ok {
		t.Error("unknown slot bound")
	}
	if b, ok := p.UniformBinding("anything"); !ok || b != 3 {
		t.Errorf("uniform binding = %d, %v", b, ok)
	}
	if f, n := p.SamplerBindings(); f != 4 || n != 4 {
		t.Errorf("sampler bindings = %d, %d", f, n)
	}
	if _, ok := p.TextureBinding("transmittance"); ok {
		t.Error("compute kernels have no pass textures")
	}
	if _, ok := p.DepthBinding(); ok {
		t.Error("compute kernels have no depth binding")
	}
	if p.ComputeEntryPoint() != "main" {
		t.Errorf("entry point = %q", p.ComputeEntryPoint())
	}
}

func TestRenderBindings(t *testing.T) {
	p := NewPipeline("sky", PipelineTypeRender, "",
		WithTextures("transmittance", "stars"),
		WithUniforms("atmosphere", "frame"),
		WithDepth(true),
		WithFragmentEntryPoint("fs_sky"),
	)

	tests := []struct {
		name string
		got  func() (uint32, bool)
		want uint32
	}{
		{"first texture", func() (uint32, bool) { return p.TextureBinding("transmittance") }, 0},
		{"second texture", func() (uint32, bool) { return p.TextureBinding("stars") }, 1},
		{"first uniform", func() (uint32, bool) { return p.UniformBinding("atmosphere") }, 4},
		{"second uniform", func() (uint32, bool) { return p.UniformBinding("frame") }, 5},
		{"depth", p.DepthBinding, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := tt.got()
			if !ok || b != tt.want {
				t.Errorf("binding = %d, %v, want %d", b, ok, tt.want)
			}
		})
	}

	if f, n := p.SamplerBindings(); f != 2 || n != 3 {
		t.Errorf("sampler bindings = %d, %d", f, n)
	}
	if _, ok := p.UniformBinding("clouds"); ok {
		t.Error("unknown uniform bound")
	}
	if p.VertexEntryPoint() != "vs_main" || p.FragmentEntryPoint() != "fs_sky" {
		t.Errorf("entry points = %q, %q", p.VertexEntryPoint(), p.FragmentEntryPoint())
	}
}

func TestVariantCache(t *testing.T) {
	p := NewPipeline("T", PipelineTypeCompute, "")
	if _, ok := p.Variant("a"); ok {
		t.Fatal("empty cache returned a variant")
	}
	v := &Variant{}
	p.SetVariant("a", v)
	p.SetVariant("b", &Variant{})
	if got, ok := p.Variant("a"); !ok || got != v {
		t.Error("cached variant not returned")
	}
	if p.VariantCount() != 2 {
		t.Errorf("variant count = %d", p.VariantCount())
	}
	p.Release()
	if p.VariantCount() != 0 {
		t.Error("Release kept variants")
	}
}

func TestOptionsCopySlices(t *testing.T) {
	names := []string{"a", "b"}
	p := NewPipeline("pass", PipelineTypeRender, "", WithTextures(names...))
	names[0] = "z"
	if p.Textures()[0] != "a" {
		t.Error("WithTextures aliased the caller's slice")
	}
}
