package shader

import (
	"testing"
)

const computeSource = `
//@oxy:include stage_params
//@oxy:include atmosphere
//@oxy:include kernel_uniforms
@group(0) @binding(0) var transmittance: texture_storage_2d<${FORMAT}, write>;
//@oxy:group 0 1 uniform uniforms kernel_uniforms
@group(0) @binding(2) var pointSampler: sampler;

/* @compute fn commented() {} */
@compute @workgroup_size(8, 8)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

func TestParseComputeShader(t *testing.T) {
	s, err := ParseShader("T", ShaderTypeCompute, computeSource, WithDefine("FORMAT", "rgba32float"))
	if err != nil {
		t.Fatal(err)
	}
	if s.ComputeEntryPoint() != "main" {
		t.Errorf("entry point = %q", s.ComputeEntryPoint())
	}
	if s.WorkgroupSize() != [3]uint32{8, 8, 1} {
		t.Errorf("workgroup size = %v", s.WorkgroupSize())
	}
	want := map[string]uint32{"transmittance": 0, "uniforms": 1, "pointSampler": 2}
	for name, b := range want {
		if got, ok := s.Binding(name); !ok || got != b {
			t.Errorf("binding %s = %d, %v; want %d", name, got, ok, b)
		}
	}
	if len(s.Bindings()) != len(want) {
		t.Errorf("bindings = %v", s.Bindings())
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Error("module descriptor does not carry the processed source")
	}
	if len(s.Declarations()) != 1 {
		t.Errorf("declarations = %d", len(s.Declarations()))
	}
}

func TestParseRenderShader(t *testing.T) {
	src := "//@oxy:include fullscreen\n@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }\n"
	s, err := ParseShader("composite", ShaderTypeRender, src)
	if err != nil {
		t.Fatal(err)
	}
	if s.VertexEntryPoint() != "vs_main" || s.FragmentEntryPoint() != "fs_main" {
		t.Errorf("entry points = %q, %q", s.VertexEntryPoint(), s.FragmentEntryPoint())
	}
	if s.WorkgroupSize() != [3]uint32{} {
		t.Errorf("render shader workgroup size = %v", s.WorkgroupSize())
	}
}

func TestParseShaderErrors(t *testing.T) {
	if _, err := ParseShader("empty", ShaderTypeCompute, ""); err == nil {
		t.Error("empty source accepted")
	}
	if _, err := ParseShader("no entry", ShaderTypeCompute, "fn helper() {}"); err == nil {
		t.Error("compute shader without entry point accepted")
	}
	if _, err := ParseShader("no fragment", ShaderTypeRender, "//@oxy:include fullscreen"); err == nil {
		t.Error("render shader without fragment stage accepted")
	}
}

func TestNewShaderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewShader did not panic on a bad annotation")
		}
	}()
	NewShader("bad", ShaderTypeCompute, "//@oxy:include nothing\n@compute @workgroup_size(1) fn main() {}")
}

func TestParseWorkgroupSizeDefaults(t *testing.T) {
	if got := parseWorkgroupSize("fn main() {}"); got != [3]uint32{1, 1, 1} {
		t.Errorf("default = %v", got)
	}
	if got := parseWorkgroupSize("@workgroup_size(4, 2, 3)"); got != [3]uint32{4, 2, 3} {
		t.Errorf("explicit = %v", got)
	}
}
