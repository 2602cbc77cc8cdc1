package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithComputeEntryPoint sets the compute entry point. Defaults to "main".
//
// Parameters:
//   - name: the WGSL function name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the compute entry point for this pipeline
func WithComputeEntryPoint(name string) PipelineBuilderOption {
	return func(p *pipeline) {
		if name != "" {
			p.computeEntryPoint = name
		}
	}
}

// WithVertexEntryPoint sets the vertex entry point. Defaults to "vs_main".
//
// Parameters:
//   - name: the WGSL function name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex entry point for this pipeline
func WithVertexEntryPoint(name string) PipelineBuilderOption {
	return func(p *pipeline) {
		if name != "" {
			p.vertexEntryPoint = name
		}
	}
}

// WithFragmentEntryPoint sets the fragment entry point. Defaults to "fs_main".
//
// Parameters:
//   - name: the WGSL function name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment entry point for this pipeline
func WithFragmentEntryPoint(name string) PipelineBuilderOption {
	return func(p *pipeline) {
		if name != "" {
			p.fragmentEntryPoint = name
		}
	}
}

// WithSlots sets the table slots a compute kernel binds, in binding order.
//
// Parameters:
//   - slots: the table slot names
//
// Returns:
//   - PipelineBuilderOption: a function that sets the slots for this pipeline
func WithSlots(slots ...string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.slots = append([]string(nil), slots...)
	}
}

// WithTextures sets the texture property names a render pass binds, in binding order.
//
// Parameters:
//   - names: the texture property names
//
// Returns:
//   - PipelineBuilderOption: a function that sets the textures for this pipeline
func WithTextures(names ...string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.textures = append([]string(nil), names...)
	}
}

// WithUniforms sets the uniform block names a render pass binds, in binding order.
//
// Parameters:
//   - names: the uniform block names
//
// Returns:
//   - PipelineBuilderOption: a function that sets the uniform blocks for this pipeline
func WithUniforms(names ...string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.uniforms = append([]string(nil), names...)
	}
}

// WithDepth makes a render pass bind the scene depth texture.
//
// Parameters:
//   - enabled: whether the depth texture is bound
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth binding for this pipeline
func WithDepth(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depth = enabled
	}
}

// WithBlendEnabled sets whether blending is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend enabled state for this pipeline
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState sets the blend state for this pipeline. Only used when blending is enabled.
//
// Parameters:
//   - state: the blend state to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state for this pipeline
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithWriteMask sets the color write mask for this pipeline.
//
// Parameters:
//   - mask: the color write mask to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask for this pipeline
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = mask
	}
}
