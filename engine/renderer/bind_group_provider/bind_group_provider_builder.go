package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithVisibility sets the shader stages every binding of the provider is visible to.
//
// Parameters:
//   - stages: the shader stage mask
//
// Returns:
//   - BindGroupProviderOption: a function that sets the visibility for this provider
func WithVisibility(stages wgpu.ShaderStage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.visibility = stages
	}
}
