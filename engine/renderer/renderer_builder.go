package renderer

import "github.com/Carmen-Shannon/oxy-sky/engine/sky/gpu"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithKernel registers a compute kernel once the device exists.
//
// Parameters:
//   - name: one of the gpu.Kernel* names
//   - desc: the kernel program
//
// Returns:
//   - RendererBuilderOption: a function that applies the kernel option to a renderer
func WithKernel(name string, desc KernelDescriptor) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingKernels[name] = desc
	}
}

// WithPass registers a render pass once the device exists.
//
// Parameters:
//   - index: the pass index the program serves
//   - desc: the pass program and its bindings
//
// Returns:
//   - RendererBuilderOption: a function that applies the pass option to a renderer
func WithPass(index gpu.PassIndex, desc PassDescriptor) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPasses[index] = desc
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
