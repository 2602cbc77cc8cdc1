package frame

// OrchestratorBuilderOption is a functional option for configuring an Orchestrator.
type OrchestratorBuilderOption func(*orchestrator)

// WithClipPlanes sets the near and far planes of the cubemap face projections.
//
// Parameters:
//   - near: near clipping plane distance, must be > 0
//   - far: far clipping plane distance, must be > near
//
// Returns:
//   - OrchestratorBuilderOption: a function that applies the planes to an orchestrator
func WithClipPlanes(near, far float32) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		if near > 0 && far > near {
			o.near = near
			o.far = far
		}
	}
}
