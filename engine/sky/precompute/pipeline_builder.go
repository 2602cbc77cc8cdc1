package precompute

// PipelineBuilderOption is a functional option for configuring a Pipeline.
type PipelineBuilderOption func(*pipeline)

// WithStages replaces the scattering stage sequence.
//
// Parameters:
//   - stages: the stages in submission order
//
// Returns:
//   - PipelineBuilderOption: a function that applies the stages to a pipeline
func WithStages(stages []Stage) PipelineBuilderOption {
	return func(p *pipeline) {
		p.stages = append([]Stage(nil), stages...)
	}
}

// WithNightSkyStages replaces the night sky stage sequence.
//
// Parameters:
//   - stages: the stages in submission order
//
// Returns:
//   - PipelineBuilderOption: a function that applies the stages to a pipeline
func WithNightSkyStages(stages []Stage) PipelineBuilderOption {
	return func(p *pipeline) {
		p.nightStages = append([]Stage(nil), stages...)
	}
}
