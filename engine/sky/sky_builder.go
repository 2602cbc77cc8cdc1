package sky

import (
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/frame"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/lighting"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/precompute"
	"github.com/Carmen-Shannon/oxy-sky/engine/sky/resource"
)

// SkyBuilderOption is a functional option for configuring a Sky.
type SkyBuilderOption func(*sky)

// WithPipeline replaces the default precomputation pipeline.
//
// Parameters:
//   - p: the pipeline
//
// Returns:
//   - SkyBuilderOption: a function that applies the pipeline to a sky
func WithPipeline(p precompute.Pipeline) SkyBuilderOption {
	return func(s *sky) {
		s.pipeline = p
	}
}

// WithPoolOptions forwards options to the resource pool.
func WithPoolOptions(options ...resource.PoolBuilderOption) SkyBuilderOption {
	return func(s *sky) {
		s.poolOptions = append(s.poolOptions, options...)
	}
}

// WithFeedbackOptions forwards options to the lighting feedback.
func WithFeedbackOptions(options ...lighting.FeedbackBuilderOption) SkyBuilderOption {
	return func(s *sky) {
		s.feedbackOptions = append(s.feedbackOptions, options...)
	}
}

// WithFrameOptions forwards options to both frame orchestrators.
func WithFrameOptions(options ...frame.OrchestratorBuilderOption) SkyBuilderOption {
	return func(s *sky) {
		s.frameOptions = append(s.frameOptions, options...)
	}
}
