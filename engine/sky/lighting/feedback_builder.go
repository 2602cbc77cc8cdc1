package lighting

// FeedbackBuilderOption is a functional option for configuring a Feedback.
type FeedbackBuilderOption func(*feedback)

// WithWorkers sets the number of workers that decode readbacks. Defaults to NumCPU-1.
//
// Parameters:
//   - n: the worker count, at least 1
//
// Returns:
//   - FeedbackBuilderOption: a function that applies the worker count to a feedback
func WithWorkers(n int) FeedbackBuilderOption {
	return func(f *feedback) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithChunkRows sets how many table rows one decode task handles.
//
// Parameters:
//   - rows: rows per task, at least 1
//
// Returns:
//   - FeedbackBuilderOption: a function that applies the chunk size to a feedback
func WithChunkRows(rows int) FeedbackBuilderOption {
	return func(f *feedback) {
		if rows > 0 {
			f.chunkRows = rows
		}
	}
}
