package gpu

// Readback is a pending copy of a table into CPU-visible memory.
// It is polled, never waited on, so the frame loop is never blocked by the GPU.
type Readback interface {
	// Ready reports whether the copy has completed and Data may be called.
	//
	// Returns:
	//   - bool: true once the mapped data is available
	Ready() bool

	// Data returns the mapped bytes of layer 0 of the table. Rows are RowPitch bytes apart.
	//
	// Returns:
	//   - []byte: a copy of the mapped bytes
	//   - error: an error if the copy failed or is not ready
	Data() ([]byte, error)

	// RowPitch returns the byte distance between consecutive rows in Data.
	RowPitch() int

	// Descriptor returns the descriptor of the table that was copied.
	Descriptor() TableDescriptor

	// Release frees the staging memory.
	Release()
}

// Device is the orchestration contract a graphics engine must satisfy.
// Submission is single threaded: every call happens on the frame goroutine in program order.
type Device interface {
	// CreateTable allocates a table matching desc.
	//
	// Parameters:
	//   - desc: the shape, format and usage of the table
	//
	// Returns:
	//   - Table: the allocated table
	//   - error: an error if allocation failed
	CreateTable(desc TableDescriptor) (Table, error)

	// BeginCommands opens a command submission. Dispatch and Draw calls are recorded into it in order.
	//
	// Returns:
	//   - error: an error if the submission could not be opened
	BeginCommands() error

	// Dispatch records a compute dispatch into the open submission.
	//
	// Parameters:
	//   - cmd: the kernel, bindings, uniforms and grid to dispatch
	//
	// Returns:
	//   - error: an error if the kernel is unknown or the command is invalid
	Dispatch(cmd DispatchCommand) error

	// Draw records a pass invocation into the open submission.
	//
	// Parameters:
	//   - cmd: the pass index, property block and targets
	//
	// Returns:
	//   - error: an error if the pass is unknown or its bindings are incomplete
	Draw(cmd DrawCommand) error

	// EndCommands closes and submits the open submission to the GPU queue.
	//
	// Returns:
	//   - error: an error if the submission failed
	EndCommands() error

	// RequestReadback schedules a copy of layer 0 of t into CPU-visible memory.
	//
	// Parameters:
	//   - t: a table created with UsageCopySource
	//
	// Returns:
	//   - Readback: the pending copy
	//   - error: an error if the copy could not be scheduled
	RequestReadback(t Table) (Readback, error)
}
