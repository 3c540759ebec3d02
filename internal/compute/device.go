package compute

// Device creates the GPU-side objects a run needs.
type Device interface {
	Name() string
	Version() string
	NewStorageBuffer(elements int, binding uint32) (Buffer, error)
	CompileCompute(k Kernel) (Program, error)
}

// Buffer is a storage buffer bound to a fixed slot.
type Buffer interface {
	// ReadFloats maps the buffer for reading and copies its contents out.
	// It must only be called after the dispatch barrier.
	ReadFloats() ([]float32, error)
	Release()
}

// Program is a linked compute program.
type Program interface {
	// Dispatch activates the program, launches the grid and issues a
	// shader storage barrier before returning.
	Dispatch(x, y, z uint32)
	Release()
}
