package compute_test

import (
	"fmt"

	"github.com/san-kum/glcompute/internal/compute"
)

// recorder is a Device that logs every call in order.
type recorder struct {
	events     []string
	compileErr error
	allocErr   error
	readErr    error
	values     []float32
	groups     [3]uint32
}

func (r *recorder) Name() string    { return "recorder" }
func (r *recorder) Version() string { return "4.3.0 fake" }

func (r *recorder) NewStorageBuffer(elements int, binding uint32) (compute.Buffer, error) {
	r.events = append(r.events, fmt.Sprintf("buffer:create:%d@%d", elements, binding))
	if r.allocErr != nil {
		return nil, r.allocErr
	}
	return &recBuffer{r: r}, nil
}

func (r *recorder) CompileCompute(k compute.Kernel) (compute.Program, error) {
	r.events = append(r.events, "program:create")
	if r.compileErr != nil {
		return nil, r.compileErr
	}
	return &recProgram{r: r}, nil
}

type recBuffer struct{ r *recorder }

func (b *recBuffer) ReadFloats() ([]float32, error) {
	b.r.events = append(b.r.events, "buffer:read")
	if b.r.readErr != nil {
		return nil, b.r.readErr
	}
	return b.r.values, nil
}

func (b *recBuffer) Release() { b.r.events = append(b.r.events, "buffer:release") }

type recProgram struct{ r *recorder }

func (p *recProgram) Dispatch(x, y, z uint32) {
	p.r.groups = [3]uint32{x, y, z}
	p.r.events = append(p.r.events, "program:dispatch")
}

func (p *recProgram) Release() { p.r.events = append(p.r.events, "program:release") }
