package compute

import "github.com/pkg/errors"

const (
	// DefaultElements is the element count of the built-in storage buffer.
	DefaultElements = 16

	// DefaultBinding is the storage buffer binding slot used by the built-in kernel.
	DefaultBinding uint32 = 0
)

// doubleIndexSource writes each invocation's global index times two into
// the storage buffer bound at slot 0.
const doubleIndexSource = `#version 430 core
layout(local_size_x = 1) in;
layout(std430, binding = 0) buffer SSBO {
    float data[];
};
void main() {
    uint idx = gl_GlobalInvocationID.x;
    data[idx] = float(idx) * 2.0;
}
`

// Kernel describes a one-dimensional compute dispatch over a float storage buffer.
type Kernel struct {
	Name      string
	Source    string
	Elements  int
	Binding   uint32
	LocalSize int

	// Host evaluates one invocation on the CPU. It must agree with Source.
	Host func(gid uint32) float32
}

// DoubleIndex is the built-in kernel: data[i] = 2 * i.
var DoubleIndex = Kernel{
	Name:      "double_index",
	Source:    doubleIndexSource,
	Elements:  DefaultElements,
	Binding:   DefaultBinding,
	LocalSize: 1,
	Host: func(gid uint32) float32 {
		return float32(gid) * 2.0
	},
}

// Validate reports whether the kernel geometry covers every element exactly once.
func (k Kernel) Validate() error {
	if k.Source == "" {
		return errors.Wrap(ErrInvalidKernel, "empty source")
	}
	if k.Elements <= 0 {
		return errors.Wrapf(ErrInvalidKernel, "element count %d", k.Elements)
	}
	if k.LocalSize <= 0 {
		return errors.Wrapf(ErrInvalidKernel, "local size %d", k.LocalSize)
	}
	if k.Elements%k.LocalSize != 0 {
		return errors.Wrapf(ErrInvalidKernel, "%d elements not divisible by local size %d", k.Elements, k.LocalSize)
	}
	return nil
}

// Groups returns the workgroup counts to dispatch.
func (k Kernel) Groups() (x, y, z uint32) {
	if k.LocalSize <= 0 {
		return 0, 1, 1
	}
	return uint32(k.Elements / k.LocalSize), 1, 1
}

// Invocations is the total number of shader invocations a dispatch launches.
func (k Kernel) Invocations() int {
	x, y, z := k.Groups()
	return int(x*y*z) * k.LocalSize
}

// Expected evaluates the kernel on the host for every element.
// It returns nil when the kernel has no host function.
func (k Kernel) Expected() []float32 {
	if k.Host == nil {
		return nil
	}
	out := make([]float32, k.Elements)
	for i := range out {
		out[i] = k.Host(uint32(i))
	}
	return out
}
