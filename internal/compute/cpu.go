package compute

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// serialThreshold is the invocation count below which the CPU device does
// not bother spawning workers.
const serialThreshold = 64

// CPUDevice evaluates kernels on the host over the same dispatch grid a GPU
// would launch.
type CPUDevice struct {
	workers  int
	bindings map[uint32]*cpuBuffer
}

func NewCPUDevice() *CPUDevice {
	return &CPUDevice{
		workers:  runtime.NumCPU(),
		bindings: make(map[uint32]*cpuBuffer),
	}
}

func (c *CPUDevice) Name() string    { return "cpu" }
func (c *CPUDevice) Version() string { return "host reference (" + runtime.GOARCH + ")" }

func (c *CPUDevice) NewStorageBuffer(elements int, binding uint32) (Buffer, error) {
	if elements <= 0 {
		return nil, errors.Wrapf(ErrInvalidKernel, "buffer of %d elements", elements)
	}
	buf := &cpuBuffer{dev: c, binding: binding, data: make([]float32, elements)}
	c.bindings[binding] = buf
	klog.V(2).Infof("cpu: buffer of %d floats bound at %d", elements, binding)
	return buf, nil
}

func (c *CPUDevice) CompileCompute(k Kernel) (Program, error) {
	if k.Host == nil {
		return nil, &ShaderError{Stage: StageCompile, Log: "kernel " + k.Name + " has no host implementation"}
	}
	return &cpuProgram{dev: c, kernel: k}, nil
}

type cpuBuffer struct {
	dev     *CPUDevice
	binding uint32
	data    []float32
}

func (b *cpuBuffer) ReadFloats() ([]float32, error) {
	if b.data == nil {
		return nil, errors.Wrap(ErrMap, "buffer released")
	}
	out := make([]float32, len(b.data))
	copy(out, b.data)
	return out, nil
}

func (b *cpuBuffer) Release() {
	if cur, ok := b.dev.bindings[b.binding]; ok && cur == b {
		delete(b.dev.bindings, b.binding)
	}
	b.data = nil
}

type cpuProgram struct {
	dev    *CPUDevice
	kernel Kernel
}

// Dispatch runs every invocation of the grid. Invocations whose global id
// falls outside the bound buffer are dropped. Each invocation writes only
// its own element, so workers never share an index.
func (p *cpuProgram) Dispatch(x, y, z uint32) {
	buf, ok := p.dev.bindings[p.kernel.Binding]
	if !ok || buf.data == nil {
		klog.Warningf("cpu: dispatch %s with nothing bound at %d", p.kernel.Name, p.kernel.Binding)
		return
	}

	local := p.kernel.LocalSize
	if local <= 0 {
		local = 1
	}
	// Only the x axis addresses the buffer; y and z repeat the same ids.
	n := int(x) * local
	if y == 0 || z == 0 {
		n = 0
	}
	if n > len(buf.data) {
		n = len(buf.data)
	}

	if n < serialThreshold || p.dev.workers <= 1 {
		for gid := 0; gid < n; gid++ {
			buf.data[gid] = p.kernel.Host(uint32(gid))
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + p.dev.workers - 1) / p.dev.workers

	for w := 0; w < p.dev.workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for gid := start; gid < end; gid++ {
				buf.data[gid] = p.kernel.Host(uint32(gid))
			}
		}(start, end)
	}

	wg.Wait()
}

func (p *cpuProgram) Release() {}
