package gpu

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/san-kum/glcompute/internal/compute"
)

const floatSize = 4

// Buffer is a shader storage buffer of float32 elements.
type Buffer struct {
	id       uint32
	binding  uint32
	elements int
}

// NewStorageBuffer allocates room for elements floats with undefined
// contents and binds it to the given slot.
func (c *Context) NewStorageBuffer(elements int, binding uint32) (compute.Buffer, error) {
	if elements <= 0 {
		return nil, errors.Wrapf(compute.ErrInvalidKernel, "buffer of %d elements", elements)
	}

	b := &Buffer{binding: binding, elements: elements}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, elements*floatSize, nil, gl.DYNAMIC_COPY)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, b.id)

	klog.V(2).Infof("storage buffer %d: %d floats at binding %d", b.id, elements, binding)
	return b, nil
}

// ReadFloats maps the buffer read-only and copies it into host memory.
func (b *Buffer) ReadFloats() ([]float32, error) {
	if b.id == 0 {
		return nil, errors.Wrap(compute.ErrMap, "buffer released")
	}

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	ptr := gl.MapBuffer(gl.SHADER_STORAGE_BUFFER, gl.READ_ONLY)
	if ptr == nil {
		return nil, errors.Wrapf(compute.ErrMap, "glMapBuffer returned nil for buffer %d", b.id)
	}

	out := make([]float32, b.elements)
	copy(out, unsafe.Slice((*float32)(ptr), b.elements))

	if !gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER) {
		return nil, errors.Wrapf(compute.ErrMap, "buffer %d contents lost while mapped", b.id)
	}
	return out, nil
}

func (b *Buffer) Release() {
	if b.id == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	klog.V(2).Infof("deleted storage buffer %d", b.id)
	b.id = 0
}
