package compute

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Result holds the values read back after a dispatch.
type Result struct {
	Kernel  string
	Device  string
	Version string
	Values  []float32
}

// Mismatch is a readback element that differs from the host evaluation.
type Mismatch struct {
	Index    int
	Expected float32
	Got      float32
}

// Run dispatches k once on dev and returns the buffer contents.
//
// The program is released before the buffer on every path. The device
// itself is owned by the caller.
func Run(dev Device, k Kernel) (*Result, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	buf, err := dev.NewStorageBuffer(k.Elements, k.Binding)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d element buffer", k.Elements)
	}
	defer buf.Release()

	prog, err := dev.CompileCompute(k)
	if err != nil {
		return nil, err
	}
	defer prog.Release()

	x, y, z := k.Groups()
	klog.V(1).Infof("dispatching %s on %s: groups=(%d,%d,%d)", k.Name, dev.Name(), x, y, z)
	prog.Dispatch(x, y, z)

	values, err := buf.ReadFloats()
	if err != nil {
		return nil, errors.Wrap(err, "read back storage buffer")
	}

	return &Result{
		Kernel:  k.Name,
		Device:  dev.Name(),
		Version: dev.Version(),
		Values:  values,
	}, nil
}

// Verify compares the readback against expected element by element.
// Values are compared exactly. A length difference reports every missing
// or extra index.
func (r *Result) Verify(expected []float32) []Mismatch {
	var out []Mismatch
	n := len(expected)
	if len(r.Values) > n {
		n = len(r.Values)
	}
	for i := 0; i < n; i++ {
		var want, got float32
		inWant, inGot := i < len(expected), i < len(r.Values)
		if inWant {
			want = expected[i]
		}
		if inGot {
			got = r.Values[i]
		}
		if inWant != inGot || want != got {
			out = append(out, Mismatch{Index: i, Expected: want, Got: got})
		}
	}
	return out
}

// VerifyKernel runs k on dev and fails with ErrMismatch when the readback
// differs from k.Expected.
func VerifyKernel(dev Device, k Kernel) (*Result, []Mismatch, error) {
	if k.Host == nil {
		return nil, nil, errors.Wrapf(ErrInvalidKernel, "kernel %s has no host function", k.Name)
	}
	result, err := Run(dev, k)
	if err != nil {
		return nil, nil, err
	}
	mismatches := result.Verify(k.Expected())
	if len(mismatches) > 0 {
		return result, mismatches, errors.Wrapf(ErrMismatch, "%d of %d elements", len(mismatches), k.Elements)
	}
	return result, nil, nil
}
