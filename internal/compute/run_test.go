package compute_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/san-kum/glcompute/internal/compute"
)

var _ = Describe("Run", func() {
	var dev *recorder

	BeforeEach(func() {
		dev = &recorder{values: compute.DoubleIndex.Expected()}
	})

	It("dispatches one group per element", func() {
		_, err := compute.Run(dev, compute.DoubleIndex)
		Expect(err).NotTo(HaveOccurred())
		Expect(dev.groups).To(Equal([3]uint32{compute.DefaultElements, 1, 1}))
	})

	It("releases the program before the buffer on success", func() {
		result, err := compute.Run(dev, compute.DoubleIndex)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Values).To(HaveLen(compute.DefaultElements))
		Expect(result.Version).To(Equal("4.3.0 fake"))
		Expect(dev.events).To(Equal([]string{
			"buffer:create:16@0",
			"program:create",
			"program:dispatch",
			"buffer:read",
			"program:release",
			"buffer:release",
		}))
	})

	It("reads only after dispatching", func() {
		_, err := compute.Run(dev, compute.DoubleIndex)
		Expect(err).NotTo(HaveOccurred())
		Expect(indexOf(dev.events, "program:dispatch")).To(BeNumerically("<", indexOf(dev.events, "buffer:read")))
	})

	It("returns compile errors and still releases the buffer", func() {
		dev.compileErr = &compute.ShaderError{Stage: compute.StageCompile, Log: "0:3: syntax error"}

		result, err := compute.Run(dev, compute.DoubleIndex)
		Expect(result).To(BeNil())
		Expect(errors.Is(err, compute.ErrCompile)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("syntax error"))
		Expect(dev.events).To(Equal([]string{"buffer:create:16@0", "program:create", "buffer:release"}))
	})

	It("returns link errors", func() {
		dev.compileErr = &compute.ShaderError{Stage: compute.StageLink, Log: "missing entry point main"}

		_, err := compute.Run(dev, compute.DoubleIndex)
		Expect(errors.Is(err, compute.ErrLink)).To(BeTrue())
		Expect(compute.ExitCode(err)).To(Equal(compute.ExitLink))
		Expect(dev.events).NotTo(ContainElement("program:dispatch"))
	})

	It("stops before compiling when the buffer cannot be created", func() {
		dev.allocErr = errors.New("out of memory")

		_, err := compute.Run(dev, compute.DoubleIndex)
		Expect(err).To(MatchError(ContainSubstring("out of memory")))
		Expect(dev.events).To(Equal([]string{"buffer:create:16@0"}))
	})

	It("releases both objects when readback fails", func() {
		dev.readErr = errors.Wrap(compute.ErrMap, "map returned nil")

		_, err := compute.Run(dev, compute.DoubleIndex)
		Expect(errors.Is(err, compute.ErrMap)).To(BeTrue())
		Expect(dev.events[len(dev.events)-2:]).To(Equal([]string{"program:release", "buffer:release"}))
	})

	It("rejects invalid kernels without touching the device", func() {
		k := compute.DoubleIndex
		k.Elements = 0

		_, err := compute.Run(dev, k)
		Expect(errors.Is(err, compute.ErrInvalidKernel)).To(BeTrue())
		Expect(dev.events).To(BeEmpty())
	})
})

var _ = Describe("Result.Verify", func() {
	It("accepts an exact match", func() {
		r := &compute.Result{Values: []float32{0, 2, 4}}
		Expect(r.Verify([]float32{0, 2, 4})).To(BeEmpty())
	})

	It("reports differing elements", func() {
		r := &compute.Result{Values: []float32{0, 2, 5}}
		Expect(r.Verify([]float32{0, 2, 4})).To(Equal([]compute.Mismatch{{Index: 2, Expected: 4, Got: 5}}))
	})

	It("reports missing elements", func() {
		r := &compute.Result{Values: []float32{0}}
		Expect(r.Verify([]float32{0, 2})).To(Equal([]compute.Mismatch{{Index: 1, Expected: 2, Got: 0}}))
	})
})

var _ = Describe("VerifyKernel", func() {
	It("fails with ErrMismatch on wrong readback", func() {
		dev := &recorder{values: make([]float32, compute.DefaultElements)}

		result, mismatches, err := compute.VerifyKernel(dev, compute.DoubleIndex)
		Expect(result).NotTo(BeNil())
		Expect(mismatches).To(HaveLen(compute.DefaultElements - 1))
		Expect(compute.ExitCode(err)).To(Equal(compute.ExitMismatch))
	})
})

func indexOf(events []string, want string) int {
	for i, e := range events {
		if e == want {
			return i
		}
	}
	return -1
}
