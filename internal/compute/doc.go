// Package compute runs a single compute kernel on a [Device] and reads the
// result back.
//
// A run is strictly linear:
//
//   - allocate a storage buffer at the kernel's binding slot
//   - compile and link the kernel into a program
//   - dispatch one workgroup per element, followed by a storage barrier
//   - map the buffer and copy the values to host memory
//
// # Example
//
//	dev := compute.NewCPUDevice()
//	result, err := compute.Run(dev, compute.DoubleIndex)
//	if err != nil {
//		os.Exit(compute.ExitCode(err))
//	}
//
// # Devices
//
// The OpenGL device lives in package gpu. [CPUDevice] evaluates the
// kernel's host function over the same dispatch grid and needs no GPU.
//
// # Thread Safety
//
// Devices are NOT thread-safe. An OpenGL device must only be used from the
// OS thread that owns its context.
package compute
