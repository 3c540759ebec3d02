// Package gpu implements [compute.Device] on an OpenGL 4.3 core context
// owned by a hidden GLFW window.
//
// All functions must be called from the OS thread that called [Open].
// Callers usually lock the main thread in an init function:
//
//	func init() { runtime.LockOSThread() }
//
// Dispatch does not poll glGetError; driver-side failures during a
// dispatch are not detected.
package gpu
