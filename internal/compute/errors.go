package compute

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds returned by devices and [Run].
var (
	// ErrInit indicates the context library failed to initialize.
	ErrInit = errors.New("compute: context library initialization failed")

	// ErrWindow indicates the hidden window (and with it the context) could not be created.
	ErrWindow = errors.New("compute: window creation failed")

	// ErrLoader indicates graphics API entry points could not be resolved.
	ErrLoader = errors.New("compute: function pointer resolution failed")

	// ErrCompile indicates the compute shader failed to compile.
	ErrCompile = errors.New("compute: shader compile failed")

	// ErrLink indicates the program failed to link.
	ErrLink = errors.New("compute: program link failed")

	// ErrMap indicates the storage buffer could not be mapped or unmapped.
	ErrMap = errors.New("compute: buffer mapping failed")

	// ErrInvalidKernel indicates a kernel whose geometry cannot be dispatched.
	ErrInvalidKernel = errors.New("compute: invalid kernel")

	// ErrMismatch indicates readback values differ from the host evaluation.
	ErrMismatch = errors.New("compute: readback does not match expected values")
)

// Stage identifies where shader building failed.
type Stage int

const (
	StageCompile Stage = iota
	StageLink
)

func (s Stage) String() string {
	if s == StageLink {
		return "Program link error"
	}
	return "Compute shader compile error"
}

// ShaderError carries the full driver log of a failed compile or link.
type ShaderError struct {
	Stage Stage
	Log   string
}

func (e *ShaderError) Error() string {
	log := strings.TrimRight(e.Log, "\x00\n ")
	if log == "" {
		return e.Stage.String()
	}
	return fmt.Sprintf("%s:\n%s", e.Stage, log)
}

func (e *ShaderError) Unwrap() error {
	if e.Stage == StageLink {
		return ErrLink
	}
	return ErrCompile
}
