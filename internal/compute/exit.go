package compute

import "github.com/pkg/errors"

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitContext  = 2
	ExitLoader   = 3
	ExitCompile  = 4
	ExitLink     = 5
	ExitMismatch = 6
)

// ExitCode maps an error returned by this package or a device to a process
// exit code. A nil error maps to ExitOK.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInit), errors.Is(err, ErrWindow):
		return ExitContext
	case errors.Is(err, ErrLoader):
		return ExitLoader
	case errors.Is(err, ErrCompile):
		return ExitCompile
	case errors.Is(err, ErrLink):
		return ExitLink
	case errors.Is(err, ErrMismatch):
		return ExitMismatch
	default:
		return ExitFailure
	}
}
