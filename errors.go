package hwenc

import "errors"

// Common errors. Backend failures are wrapped so callers can match the
// category with errors.Is while still seeing the backend detail.
var (
	ErrInvalidConfig = errors.New("invalid encoder configuration")
	ErrOpenFailed    = errors.New("failed to open encoder backend")
	ErrEncodeFailed  = errors.New("encode failed")
	ErrDrainFailed   = errors.New("drain failed")
	ErrClosed        = errors.New("session closed")
	ErrNoBackend     = errors.New("no encoder backend")
)
