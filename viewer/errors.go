package viewer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocument is returned by operations that require a loaded
	// document when none is present.
	ErrNoDocument = errors.New("viewer: no document loaded")

	// ErrSuperseded is returned by a Load that was overtaken by a
	// newer Load (or by Destroy) before it could commit.
	ErrSuperseded = errors.New("viewer: load superseded")

	// ErrNotInitialized is returned when the engine has not been
	// initialized yet.
	ErrNotInitialized = errors.New("viewer: engine not initialized")
)

// NativeError reports a rejection from the native engine, carrying the
// engine's last-error code.
type NativeError struct {
	Op   string
	Code uint32
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("viewer: %s: engine error %d (%s)", e.Op, e.Code, codeName(e.Code))
}

func codeName(code uint32) string {
	switch code {
	case 0:
		return "success"
	case 1:
		return "unknown"
	case 2:
		return "file access"
	case 3:
		return "malformed document"
	case 4:
		return "password required"
	case 5:
		return "unsupported security"
	case 6:
		return "page not found"
	default:
		return "unrecognized"
	}
}
