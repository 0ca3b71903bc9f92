package comport

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrPortClosed       = errors.New("serial port is closed")
	ErrOSRejected       = errors.New("operating system rejected serial port request")
	ErrUnsupported      = errors.New("operation not supported on this platform")
	ErrShortWrite       = errors.New("short write to serial port")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrUnknownBaudRate  = errors.New("baud rate reported by the device is not representable")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")

	// Wait outcomes
	ErrTimeout         = errors.New("timed out waiting for serial data")
	ErrPatternMismatch = errors.New("received data does not match expected pattern")
	ErrClock           = errors.New("monotonic clock went backwards")
)

// osError wraps an error returned by a system call so that it matches both
// ErrOSRejected and the underlying errno.
func osError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrOSRejected, err)
}
