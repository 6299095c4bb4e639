package gate

import (
	"errors"
	"fmt"
)

// ErrPacketTooLarge is returned by Bus.Receive for payloads over MaxPacketSize
var ErrPacketTooLarge = errors.New("packet too large")

// InitError reports a subsystem whose Init call failed.
type InitError struct {
	Subsystem string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s initialization failed: %v", e.Subsystem, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// SpawnError indicates that the task scheduler could not start a task.
type SpawnError string

// Error returns the error message for a SpawnError.
func (s SpawnError) Error() string {
	return fmt.Sprintf("cannot spawn task: %s", string(s))
}

// PinError indicates that the start signal pin could not be configured.
type PinError struct {
	Pin string
	Err error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("pin %s: %v", e.Pin, e.Err)
}

func (e *PinError) Unwrap() error {
	return e.Err
}

// Check that errors satisfy the error interface.
var _ error = &InitError{}
var _ error = SpawnError("")
var _ error = &PinError{}
