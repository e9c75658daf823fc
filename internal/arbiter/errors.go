package arbiter

import (
	"fmt"
	"time"
)

// unknownLaneError signals a lookup of an unregistered lane id (404 mapping).
type unknownLaneError struct{ id string }

func (e unknownLaneError) Error() string { return "unknown lane: " + e.id }

// ErrUnknownLane constructs an unknownLaneError.
func ErrUnknownLane(id string) error { return unknownLaneError{id: id} }

// IsUnknownLane reports whether err indicates an unregistered lane id.
func IsUnknownLane(err error) bool {
	_, ok := err.(unknownLaneError)
	return ok
}

// reloadBackendError signals that the reload trigger itself failed (502 mapping).
type reloadBackendError struct {
	lane  string
	cause error
}

func (e reloadBackendError) Error() string {
	return fmt.Sprintf("reload backend for lane %s: %v", e.lane, e.cause)
}

func (e reloadBackendError) Unwrap() error { return e.cause }

// ErrReloadBackend constructs a reloadBackendError.
func ErrReloadBackend(lane string, cause error) error {
	return reloadBackendError{lane: lane, cause: cause}
}

// IsReloadBackend reports whether err indicates a failed reload trigger.
func IsReloadBackend(err error) bool {
	_, ok := err.(reloadBackendError)
	return ok
}

// switchTimeoutError signals that health polling never confirmed the target
// model within the deadline (504 mapping).
type switchTimeoutError struct {
	lane   string
	waited time.Duration
}

func (e switchTimeoutError) Error() string {
	return fmt.Sprintf("switch to lane %s not confirmed after %s", e.lane, e.waited.Round(time.Millisecond))
}

// ErrSwitchTimeout constructs a switchTimeoutError.
func ErrSwitchTimeout(lane string, waited time.Duration) error {
	return switchTimeoutError{lane: lane, waited: waited}
}

// IsSwitchTimeout reports whether err indicates an unconfirmed switch.
func IsSwitchTimeout(err error) bool {
	_, ok := err.(switchTimeoutError)
	return ok
}

// queueCancelledError signals that the caller withdrew a queued request
// before the worker reached it.
type queueCancelledError struct{ id string }

func (e queueCancelledError) Error() string { return "queued request cancelled: " + e.id }

// IsQueueCancelled reports whether err indicates a withdrawn queued request.
func IsQueueCancelled(err error) bool {
	_, ok := err.(queueCancelledError)
	return ok
}
