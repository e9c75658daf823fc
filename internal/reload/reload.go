// Package reload abstracts the side channel that makes a shared inference
// backend start loading a different model. The arbiter never knows whether
// that means restarting a container, respawning a process, or nothing at all.
package reload

import (
	"context"

	"laned/pkg/types"
)

// Trigger asks the backend to begin loading lane's model. It returns whether
// a reload was actually initiated; a no-op environment declines by returning
// false with a nil error.
type Trigger interface {
	Trigger(ctx context.Context, lane types.Lane) (initiated bool, err error)
}

// Noop never reloads anything. Development setups use it when the backend is
// managed by hand; callers treat the lane as optimistically current.
type Noop struct{}

// Trigger implements Trigger.
func (Noop) Trigger(ctx context.Context, lane types.Lane) (bool, error) {
	return false, nil
}
