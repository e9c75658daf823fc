// Package probe reports whether an inference backend is ready and, when the
// backend exposes it, which model it is currently serving. Probes are best
// effort: transient network failures mean "not ready", never a hard error.
package probe

import "context"

// Result is a snapshot of backend health at the time of a check.
type Result struct {
	// OK is true when the backend answered its readiness endpoint.
	OK bool
	// ServedModel is the model the backend reports serving, or "" when the
	// backend does not expose one.
	ServedModel string
}

// Prober checks a backend endpoint. Implementations must apply their own
// short timeout so a dead backend cannot stall a caller.
type Prober interface {
	Check(ctx context.Context, endpoint string) Result
}
