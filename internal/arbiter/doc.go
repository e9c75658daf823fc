// Package arbiter serializes access to a shared inference backend that can
// only run one model at a time. Logical "lanes" (model configurations) are
// requested by id; the arbiter decides when the backend must be reloaded,
// queues callers that arrive during a switch, and tracks which lane is
// currently active. It is structured into small files by concern:
//
//   - arbiter.go: core Arbiter type, constructor, worker lifecycle.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - errors.go: error types and helpers (IsUnknownLane, IsSwitchTimeout, ...).
//   - ensure.go: EnsureLane switch protocol (trigger + health polling).
//   - future.go: Future/Result handles for submitted work.
//   - queue.go: Submit fast path, FIFO backlog, single worker loop.
//   - warmup.go: startup warm-backend detection and strict/lenient warmup.
//   - status.go: Status snapshot for the HTTP layer.
//   - events.go: EventPublisher hook; eventpub_memory.go is the test sink.
//   - metrics.go: Prometheus collectors.
//
// External packages should treat this package as the arbitration layer and
// use public methods only (New/NewWithConfig, EnsureLane, Submit, Warmup,
// Status, Ready, Close). Internal state is subject to change.
package arbiter
