package arbiter

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"laned/internal/probe"
	"laned/internal/registry"
	"laned/internal/reload"
	"laned/pkg/types"
)

// Arbiter owns the "current lane" state of one shared inference backend and
// the FIFO backlog of work waiting for a lane switch.
type Arbiter struct {
	registry  *registry.Registry
	prober    probe.Prober
	trigger   reload.Trigger
	publisher EventPublisher
	logger    zerolog.Logger

	pollInterval  time.Duration
	maxSwitchWait time.Duration
	strictNoop    bool

	// Lane state. current and switching are always mutated together under mu
	// so readers observe a consistent pair.
	mu        sync.RWMutex
	current   string
	switching bool
	degraded  bool
	lastErr   string

	// Serializes switch attempts: held from the decision to switch through
	// commit, so at most one switch is in flight process-wide.
	switchMu sync.Mutex

	// FIFO backlog shared by many producers and the single worker. Guarded
	// by its own lock so producers never wait behind a switch in progress.
	qmu    sync.Mutex
	queue  []*queuedRequest
	closed bool
	wake   chan struct{}

	workerCancel context.CancelFunc
	workerDone   chan struct{}
	closeOnce    sync.Once
	startTime    time.Time
}

// New constructs an Arbiter with package defaults.
func New(reg *registry.Registry, prober probe.Prober, trigger reload.Trigger) *Arbiter {
	// Delegate to NewWithConfig to centralize defaults and option parsing
	return NewWithConfig(Config{Registry: reg, Prober: prober, Trigger: trigger})
}

// Ready reports whether a lane is active and no switch is in flight.
func (a *Arbiter) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current != "" && !a.switching
}

// Lanes returns the registered lane configurations.
func (a *Arbiter) Lanes() []types.Lane {
	return a.registry.Lanes()
}

// Close stops the worker and resolves every still-queued request as
// cancelled so no future is left pending. Safe to call more than once.
func (a *Arbiter) Close() {
	a.closeOnce.Do(func() {
		a.qmu.Lock()
		a.closed = true
		pending := a.queue
		a.queue = nil
		a.qmu.Unlock()
		a.workerCancel()
		<-a.workerDone
		for _, req := range pending {
			req.fut.resolve(nil, queueCancelledError{id: req.id})
		}
		queueDepth.Set(0)
	})
}

// laneReady reports the fast-path condition: laneID active and not switching.
func (a *Arbiter) laneReady(laneID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.switching && a.current == laneID
}

// setSwitching flips the switching flag without touching current.
func (a *Arbiter) setSwitching(on bool) {
	a.mu.Lock()
	a.switching = on
	a.mu.Unlock()
}

// commit records a successful switch: laneID becomes current, the switching
// flag drops, and any degraded mark from a failed warmup is cleared.
func (a *Arbiter) commit(laneID string) {
	a.mu.Lock()
	a.current = laneID
	a.switching = false
	a.degraded = false
	a.lastErr = ""
	a.mu.Unlock()
}

// fail resets the switching flag and records err, leaving current unchanged.
func (a *Arbiter) fail(err error) {
	a.mu.Lock()
	a.switching = false
	a.lastErr = err.Error()
	a.mu.Unlock()
}
