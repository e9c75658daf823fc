package arbiter

import (
	"context"
	"path/filepath"
	"time"

	"laned/internal/probe"
	"laned/pkg/types"
)

// EnsureLane makes laneID the active lane on the shared backend, reloading it
// if necessary. It returns once the lane is confirmed serving, or with an
// error when the reload trigger fails or the switch is not confirmed within
// the configured deadline. On failure the previous lane state is preserved.
func (a *Arbiter) EnsureLane(ctx context.Context, laneID string) error {
	lane, ok := a.registry.Lookup(laneID)
	if !ok {
		return unknownLaneError{id: laneID}
	}
	// Non-exclusive lanes run on their own backend and bypass arbitration.
	if !lane.Exclusive {
		return nil
	}
	if a.laneReady(laneID) {
		return nil
	}

	a.switchMu.Lock()
	defer a.switchMu.Unlock()
	// Re-check under the switch lock: a racing caller may have completed the
	// same switch while we waited for it.
	if a.laneReady(laneID) {
		return nil
	}
	return a.switchTo(ctx, lane)
}

// switchTo drives the reload + health-poll protocol. Caller holds switchMu.
func (a *Arbiter) switchTo(ctx context.Context, lane types.Lane) error {
	start := time.Now()
	a.setSwitching(true)
	a.logger.Info().Str("lane", lane.ID).Str("model", lane.Model).Msg("switch start")
	a.publisher.Publish(Event{Name: "switch_start", LaneID: lane.ID})

	initiated, err := a.trigger.Trigger(ctx, lane)
	if err != nil {
		werr := reloadBackendError{lane: lane.ID, cause: err}
		a.fail(werr)
		switchesTotal.WithLabelValues("reload_error").Inc()
		a.logger.Error().Err(err).Str("lane", lane.ID).Msg("reload trigger failed")
		a.publisher.Publish(Event{Name: "switch_reload_error", LaneID: lane.ID, Fields: map[string]any{"error": err.Error()}})
		return werr
	}
	if !initiated && !a.strictNoop {
		// The environment declined to reload (dev no-op): adopt the lane
		// optimistically without polling.
		a.commit(lane.ID)
		switchesTotal.WithLabelValues("noop").Inc()
		a.logger.Info().Str("lane", lane.ID).Msg("reload declined, lane adopted optimistically")
		a.publisher.Publish(Event{Name: "switch_noop", LaneID: lane.ID})
		return nil
	}

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(a.maxSwitchWait)
	defer deadline.Stop()
	polls := 0
	for {
		select {
		case <-ticker.C:
			polls++
			res := a.prober.Check(ctx, lane.Endpoint)
			if res.OK && servesModel(res, lane) {
				a.commit(lane.ID)
				switchesTotal.WithLabelValues("success").Inc()
				switchDuration.Observe(time.Since(start).Seconds())
				a.logger.Info().Str("lane", lane.ID).Int("polls", polls).Dur("dur", time.Since(start)).Msg("switch complete")
				a.publisher.Publish(Event{Name: "switch_ready", LaneID: lane.ID, Fields: map[string]any{"polls": polls, "dur_ms": int(time.Since(start) / time.Millisecond)}})
				return nil
			}
		case <-ctx.Done():
			return a.switchTimedOut(lane, start, polls)
		case <-deadline.C:
			return a.switchTimedOut(lane, start, polls)
		}
	}
}

// switchTimedOut reverts state after an unconfirmed switch. The backend may
// be in neither the old nor the new lane; current is never advanced here.
func (a *Arbiter) switchTimedOut(lane types.Lane, start time.Time, polls int) error {
	werr := switchTimeoutError{lane: lane.ID, waited: time.Since(start)}
	a.fail(werr)
	switchesTotal.WithLabelValues("timeout").Inc()
	a.logger.Warn().Str("lane", lane.ID).Int("polls", polls).Dur("waited", time.Since(start)).Msg("switch not confirmed")
	a.publisher.Publish(Event{Name: "switch_timeout", LaneID: lane.ID, Fields: map[string]any{"polls": polls}})
	return werr
}

// servesModel reports whether a probe result confirms lane's model. Backends
// that do not expose the served model count as a match once healthy.
func servesModel(res probe.Result, lane types.Lane) bool {
	if res.ServedModel == "" {
		return true
	}
	if res.ServedModel == lane.Model {
		return true
	}
	// llama.cpp-style servers report the model file basename.
	base := filepath.Base(lane.Model)
	return res.ServedModel == base || filepath.Base(res.ServedModel) == base
}
