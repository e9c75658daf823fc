package arbiter

import (
	"context"
	"time"
)

// Warmup runs once at process start to bring laneID up before traffic
// arrives. A backend already serving the lane's model is adopted without a
// reload; otherwise one switch is attempted under the given timeout. In
// strict mode a failure is returned so startup can abort; in lenient mode it
// is logged and the process continues degraded, with the next real request
// triggering a fresh switch attempt.
func (a *Arbiter) Warmup(ctx context.Context, laneID string, timeout time.Duration, strict bool) error {
	lane, ok := a.registry.Lookup(laneID)
	if !ok {
		err := unknownLaneError{id: laneID}
		if strict {
			return err
		}
		a.logger.Warn().Err(err).Msg("warmup skipped")
		a.markDegraded()
		return nil
	}
	if !lane.Exclusive {
		return nil
	}

	// The backend may already be warm from a previous run.
	if res := a.prober.Check(ctx, lane.Endpoint); res.OK && servesModel(res, lane) {
		a.commit(lane.ID)
		a.logger.Info().Str("lane", lane.ID).Msg("backend already warm, adopted without reload")
		a.publisher.Publish(Event{Name: "warmup_adopted", LaneID: lane.ID})
		return nil
	}

	wctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := a.EnsureLane(wctx, laneID); err != nil {
		if strict {
			return err
		}
		a.logger.Warn().Err(err).Str("lane", laneID).Msg("warmup failed, continuing degraded")
		a.publisher.Publish(Event{Name: "warmup_failed", LaneID: laneID, Fields: map[string]any{"error": err.Error()}})
		a.markDegraded()
		return nil
	}
	return nil
}

func (a *Arbiter) markDegraded() {
	a.mu.Lock()
	a.degraded = true
	a.mu.Unlock()
}
