package arbiter

import (
	"time"

	"laned/pkg/types"
)

// Status builds a detailed status response for /status.
func (a *Arbiter) Status() types.StatusResponse {
	a.mu.RLock()
	resp := types.StatusResponse{
		CurrentLane:    a.current,
		Switching:      a.switching,
		Degraded:       a.degraded,
		LastError:      a.lastErr,
		UptimeSeconds:  int64(time.Since(a.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	a.mu.RUnlock()

	resp.QueueDepth = a.QueueDepth()
	lanes := a.registry.Lanes()
	resp.Lanes = make([]types.LaneStatus, 0, len(lanes))
	for _, ln := range lanes {
		resp.Lanes = append(resp.Lanes, types.LaneStatus{
			ID:        ln.ID,
			Endpoint:  ln.Endpoint,
			Model:     ln.Model,
			Backend:   ln.Backend,
			Exclusive: ln.Exclusive,
			Current:   ln.ID == resp.CurrentLane,
		})
	}
	return resp
}
