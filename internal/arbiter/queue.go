package arbiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// queuedRequest is one unit of work waiting for its target lane. It is
// consumed exactly once by the worker; its future is never left unresolved.
type queuedRequest struct {
	id         string
	laneID     string
	work       Work
	fut        *Future
	enqueuedAt time.Time
}

// Submit runs work once laneID is ready. If the lane needs no switch the
// work runs inline and the returned future is already resolved; otherwise
// the request joins the FIFO backlog drained by the single worker. An
// unknown lane is rejected outright rather than accepted and failed later.
func (a *Arbiter) Submit(ctx context.Context, laneID string, work Work) (*Future, error) {
	lane, ok := a.registry.Lookup(laneID)
	if !ok {
		return nil, unknownLaneError{id: laneID}
	}
	fut := newFuture(uuid.NewString())

	// Fast path: no switch needed, execute inline. Fast-path work is not
	// ordered relative to queued work for other lanes.
	if !lane.Exclusive || a.laneReady(laneID) {
		fastpathTotal.Inc()
		runWork(ctx, fut, work)
		return fut, nil
	}

	req := &queuedRequest{
		id:         fut.id,
		laneID:     laneID,
		work:       work,
		fut:        fut,
		enqueuedAt: time.Now(),
	}
	a.qmu.Lock()
	if a.closed {
		a.qmu.Unlock()
		fut.resolve(nil, queueCancelledError{id: req.id})
		return fut, nil
	}
	a.queue = append(a.queue, req)
	depth := len(a.queue)
	a.qmu.Unlock()

	queuedTotal.Inc()
	queueDepth.Set(float64(depth))
	a.logger.Debug().Str("request", req.id).Str("lane", laneID).Int("depth", depth).Msg("request queued")
	a.publisher.Publish(Event{Name: "request_queued", LaneID: laneID, Fields: map[string]any{"request": req.id, "depth": depth}})
	select {
	case a.wake <- struct{}{}:
	default:
	}
	return fut, nil
}

// QueueDepth returns the number of requests waiting for their lane.
func (a *Arbiter) QueueDepth() int {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	return len(a.queue)
}

// runWorker drains the backlog in order. One worker exists per Arbiter, so
// queued items execute serially: an item's ensure+work completes before the
// next item begins.
func (a *Arbiter) runWorker(ctx context.Context) {
	defer close(a.workerDone)
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.wake:
		}
		for {
			a.qmu.Lock()
			if len(a.queue) == 0 {
				a.qmu.Unlock()
				break
			}
			req := a.queue[0]
			a.queue = a.queue[1:]
			depth := len(a.queue)
			a.qmu.Unlock()
			queueDepth.Set(float64(depth))
			a.serve(ctx, req)
		}
	}
}

// serve processes one queued request. Errors resolve the request's future
// and never break the loop: the next item is always attempted.
func (a *Arbiter) serve(ctx context.Context, req *queuedRequest) {
	if req.fut.Cancelled() {
		a.publisher.Publish(Event{Name: "request_skipped", LaneID: req.laneID, Fields: map[string]any{"request": req.id}})
		return
	}
	if err := a.EnsureLane(ctx, req.laneID); err != nil {
		req.fut.resolve(nil, err)
		a.logger.Warn().Err(err).Str("request", req.id).Str("lane", req.laneID).Msg("queued request failed")
		return
	}
	// Check again: the caller may have withdrawn while the switch ran.
	if req.fut.Cancelled() {
		a.publisher.Publish(Event{Name: "request_skipped", LaneID: req.laneID, Fields: map[string]any{"request": req.id}})
		return
	}
	waited := time.Since(req.enqueuedAt)
	queueWait.Observe(waited.Seconds())
	runWork(ctx, req.fut, req.work)
	a.logger.Debug().Str("request", req.id).Str("lane", req.laneID).Dur("waited", waited).Msg("queued request served")
}

// runWork executes work and resolves fut, converting a panic into a failure
// instead of crashing the worker.
func runWork(ctx context.Context, fut *Future, work Work) {
	defer func() {
		if r := recover(); r != nil {
			fut.resolve(nil, fmt.Errorf("work panic: %v", r))
		}
	}()
	v, err := work(ctx)
	fut.resolve(v, err)
}
