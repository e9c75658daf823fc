package arbiter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// orderLog records begin/end markers from units of work.
type orderLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *orderLog) add(s string) {
	l.mu.Lock()
	l.entries = append(l.entries, s)
	l.mu.Unlock()
}

func (l *orderLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func TestSubmit_UnknownLane(t *testing.T) {
	a := newTestArbiter(t, &fakeProber{}, &fakeTrigger{})
	fut, err := a.Submit(context.Background(), "gpu9", func(ctx context.Context) (any, error) { return nil, nil })
	if err == nil || !IsUnknownLane(err) {
		t.Fatalf("expected unknown lane error, got %v", err)
	}
	if fut != nil {
		t.Fatalf("expected nil future for rejected submit")
	}
}

func TestSubmit_FastPathRunsInline(t *testing.T) {
	tr := &fakeTrigger{initiated: true}
	a := newTestArbiter(t, &fakeProber{readyAfter: 1}, tr)
	a.commit("coder")

	fut, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) {
		return "done", nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case <-fut.Done():
	default:
		t.Fatalf("fast-path future must be resolved synchronously")
	}
	if res := fut.Result(); res.Err != nil || res.Value != "done" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if tr.callCount() != 0 {
		t.Fatalf("fast path triggered a reload")
	}
	if d := a.QueueDepth(); d != 0 {
		t.Fatalf("queue depth %d after fast path", d)
	}
}

func TestSubmit_NonExclusiveRunsInline(t *testing.T) {
	a := newTestArbiter(t, &fakeProber{}, &fakeTrigger{})
	fut, err := a.Submit(context.Background(), "embedder", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case <-fut.Done():
	default:
		t.Fatalf("non-exclusive future must be resolved synchronously")
	}
	if res := fut.Result(); res.Value != 42 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSubmit_FIFOCompletionOrder(t *testing.T) {
	// Two polls (~20ms) before the switch lands, so all three submits queue
	// behind it rather than racing onto the fast path.
	a := newTestArbiter(t, &fakeProber{readyAfter: 2}, &fakeTrigger{initiated: true})
	a.commit("orchestrator")

	log := &orderLog{}
	mkWork := func(tag string) Work {
		return func(ctx context.Context) (any, error) {
			log.add("begin-" + tag)
			time.Sleep(2 * time.Millisecond)
			log.add("end-" + tag)
			return tag, nil
		}
	}
	var futs []*Future
	for _, tag := range []string{"r1", "r2", "r3"} {
		fut, err := a.Submit(context.Background(), "coder", mkWork(tag))
		if err != nil {
			t.Fatalf("submit %s: %v", tag, err)
		}
		futs = append(futs, fut)
	}
	for i, fut := range futs {
		if res := waitResult(t, fut); res.Err != nil {
			t.Fatalf("future %d failed: %v", i, res.Err)
		}
	}
	want := []string{"begin-r1", "end-r1", "begin-r2", "end-r2", "begin-r3", "end-r3"}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("order log %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order violated at %d: got %v", i, got)
		}
	}
}

func TestSubmit_WorkerContinuesAfterWorkError(t *testing.T) {
	a := newTestArbiter(t, &fakeProber{readyAfter: 1}, &fakeTrigger{initiated: true})
	a.commit("orchestrator")

	boom := errors.New("boom")
	f1, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) { return nil, boom })
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	f2, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if res := waitResult(t, f1); !errors.Is(res.Err, boom) {
		t.Fatalf("expected work error, got %+v", res)
	}
	if res := waitResult(t, f2); res.Err != nil || res.Value != "ok" {
		t.Fatalf("second item did not run after first failed: %+v", res)
	}
}

func TestSubmit_WorkerSurvivesPanic(t *testing.T) {
	a := newTestArbiter(t, &fakeProber{readyAfter: 1}, &fakeTrigger{initiated: true})
	a.commit("orchestrator")

	f1, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) { panic("kaboom") })
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	f2, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	res := waitResult(t, f1)
	if res.Err == nil || !strings.Contains(res.Err.Error(), "kaboom") {
		t.Fatalf("expected panic converted to error, got %+v", res)
	}
	if res := waitResult(t, f2); res.Err != nil {
		t.Fatalf("worker died after panic: %+v", res)
	}
}

func TestSubmit_EnsureFailureResolvesFuture(t *testing.T) {
	tr := &fakeTrigger{err: errors.New("restart failed")}
	a := newTestArbiter(t, &fakeProber{}, tr)
	a.commit("orchestrator")

	ran := false
	fut, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) {
		ran = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	res := waitResult(t, fut)
	if res.Err == nil || !IsReloadBackend(res.Err) {
		t.Fatalf("expected reload backend failure, got %+v", res)
	}
	if ran {
		t.Fatalf("work ran despite ensure failure")
	}
	if cur := a.Status().CurrentLane; cur != "orchestrator" {
		t.Fatalf("current=%q, want orchestrator", cur)
	}
}

func TestSubmit_CancelSkipsExecution(t *testing.T) {
	// Slow switch: ready on the fifth poll, so cancellation lands first.
	a := newTestArbiter(t, &fakeProber{readyAfter: 5}, &fakeTrigger{initiated: true})
	a.commit("orchestrator")

	log := &orderLog{}
	f1, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) {
		log.add("r1")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	f2, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) {
		log.add("r2")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	f3, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) {
		log.add("r3")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("submit 3: %v", err)
	}
	f2.Cancel()

	res := waitResult(t, f2)
	if res.Err == nil || !IsQueueCancelled(res.Err) {
		t.Fatalf("expected cancellation, got %+v", res)
	}
	if res := waitResult(t, f1); res.Err != nil {
		t.Fatalf("first item failed: %+v", res)
	}
	if res := waitResult(t, f3); res.Err != nil {
		t.Fatalf("third item failed: %+v", res)
	}
	for _, e := range log.snapshot() {
		if e == "r2" {
			t.Fatalf("cancelled work executed")
		}
	}
}

func TestClose_ResolvesPendingFutures(t *testing.T) {
	// Prober never ready, so the first item keeps the worker switching.
	a := newTestArbiter(t, &fakeProber{}, &fakeTrigger{initiated: true},
		func(c *Config) { c.MaxSwitchWait = 5 * time.Second })
	a.commit("orchestrator")

	var futs []*Future
	for i := 0; i < 3; i++ {
		fut, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) { return nil, nil })
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		futs = append(futs, fut)
	}
	a.Close()
	for i, fut := range futs {
		res := waitResult(t, fut)
		if res.Err == nil {
			t.Fatalf("future %d resolved without error after close", i)
		}
	}
}

func TestSubmit_AfterCloseResolvesCancelled(t *testing.T) {
	a := newTestArbiter(t, &fakeProber{}, &fakeTrigger{initiated: true})
	a.commit("orchestrator")
	a.Close()

	fut, err := a.Submit(context.Background(), "coder", func(ctx context.Context) (any, error) { return nil, nil })
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	res := waitResult(t, fut)
	if res.Err == nil || !IsQueueCancelled(res.Err) {
		t.Fatalf("expected cancellation after close, got %+v", res)
	}
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	fut := newFuture("x")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := fut.Wait(ctx); err == nil {
		t.Fatalf("expected context error for pending future")
	}
}

func TestFuture_CancelAfterResolveIsNoop(t *testing.T) {
	fut := newFuture("x")
	fut.resolve("v", nil)
	fut.Cancel()
	if res := fut.Result(); res.Err != nil || res.Value != "v" {
		t.Fatalf("cancel overwrote resolved result: %+v", res)
	}
	if fut.Cancelled() {
		t.Fatalf("resolved future reported cancelled")
	}
}
