package arbiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"laned/internal/probe"
	"laned/internal/registry"
	"laned/pkg/types"
)

// fakeProber reports ready starting with the readyAfter-th check; 0 = never.
// An empty model matches any lane.
type fakeProber struct {
	mu         sync.Mutex
	calls      int
	readyAfter int
	model      string
}

func (p *fakeProber) Check(ctx context.Context, endpoint string) probe.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.readyAfter > 0 && p.calls >= p.readyAfter {
		return probe.Result{OK: true, ServedModel: p.model}
	}
	return probe.Result{}
}

func (p *fakeProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProber) setReadyAfter(n int) {
	p.mu.Lock()
	p.readyAfter = n
	p.calls = 0
	p.mu.Unlock()
}

// fakeTrigger records calls and tracks overlapping invocations so tests can
// assert that switches never run concurrently.
type fakeTrigger struct {
	mu          sync.Mutex
	calls       int
	initiated   bool
	err         error
	delay       time.Duration
	inflight    int
	maxInflight int
}

func (t *fakeTrigger) Trigger(ctx context.Context, lane types.Lane) (bool, error) {
	t.mu.Lock()
	t.calls++
	t.inflight++
	if t.inflight > t.maxInflight {
		t.maxInflight = t.inflight
	}
	delay, err, initiated := t.delay, t.err, t.initiated
	t.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	t.mu.Lock()
	t.inflight--
	t.mu.Unlock()
	if err != nil {
		return false, err
	}
	return initiated, nil
}

func (t *fakeTrigger) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func testLanes() []types.Lane {
	return []types.Lane{
		{ID: "orchestrator", Endpoint: "http://127.0.0.1:18081", Model: "orchestrator.gguf", Exclusive: true},
		{ID: "coder", Endpoint: "http://127.0.0.1:18081", Model: "coder.gguf", Exclusive: true},
		{ID: "embedder", Endpoint: "http://127.0.0.1:18082", Model: "embed-small"},
	}
}

// newTestArbiter builds an arbiter over the standard test lanes with
// millisecond-scale timing. Close is registered as cleanup.
func newTestArbiter(t *testing.T, p probe.Prober, tr *fakeTrigger, opts ...func(*Config)) *Arbiter {
	t.Helper()
	reg, err := registry.New(testLanes())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	cfg := Config{
		Registry:      reg,
		Prober:        p,
		Trigger:       tr,
		PollInterval:  10 * time.Millisecond,
		MaxSwitchWait: 100 * time.Millisecond,
	}
	for _, o := range opts {
		o(&cfg)
	}
	a := NewWithConfig(cfg)
	t.Cleanup(a.Close)
	return a
}

// waitResult blocks on fut with a test-bounded deadline.
func waitResult(t *testing.T, fut *Future) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := fut.Wait(ctx)
	if err != nil {
		t.Fatalf("future not resolved within test deadline: %v", err)
	}
	return res
}
