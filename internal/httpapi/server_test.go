package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"laned/internal/arbiter"
	"laned/pkg/types"
)

type fakeService struct {
	lanes     []types.Lane
	status    types.StatusResponse
	ensureErr error
	ensured   []string
	ready     bool
}

func (f *fakeService) Lanes() []types.Lane          { return f.lanes }
func (f *fakeService) Status() types.StatusResponse { return f.status }
func (f *fakeService) Ready() bool                  { return f.ready }
func (f *fakeService) EnsureLane(ctx context.Context, laneID string) error {
	f.ensured = append(f.ensured, laneID)
	return f.ensureErr
}

func doRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetLanes(t *testing.T) {
	svc := &fakeService{lanes: []types.Lane{{ID: "coder", Exclusive: true}}}
	rec := doRequest(t, NewMux(svc), http.MethodGet, "/lanes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body types.LanesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Lanes) != 1 || body.Lanes[0].ID != "coder" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetStatus(t *testing.T) {
	svc := &fakeService{status: types.StatusResponse{CurrentLane: "orchestrator", QueueDepth: 2}}
	rec := doRequest(t, NewMux(svc), http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.CurrentLane != "orchestrator" || body.QueueDepth != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestEnsureSuccess(t *testing.T) {
	svc := &fakeService{}
	rec := doRequest(t, NewMux(svc), http.MethodPost, "/lanes/coder/ensure")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.ensured) != 1 || svc.ensured[0] != "coder" {
		t.Fatalf("ensure not forwarded: %v", svc.ensured)
	}
	var body types.EnsureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Lane != "coder" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestEnsureErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown lane", arbiter.ErrUnknownLane("gpu9"), http.StatusNotFound},
		{"reload failure", arbiter.ErrReloadBackend("coder", errors.New("no container")), http.StatusBadGateway},
		{"switch timeout", arbiter.ErrSwitchTimeout("coder", 2*time.Minute), http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{ensureErr: tc.err}
			rec := doRequest(t, NewMux(svc), http.MethodPost, "/lanes/coder/ensure")
			if rec.Code != tc.want {
				t.Fatalf("status %d, want %d", rec.Code, tc.want)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.want || body.Error == "" {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, NewMux(&fakeService{}), http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	svc := &fakeService{}
	mux := NewMux(svc)
	if rec := doRequest(t, mux, http.MethodGet, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
	svc.ready = true
	if rec := doRequest(t, mux, http.MethodGet, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doRequest(t, NewMux(&fakeService{}), http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
