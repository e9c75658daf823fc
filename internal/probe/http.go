package probe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultCheckTimeout = 2 * time.Second

// HTTPProber checks llama.cpp-server-compatible backends: GET /health for
// readiness and GET /v1/models for the served model id.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber builds a prober with the given per-check timeout.
// A non-positive timeout selects the default.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

// Check implements Prober.
func (p *HTTPProber) Check(ctx context.Context, endpoint string) Result {
	endpoint = strings.TrimRight(endpoint, "/")
	if !p.get(ctx, endpoint+"/health", nil) {
		return Result{}
	}
	out := Result{OK: true}
	// Best effort: absence of a models listing is not a failure.
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if p.get(ctx, endpoint+"/v1/models", &body) && len(body.Data) > 0 {
		out.ServedModel = body.Data[0].ID
	}
	return out
}

// get performs a GET and optionally decodes a JSON body. Any transport or
// decode problem reports false.
func (p *HTTPProber) get(ctx context.Context, url string, into any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false
	}
	if into == nil {
		io.Copy(io.Discard, resp.Body)
		return true
	}
	return json.NewDecoder(resp.Body).Decode(into) == nil
}
