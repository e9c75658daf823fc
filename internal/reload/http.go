package reload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"laned/pkg/types"
)

const defaultTriggerTimeout = 10 * time.Second

// HTTP posts the lane config to an orchestration endpoint (a container
// supervisor or model-swap proxy) that restarts the backend with the new
// model.
type HTTP struct {
	URL    string
	Client *http.Client
}

// NewHTTP builds an HTTP trigger with a default client timeout.
func NewHTTP(url string) *HTTP {
	return &HTTP{URL: url, Client: &http.Client{Timeout: defaultTriggerTimeout}}
}

// Trigger implements Trigger.
func (h *HTTP) Trigger(ctx context.Context, lane types.Lane) (bool, error) {
	if h.URL == "" {
		return false, fmt.Errorf("reload url not configured")
	}
	body, err := json.Marshal(map[string]string{
		"lane":     lane.ID,
		"model":    lane.Model,
		"endpoint": lane.Endpoint,
	})
	if err != nil {
		return false, fmt.Errorf("encode reload request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build reload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTriggerTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("reload request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("reload endpoint returned %d", resp.StatusCode)
	}
	return true, nil
}
