package registry

import (
	"fmt"
	"strings"

	"laned/pkg/types"
)

// Registry is an immutable id -> lane mapping built once from configuration.
type Registry struct {
	lanes []types.Lane
	byID  map[string]types.Lane
}

// New validates the lane list and builds a Registry.
func New(lanes []types.Lane) (*Registry, error) {
	if len(lanes) == 0 {
		return nil, fmt.Errorf("no lanes configured")
	}
	byID := make(map[string]types.Lane, len(lanes))
	for _, ln := range lanes {
		id := strings.TrimSpace(ln.ID)
		if id == "" {
			return nil, fmt.Errorf("lane with empty id")
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate lane id: %s", id)
		}
		if ln.Exclusive && ln.Model == "" {
			return nil, fmt.Errorf("exclusive lane %s has no model", id)
		}
		byID[id] = ln
	}
	out := make([]types.Lane, len(lanes))
	copy(out, lanes)
	return &Registry{lanes: out, byID: byID}, nil
}

// Lookup returns the lane for id, or ok=false when unregistered.
func (r *Registry) Lookup(id string) (types.Lane, bool) {
	ln, ok := r.byID[id]
	return ln, ok
}

// Lanes returns a copy of all registered lanes in configuration order.
func (r *Registry) Lanes() []types.Lane {
	out := make([]types.Lane, len(r.lanes))
	copy(out, r.lanes)
	return out
}
