package types

// LaneStatus summarizes one registered lane for /status.
type LaneStatus struct {
	// Lane identifier.
	// example: coder
	ID string `json:"id" example:"coder"`
	// Backend endpoint the lane is served from.
	// example: http://127.0.0.1:8081
	Endpoint string `json:"endpoint" example:"http://127.0.0.1:8081"`
	// Model the lane serves.
	// example: /models/qwen2.5-coder-14b-q4_k_m.gguf
	Model string `json:"model" example:"/models/qwen2.5-coder-14b-q4_k_m.gguf"`
	// Backend kind.
	// example: llamacpp
	Backend string `json:"backend,omitempty" example:"llamacpp"`
	// Whether the lane requires exclusive arbitration.
	// example: true
	Exclusive bool `json:"exclusive" example:"true"`
	// Whether this lane is the one currently active on the shared backend.
	// example: false
	Current bool `json:"current" example:"false"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Identifier of the lane currently active on the shared backend, or "" if none.
	// example: orchestrator
	CurrentLane string `json:"current_lane,omitempty" example:"orchestrator"`
	// True while a lane switch is in flight.
	// example: false
	Switching bool `json:"switching" example:"false"`
	// True when startup warmup failed in lenient mode and no switch has
	// succeeded since.
	// example: false
	Degraded bool `json:"degraded" example:"false"`
	// Number of requests waiting for their lane to become ready.
	// example: 0
	QueueDepth int `json:"queue_depth" example:"0"`
	// Registered lanes with endpoint/model metadata.
	Lanes []LaneStatus `json:"lanes"`
	// Last switch error observed, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the process in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// LanesResponse wraps the list of lanes returned by GET /lanes.
type LanesResponse struct {
	// Registered lane configurations.
	Lanes []Lane `json:"lanes"`
}

// EnsureResponse is returned by POST /lanes/{laneID}/ensure on success.
type EnsureResponse struct {
	// Lane that is now active.
	// example: coder
	Lane string `json:"lane" example:"coder"`
	// Time the ensure call took, in milliseconds.
	// example: 10250
	DurMs int64 `json:"dur_ms" example:"10250"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unknown lane: gpu9
	Error string `json:"error" example:"unknown lane: gpu9"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
