package types

// Lane describes one model configuration selectable on an inference backend.
type Lane struct {
	// Stable identifier callers use to request the lane.
	// example: coder
	ID string `json:"id" yaml:"id" toml:"id" example:"coder"`
	// Human-friendly name.
	// example: Coder (Qwen 14B)
	Name string `json:"name,omitempty" yaml:"name" toml:"name" example:"Coder (Qwen 14B)"`
	// Base URL of the backend serving this lane.
	// example: http://127.0.0.1:8081
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint" example:"http://127.0.0.1:8081"`
	// Backend kind (llamacpp, vllm, openai, ...). Informational.
	// example: llamacpp
	Backend string `json:"backend,omitempty" yaml:"backend" toml:"backend" example:"llamacpp"`
	// Model path or name the backend must be serving for this lane to count as ready.
	// example: /models/qwen2.5-coder-14b-q4_k_m.gguf
	Model string `json:"model" yaml:"model" toml:"model" example:"/models/qwen2.5-coder-14b-q4_k_m.gguf"`
	// Maximum context length the lane is configured for.
	// example: 32768
	MaxContext int `json:"max_context,omitempty" yaml:"max_context" toml:"max_context" example:"32768"`
	// Fraction of accelerator memory the lane may use.
	// example: 0.9
	MemoryFraction float64 `json:"memory_fraction,omitempty" yaml:"memory_fraction" toml:"memory_fraction" example:"0.9"`
	// Exclusive lanes share one physical backend and require arbitration
	// before use; non-exclusive lanes are assumed always available.
	// example: true
	Exclusive bool `json:"exclusive" yaml:"exclusive" toml:"exclusive" example:"true"`
}
