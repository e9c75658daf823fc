package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"laned/internal/common/fsutil"
	"laned/pkg/types"
)

// ReloadConfig selects how the shared backend is reloaded on a lane switch.
type ReloadConfig struct {
	// Kind is one of: none, command, http.
	Kind string `json:"kind" yaml:"kind" toml:"kind"`
	// Command argv for kind=command; {lane}, {model}, {endpoint} are substituted.
	Command []string `json:"command,omitempty" yaml:"command" toml:"command"`
	// URL of the orchestration endpoint for kind=http.
	URL string `json:"url,omitempty" yaml:"url" toml:"url"`
}

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr             string       `json:"addr" yaml:"addr" toml:"addr"`
	DefaultLane      string       `json:"default_lane" yaml:"default_lane" toml:"default_lane"`
	WarmupTimeoutSec int          `json:"warmup_timeout_sec" yaml:"warmup_timeout_sec" toml:"warmup_timeout_sec"`
	WarmupStrict     bool         `json:"warmup_strict" yaml:"warmup_strict" toml:"warmup_strict"`
	PollIntervalSec  int          `json:"poll_interval_sec" yaml:"poll_interval_sec" toml:"poll_interval_sec"`
	MaxSwitchWaitSec int          `json:"max_switch_wait_sec" yaml:"max_switch_wait_sec" toml:"max_switch_wait_sec"`
	ProbeTimeoutSec  int          `json:"probe_timeout_sec" yaml:"probe_timeout_sec" toml:"probe_timeout_sec"`
	// StrictNoop makes a declined reload (no-op trigger) go through health
	// polling instead of committing the lane optimistically.
	StrictNoop bool         `json:"strict_noop" yaml:"strict_noop" toml:"strict_noop"`
	Reload     ReloadConfig `json:"reload" yaml:"reload" toml:"reload"`
	Lanes      []types.Lane `json:"lanes" yaml:"lanes" toml:"lanes"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(expanded)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	for i := range cfg.Lanes {
		if p, err := fsutil.ExpandHome(cfg.Lanes[i].Model); err == nil {
			cfg.Lanes[i].Model = p
		}
	}
	return cfg, nil
}
