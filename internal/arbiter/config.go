package arbiter

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"laned/internal/probe"
	"laned/internal/registry"
	"laned/internal/reload"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultPollInterval  = 5 * time.Second
	defaultMaxSwitchWait = 120 * time.Second
)

// Config encapsulates all tunables for Arbiter construction.
type Config struct {
	Registry *registry.Registry
	Prober   probe.Prober
	Trigger  reload.Trigger
	// PollInterval is the fixed delay between health checks during a switch.
	PollInterval time.Duration
	// MaxSwitchWait bounds health polling, measured from the start of polling.
	MaxSwitchWait time.Duration
	// StrictNoop makes a declined reload (initiated=false) go through health
	// polling instead of committing the lane optimistically.
	StrictNoop bool
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
	// Logger for switch/queue lifecycle; nil disables logging.
	Logger *zerolog.Logger
}

// NewWithConfig constructs an Arbiter from Config and starts its worker.
func NewWithConfig(cfg Config) *Arbiter {
	a := &Arbiter{
		registry:      cfg.Registry,
		prober:        cfg.Prober,
		trigger:       cfg.Trigger,
		publisher:     cfg.Publisher,
		strictNoop:    cfg.StrictNoop,
		pollInterval:  cfg.PollInterval,
		maxSwitchWait: cfg.MaxSwitchWait,
		wake:          make(chan struct{}, 1),
		workerDone:    make(chan struct{}),
		startTime:     time.Now(),
	}
	if a.pollInterval <= 0 {
		a.pollInterval = defaultPollInterval
	}
	if a.maxSwitchWait <= 0 {
		a.maxSwitchWait = defaultMaxSwitchWait
	}
	if a.publisher == nil {
		a.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		a.logger = *cfg.Logger
	} else {
		a.logger = zerolog.Nop()
	}
	var ctx context.Context
	ctx, a.workerCancel = context.WithCancel(context.Background())
	go a.runWorker(ctx)
	return a
}
