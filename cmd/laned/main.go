package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"laned/internal/arbiter"
	"laned/internal/config"
	"laned/internal/httpapi"
	"laned/internal/probe"
	"laned/internal/registry"
	"laned/internal/reload"
)

// Defaults applied when neither config file nor flags specify a value.
const (
	defaultAddr          = ":8080"
	defaultWarmupTimeout = 120 * time.Second
	defaultPollInterval  = 5 * time.Second
	defaultMaxSwitchWait = 120 * time.Second
	defaultProbeTimeout  = 2 * time.Second
)

type options struct {
	configPath    string
	addr          string
	defaultLane   string
	warmupTimeout time.Duration
	strictWarmup  bool
	logLevel      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "laned:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "laned",
		Short:         "Exclusive inference-lane arbiter daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "laned.yaml", "Path to config file (.yaml/.json/.toml)")
	f.StringVar(&opts.addr, "addr", defaultAddr, "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.defaultLane, "default-lane", "", "Lane warmed up at startup")
	f.DurationVar(&opts.warmupTimeout, "warmup-timeout", defaultWarmupTimeout, "Deadline for the startup warmup switch")
	f.BoolVar(&opts.strictWarmup, "strict-warmup", false, "Abort startup when warmup fails")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	lvl, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Str("service", "laned").Logger()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", opts.configPath, err)
	}
	applyFlagOverrides(cmd, opts, &cfg)
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	reg, err := registry.New(cfg.Lanes)
	if err != nil {
		return fmt.Errorf("build lane registry: %w", err)
	}
	trigger, err := newTrigger(cfg.Reload)
	if err != nil {
		return err
	}
	prober := probe.NewHTTPProber(secondsOr(cfg.ProbeTimeoutSec, defaultProbeTimeout))

	arb := arbiter.NewWithConfig(arbiter.Config{
		Registry:      reg,
		Prober:        prober,
		Trigger:       trigger,
		PollInterval:  secondsOr(cfg.PollIntervalSec, defaultPollInterval),
		MaxSwitchWait: secondsOr(cfg.MaxSwitchWaitSec, defaultMaxSwitchWait),
		StrictNoop:    cfg.StrictNoop,
		Logger:        &logger,
	})
	defer arb.Close()

	baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DefaultLane != "" {
		timeout := opts.warmupTimeout
		if !cmd.Flags().Changed("warmup-timeout") && cfg.WarmupTimeoutSec > 0 {
			timeout = time.Duration(cfg.WarmupTimeoutSec) * time.Second
		}
		strict := cfg.WarmupStrict || opts.strictWarmup
		if err := arb.Warmup(baseCtx, cfg.DefaultLane, timeout, strict); err != nil {
			return fmt.Errorf("warmup lane %s: %w", cfg.DefaultLane, err)
		}
	}

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(baseCtx)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(arb)}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("default_lane", cfg.DefaultLane).Msg("laned listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-baseCtx.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// applyFlagOverrides lets explicitly-set flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, opts *options, cfg *config.Config) {
	if cmd.Flags().Changed("addr") || cfg.Addr == "" {
		cfg.Addr = opts.addr
	}
	if cmd.Flags().Changed("default-lane") {
		cfg.DefaultLane = opts.defaultLane
	}
	if cmd.Flags().Changed("strict-warmup") {
		cfg.WarmupStrict = opts.strictWarmup
	}
}

func newTrigger(rc config.ReloadConfig) (reload.Trigger, error) {
	switch rc.Kind {
	case "", "none":
		return reload.Noop{}, nil
	case "command":
		if len(rc.Command) == 0 {
			return nil, fmt.Errorf("reload kind=command requires a command")
		}
		return reload.Command{Name: rc.Command[0], Args: rc.Command[1:]}, nil
	case "http":
		if rc.URL == "" {
			return nil, fmt.Errorf("reload kind=http requires a url")
		}
		return reload.NewHTTP(rc.URL), nil
	default:
		return nil, fmt.Errorf("unknown reload kind: %s", rc.Kind)
	}
}

func secondsOr(sec int, def time.Duration) time.Duration {
	if sec <= 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}
