package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/danmuck/emctl/internal/logging"
	"github.com/danmuck/emctl/internal/platform"
	"github.com/rs/zerolog"
)

type fileOverride struct {
	Fault  string `toml:"fault"`
	Action string `toml:"action"`
}

type fileConfig struct {
	LogLevel            string         `toml:"log_level"`
	MetricsAddr         string         `toml:"metrics_addr"`
	WatchdogDirectReset bool           `toml:"watchdog_direct_reset"`
	SafetyECC           bool           `toml:"safety_ecc"`
	FPDWatchdog         bool           `toml:"fpd_watchdog"`
	MaxRestarts         int            `toml:"max_restarts"`
	Inject              []string       `toml:"inject"`
	Overrides           []fileOverride `toml:"override"`
}

type serviceConfig struct {
	LogLevel    zerolog.Level
	LogLevelSet bool
	MetricsAddr string
	Dispatch    dispatch.Config
	Recovery    platform.RecoveryConfig
	Inject      []fault.ID
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		LogLevel: zerolog.InfoLevel,
		Dispatch: dispatch.DefaultConfig(),
		Recovery: platform.DefaultRecoveryConfig(),
	}
}

func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load emctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return serviceConfig{}, fmt.Errorf("load emctl config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return serviceConfig{}, fmt.Errorf("parse log_level: %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
		cfg.LogLevelSet = true
	}

	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if meta.IsDefined("watchdog_direct_reset") {
		cfg.Dispatch.WatchdogDirectReset = raw.WatchdogDirectReset
	}

	if meta.IsDefined("safety_ecc") {
		cfg.Dispatch.SafetyECC = raw.SafetyECC
	}

	if meta.IsDefined("fpd_watchdog") {
		cfg.Recovery.WatchdogPresent = raw.FPDWatchdog
	}

	if meta.IsDefined("max_restarts") {
		if raw.MaxRestarts < 0 {
			return serviceConfig{}, fmt.Errorf("parse max_restarts: negative value %d", raw.MaxRestarts)
		}
		cfg.Recovery.MaxRestarts = raw.MaxRestarts
	}

	if meta.IsDefined("inject") {
		ids, err := parseFaultList(raw.Inject)
		if err != nil {
			return serviceConfig{}, fmt.Errorf("parse inject: %w", err)
		}
		cfg.Inject = ids
	}

	if meta.IsDefined("override") {
		overrides, err := parseOverrides(raw.Overrides)
		if err != nil {
			return serviceConfig{}, err
		}
		cfg.Dispatch.Overrides = overrides
	}

	return cfg, nil
}

func parseOverrides(in []fileOverride) ([]dispatch.Override, error) {
	out := make([]dispatch.Override, 0, len(in))
	for i, o := range in {
		id, err := fault.ParseID(o.Fault)
		if err != nil {
			return nil, fmt.Errorf("parse override[%d]: %w", i, err)
		}
		act := strings.TrimSpace(o.Action)
		if act == "" {
			return nil, fmt.Errorf("parse override[%d]: missing action", i)
		}
		out = append(out, dispatch.Override{ID: id, Action: act})
	}
	return out, nil
}

func parseFaultList(in []string) ([]fault.ID, error) {
	out := make([]fault.ID, 0, len(in))
	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := fault.ParseID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
