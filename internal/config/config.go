// Package config loads the per-project `.aqua/config.yaml` knobs (spec.md
// §6 "Configuration knobs") and layers AQUA_* environment variable
// overrides on top, matching the teacher's LoadLocalConfigWithEnv idiom
// (internal/config/local_config.go): plain YAML unmarshal of a small
// struct, missing file means built-in defaults rather than an error, env
// vars always win.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the five tunables named in spec.md §6, each with its
// implementation default applied by Defaults before any file or env
// override.
type Config struct {
	DeadThresholdSeconds int `yaml:"dead-threshold-seconds"`
	ClaimTimeoutSeconds  int `yaml:"claim-timeout-seconds"`
	LeaseSeconds         int `yaml:"lease-seconds"`
	StoreBusyTimeoutMS   int `yaml:"store-busy-timeout-ms"`
	MaxRetries           int `yaml:"max-retries"`
}

// Defaults returns the built-in defaults from spec.md §6.
func Defaults() Config {
	return Config{
		DeadThresholdSeconds: 300,
		ClaimTimeoutSeconds:  1800,
		LeaseSeconds:         30,
		StoreBusyTimeoutMS:   5000,
		MaxRetries:           3,
	}
}

func (c Config) DeadThreshold() time.Duration {
	return time.Duration(c.DeadThresholdSeconds) * time.Second
}

func (c Config) ClaimTimeout() time.Duration {
	return time.Duration(c.ClaimTimeoutSeconds) * time.Second
}

func (c Config) LeaseDuration() time.Duration {
	return time.Duration(c.LeaseSeconds) * time.Second
}

// Load reads `.aqua/config.yaml` under aquaDir (the same directory that
// holds aqua.db, see spec.md §6 on-disk layout), falling back to the
// built-in defaults for anything the file doesn't set, then applies
// AQUA_* environment variable overrides on top. A missing or unparsable
// file yields the defaults rather than an error, mirroring
// LoadLocalConfig's "return zero-value, never fail the caller" contract.
func Load(aquaDir string) Config {
	cfg := Defaults()

	path := filepath.Join(aquaDir, "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg Config
		if yaml.Unmarshal(data, &fileCfg) == nil {
			applyNonZero(&cfg, fileCfg)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func applyNonZero(cfg *Config, file Config) {
	if file.DeadThresholdSeconds != 0 {
		cfg.DeadThresholdSeconds = file.DeadThresholdSeconds
	}
	if file.ClaimTimeoutSeconds != 0 {
		cfg.ClaimTimeoutSeconds = file.ClaimTimeoutSeconds
	}
	if file.LeaseSeconds != 0 {
		cfg.LeaseSeconds = file.LeaseSeconds
	}
	if file.StoreBusyTimeoutMS != 0 {
		cfg.StoreBusyTimeoutMS = file.StoreBusyTimeoutMS
	}
	if file.MaxRetries != 0 {
		cfg.MaxRetries = file.MaxRetries
	}
}

// applyEnvOverrides mirrors the teacher's BEADS_SYNC_BRANCH-over-YAML
// pattern, one env var per knob.
func applyEnvOverrides(cfg *Config) {
	if v, ok := envInt("AQUA_DEAD_THRESHOLD"); ok {
		cfg.DeadThresholdSeconds = v
	}
	if v, ok := envInt("AQUA_CLAIM_TIMEOUT"); ok {
		cfg.ClaimTimeoutSeconds = v
	}
	if v, ok := envInt("AQUA_LEASE_SECONDS"); ok {
		cfg.LeaseSeconds = v
	}
	if v, ok := envInt("AQUA_BUSY_TIMEOUT_MS"); ok {
		cfg.StoreBusyTimeoutMS = v
	}
	if v, ok := envInt("AQUA_MAX_RETRIES"); ok {
		cfg.MaxRetries = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
