package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	require.Equal(t, Defaults(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := "dead-threshold-seconds: 120\nmax-retries: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg := Load(dir)
	require.Equal(t, 120, cfg.DeadThresholdSeconds)
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, Defaults().LeaseSeconds, cfg.LeaseSeconds)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "dead-threshold-seconds: 120\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("AQUA_DEAD_THRESHOLD", "99")
	cfg := Load(dir)
	require.Equal(t, 99, cfg.DeadThresholdSeconds)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, 300e9, float64(cfg.DeadThreshold()))
	require.Equal(t, 1800e9, float64(cfg.ClaimTimeout()))
	require.Equal(t, 30e9, float64(cfg.LeaseDuration()))
}
