package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Contains(t, cfg.SettingsPath, appDir)
	assert.Equal(t, 30*time.Second, cfg.ClipboardClear)
	assert.Zero(t, cfg.SessionTTL)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvSettings, "/tmp/s.yaml")
	t.Setenv(EnvSites, " /tmp/sites.yaml ")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvClipboardClear, "5s")
	t.Setenv(EnvSessionTTL, "10m")
	t.Setenv(EnvStdin, "yes")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s.yaml", cfg.SettingsPath)
	assert.Equal(t, "/tmp/sites.yaml", cfg.SitesPath)
	assert.Equal(t, DefaultConfig().LockPath, cfg.LockPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ClipboardClear)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.Stdin)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Neg(t *testing.T) {
	tests := map[string]string{
		EnvSettings:       "  ",
		EnvClipboardClear: "soon",
		EnvSessionTTL:     "-1m",
		EnvStdin:          "maybe",
	}
	for env, val := range tests {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), env)
		})
	}
}

func TestBindFlags_Precedence(t *testing.T) {
	t.Setenv(EnvSites, "/env/sites.yaml")
	t.Setenv(EnvLock, "/env/lock")
	cfg, err := FromEnv()
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--sites", "/flag/sites.yaml", "--stdout", "--clear-after", "1m"}))

	assert.Equal(t, "/flag/sites.yaml", cfg.SitesPath, "flag should win over env")
	assert.Equal(t, "/env/lock", cfg.LockPath, "env should win over default")
	assert.Equal(t, DefaultConfig().SettingsPath, cfg.SettingsPath)
	assert.True(t, cfg.Stdout)
	assert.Equal(t, time.Minute, cfg.ClipboardClear)
}

func TestValidate_Neg(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SettingsPath = ""
	cfg.LogLevel = "loud"
	cfg.ClipboardClear = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SettingsPath is required")
	assert.Contains(t, err.Error(), "LogLevel must be one of")
	assert.Contains(t, err.Error(), "ClipboardClear must be positive")
}
