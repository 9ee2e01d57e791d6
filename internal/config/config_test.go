package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Monitor.PollingInterval)
	assert.Equal(t, 3, cfg.Decision.MaxActionsPerCycle)
	assert.Equal(t, 10, cfg.Network.Nodes)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, ":8000", cfg.API.ListenAddr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
log_level: debug
monitor:
  polling_interval: 2s
network:
  nodes: 25
  event_probability: 0.5
llm:
  provider: openai
  model: gpt-4o
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Monitor.PollingInterval)
	assert.Equal(t, 25, cfg.Network.Nodes)
	assert.Equal(t, 0.5, cfg.Network.EventProbability)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	// Untouched fields keep defaults.
	assert.Equal(t, 0.7, cfg.Decision.ConfidenceThreshold)
	assert.Equal(t, 30*time.Second, cfg.Action.ActionTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NETOPT_LLM_PROVIDER", "openai")
	t.Setenv("NETOPT_LISTEN_ADDR", ":9100")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, ":9100", cfg.API.ListenAddr)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		yaml string
	}{
		{"zero nodes", "network:\n  nodes: 0\n"},
		{"bad probability", "network:\n  event_probability: 1.5\n"},
		{"unknown provider", "llm:\n  provider: bard\n"},
		{"zero window", "feedback:\n  history_window: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
