package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero queue", func(c *Config) { c.TaskQueueCapacity = 0 }},
		{"zero packets", func(c *Config) { c.TUNumberOfPackets = 0 }},
		{"zero sections", func(c *Config) { c.CPUNumberOfSections = 0 }},
		{"zero alpha", func(c *Config) { c.Alpha = 0 }},
		{"alpha above one", func(c *Config) { c.Alpha = 1.5 }},
		{"zero beta", func(c *Config) { c.Beta = 0 }},
		{"negative eta", func(c *Config) { c.Eta = -0.1 }},
		{"negative power", func(c *Config) { c.LocalPower = -1 }},
		{"negative budget", func(c *Config) { c.PowerBudget = -1 }},
		{"drop tolerance above one", func(c *Config) { c.DropTolerance = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_WithEtaAndAlpha_DoNotMutate(t *testing.T) {
	base := DefaultConfig()
	derived := base.WithEta(0.7).WithAlpha(0.9)
	assert.Equal(t, 0.7, derived.Eta)
	assert.Equal(t, 0.9, derived.Alpha)
	assert.Equal(t, DefaultConfig(), base)
}

func TestConfig_AllStates(t *testing.T) {
	cfg := Config{TaskQueueCapacity: 2, TUNumberOfPackets: 1, CPUNumberOfSections: 1}
	states := cfg.AllStates()
	require.Len(t, states, cfg.StateCount())
	assert.Equal(t, State{0, 0, 0}, states[0])
	assert.Equal(t, State{2, 1, 0}, states[len(states)-1])
	for _, s := range states {
		assert.True(t, cfg.Contains(s))
	}
}

func TestConfig_Energy(t *testing.T) {
	cfg := Config{LocalPower: 2, TransmitPower: 0.5}
	assert.Equal(t, 0.0, cfg.Energy(State{3, 0, 0}))
	assert.Equal(t, 2.0, cfg.Energy(State{3, 0, 1}))
	assert.Equal(t, 2.5, cfg.Energy(State{3, 1, 1}))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("task_queue_capacity: 2\nalpha: 0.4\npower_budget: 0.8\n"), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.TaskQueueCapacity)
		assert.Equal(t, 0.4, cfg.Alpha)
		assert.Equal(t, 0.8, cfg.PowerBudget)
		assert.Equal(t, DefaultConfig().Beta, cfg.Beta)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("alfa: 0.4\n"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("beta: 0\n"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
