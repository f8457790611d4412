package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("BTSIM_CONFIG", "")
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 50*time.Millisecond, c.Sim.Tick)
	assert.Equal(t, 4, c.Sim.Scenarios)
	assert.Equal(t, int64(1), c.Sim.Seed)
	assert.Equal(t, 2, c.Runner.Shards)
	assert.False(t, c.Server.Enabled)
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr)
	assert.NoError(t, c.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
sim:
  tick: 20ms
  ticks: 500
  guard_tree: trees/custom.yaml
server:
  enabled: true
  send_buffer: 4
`), 0o600))
	t.Setenv("BTSIM_SIM_SCENARIOS", "9")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 20*time.Millisecond, c.Sim.Tick)
	assert.Equal(t, 500, c.Sim.Ticks)
	assert.Equal(t, "trees/custom.yaml", c.Sim.GuardTree)
	assert.Equal(t, 9, c.Sim.Scenarios)
	assert.True(t, c.Server.Enabled)
	assert.Equal(t, 4, c.Server.SendBuffer)
}

func TestLoadFromEnvPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "btsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runner:\n  shards: 6\n"), 0o600))
	t.Setenv("BTSIM_CONFIG", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, c.Runner.Shards)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(*Config){
		"bad level":      func(c *Config) { c.Log.Level = "loud" },
		"zero tick":      func(c *Config) { c.Sim.Tick = 0 },
		"negative ticks": func(c *Config) { c.Sim.Ticks = -1 },
		"no scenarios":   func(c *Config) { c.Sim.Scenarios = 0 },
		"no shards":      func(c *Config) { c.Runner.Shards = 0 },
		"server no addr": func(c *Config) { c.Server.Enabled = true; c.Server.Addr = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}
