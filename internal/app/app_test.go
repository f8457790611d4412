package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/core/runner"
	"github.com/zeusync/behave/internal/server"
)

func testConfig() config.Config {
	return config.Config{
		Log:    config.LogConfig{Level: "error"},
		Sim:    config.SimConfig{Tick: time.Millisecond, Scenarios: 3, Seed: 7},
		Runner: config.RunnerConfig{Shards: 2},
	}
}

func newApp(t *testing.T, cfg config.Config, srv *server.Server) *App {
	t.Helper()
	return New(cfg, log.Nop(), bus.New(), runner.New(cfg.Runner.Shards, log.Nop()), srv)
}

func TestRunStopsAtTickLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.Ticks = 5
	a := newApp(t, cfg, nil)
	require.NoError(t, a.Populate())
	assert.Equal(t, 3, a.Runner().Len())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	assert.Equal(t, uint64(5), a.Runner().Steps())
	assert.ErrorIs(t, a.Runner().Step(ctx, 0.1), runner.ErrClosed)
}

func TestRunStopsOnCancel(t *testing.T) {
	a := newApp(t, testConfig(), nil)
	require.NoError(t, a.Populate())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.Runner().Steps() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestGuardTreeOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: idle
nodes:
  idle:
    type: action
    action: wait
    params:
      seconds: 1
`), 0o600))

	cfg := testConfig()
	cfg.Sim.GuardTree = path
	a := newApp(t, cfg, nil)
	def, err := a.GuardDefinition()
	require.NoError(t, err)
	assert.Equal(t, "idle", def.Root)
	require.NoError(t, a.Populate())

	cfg.Sim.GuardTree = filepath.Join(dir, "absent.yaml")
	_, err = newApp(t, cfg, nil).GuardDefinition()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("root: idle\nnodes:\n  idle:\n    type: teleport\n"), 0o600))
	cfg.Sim.GuardTree = path
	assert.ErrorIs(t, newApp(t, cfg, nil).Populate(), bt.ErrUnknownNodeType)
}

func TestRunStreamsFrames(t *testing.T) {
	sc := server.DefaultServerConfig()
	sc.ListenAddr = "127.0.0.1:0"
	srv, err := server.NewServer(sc, log.Nop())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Sim.Scenarios = 1
	cfg.Sim.Tick = 5 * time.Millisecond
	a := newApp(t, cfg, srv)
	require.NoError(t, a.Populate())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, time.Millisecond)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Contains(t, frame, "scenario")
	assert.Contains(t, frame, "agents")
}

func TestDescribe(t *testing.T) {
	out, err := newApp(t, testConfig(), nil).Describe()
	require.NoError(t, err)
	assert.Contains(t, out, "engage_or_patrol (fallback)")
	assert.Contains(t, out, "take_cover (sequence)")
}
