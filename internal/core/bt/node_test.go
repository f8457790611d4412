package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Idle", StatusIdle.String())
	assert.Equal(t, "Running", StatusRunning.String())
	assert.Equal(t, "Failure", StatusFailure.String())
	assert.Equal(t, "Success", StatusSuccess.String())
	assert.Equal(t, "Status(9)", Status(9).String())

	assert.False(t, StatusIdle.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusFailure.Terminal())
	assert.True(t, StatusSuccess.Terminal())

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("Running")))
	assert.Equal(t, StatusRunning, s)
	assert.Error(t, s.UnmarshalText([]byte("Paused")))
}

func TestRunningDoesNotReenter(t *testing.T) {
	leaf, p := newScripted("walk", StatusRunning, StatusRunning, StatusRunning, StatusSuccess)

	assert.Equal(t, []Status{StatusRunning, StatusRunning, StatusRunning}, ticks(leaf, 3))
	assert.Equal(t, 1, p.enters)
	assert.Equal(t, 0, p.exits)
	assert.True(t, leaf.Started())

	assert.Equal(t, StatusSuccess, leaf.Tick())
	assert.Equal(t, 1, p.enters)
	assert.Equal(t, 1, p.exits)
	assert.False(t, leaf.Started())
}

func TestTerminalResultReenters(t *testing.T) {
	leaf, p := newScripted("ping", StatusSuccess, StatusFailure, StatusSuccess)

	ticks(leaf, 3)
	assert.Equal(t, 3, p.enters)
	assert.Equal(t, 3, p.exits)
}

func TestAbortClearsStarted(t *testing.T) {
	leaf, p := newScripted("walk", StatusRunning)

	leaf.Tick()
	require.True(t, leaf.Started())

	leaf.Abort()
	assert.False(t, leaf.Started())
	assert.Equal(t, 1, p.exits)

	leaf.Tick()
	assert.Equal(t, 2, p.enters)
}

func TestAbortOnIdleNodeStillExits(t *testing.T) {
	leaf, p := newScripted("idle")
	leaf.Abort()
	leaf.Abort()
	assert.Equal(t, 2, p.exits)
	assert.False(t, leaf.Started())
}

func TestActionNode(t *testing.T) {
	calls := 0
	a := NewAction("count", func() Status {
		calls++
		return StatusSuccess
	})
	assert.Equal(t, StatusSuccess, a.Tick())
	assert.Equal(t, 1, calls)
	assert.Equal(t, "count", a.Name())

	assert.Equal(t, StatusFailure, NewAction("unbound", nil).Tick())
	assert.Equal(t, StatusFailure, NewLeaf("empty", nil).Tick())
}

func TestTaskFuncSeesBlackboard(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("ready", Bool(true))
	leaf := NewLeaf("check", TaskFunc(func(bb *Blackboard) Status {
		if bb.Bool("ready") {
			return StatusSuccess
		}
		return StatusFailure
	}))
	leaf.SetBlackboard(bb)
	assert.Equal(t, StatusSuccess, leaf.Tick())
	assert.Same(t, bb, leaf.Blackboard())
}
