package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core), LevelDebug)

	l.With(String("tree", "guard")).Warn("predicate fault",
		Int("tick", 3),
		Duration("took", time.Millisecond),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "predicate fault", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "guard", ctx["tree"])
	assert.EqualValues(t, 3, ctx["tick"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestSetLevelFilters(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core), LevelDebug)

	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())

	l.Info("dropped")
	l.Log(LevelError, "kept")
	l.Log(LevelSilent, "never")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestProvideFallsBackToNop(t *testing.T) {
	assert.NotNil(t, Provide())
	assert.NotPanics(t, func() { Nop().Error("ignored", Any("k", 1)) })
}
