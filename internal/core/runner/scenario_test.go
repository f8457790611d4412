package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/core/sim"
)

var _ Steppable = (*sim.Scenario)(nil)

func TestManagerRunsScenarios(t *testing.T) {
	m := New(2, log.Nop())
	var scenarios []*sim.Scenario
	for i := 0; i < 6; i++ {
		s, err := sim.NewScenario(sim.WithSeed(int64(i)), sim.WithLogger(log.Nop()))
		require.NoError(t, err)
		require.NoError(t, m.Add(s))
		scenarios = append(scenarios, s)
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, m.Step(context.Background(), 0.05))
	}
	for _, s := range scenarios {
		assert.Equal(t, uint64(100), s.Frame().Tick)
	}

	m.Close()
	for _, s := range scenarios {
		assert.Equal(t, sim.StunnedHeader, s.Frame().Agents[0].Header)
	}
}
