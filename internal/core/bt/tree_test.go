package bt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTreeBindsBlackboard(t *testing.T) {
	leaf, p := newScripted("leaf")
	bb := NewBlackboard()
	tree := NewTree(NewSequence("root", NewInvert("inv", leaf)), WithBlackboard(bb), WithLogger(log.Nop()))

	tree.Tick()
	assert.Same(t, bb, tree.Blackboard())
	assert.Same(t, bb, p.seen)
	assert.Equal(t, "root", tree.Name())
	assert.NotEmpty(t, tree.ID())
}

func TestTreeCreatesBlackboard(t *testing.T) {
	leaf, p := newScripted("leaf")
	tree := NewTree(leaf, WithName("solo"))
	tree.Tick()
	require.NotNil(t, tree.Blackboard())
	assert.Same(t, tree.Blackboard(), p.seen)
	assert.Equal(t, "solo", tree.Name())
}

func TestTreeTickCountsAndLast(t *testing.T) {
	leaf, _ := newScripted("walk", StatusRunning, StatusSuccess)
	tree := NewTree(leaf)

	assert.Equal(t, StatusIdle, tree.Last())
	assert.Equal(t, StatusRunning, tree.Tick())
	assert.Equal(t, StatusSuccess, tree.Tick())
	assert.Equal(t, uint64(2), tree.Ticks())
	assert.Equal(t, StatusSuccess, tree.Last())
}

func TestTreeWithoutRootFails(t *testing.T) {
	tree := NewTree(nil)
	assert.Equal(t, StatusFailure, tree.Tick())
	assert.NotPanics(t, tree.Abort)
}

func TestTreeHistoryRing(t *testing.T) {
	leaf, _ := newScripted("x", StatusRunning, StatusRunning, StatusFailure, StatusSuccess)
	tree := NewTree(leaf, WithHistory(3), WithClock(fakeClock(time.Millisecond)))

	tree.Tick()
	tree.Tick()
	assert.Len(t, tree.History(), 2)

	tree.Tick()
	tree.Tick()
	hist := tree.History()
	require.Len(t, hist, 3)
	assert.Equal(t, []uint64{2, 3, 4}, []uint64{hist[0].Tick, hist[1].Tick, hist[2].Tick})
	assert.Equal(t, StatusSuccess, hist[2].Status)
	assert.Equal(t, time.Millisecond, hist[2].Duration)

	assert.Nil(t, NewTree(leaf).History())
}

func TestTreePublishesTickAndAbort(t *testing.T) {
	b := bus.New()
	var types []string
	var last TickEvent
	_, err := b.Subscribe(bus.Wildcard, func(ev bus.Event) error {
		types = append(types, ev.Type())
		if te, ok := ev.Data().(TickEvent); ok {
			last = te
		}
		return nil
	})
	require.NoError(t, err)

	leaf, p := newScripted("walk", StatusRunning)
	tree := NewTree(leaf, WithBus(b))

	tree.Tick()
	tree.Abort()

	assert.Equal(t, []string{EventTick, EventAbort}, types)
	assert.Equal(t, tree.ID(), last.TreeID)
	assert.Equal(t, uint64(1), last.Tick)
	assert.Equal(t, StatusRunning, last.Status)
	assert.Equal(t, StatusIdle, tree.Last())
	assert.Equal(t, 1, p.exits)

	tree.Tick()
	assert.Equal(t, 2, p.enters)
}

func TestAbortResetsWholeTree(t *testing.T) {
	a, _ := newScripted("a", StatusSuccess)
	b, pb := newScripted("b", StatusRunning)
	seq := NewSequence("patrol", a, b)
	rep := NewRepeat("loop", 4, seq)
	tree := NewTree(rep)

	tree.Tick()
	require.True(t, b.Started())
	require.True(t, seq.Started())

	tree.Abort()
	Walk(tree.Root(), func(n Node, _ int) bool {
		type started interface{ Started() bool }
		assert.False(t, n.(started).Started(), n.Name())
		return true
	})
	assert.Equal(t, 0, seq.Cursor())
	assert.Equal(t, 1, pb.exits)
}

func TestWalkAndDescribe(t *testing.T) {
	root := NewSequence("root",
		NewGate("see", Cond(func() bool { return true }), NewAction("attack", nil)),
		NewFallback("cover", NewLeaf("hide", nil), nil),
		NewBranch("moving", nil, NewAction("walk", nil), nil),
	)

	var names []string
	Walk(root, func(n Node, depth int) bool {
		names = append(names, n.Name())
		return n.Name() != "cover"
	})
	assert.Equal(t, []string{"root", "see", "attack", "cover", "moving", "walk"}, names)

	want := "root (sequence)\n" +
		"  see (gate)\n" +
		"    attack (action)\n" +
		"  cover (fallback)\n" +
		"    hide (leaf)\n" +
		"  moving (branch)\n" +
		"    walk (action)\n"
	assert.Equal(t, want, Describe(root))
}
