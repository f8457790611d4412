package bt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guard struct{ name string }

func TestBlackboardSetGet(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("speed", Number(3.5))
	bb.Set("alerted", Bool(true))
	bb.Set("state", Text("patrol"))
	bb.Set("target", Vector(Vec3{X: 1, Z: 2}))

	assert.Equal(t, 3.5, bb.Number("speed"))
	assert.True(t, bb.Bool("alerted"))
	assert.Equal(t, "patrol", bb.Text("state"))
	assert.Equal(t, Vec3{X: 1, Z: 2}, bb.Vector("target"))
	assert.Equal(t, []string{"alerted", "speed", "state", "target"}, bb.Keys())
	assert.Equal(t, 4, bb.Len())
}

func TestBlackboardMismatchYieldsZero(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("k", Int(5))

	assert.Equal(t, "", Get[string](bb, "k"))
	assert.False(t, Get[bool](bb, "k"))
	assert.Equal(t, Vec3{}, Get[Vec3](bb, "k"))
	assert.Equal(t, 5, Get[int](bb, "k"))
	assert.Equal(t, int64(5), Get[int64](bb, "k"))
	assert.Equal(t, float32(5), Get[float32](bb, "k"))

	assert.Equal(t, 0.0, bb.Number("missing"))
	assert.Nil(t, bb.Handle("k"))

	bb.Set("neg", Int(-1))
	assert.Equal(t, uint(0), Get[uint](bb, "neg"))
	assert.Equal(t, uint8(0), Get[uint8](bb, "neg"))
	assert.Equal(t, -1, Get[int](bb, "neg"))

	bb.Set("huge", Number(1e300))
	assert.Equal(t, int8(0), Get[int8](bb, "huge"))
	assert.Equal(t, int64(0), Get[int64](bb, "huge"))
	assert.Equal(t, uint64(0), Get[uint64](bb, "huge"))
	assert.Equal(t, float32(0), Get[float32](bb, "huge"))
	assert.Equal(t, 1e300, bb.Number("huge"))

	bb.Set("edge", Int(256))
	assert.Equal(t, uint8(0), Get[uint8](bb, "edge"))
	assert.Equal(t, uint16(256), Get[uint16](bb, "edge"))
	bb.Set("edge", Int(-128))
	assert.Equal(t, int8(-128), Get[int8](bb, "edge"))

	bb.Set("frac", Number(2.5))
	assert.Equal(t, 0, Get[int](bb, "frac"))
	assert.Equal(t, float32(2.5), Get[float32](bb, "frac"))

	bb.Set("nan", Number(math.NaN()))
	assert.Equal(t, 0, Get[int](bb, "nan"))
}

func TestBlackboardEmptyValueDeletes(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("target", Handle(&guard{name: "g1"}))
	require.True(t, bb.Has("target"))

	bb.Set("target", Value{})
	assert.False(t, bb.Has("target"))

	bb.Set("target", Handle(&guard{name: "g2"}))
	var none *guard
	bb.Set("target", Handle(none))
	assert.False(t, bb.Has("target"))
}

func TestBlackboardEmptyValueInsertsAbsentKey(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("weapon", Value{})

	assert.True(t, bb.Has("weapon"))
	assert.Equal(t, 1, bb.Len())
	assert.Equal(t, []string{"weapon"}, bb.Keys())
	assert.Nil(t, bb.Handle("weapon"))
	assert.Equal(t, 0, Get[int](bb, "weapon"))

	bb.Set("weapon", Value{})
	assert.False(t, bb.Has("weapon"))
	assert.Zero(t, bb.Len())
}

func TestBlackboardHandle(t *testing.T) {
	bb := NewBlackboard()
	g := &guard{name: "g1"}
	bb.Set("target", Handle(g))

	assert.Same(t, g, bb.Handle("target"))
	assert.Same(t, g, Get[*guard](bb, "target"))
	assert.Nil(t, Get[*Blackboard](bb, "target"))

	v, ok := bb.Lookup("target")
	require.True(t, ok)
	assert.Equal(t, KindHandle, v.Kind())
}

func TestBlackboardNilReceiver(t *testing.T) {
	var bb *Blackboard
	assert.NotPanics(t, func() {
		bb.Set("k", Int(1))
		bb.Delete("k")
	})
	assert.False(t, bb.Has("k"))
	assert.Zero(t, bb.Len())
	assert.Empty(t, bb.Keys())
	assert.Empty(t, bb.Snapshot())
	assert.Equal(t, 0, Get[int](bb, "k"))
}

func TestBlackboardSnapshot(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("health", Number(40))
	bb.Set("name", Text("ally"))

	snap := bb.Snapshot()
	assert.Equal(t, map[string]any{"health": 40.0, "name": "ally"}, snap)

	snap["health"] = 100.0
	assert.Equal(t, 40.0, bb.Number("health"))
}

func TestValueKinds(t *testing.T) {
	assert.True(t, Value{}.IsEmpty())
	assert.Equal(t, "none", Value{}.Kind().String())
	assert.Equal(t, "<empty>", Value{}.String())
	assert.Equal(t, KindNumber, Int(3).Kind())
	assert.Equal(t, "3", Int(3).String())
	assert.Equal(t, KindText, Text("").Kind())
	assert.False(t, Text("").IsEmpty())
	assert.True(t, Handle(nil).IsEmpty())
}

func TestVec3(t *testing.T) {
	a := Vec3{X: 3, Y: 0, Z: 4}
	assert.InDelta(t, 5.0, a.Len(), 1e-9)
	assert.InDelta(t, 1.0, a.Normalize().Len(), 1e-9)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.InDelta(t, 5.0, Vec3{}.Dist(a), 1e-9)
	assert.InDelta(t, 90.0, Vec3{X: 1}.Angle(Vec3{Z: 1}), 1e-9)
	assert.True(t, a.Near(Vec3{X: 3, Z: 4.05}, 0.1))
	assert.Equal(t, Vec3{X: 4, Y: 1, Z: 5}, a.Add(Vec3{X: 1, Y: 1, Z: 1}))
}
