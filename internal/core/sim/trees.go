package sim

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/zeusync/behave/internal/core/bt"
)

//go:embed trees/guard.yaml
var guardYAML []byte

// Guard tuning shared by the tree and its sensors.
const (
	GuardViewDistance = 5.0
	GuardStopping     = 1.0
	AllySpeed         = 3.0
	AllyKeepDistance  = 1.0
	DisableSeconds    = 3.0
	StunnedHeader     = "Stunned"
)

// GuardDefinition parses the built-in guard tree.
func GuardDefinition() (*bt.Definition, error) {
	return bt.LoadYAML(bytes.NewReader(guardYAML))
}

// NewGuard builds the guard agent of w from def. A nil def uses the built-in
// guard tree.
func NewGuard(w *World, def *bt.Definition, opts ...bt.Option) (*Agent, error) {
	if def == nil {
		var err error
		if def, err = GuardDefinition(); err != nil {
			return nil, err
		}
	}
	tree, err := def.Tree(NewRegistry(w, w.Guard), append([]bt.Option{bt.WithName("guard")}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("build guard tree: %w", err)
	}
	bb := tree.Blackboard()
	bb.Set("view_distance", bt.Number(GuardViewDistance))
	bb.Set("stopping_distance", bt.Number(GuardStopping))

	a := NewAgent(w.Guard, tree, NewDistanceSensor(w.Guard, w.Player, "player_distance"))
	a.abortHeader = StunnedHeader
	return a, nil
}

// NewAlly builds the ally agent of w. The ally shadows the player and,
// when the player gets hurt, runs for cover and smokes out the guard.
func NewAlly(w *World, opts ...bt.Option) *Agent {
	self, player, guard := w.Ally, w.Player, w.Guard
	leaf := func(name string, task bt.Task) bt.Node { return bt.NewLeaf(name, task) }
	anim := func(name, clip string, fade float64) bt.Node {
		return leaf(name, &Animate{Self: self, Clip: clip, Fade: fade})
	}
	header := func(name, text string) bt.Node { return leaf(name, &SetHeader{Self: self, Text: text}) }
	near := func() bool { return self.Pos.Sub(player.Pos).LenSq() <= AllyKeepDistance*AllyKeepDistance }

	cover := bt.NewSequence("take_cover",
		leaf("player_hurt", &OnDamaged{Health: player.Health}),
		leaf("closest_cover", &ClosestWaypoint{Self: self, Spots: w.HidingSpots}),
		anim("run", ClipRun, 0.1),
		header("header_cover", "Moving to cover"),
		leaf("go_to_cover", &MoveTo{Self: self, Key: KeyClosestWaypoint, Speed: AllySpeed * 1.5, Stopping: AllyKeepDistance}),
		anim("throw", ClipThrow, 0),
		header("header_smoke", "Throwing smoke"),
		leaf("wind_up", &Wait{World: w, Seconds: 1}),
		leaf("smoke_guard", &SpawnSmoke{World: w, At: guard}),
		leaf("stun_guard", &Disable{World: w, Target: guard, Seconds: DisableSeconds}),
		anim("hide", ClipCrouchIdle, 0.1),
	)
	follow := bt.NewParallel("follow",
		header("header_follow", "Following player"),
		bt.NewBranch("pose", bt.Cond(near),
			anim("crouch", ClipCrouchIdle, 0.1),
			anim("sneak", ClipCrouchWalk, 0.1),
		),
		bt.NewBranch("keep_up", bt.Cond(func() bool { return !near() }),
			leaf("follow_player", &MoveTo{Self: self, Target: player, Speed: AllySpeed, Stopping: AllyKeepDistance}),
			nil,
		),
	)
	root := bt.NewFallback("ally", cover, follow)

	tree := bt.NewTree(root, append([]bt.Option{bt.WithName("ally")}, opts...)...)
	return NewAgent(self, tree, NewHealthSensor(player, "player_health"))
}
