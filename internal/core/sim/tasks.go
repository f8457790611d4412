package sim

import (
	"github.com/zeusync/behave/internal/core/bt"
)

// Blackboard keys written by the world tasks.
const (
	KeyCurrentWaypoint = "current_waypoint"
	KeyClosestWaypoint = "closest_waypoint"
	KeyWeapon          = "weapon"
	KeyWeaponPosition  = "weapon_position"
)

// MoveTo walks an actor to a target and succeeds once it is within
// stopping distance. The target is either a live actor, followed as it
// moves, or a position read from the blackboard when the run starts.
type MoveTo struct {
	Self     *Actor
	Target   *Actor
	Key      string
	Speed    float64
	Stopping float64

	pos bt.Vec3
}

func (m *MoveTo) Enter(bb *bt.Blackboard) {
	m.Self.Speed = m.Speed
	m.Self.StoppingDistance = m.Stopping
	m.pos = bb.Vector(m.Key)
}

func (m *MoveTo) Update(*bt.Blackboard) bt.Status {
	if m.Target != nil {
		m.pos = m.Target.Pos
	}
	if d, ok := m.Self.Destination(); !ok || !d.Near(m.pos, 0.1) {
		m.Self.SetDestination(m.pos)
	}
	if m.Self.Pos.Dist(m.pos) <= m.Stopping {
		return bt.StatusSuccess
	}
	return bt.StatusRunning
}

// Wait runs for Seconds of simulated time.
type Wait struct {
	World   *World
	Seconds float64

	elapsed float64
}

func (t *Wait) Enter(*bt.Blackboard) { t.elapsed = 0 }

func (t *Wait) Update(*bt.Blackboard) bt.Status {
	t.elapsed += t.World.Delta()
	if t.elapsed < t.Seconds {
		return bt.StatusRunning
	}
	return bt.StatusSuccess
}

// Animate crossfades to Clip. It runs while the request is issued and
// succeeds once the clip is playing or another blend is in progress. Force
// restarts the clip on success.
type Animate struct {
	Self  *Actor
	Clip  string
	Fade  float64
	Force bool
}

func (t *Animate) Update(*bt.Blackboard) bt.Status {
	anim := &t.Self.Anim
	if !anim.InTransition() && anim.Current() != t.Clip {
		anim.CrossFade(t.Clip, t.Fade)
		return bt.StatusRunning
	}
	if t.Force {
		anim.Play(t.Clip)
	}
	return bt.StatusSuccess
}

// SetHeader shows Text above the actor.
type SetHeader struct {
	Self *Actor
	Text string
}

func (t *SetHeader) Update(*bt.Blackboard) bt.Status {
	t.Self.Header = t.Text
	return bt.StatusSuccess
}

// LookFor succeeds when Target is inside the actor's view cone, closer than
// Distance and not hidden by smoke.
type LookFor struct {
	World    *World
	Self     *Actor
	Target   *Actor
	FOV      float64
	Distance float64
}

func (t *LookFor) Update(*bt.Blackboard) bt.Status {
	if t.Target == nil || !t.Target.Enabled {
		return bt.StatusFailure
	}
	to := t.Target.Pos.Sub(t.Self.Pos)
	if t.Self.Facing.Angle(to) > t.FOV {
		return bt.StatusFailure
	}
	if to.Len() > t.Distance {
		return bt.StatusFailure
	}
	if !t.World.LineOfSight(t.Self.Pos, t.Target.Pos) {
		return bt.StatusFailure
	}
	return bt.StatusSuccess
}

// NextWaypoint advances to the next waypoint each time a run starts and
// stores it under KeyCurrentWaypoint.
type NextWaypoint struct {
	Waypoints []bt.Vec3

	idx int
}

func NewNextWaypoint(waypoints []bt.Vec3) *NextWaypoint {
	return &NextWaypoint{Waypoints: waypoints, idx: -1}
}

func (t *NextWaypoint) Enter(bb *bt.Blackboard) {
	if len(t.Waypoints) == 0 {
		return
	}
	t.idx = (t.idx + 1) % len(t.Waypoints)
	bb.Set(KeyCurrentWaypoint, bt.Vector(t.Waypoints[t.idx]))
}

func (t *NextWaypoint) Update(*bt.Blackboard) bt.Status {
	if len(t.Waypoints) == 0 {
		return bt.StatusFailure
	}
	return bt.StatusSuccess
}

// ClosestWaypoint stores the spot nearest to the actor under
// KeyClosestWaypoint.
type ClosestWaypoint struct {
	Self  *Actor
	Spots []bt.Vec3
}

func (t *ClosestWaypoint) Enter(bb *bt.Blackboard) {
	if len(t.Spots) == 0 {
		return
	}
	closest := t.Spots[0]
	for _, s := range t.Spots[1:] {
		if t.Self.Pos.Sub(s).LenSq() < t.Self.Pos.Sub(closest).LenSq() {
			closest = s
		}
	}
	bb.Set(KeyClosestWaypoint, bt.Vector(closest))
}

func (t *ClosestWaypoint) Update(*bt.Blackboard) bt.Status {
	if len(t.Spots) == 0 {
		return bt.StatusFailure
	}
	return bt.StatusSuccess
}

// PickUpWeapon walks to the world's weapon and equips it. The weapon is
// published under KeyWeapon for Attack.
type PickUpWeapon struct {
	World    *World
	Self     *Actor
	Speed    float64
	Stopping float64

	move     *bt.Leaf
	weapon   *Weapon
	equipped bool
}

func (t *PickUpWeapon) Enter(bb *bt.Blackboard) {
	if t.move == nil {
		t.move = bt.NewLeaf("move_to_weapon", &MoveTo{
			Self:     t.Self,
			Key:      KeyWeaponPosition,
			Speed:    t.Speed,
			Stopping: t.Stopping,
		})
	}
	t.move.SetBlackboard(bb)

	if t.weapon == nil {
		t.weapon = t.World.Weapon
	}
	t.equipped = false
	if t.weapon != nil {
		t.equipped = t.weapon.Holder == t.Self.Name
		bb.Set(KeyWeaponPosition, bt.Vector(t.weapon.Pos))
	}
	bb.Set(KeyWeapon, bt.Handle(t.weapon))
}

func (t *PickUpWeapon) Update(*bt.Blackboard) bt.Status {
	if t.equipped {
		return bt.StatusSuccess
	}
	if t.weapon == nil {
		return bt.StatusFailure
	}
	if t.move.Tick() != bt.StatusSuccess {
		return bt.StatusRunning
	}
	t.weapon.Holder = t.Self.Name
	t.weapon.Pos = t.Self.Pos
	t.equipped = true
	return bt.StatusSuccess
}

func (t *PickUpWeapon) Exit(*bt.Blackboard) {
	if t.move != nil && t.move.Started() {
		t.move.Abort()
	}
}

// Attack hits Target with the weapon stored under Key.
type Attack struct {
	Target *Actor
	Key    string

	weapon *Weapon
}

func (t *Attack) Enter(bb *bt.Blackboard) { t.weapon = bt.Get[*Weapon](bb, t.Key) }

func (t *Attack) Exit(*bt.Blackboard) { t.weapon = nil }

func (t *Attack) Update(*bt.Blackboard) bt.Status {
	if t.weapon == nil || t.Target == nil || t.Target.Health == nil {
		return bt.StatusFailure
	}
	t.Target.Health.Damage(t.weapon.Damage)
	return bt.StatusSuccess
}

// Disable switches Target off for Seconds and back on when the run ends.
type Disable struct {
	World   *World
	Target  *Actor
	Seconds float64

	timer float64
}

func (t *Disable) Enter(*bt.Blackboard) {
	t.Target.Enabled = false
	t.timer = 0
}

func (t *Disable) Exit(*bt.Blackboard) { t.Target.Enabled = true }

func (t *Disable) Update(*bt.Blackboard) bt.Status {
	if t.timer >= t.Seconds {
		return bt.StatusSuccess
	}
	t.timer += t.World.Delta()
	return bt.StatusRunning
}

// OnDamaged succeeds when Health dropped since the previous run ended.
type OnDamaged struct {
	Health *Health

	last float64
}

func (t *OnDamaged) Exit(*bt.Blackboard) { t.last = t.Health.Points() }

func (t *OnDamaged) Update(*bt.Blackboard) bt.Status {
	if t.last > t.Health.Points() {
		return bt.StatusSuccess
	}
	return bt.StatusFailure
}

// SpawnSmoke drops a smoke cloud on At.
type SpawnSmoke struct {
	World *World
	At    *Actor
}

func (t *SpawnSmoke) Update(*bt.Blackboard) bt.Status {
	t.World.AddSmoke(t.At.Pos)
	return bt.StatusSuccess
}
