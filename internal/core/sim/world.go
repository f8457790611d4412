package sim

import (
	"math/rand"

	"github.com/zeusync/behave/internal/core/bt"
)

// Actor is a moving body in the world.
type Actor struct {
	Name             string
	Pos              bt.Vec3
	Facing           bt.Vec3
	Speed            float64
	StoppingDistance float64
	Enabled          bool
	Health           *Health
	Anim             Animator
	Header           string

	dest   bt.Vec3
	moving bool
}

func NewActor(name string, pos bt.Vec3, speed, hp float64) *Actor {
	return &Actor{
		Name:    name,
		Pos:     pos,
		Facing:  bt.Vec3{Z: 1},
		Speed:   speed,
		Enabled: true,
		Health:  NewHealth(hp),
	}
}

// SetDestination makes the actor walk towards p on the following steps.
func (a *Actor) SetDestination(p bt.Vec3) {
	a.dest = p
	a.moving = true
}

// Destination returns the current destination, if any.
func (a *Actor) Destination() (bt.Vec3, bool) { return a.dest, a.moving }

func (a *Actor) Stop() { a.moving = false }

func (a *Actor) DistanceTo(o *Actor) float64 { return a.Pos.Dist(o.Pos) }

// Weapon is a pickup that can be held by one actor.
type Weapon struct {
	Name   string
	Damage float64
	Pos    bt.Vec3
	Holder string
}

// Smoke blocks line of sight while it lasts.
type Smoke struct {
	Pos    bt.Vec3
	Radius float64
	Left   float64
}

// Layout constants of the default world.
const (
	SmokeRadius   = 1.5
	SmokeLifetime = 5.0
	PlayerSpeed   = 2.0
	PlayerHealth  = 100.0
	WeaponDamage  = 10.0
	ArenaHalfSize = 9.0
	playerPathLen = 16
)

// World is the simulated level: a player, the agents, static points of
// interest and transient effects. It advances in fixed steps driven by the
// scenario that owns it.
type World struct {
	Player      *Actor
	Guard       *Actor
	Ally        *Actor
	Waypoints   []bt.Vec3
	HidingSpots []bt.Vec3
	Weapon      *Weapon
	Smokes      []Smoke

	time     float64
	delta    float64
	path     []bt.Vec3
	pathIdx  int
	respawns int
}

// NewWorld builds the default level. The player's route is derived from
// seed, so equal seeds give equal runs.
func NewWorld(seed int64) *World {
	rng := rand.New(rand.NewSource(seed))
	path := make([]bt.Vec3, playerPathLen)
	for i := range path {
		path[i] = bt.Vec3{
			X: (rng.Float64()*2 - 1) * ArenaHalfSize,
			Z: (rng.Float64()*2 - 1) * ArenaHalfSize,
		}
	}

	w := &World{
		Player: NewActor("player", bt.Vec3{}, PlayerSpeed, PlayerHealth),
		Guard:  NewActor("guard", bt.Vec3{X: -8, Z: -8}, 3, 100),
		Ally:   NewActor("ally", bt.Vec3{Z: 3}, 3, 100),
		Waypoints: []bt.Vec3{
			{X: -8, Z: -8},
			{X: 8, Z: -8},
			{X: 8, Z: 8},
			{X: -8, Z: 8},
		},
		HidingSpots: []bt.Vec3{
			{X: -12},
			{X: 12},
			{Z: 12},
		},
		Weapon: &Weapon{Name: "club", Damage: WeaponDamage, Pos: bt.Vec3{Z: -4}},
	}
	w.Guard.Facing = bt.Vec3{X: 1}
	w.SetPlayerPath(path)
	return w
}

// SetPlayerPath replaces the looped route the player walks.
func (w *World) SetPlayerPath(path []bt.Vec3) {
	w.path = path
	w.pathIdx = 0
	if len(path) > 0 {
		w.Player.SetDestination(path[0])
	} else {
		w.Player.Stop()
	}
}

// Time is the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// Delta is the length of the current step in seconds.
func (w *World) Delta() float64 { return w.delta }

// Respawns counts how many times the player died and came back.
func (w *World) Respawns() int { return w.respawns }

// Actor finds an actor by name.
func (w *World) Actor(name string) *Actor {
	for _, a := range w.Actors() {
		if a != nil && a.Name == name {
			return a
		}
	}
	return nil
}

func (w *World) Actors() []*Actor { return []*Actor{w.Player, w.Guard, w.Ally} }

// AddSmoke spawns a smoke cloud at p.
func (w *World) AddSmoke(p bt.Vec3) {
	w.Smokes = append(w.Smokes, Smoke{Pos: p, Radius: SmokeRadius, Left: SmokeLifetime})
}

// LineOfSight reports whether the segment from a to b is free of smoke.
func (w *World) LineOfSight(a, b bt.Vec3) bool {
	for _, s := range w.Smokes {
		if segmentDistance(a, b, s.Pos) <= s.Radius {
			return false
		}
	}
	return true
}

// Step advances time by dt: effects decay, the player follows its route and
// every enabled actor walks towards its destination.
func (w *World) Step(dt float64) {
	w.delta = dt
	w.time += dt

	live := w.Smokes[:0]
	for _, s := range w.Smokes {
		s.Left -= dt
		if s.Left > 0 {
			live = append(live, s)
		}
	}
	w.Smokes = live

	if w.Player.Health.Dead() {
		w.Player.Health.Reset()
		w.respawns++
		if len(w.path) > 0 {
			w.Player.Pos = w.path[0]
			w.pathIdx = 0
			w.Player.SetDestination(w.path[0])
		}
	}

	for _, a := range w.Actors() {
		if a == nil {
			continue
		}
		a.Anim.advance(dt)
		moveActor(a, dt)
	}

	if len(w.path) > 0 {
		if d, ok := w.Player.Destination(); !ok || w.Player.Pos.Near(d, 1e-6) {
			w.pathIdx = (w.pathIdx + 1) % len(w.path)
			w.Player.SetDestination(w.path[w.pathIdx])
		}
	}

	if w.Weapon != nil && w.Weapon.Holder != "" {
		if h := w.Actor(w.Weapon.Holder); h != nil {
			w.Weapon.Pos = h.Pos
		}
	}
}

func moveActor(a *Actor, dt float64) {
	if !a.Enabled || !a.moving {
		return
	}
	to := a.dest.Sub(a.Pos)
	dist := to.Len()
	if dist <= a.StoppingDistance || dist == 0 {
		a.moving = false
		return
	}
	dir := to.Scale(1 / dist)
	a.Facing = dir
	step := a.Speed * dt
	if step >= dist {
		a.Pos = a.dest
		a.moving = false
		return
	}
	a.Pos = a.Pos.Add(dir.Scale(step))
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(a, b, p bt.Vec3) float64 {
	ab := b.Sub(a)
	l := ab.LenSq()
	if l == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l
	t = max(0, min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}
