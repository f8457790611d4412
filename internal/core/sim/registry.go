package sim

import (
	"fmt"

	"github.com/zeusync/behave/internal/core/bt"
)

// NewRegistry returns the world tasks and predicates bound to self, for use
// by tree definitions. Actor parameters name actors of w.
func NewRegistry(w *World, self *Actor) *bt.Registry {
	reg := bt.NewRegistry()
	actor := func(p bt.Params, key string) (*Actor, error) {
		name := p.String(key, "")
		if name == "" {
			return nil, fmt.Errorf("param %q required", key)
		}
		a := w.Actor(name)
		if a == nil {
			return nil, fmt.Errorf("no actor named %q", name)
		}
		return a, nil
	}

	reg.RegisterTask("move_to", func(ctx bt.BuildContext) (bt.Task, error) {
		m := &MoveTo{
			Self:     self,
			Key:      ctx.Params.String("key", ""),
			Speed:    ctx.Params.Float("speed", self.Speed),
			Stopping: ctx.Params.Float("stopping", 1),
		}
		if m.Key == "" {
			target, err := actor(ctx.Params, "target")
			if err != nil {
				return nil, err
			}
			m.Target = target
		}
		return m, nil
	})
	reg.RegisterTask("wait", func(ctx bt.BuildContext) (bt.Task, error) {
		return &Wait{World: w, Seconds: ctx.Params.Duration("seconds", 0).Seconds()}, nil
	})
	reg.RegisterTask("animate", func(ctx bt.BuildContext) (bt.Task, error) {
		clip := ctx.Params.String("clip", "")
		if clip == "" {
			return nil, fmt.Errorf("param %q required", "clip")
		}
		return &Animate{
			Self:  self,
			Clip:  clip,
			Fade:  ctx.Params.Float("fade", 0),
			Force: ctx.Params.Bool("force", false),
		}, nil
	})
	reg.RegisterTask("set_header", func(ctx bt.BuildContext) (bt.Task, error) {
		return &SetHeader{Self: self, Text: ctx.Params.String("text", "")}, nil
	})
	reg.RegisterTask("look_for", func(ctx bt.BuildContext) (bt.Task, error) {
		target, err := actor(ctx.Params, "target")
		if err != nil {
			return nil, err
		}
		return &LookFor{
			World:    w,
			Self:     self,
			Target:   target,
			FOV:      ctx.Params.Float("fov", 40),
			Distance: ctx.Params.Float("distance", 5),
		}, nil
	})
	reg.RegisterTask("next_waypoint", func(bt.BuildContext) (bt.Task, error) {
		return NewNextWaypoint(w.Waypoints), nil
	})
	reg.RegisterTask("closest_waypoint", func(bt.BuildContext) (bt.Task, error) {
		return &ClosestWaypoint{Self: self, Spots: w.HidingSpots}, nil
	})
	reg.RegisterTask("pick_up_weapon", func(ctx bt.BuildContext) (bt.Task, error) {
		return &PickUpWeapon{
			World:    w,
			Self:     self,
			Speed:    ctx.Params.Float("speed", self.Speed),
			Stopping: ctx.Params.Float("stopping", 1),
		}, nil
	})
	reg.RegisterTask("attack", func(ctx bt.BuildContext) (bt.Task, error) {
		target, err := actor(ctx.Params, "target")
		if err != nil {
			return nil, err
		}
		return &Attack{Target: target, Key: ctx.Params.String("key", KeyWeapon)}, nil
	})
	reg.RegisterTask("disable", func(ctx bt.BuildContext) (bt.Task, error) {
		target, err := actor(ctx.Params, "target")
		if err != nil {
			return nil, err
		}
		return &Disable{World: w, Target: target, Seconds: ctx.Params.Duration("seconds", 0).Seconds()}, nil
	})
	reg.RegisterTask("on_damaged", func(ctx bt.BuildContext) (bt.Task, error) {
		target, err := actor(ctx.Params, "target")
		if err != nil {
			return nil, err
		}
		return &OnDamaged{Health: target.Health}, nil
	})
	reg.RegisterTask("spawn_smoke", func(ctx bt.BuildContext) (bt.Task, error) {
		at, err := actor(ctx.Params, "at")
		if err != nil {
			return nil, err
		}
		return &SpawnSmoke{World: w, At: at}, nil
	})

	reg.RegisterPredicate("within", func(ctx bt.BuildContext) (bt.Predicate, error) {
		target, err := actor(ctx.Params, "target")
		if err != nil {
			return nil, err
		}
		d := ctx.Params.Float("distance", 0)
		return bt.Cond(func() bool { return self.DistanceTo(target) <= d }), nil
	})
	reg.RegisterPredicate("beyond", func(ctx bt.BuildContext) (bt.Predicate, error) {
		target, err := actor(ctx.Params, "target")
		if err != nil {
			return nil, err
		}
		d := ctx.Params.Float("distance", 0)
		return bt.Cond(func() bool { return self.DistanceTo(target) > d }), nil
	})
	return reg
}
