package sim

import (
	"context"
	"errors"

	"github.com/zeusync/behave/internal/core/bt"
)

// Sensor refreshes blackboard facts before a tree is ticked.
type Sensor interface {
	Name() string
	Update(ctx context.Context, bb *bt.Blackboard) error
}

// DistanceSensor writes the distance between two actors to Out.
type DistanceSensor struct {
	From, To *Actor
	Out      string
}

func NewDistanceSensor(from, to *Actor, out string) *DistanceSensor {
	return &DistanceSensor{From: from, To: to, Out: out}
}

func (d *DistanceSensor) Name() string { return "distance:" + d.Out }

func (d *DistanceSensor) Update(_ context.Context, bb *bt.Blackboard) error {
	if d.From == nil || d.To == nil {
		return errors.New("distance sensor: missing actor")
	}
	bb.Set(d.Out, bt.Number(d.From.DistanceTo(d.To)))
	return nil
}

// HealthSensor writes an actor's hit points to Out.
type HealthSensor struct {
	Of  *Actor
	Out string
}

func NewHealthSensor(of *Actor, out string) *HealthSensor {
	return &HealthSensor{Of: of, Out: out}
}

func (h *HealthSensor) Name() string { return "health:" + h.Out }

func (h *HealthSensor) Update(_ context.Context, bb *bt.Blackboard) error {
	if h.Of == nil || h.Of.Health == nil {
		return errors.New("health sensor: missing actor")
	}
	bb.Set(h.Out, bt.Number(h.Of.Health.Points()))
	return nil
}
