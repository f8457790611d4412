package sim

import (
	"context"
	"fmt"

	"github.com/zeusync/behave/internal/core/bt"
)

// Agent couples an actor with the tree that drives it and the sensors that
// feed the tree's blackboard.
type Agent struct {
	actor       *Actor
	tree        *bt.Tree
	sensors     []Sensor
	abortHeader string
	last        bt.Status
}

func NewAgent(actor *Actor, tree *bt.Tree, sensors ...Sensor) *Agent {
	return &Agent{actor: actor, tree: tree, sensors: sensors}
}

func (a *Agent) Actor() *Actor { return a.actor }

func (a *Agent) Tree() *bt.Tree { return a.tree }

func (a *Agent) Last() bt.Status { return a.last }

// Step runs the sensors, then ticks the tree once.
func (a *Agent) Step(ctx context.Context) (bt.Status, error) {
	bb := a.tree.Blackboard()
	for _, s := range a.sensors {
		if err := s.Update(ctx, bb); err != nil {
			return bt.StatusFailure, fmt.Errorf("sensor %s: %w", s.Name(), err)
		}
	}
	a.last = a.tree.Tick()
	return a.last, nil
}

// Abort stops the tree. The actor's header shows the abort header, if set.
func (a *Agent) Abort() {
	a.tree.Abort()
	a.last = bt.StatusIdle
	if a.abortHeader != "" {
		a.actor.Header = a.abortHeader
	}
}
