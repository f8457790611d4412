package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// EventFrame is published with a Frame payload after every step.
const EventFrame = "scenario.frame"

// ActorFrame is the visible state of one actor.
type ActorFrame struct {
	Name      string  `json:"name"`
	Pos       bt.Vec3 `json:"pos"`
	Health    float64 `json:"health"`
	Enabled   bool    `json:"enabled"`
	Animation string  `json:"animation,omitempty"`
	Header    string  `json:"header,omitempty"`
}

// AgentFrame adds the tree result to an actor's state.
type AgentFrame struct {
	ActorFrame
	Tree   string    `json:"tree"`
	Status bt.Status `json:"status"`
}

// Frame is a snapshot of a scenario after a step.
type Frame struct {
	Scenario string       `json:"scenario"`
	Tick     uint64       `json:"tick"`
	Time     float64      `json:"time"`
	Player   ActorFrame   `json:"player"`
	Agents   []AgentFrame `json:"agents"`
	Smokes   []bt.Vec3    `json:"smokes,omitempty"`
	Respawns int          `json:"respawns"`
}

type options struct {
	seed     int64
	guardDef *bt.Definition
	logger   log.Log
	events   bus.EventBus
	history  int
}

type Option func(*options)

func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

// WithGuardDefinition replaces the built-in guard tree.
func WithGuardDefinition(def *bt.Definition) Option {
	return func(o *options) { o.guardDef = def }
}

func WithLogger(l log.Log) Option { return func(o *options) { o.logger = l } }

func WithBus(b bus.EventBus) Option { return func(o *options) { o.events = b } }

// WithHistory keeps the last n tick records of every tree.
func WithHistory(n int) Option { return func(o *options) { o.history = n } }

// Scenario is one world with its agents. It is stepped by a single
// goroutine at a time.
type Scenario struct {
	id      string
	world   *World
	agents  []*Agent
	enabled []bool
	logger  log.Log
	events  bus.EventBus
	ticks   uint64
	frame   Frame
}

func NewScenario(opts ...Option) (*Scenario, error) {
	o := options{logger: log.Provide()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Scenario{
		id:     uuid.NewString(),
		world:  NewWorld(o.seed),
		events: o.events,
	}
	s.logger = o.logger.With(log.String("scenario", s.id))

	treeOpts := []bt.Option{bt.WithLogger(s.logger)}
	if o.events != nil {
		treeOpts = append(treeOpts, bt.WithBus(o.events))
	}
	if o.history > 0 {
		treeOpts = append(treeOpts, bt.WithHistory(o.history))
	}

	guard, err := NewGuard(s.world, o.guardDef, treeOpts...)
	if err != nil {
		return nil, err
	}
	s.agents = []*Agent{guard, NewAlly(s.world, treeOpts...)}
	s.enabled = make([]bool, len(s.agents))
	for i, a := range s.agents {
		s.enabled[i] = a.Actor().Enabled
	}
	s.frame = s.snapshot()
	return s, nil
}

func (s *Scenario) ID() string { return s.id }

func (s *Scenario) World() *World { return s.world }

func (s *Scenario) Agents() []*Agent { return s.agents }

// Step advances the world by dt seconds, then ticks every enabled agent.
// An agent that was switched off since the previous step is aborted.
func (s *Scenario) Step(ctx context.Context, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.world.Step(dt)
	s.ticks++

	var errs error
	for i, a := range s.agents {
		on := a.Actor().Enabled
		if !on {
			if s.enabled[i] {
				s.logger.Debug("agent disabled", log.String("agent", a.Actor().Name))
				a.Abort()
			}
			s.enabled[i] = false
			continue
		}
		s.enabled[i] = true
		if _, err := a.Step(ctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("agent %s: %w", a.Actor().Name, err))
		}
	}

	s.frame = s.snapshot()
	if s.events != nil {
		if err := s.events.Publish(bus.NewEvent(EventFrame, s.id, s.frame)); err != nil {
			s.logger.Warn("frame handler failed", log.Error(err))
		}
	}
	return errs
}

// Abort stops every agent.
func (s *Scenario) Abort() {
	for _, a := range s.agents {
		a.Abort()
	}
	s.frame = s.snapshot()
}

// Frame returns the snapshot taken after the last step.
func (s *Scenario) Frame() Frame { return s.frame }

func (s *Scenario) snapshot() Frame {
	w := s.world
	f := Frame{
		Scenario: s.id,
		Tick:     s.ticks,
		Time:     w.Time(),
		Player:   actorFrame(w.Player),
		Agents:   make([]AgentFrame, 0, len(s.agents)),
		Respawns: w.Respawns(),
	}
	for _, a := range s.agents {
		f.Agents = append(f.Agents, AgentFrame{
			ActorFrame: actorFrame(a.Actor()),
			Tree:       a.Tree().Name(),
			Status:     a.Last(),
		})
	}
	for _, sm := range w.Smokes {
		f.Smokes = append(f.Smokes, sm.Pos)
	}
	return f
}

func actorFrame(a *Actor) ActorFrame {
	return ActorFrame{
		Name:      a.Name,
		Pos:       a.Pos,
		Health:    a.Health.Points(),
		Enabled:   a.Enabled,
		Animation: a.Anim.Current(),
		Header:    a.Header,
	}
}
