package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/core/runner"
	"github.com/zeusync/behave/internal/core/sim"
	"github.com/zeusync/behave/internal/server"
)

// App runs a set of scenarios on a fixed tick and optionally streams their
// frames to websocket clients.
type App struct {
	cfg    config.Config
	logger log.Log
	events bus.EventBus
	runner *runner.Manager
	server *server.Server
}

// New assembles an App. srv may be nil.
func New(cfg config.Config, logger *log.Logger, events bus.EventBus, m *runner.Manager, srv *server.Server) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(log.String("component", "app")),
		events: events,
		runner: m,
		server: srv,
	}
}

func (a *App) Runner() *runner.Manager { return a.runner }

func (a *App) Server() *server.Server { return a.server }

// GuardDefinition returns the configured guard tree, or the built-in one.
func (a *App) GuardDefinition() (*bt.Definition, error) {
	if a.cfg.Sim.GuardTree == "" {
		return sim.GuardDefinition()
	}
	f, err := os.Open(a.cfg.Sim.GuardTree)
	if err != nil {
		return nil, fmt.Errorf("open guard tree: %w", err)
	}
	defer f.Close()
	def, err := bt.LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load guard tree %s: %w", a.cfg.Sim.GuardTree, err)
	}
	return def, nil
}

// Populate creates the configured number of scenarios and hands them to the
// runner. Scenario i is seeded with sim.seed+i.
func (a *App) Populate() error {
	def, err := a.GuardDefinition()
	if err != nil {
		return err
	}
	for i := 0; i < a.cfg.Sim.Scenarios; i++ {
		s, err := sim.NewScenario(
			sim.WithSeed(a.cfg.Sim.Seed+int64(i)),
			sim.WithGuardDefinition(def),
			sim.WithLogger(a.logger),
			sim.WithBus(a.events),
			sim.WithHistory(a.cfg.Sim.History),
		)
		if err != nil {
			return fmt.Errorf("scenario %d: %w", i, err)
		}
		if err := a.runner.Add(s); err != nil {
			return err
		}
	}
	a.logger.Info("scenarios ready", log.Int("count", a.runner.Len()))
	return nil
}

// Describe renders the outline of every agent tree of one scenario built
// from the current configuration.
func (a *App) Describe() (string, error) {
	def, err := a.GuardDefinition()
	if err != nil {
		return "", err
	}
	s, err := sim.NewScenario(sim.WithSeed(a.cfg.Sim.Seed), sim.WithGuardDefinition(def), sim.WithLogger(log.Nop()))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, agent := range s.Agents() {
		b.WriteString(bt.Describe(agent.Tree().Root()))
	}
	return b.String(), nil
}

func (a *App) broadcastFrame(ev bus.Event) error {
	frame, ok := ev.Data().(sim.Frame)
	if !ok {
		return nil
	}
	msg, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	a.server.Broadcast(msg)
	return nil
}

// Run steps the runner every sim.tick until ctx is done or sim.ticks steps
// have been taken. The runner and server are closed on return.
func (a *App) Run(ctx context.Context) error {
	defer a.runner.Close()

	if a.server != nil {
		sub, err := a.events.Subscribe(sim.EventFrame, a.broadcastFrame)
		if err != nil {
			return err
		}
		defer func() { _ = a.events.Unsubscribe(sub) }()

		if err := a.server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.server.Stop(stopCtx); err != nil {
				a.logger.Warn("server stop failed", log.Error(err))
			}
		}()
		a.logger.Info("streaming frames", log.String("addr", a.server.Addr()))
	}

	ticker := time.NewTicker(a.cfg.Sim.Tick)
	defer ticker.Stop()
	dt := a.cfg.Sim.Tick.Seconds()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("stopping", log.Uint64("steps", a.runner.Steps()))
			return nil
		case <-ticker.C:
			err := a.runner.Step(ctx, dt)
			if errors.Is(err, runner.ErrClosed) {
				return err
			}
			if err != nil && ctx.Err() == nil {
				a.logger.Warn("step failed", log.Error(err))
			}
			if a.cfg.Sim.Ticks > 0 && a.runner.Steps() >= uint64(a.cfg.Sim.Ticks) {
				a.logger.Info("tick limit reached", log.Uint64("steps", a.runner.Steps()))
				return nil
			}
		}
	}
}
