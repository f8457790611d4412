package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behave/internal/core/observability/log"
)

var (
	ErrClosed    = errors.New("runner: manager closed")
	ErrDuplicate = errors.New("runner: duplicate id")
)

// Steppable is a unit the manager advances once per step. Step is never
// called concurrently for the same unit.
type Steppable interface {
	ID() string
	Step(ctx context.Context, dt float64) error
	Abort()
}

type shard struct {
	mu    sync.Mutex
	items map[string]Steppable
	order []string
}

func (s *shard) step(ctx context.Context, dt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs error
	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		if err := s.items[id].Step(ctx, dt); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errs
}

// Manager spreads units over a fixed number of shards. Every shard is
// stepped by its own goroutine, so a unit only ever runs on one goroutine at
// a time while distinct shards run in parallel.
type Manager struct {
	shards []*shard
	logger log.Log
	steps  atomic.Uint64
	closed atomic.Bool
}

// New creates a manager with n shards. n below 1 is treated as 1.
func New(n int, logger log.Log) *Manager {
	if n < 1 {
		n = 1
	}
	if logger == nil {
		logger = log.Provide()
	}
	m := &Manager{shards: make([]*shard, n), logger: logger.With(log.String("component", "runner"))}
	for i := range m.shards {
		m.shards[i] = &shard{items: make(map[string]Steppable)}
	}
	return m
}

func (m *Manager) shardFor(id string) *shard {
	return m.shards[xxhash.Sum64String(id)%uint64(len(m.shards))]
}

// Shards is the number of shards.
func (m *Manager) Shards() int { return len(m.shards) }

// Steps counts completed calls to Step.
func (m *Manager) Steps() uint64 { return m.steps.Load() }

func (m *Manager) Add(s Steppable) error {
	if m.closed.Load() {
		return ErrClosed
	}
	id := s.ID()
	sh := m.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.items[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	sh.items[id] = s
	sh.order = append(sh.order, id)
	m.logger.Debug("unit added", log.String("id", id))
	return nil
}

// Remove aborts and forgets the unit with the given id.
func (m *Manager) Remove(id string) bool {
	sh := m.shardFor(id)
	sh.mu.Lock()
	s, ok := sh.items[id]
	if ok {
		delete(sh.items, id)
		for i, v := range sh.order {
			if v == id {
				sh.order = append(sh.order[:i], sh.order[i+1:]...)
				break
			}
		}
	}
	sh.mu.Unlock()
	if ok {
		s.Abort()
		m.logger.Debug("unit removed", log.String("id", id))
	}
	return ok
}

func (m *Manager) Get(id string) (Steppable, bool) {
	sh := m.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	s, ok := sh.items[id]
	return s, ok
}

func (m *Manager) Len() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		n += len(sh.items)
		sh.mu.Unlock()
	}
	return n
}

// Step advances every unit by dt. Errors of all shards are joined; a failing
// unit does not stop the others.
func (m *Manager) Step(ctx context.Context, dt float64) error {
	if m.closed.Load() {
		return ErrClosed
	}
	errs := make([]error, len(m.shards))
	var g errgroup.Group
	for i, sh := range m.shards {
		g.Go(func() error {
			if err := sh.step(ctx, dt); err != nil {
				m.logger.Warn("shard step failed", log.Int("shard", i), log.Error(err))
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()
	m.steps.Add(1)
	return errors.Join(errs...)
}

// Close aborts every unit and rejects further use.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	for _, sh := range m.shards {
		sh.mu.Lock()
		for _, id := range sh.order {
			sh.items[id].Abort()
		}
		sh.items = make(map[string]Steppable)
		sh.order = nil
		sh.mu.Unlock()
	}
	m.logger.Info("runner closed", log.Uint64("steps", m.steps.Load()))
}
