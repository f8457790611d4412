package bt

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// Event types published by a Tree.
const (
	EventTick  = "tree.tick"
	EventAbort = "tree.abort"
	EventFault = "node.fault"
)

// TickEvent is the payload of EventTick.
type TickEvent struct {
	TreeID   string
	Tree     string
	Tick     uint64
	Status   Status
	Duration time.Duration
}

// FaultEvent is the payload of EventFault.
type FaultEvent struct {
	TreeID string
	Tree   string
	Tick   uint64
	Node   string
	Err    error
}

// AbortEvent is the payload of EventAbort.
type AbortEvent struct {
	TreeID string
	Tree   string
	Tick   uint64
}

// TickRecord is one entry of a tree's tick history.
type TickRecord struct {
	Tick     uint64
	Status   Status
	Duration time.Duration
	At       time.Time
}

// Tree owns a root node and the blackboard shared by all its nodes, and is
// the driver the host calls once per step.
type Tree struct {
	id      string
	name    string
	root    Node
	bb      *Blackboard
	logger  log.Log
	events  bus.EventBus
	onFault FaultHandler
	clock   func() time.Time

	ticks   uint64
	last    Status
	history []TickRecord
	histCap int
	histPos int
}

type Option func(*Tree)

func WithName(name string) Option { return func(t *Tree) { t.name = name } }

func WithLogger(l log.Log) Option { return func(t *Tree) { t.logger = l } }

func WithBus(b bus.EventBus) Option { return func(t *Tree) { t.events = b } }

// WithBlackboard makes the tree use bb instead of a fresh board.
func WithBlackboard(bb *Blackboard) Option { return func(t *Tree) { t.bb = bb } }

// WithFaultHandler adds a callback for predicate faults, run after the
// tree's own logging and event publishing.
func WithFaultHandler(h FaultHandler) Option { return func(t *Tree) { t.onFault = h } }

// WithHistory keeps the last n tick records.
func WithHistory(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.histCap = n
			t.history = make([]TickRecord, 0, n)
		}
	}
}

// WithClock replaces time.Now for tick timing.
func WithClock(clock func() time.Time) Option { return func(t *Tree) { t.clock = clock } }

// NewTree binds root to a blackboard and prepares it for ticking. The tree is
// assembled once; its structure never changes afterwards.
func NewTree(root Node, opts ...Option) *Tree {
	t := &Tree{
		id:     uuid.NewString(),
		logger: log.Provide(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.bb == nil {
		t.bb = NewBlackboard()
	}
	if t.name == "" && root != nil {
		t.name = root.Name()
	}
	t.logger = t.logger.With(log.String("tree", t.name), log.String("tree_id", t.id))
	t.root = root

	if root != nil {
		root.SetBlackboard(t.bb)
		Walk(root, func(n Node, _ int) bool {
			if s, ok := n.(faultSink); ok {
				s.setFaultHandler(t.handleFault)
			}
			return true
		})
	}
	return t
}

func (t *Tree) ID() string { return t.id }

func (t *Tree) Name() string { return t.name }

func (t *Tree) Root() Node { return t.root }

func (t *Tree) Blackboard() *Blackboard { return t.bb }

// Ticks is the number of completed ticks.
func (t *Tree) Ticks() uint64 { return t.ticks }

// Last is the status returned by the most recent tick.
func (t *Tree) Last() Status { return t.last }

// Tick runs the root once. A tree without a root fails.
func (t *Tree) Tick() Status {
	start := t.clock()
	st := tickChild(t.root)
	took := t.clock().Sub(start)

	t.ticks++
	t.last = st
	t.record(TickRecord{Tick: t.ticks, Status: st, Duration: took, At: start})

	t.logger.Debug("tick",
		log.Uint64("tick", t.ticks),
		log.String("status", st.String()),
		log.Duration("took", took),
	)
	t.publish(EventTick, TickEvent{TreeID: t.id, Tree: t.name, Tick: t.ticks, Status: st, Duration: took})
	return st
}

// Abort exits every node of the tree. The next tick starts from scratch.
func (t *Tree) Abort() {
	if t.root != nil {
		t.root.Abort()
	}
	t.last = StatusIdle
	t.logger.Debug("abort", log.Uint64("tick", t.ticks))
	t.publish(EventAbort, AbortEvent{TreeID: t.id, Tree: t.name, Tick: t.ticks})
}

// History returns the recorded ticks, oldest first.
func (t *Tree) History() []TickRecord {
	if t.histCap == 0 {
		return nil
	}
	out := make([]TickRecord, 0, len(t.history))
	if len(t.history) < t.histCap {
		return append(out, t.history...)
	}
	out = append(out, t.history[t.histPos:]...)
	return append(out, t.history[:t.histPos]...)
}

func (t *Tree) record(rec TickRecord) {
	if t.histCap == 0 {
		return
	}
	if len(t.history) < t.histCap {
		t.history = append(t.history, rec)
		return
	}
	t.history[t.histPos] = rec
	t.histPos = (t.histPos + 1) % t.histCap
}

func (t *Tree) handleFault(node string, err error) {
	t.logger.Warn("predicate fault",
		log.String("node", node),
		log.Uint64("tick", t.ticks+1),
		log.Error(err),
	)
	t.publish(EventFault, FaultEvent{TreeID: t.id, Tree: t.name, Tick: t.ticks + 1, Node: node, Err: err})
	if t.onFault != nil {
		t.onFault(node, err)
	}
}

func (t *Tree) publish(eventType string, data any) {
	if t.events == nil {
		return
	}
	if err := t.events.Publish(bus.NewEvent(eventType, t.id, data)); err != nil {
		t.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
