package bt

// Node is a unit of a behavior tree.
//
// Tick runs one step: on the first tick of a run the node is entered, then
// updated; a result other than Running exits the node so the next tick starts
// a fresh run. Abort forces the exit of the node and of its whole subtree.
// SetBlackboard is called once, after the tree is assembled and before the
// first tick; nodes owning children forward it.
type Node interface {
	Name() string
	Tick() Status
	Abort()
	SetBlackboard(bb *Blackboard)
}

// Parent is implemented by nodes that own children.
type Parent interface {
	Children() []Node
}

// FaultHandler receives predicate faults raised inside a node.
type FaultHandler func(node string, err error)

// hooks is the per-kind logic driven by lifecycle.
type hooks interface {
	enter()
	update() Status
	exit()
}

// lifecycle carries the run state shared by every node kind.
type lifecycle struct {
	name    string
	started bool
	bb      *Blackboard
	onFault FaultHandler
}

func (l *lifecycle) Name() string { return l.name }

// Started reports whether the node has been entered and not yet exited.
func (l *lifecycle) Started() bool { return l.started }

func (l *lifecycle) Blackboard() *Blackboard { return l.bb }

func (l *lifecycle) SetBlackboard(bb *Blackboard) { l.bb = bb }

func (l *lifecycle) setFaultHandler(h FaultHandler) { l.onFault = h }

func (l *lifecycle) enter() {}

func (l *lifecycle) exit() {}

// run drives one tick of h. Any result other than Running closes the run.
func (l *lifecycle) run(h hooks) Status {
	if !l.started {
		h.enter()
		l.started = true
	}
	st := h.update()
	if st != StatusRunning {
		h.exit()
		l.started = false
	}
	return st
}

// stop exits h unconditionally.
func (l *lifecycle) stop(h hooks) {
	h.exit()
	l.started = false
}

func (l *lifecycle) fault(err error) {
	if l.onFault != nil {
		l.onFault(l.name, err)
		return
	}
	defaultFaultHandler(l.name, err)
}

type faultSink interface {
	setFaultHandler(h FaultHandler)
}

func tickChild(n Node) Status {
	if n == nil {
		return StatusFailure
	}
	return n.Tick()
}

func abortChildren(children ...Node) {
	for _, ch := range children {
		if ch != nil {
			ch.Abort()
		}
	}
}

func bindChildren(bb *Blackboard, children ...Node) {
	for _, ch := range children {
		if ch != nil {
			ch.SetBlackboard(bb)
		}
	}
}

func present(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
