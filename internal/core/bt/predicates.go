package bt

import (
	"errors"
	"fmt"

	"github.com/zeusync/behave/internal/core/observability/log"
)

var (
	// ErrPredicatePanic wraps a panic raised while evaluating a predicate.
	ErrPredicatePanic = errors.New("bt: predicate panicked")
	// ErrNilPredicate is reported when a node that needs a predicate has none.
	ErrNilPredicate = errors.New("bt: nil predicate")
)

// Predicate is a condition evaluated by Gate, Branch and DoWhile. A returned
// error is a fault: the node reports it and fails.
type Predicate func() (bool, error)

// Cond adapts an infallible check to Predicate.
func Cond(fn func() bool) Predicate {
	if fn == nil {
		return nil
	}
	return func() (bool, error) { return fn(), nil }
}

// eval runs p, turning a panic inside p into ErrPredicatePanic.
func (p Predicate) eval() (ok bool, err error) {
	if p == nil {
		return false, ErrNilPredicate
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w: %v", ErrPredicatePanic, r)
		}
	}()
	return p()
}

func defaultFaultHandler(node string, err error) {
	log.Provide().Warn("predicate fault", log.String("node", node), log.Error(err))
}

// Gate guards a child. In the guarded form the child only runs while the
// predicate holds; otherwise the gate fails without ticking it. In the
// fallback form the primary child always runs and the fallback child runs in
// the same tick when the primary fails.
type Gate struct {
	lifecycle
	pred     Predicate
	guarded  bool
	primary  Node
	fallback Node
}

var _ Node = (*Gate)(nil)

// NewGate builds the guarded form. A nil predicate keeps the gate closed.
func NewGate(name string, pred Predicate, child Node) *Gate {
	return &Gate{lifecycle: lifecycle{name: name}, pred: pred, guarded: true, primary: child}
}

// NewFallback builds the primary/fallback form.
func NewFallback(name string, primary, fallback Node) *Gate {
	return &Gate{lifecycle: lifecycle{name: name}, primary: primary, fallback: fallback}
}

func (g *Gate) Children() []Node { return present(g.primary, g.fallback) }

func (g *Gate) SetBlackboard(bb *Blackboard) {
	g.lifecycle.SetBlackboard(bb)
	bindChildren(bb, g.primary, g.fallback)
}

func (g *Gate) Tick() Status { return g.run(g) }

func (g *Gate) Abort() {
	g.stop(g)
	abortChildren(g.primary, g.fallback)
}

func (g *Gate) update() Status {
	if g.guarded {
		if g.pred == nil {
			return StatusFailure
		}
		ok, err := g.pred.eval()
		if err != nil {
			g.fault(err)
			return StatusFailure
		}
		if !ok {
			return StatusFailure
		}
		return tickChild(g.primary)
	}

	st := tickChild(g.primary)
	if st == StatusFailure {
		return tickChild(g.fallback)
	}
	return st
}

// Branch evaluates its predicate once per tick and runs one of two children.
// A missing child counts as Failure.
type Branch struct {
	lifecycle
	pred    Predicate
	onTrue  Node
	onFalse Node
}

var _ Node = (*Branch)(nil)

func NewBranch(name string, pred Predicate, onTrue, onFalse Node) *Branch {
	return &Branch{lifecycle: lifecycle{name: name}, pred: pred, onTrue: onTrue, onFalse: onFalse}
}

func (b *Branch) Children() []Node { return present(b.onTrue, b.onFalse) }

func (b *Branch) SetBlackboard(bb *Blackboard) {
	b.lifecycle.SetBlackboard(bb)
	bindChildren(bb, b.onTrue, b.onFalse)
}

func (b *Branch) Tick() Status { return b.run(b) }

func (b *Branch) Abort() {
	b.stop(b)
	abortChildren(b.onTrue, b.onFalse)
}

func (b *Branch) update() Status {
	ok, err := b.pred.eval()
	if err != nil {
		b.fault(err)
		return StatusFailure
	}
	if ok {
		return tickChild(b.onTrue)
	}
	return tickChild(b.onFalse)
}
