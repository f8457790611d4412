package bt

// decorator owns a single child.
type decorator struct {
	lifecycle
	child Node
}

func (d *decorator) Children() []Node { return present(d.child) }

func (d *decorator) Child() Node { return d.child }

func (d *decorator) SetBlackboard(bb *Blackboard) {
	d.lifecycle.SetBlackboard(bb)
	bindChildren(bb, d.child)
}

// Invert swaps Success and Failure. Running passes through.
type Invert struct {
	decorator
}

var _ Node = (*Invert)(nil)

func NewInvert(name string, child Node) *Invert {
	return &Invert{decorator: decorator{lifecycle: lifecycle{name: name}, child: child}}
}

func (i *Invert) Tick() Status { return i.run(i) }

func (i *Invert) Abort() {
	i.stop(i)
	abortChildren(i.child)
}

func (i *Invert) update() Status {
	switch st := tickChild(i.child); st {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return st
	}
}

// Optional ticks its child and succeeds whatever the child reports.
type Optional struct {
	decorator
}

var _ Node = (*Optional)(nil)

func NewOptional(name string, child Node) *Optional {
	return &Optional{decorator: decorator{lifecycle: lifecycle{name: name}, child: child}}
}

func (o *Optional) Tick() Status { return o.run(o) }

func (o *Optional) Abort() {
	o.stop(o)
	abortChildren(o.child)
}

func (o *Optional) update() Status {
	tickChild(o.child)
	return StatusSuccess
}

// Repeat ticks its child once per tick, times times in total, and reports
// Running until the last repetition. The child's own status is ignored.
//
// Exiting clears the target count as well as the counter: once a Repeat has
// completed or been aborted, later runs succeed immediately.
type Repeat struct {
	decorator
	times int
	count int
}

var _ Node = (*Repeat)(nil)

func NewRepeat(name string, times int, child Node) *Repeat {
	return &Repeat{decorator: decorator{lifecycle: lifecycle{name: name}, child: child}, times: times}
}

// Times is the remaining target count.
func (r *Repeat) Times() int { return r.times }

// Count is the number of repetitions performed in the current run.
func (r *Repeat) Count() int { return r.count }

func (r *Repeat) Tick() Status { return r.run(r) }

func (r *Repeat) Abort() {
	r.stop(r)
	abortChildren(r.child)
}

func (r *Repeat) exit() {
	r.count = 0
	r.times = 0
}

func (r *Repeat) update() Status {
	if r.count >= r.times {
		return StatusSuccess
	}
	r.count++
	tickChild(r.child)
	if r.count < r.times {
		return StatusRunning
	}
	return StatusSuccess
}

// DoWhile keeps ticking its child while the predicate holds. A successful
// child pass turns into Running so the loop continues on the next tick; the
// loop succeeds once the predicate is false.
type DoWhile struct {
	decorator
	pred Predicate
}

var _ Node = (*DoWhile)(nil)

func NewDoWhile(name string, pred Predicate, child Node) *DoWhile {
	return &DoWhile{decorator: decorator{lifecycle: lifecycle{name: name}, child: child}, pred: pred}
}

func (d *DoWhile) Tick() Status { return d.run(d) }

func (d *DoWhile) Abort() {
	d.stop(d)
	abortChildren(d.child)
}

func (d *DoWhile) update() Status {
	ok, err := d.pred.eval()
	if err != nil {
		d.fault(err)
		return StatusFailure
	}
	if !ok {
		return StatusSuccess
	}
	if st := tickChild(d.child); st != StatusSuccess {
		return st
	}
	return StatusRunning
}
