package bt

// composite owns an ordered, fixed list of children.
type composite struct {
	lifecycle
	children []Node
}

func (c *composite) Children() []Node { return present(c.children...) }

func (c *composite) SetBlackboard(bb *Blackboard) {
	c.lifecycle.SetBlackboard(bb)
	bindChildren(bb, c.children...)
}

// Sequence ticks its children in order and fails as soon as one fails. A
// running child is resumed on the next tick without re-ticking the children
// before it.
type Sequence struct {
	composite
	cursor int
}

var _ Node = (*Sequence)(nil)

func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{composite: composite{lifecycle: lifecycle{name: name}, children: children}}
}

// Cursor is the index of the child the next tick resumes at.
func (s *Sequence) Cursor() int { return s.cursor }

func (s *Sequence) Tick() Status { return s.run(s) }

func (s *Sequence) Abort() {
	s.stop(s)
	abortChildren(s.children...)
}

func (s *Sequence) enter() { s.cursor = 0 }

func (s *Sequence) exit() { s.cursor = 0 }

func (s *Sequence) update() Status {
	for ; s.cursor < len(s.children); s.cursor++ {
		if st := tickChild(s.children[s.cursor]); st != StatusSuccess {
			return st
		}
	}
	return StatusSuccess
}

// Select ticks its children in order until one succeeds.
//
// Every tick restarts the scan at the first child, so a child that returned
// Running is only resumed if every child before it fails again.
type Select struct {
	composite
}

var _ Node = (*Select)(nil)

func NewSelect(name string, children ...Node) *Select {
	return &Select{composite: composite{lifecycle: lifecycle{name: name}, children: children}}
}

func (s *Select) Tick() Status { return s.run(s) }

func (s *Select) Abort() {
	s.stop(s)
	abortChildren(s.children...)
}

func (s *Select) update() Status {
	for _, ch := range s.children {
		if tickChild(ch) == StatusSuccess {
			return StatusSuccess
		}
	}
	return StatusFailure
}

// Parallel ticks every child once per tick and always succeeds. Children
// report completion through the blackboard, not through their status.
type Parallel struct {
	composite
}

var _ Node = (*Parallel)(nil)

func NewParallel(name string, children ...Node) *Parallel {
	return &Parallel{composite: composite{lifecycle: lifecycle{name: name}, children: children}}
}

func (p *Parallel) Tick() Status { return p.run(p) }

func (p *Parallel) Abort() {
	p.stop(p)
	abortChildren(p.children...)
}

func (p *Parallel) update() Status {
	for _, ch := range p.children {
		tickChild(ch)
	}
	return StatusSuccess
}
