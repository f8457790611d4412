package bt

// scripted is a Task that plays back a status script and counts lifecycle
// calls.
type scripted struct {
	script  []Status
	enters  int
	updates int
	exits   int
	seen    *Blackboard
}

func (p *scripted) Enter(bb *Blackboard) {
	p.enters++
	p.seen = bb
}

func (p *scripted) Update(bb *Blackboard) Status {
	i := p.updates
	p.updates++
	if len(p.script) == 0 {
		return StatusSuccess
	}
	if i >= len(p.script) {
		i = len(p.script) - 1
	}
	return p.script[i]
}

func (p *scripted) Exit(*Blackboard) { p.exits++ }

func newScripted(name string, script ...Status) (*Leaf, *scripted) {
	p := &scripted{script: script}
	return NewLeaf(name, p), p
}

func ticks(n Node, count int) []Status {
	out := make([]Status, count)
	for i := range out {
		out[i] = n.Tick()
	}
	return out
}
