package bt

// Task is the work a Leaf performs each tick.
type Task interface {
	Update(bb *Blackboard) Status
}

// Enterer is implemented by tasks that set up state when a run starts.
type Enterer interface {
	Enter(bb *Blackboard)
}

// Exiter is implemented by tasks that tear down state when a run ends or is
// aborted.
type Exiter interface {
	Exit(bb *Blackboard)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(bb *Blackboard) Status

func (f TaskFunc) Update(bb *Blackboard) Status { return f(bb) }

// Leaf runs a Task under the node lifecycle. It is the extension point for
// host-specific work that needs enter/exit hooks or blackboard access.
type Leaf struct {
	lifecycle
	task Task
}

var _ Node = (*Leaf)(nil)

func NewLeaf(name string, task Task) *Leaf {
	return &Leaf{lifecycle: lifecycle{name: name}, task: task}
}

func (l *Leaf) Task() Task { return l.task }

func (l *Leaf) Tick() Status { return l.run(l) }

func (l *Leaf) Abort() { l.stop(l) }

func (l *Leaf) enter() {
	if e, ok := l.task.(Enterer); ok {
		e.Enter(l.bb)
	}
}

func (l *Leaf) update() Status {
	if l.task == nil {
		return StatusFailure
	}
	return l.task.Update(l.bb)
}

func (l *Leaf) exit() {
	if e, ok := l.task.(Exiter); ok {
		e.Exit(l.bb)
	}
}

// Action calls a function each tick and reports its status.
type Action struct {
	lifecycle
	fn func() Status
}

var _ Node = (*Action)(nil)

// NewAction wraps fn. A nil fn makes the action fail.
func NewAction(name string, fn func() Status) *Action {
	return &Action{lifecycle: lifecycle{name: name}, fn: fn}
}

func (a *Action) Tick() Status { return a.run(a) }

func (a *Action) Abort() { a.stop(a) }

func (a *Action) update() Status {
	if a.fn == nil {
		return StatusFailure
	}
	return a.fn()
}
