package bt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownNodeType  = errors.New("bt: unknown node type")
	ErrMissingNode      = errors.New("bt: node not defined")
	ErrDuplicateNode    = errors.New("bt: node referenced more than once")
	ErrMissingPredicate = errors.New("bt: predicate required")
	ErrMissingChild     = errors.New("bt: child required")
)

// Definition describes a tree declaratively. Nodes reference their children
// by name; every node may be referenced once, so the result is a strict
// tree.
type Definition struct {
	Root  string             `json:"root" yaml:"root"`
	Nodes map[string]NodeDef `json:"nodes" yaml:"nodes"`
}

type NodeDef struct {
	Type     string   `json:"type" yaml:"type"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	// Child is the decorated child, the gated child, or the primary child of
	// a fallback.
	Child    string `json:"child,omitempty" yaml:"child,omitempty"`
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	OnTrue   string `json:"on_true,omitempty" yaml:"on_true,omitempty"`
	OnFalse  string `json:"on_false,omitempty" yaml:"on_false,omitempty"`
	// Action names a registered leaf factory.
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
	// Predicate names a registered predicate; Expr is an inline expression.
	Predicate string `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Expr      string `json:"expr,omitempty" yaml:"expr,omitempty"`
	// Times is the repeat count; when absent params.times or 1 is used.
	Times  *int   `json:"times,omitempty" yaml:"times,omitempty"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadJSON loads a definition from JSON.
func LoadJSON(r io.Reader) (*Definition, error) {
	var d Definition
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode tree json: %w", err)
	}
	return &d, nil
}

// LoadYAML loads a definition from YAML.
func LoadYAML(r io.Reader) (*Definition, error) {
	var d Definition
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode tree yaml: %w", err)
	}
	return &d, nil
}

// Tree builds the definition against a fresh blackboard and wraps it in a
// Tree.
func (d *Definition) Tree(reg *Registry, opts ...Option) (*Tree, error) {
	bb := NewBlackboard()
	root, err := d.Build(reg, bb)
	if err != nil {
		return nil, err
	}
	return NewTree(root, append([]Option{WithBlackboard(bb)}, opts...)...), nil
}

// Build assembles the node graph. bb is the blackboard the tree will use;
// factories and expression predicates may capture it.
func (d *Definition) Build(reg *Registry, bb *Blackboard) (Node, error) {
	if d.Root == "" {
		return nil, fmt.Errorf("%w: empty root", ErrMissingNode)
	}
	if reg == nil {
		reg = NewRegistry()
	}
	b := &builder{def: d, reg: reg, bb: bb, used: make(map[string]bool)}
	return b.node(d.Root)
}

type builder struct {
	def  *Definition
	reg  *Registry
	bb   *Blackboard
	used map[string]bool
}

func (b *builder) node(name string) (Node, error) {
	nd, ok := b.def.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingNode, name)
	}
	if b.used[name] {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	}
	b.used[name] = true

	n, err := b.build(name, nd)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", name, err)
	}
	return n, nil
}

func (b *builder) build(name string, nd NodeDef) (Node, error) {
	ctx := BuildContext{Name: name, Params: nd.Params, Blackboard: b.bb}
	if ctx.Params == nil {
		ctx.Params = Params{}
	}

	switch strings.ToLower(nd.Type) {
	case "sequence":
		children, err := b.list(nd.Children)
		if err != nil {
			return nil, err
		}
		return NewSequence(name, children...), nil
	case "select", "selector":
		children, err := b.list(nd.Children)
		if err != nil {
			return nil, err
		}
		return NewSelect(name, children...), nil
	case "parallel":
		children, err := b.list(nd.Children)
		if err != nil {
			return nil, err
		}
		return NewParallel(name, children...), nil
	case "invert", "inverter":
		child, err := b.required(nd.Child)
		if err != nil {
			return nil, err
		}
		return NewInvert(name, child), nil
	case "optional":
		child, err := b.required(nd.Child)
		if err != nil {
			return nil, err
		}
		return NewOptional(name, child), nil
	case "repeat":
		child, err := b.required(nd.Child)
		if err != nil {
			return nil, err
		}
		times := ctx.Params.Int("times", 1)
		if nd.Times != nil {
			times = *nd.Times
		}
		return NewRepeat(name, times, child), nil
	case "do_while", "dowhile":
		pred, err := b.predicate(nd, ctx)
		if err != nil {
			return nil, err
		}
		child, err := b.required(nd.Child)
		if err != nil {
			return nil, err
		}
		return NewDoWhile(name, pred, child), nil
	case "gate":
		pred, err := b.predicate(nd, ctx)
		if err != nil {
			return nil, err
		}
		child, err := b.required(nd.Child)
		if err != nil {
			return nil, err
		}
		return NewGate(name, pred, child), nil
	case "fallback":
		primary, err := b.required(nd.Child)
		if err != nil {
			return nil, err
		}
		fallback, err := b.optional(nd.Fallback)
		if err != nil {
			return nil, err
		}
		return NewFallback(name, primary, fallback), nil
	case "branch":
		pred, err := b.predicate(nd, ctx)
		if err != nil {
			return nil, err
		}
		onTrue, err := b.optional(nd.OnTrue)
		if err != nil {
			return nil, err
		}
		onFalse, err := b.optional(nd.OnFalse)
		if err != nil {
			return nil, err
		}
		return NewBranch(name, pred, onTrue, onFalse), nil
	case "action", "leaf":
		kind := nd.Action
		if kind == "" {
			kind = name
		}
		return b.reg.NewAction(kind, ctx)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownNodeType, nd.Type)
	}
}

func (b *builder) list(names []string) ([]Node, error) {
	out := make([]Node, 0, len(names))
	for _, n := range names {
		ch, err := b.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func (b *builder) required(name string) (Node, error) {
	if name == "" {
		return nil, ErrMissingChild
	}
	return b.node(name)
}

func (b *builder) optional(name string) (Node, error) {
	if name == "" {
		return nil, nil
	}
	return b.node(name)
}

func (b *builder) predicate(nd NodeDef, ctx BuildContext) (Predicate, error) {
	switch {
	case nd.Expr != "":
		return ExprPredicate(nd.Expr, b.bb)
	case nd.Predicate != "":
		return b.reg.NewPredicate(nd.Predicate, ctx)
	default:
		return nil, ErrMissingPredicate
	}
}
