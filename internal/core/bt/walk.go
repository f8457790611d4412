package bt

import (
	"fmt"
	"strings"
)

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the children of the visited node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	if p, ok := n.(Parent); ok {
		for _, ch := range p.Children() {
			walk(ch, depth+1, fn)
		}
	}
}

// Describe renders the tree under n as an indented outline.
func Describe(n Node) string {
	var sb strings.Builder
	Walk(n, func(n Node, depth int) bool {
		fmt.Fprintf(&sb, "%s%s (%s)\n", strings.Repeat("  ", depth), n.Name(), KindOf(n))
		return true
	})
	return sb.String()
}

// KindOf names the node kind of n.
func KindOf(n Node) string {
	switch v := n.(type) {
	case *Sequence:
		return "sequence"
	case *Select:
		return "select"
	case *Parallel:
		return "parallel"
	case *Invert:
		return "invert"
	case *Optional:
		return "optional"
	case *Repeat:
		return "repeat"
	case *DoWhile:
		return "do_while"
	case *Gate:
		if v.guarded {
			return "gate"
		}
		return "fallback"
	case *Branch:
		return "branch"
	case *Action:
		return "action"
	case *Leaf:
		return "leaf"
	default:
		return fmt.Sprintf("%T", n)
	}
}
