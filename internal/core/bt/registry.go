package bt

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
)

var (
	ErrUnknownAction    = errors.New("bt: unknown action")
	ErrUnknownPredicate = errors.New("bt: unknown predicate")
)

// Params carries the free-form parameters of a node definition.
type Params map[string]any

func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (p Params) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Duration accepts Go duration strings or a number of seconds.
func (p Params) Duration(key string, def time.Duration) time.Duration {
	switch v := p[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int, int64, float64:
		return time.Duration(p.Float(key, 0) * float64(time.Second))
	}
	return def
}

// BuildContext is handed to factories while a definition is assembled.
type BuildContext struct {
	// Name is the node name from the definition.
	Name       string
	Params     Params
	Blackboard *Blackboard
}

type (
	ActionFactory    func(ctx BuildContext) (Node, error)
	PredicateFactory func(ctx BuildContext) (Predicate, error)
)

// Registry maps names used in tree definitions to leaf and predicate
// factories.
type Registry struct {
	mu         sync.RWMutex
	actions    map[string]ActionFactory
	predicates map[string]PredicateFactory
}

func NewRegistry() *Registry {
	return &Registry{
		actions:    make(map[string]ActionFactory),
		predicates: make(map[string]PredicateFactory),
	}
}

func (r *Registry) RegisterAction(name string, factory ActionFactory) {
	r.mu.Lock()
	r.actions[name] = factory
	r.mu.Unlock()
}

func (r *Registry) RegisterPredicate(name string, factory PredicateFactory) {
	r.mu.Lock()
	r.predicates[name] = factory
	r.mu.Unlock()
}

// RegisterTask registers a factory of Tasks wrapped in a Leaf.
func (r *Registry) RegisterTask(name string, factory func(ctx BuildContext) (Task, error)) {
	r.RegisterAction(name, func(ctx BuildContext) (Node, error) {
		task, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		return NewLeaf(ctx.Name, task), nil
	})
}

func (r *Registry) NewAction(name string, ctx BuildContext) (Node, error) {
	r.mu.RLock()
	f := r.actions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w %q%s", ErrUnknownAction, name, suggest(name, r.Actions()))
	}
	n, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}
	return n, nil
}

func (r *Registry) NewPredicate(name string, ctx BuildContext) (Predicate, error) {
	r.mu.RLock()
	f := r.predicates[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w %q%s", ErrUnknownPredicate, name, suggest(name, r.Predicates()))
	}
	p, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("predicate %q: %w", name, err)
	}
	return p, nil
}

// Actions lists the registered action names in sorted order.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions)
}

// Predicates lists the registered predicate names in sorted order.
func (r *Registry) Predicates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.predicates)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// suggest returns a "did you mean" hint for the closest known name.
func suggest(name string, known []string) string {
	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein.ComputeDistance(name, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist < 0 || bestDist > len(name)/2+1 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
