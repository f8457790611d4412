package bt

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprPredicate compiles source into a Predicate evaluated against a
// snapshot of bb. Blackboard keys are the expression's variables; unknown
// keys evaluate to nil. Runtime errors are reported as predicate faults.
func ExprPredicate(source string, bb *Blackboard) (Predicate, error) {
	program, err := compileExpr(source)
	if err != nil {
		return nil, err
	}
	return func() (bool, error) {
		return runExpr(program, source, bb.Snapshot())
	}, nil
}

func compileExpr(source string) (*vm.Program, error) {
	program, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}
	return program, nil
}

func runExpr(program *vm.Program, source string, env map[string]any) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: result is %T, not bool", source, out)
	}
	return b, nil
}
