package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// GuardEvaluator compiles and evaluates the optional guard expressions a
// rule may carry. Guards see a small, fixed fact set derived from the
// entity adapter; they cannot reach into raw records.
type GuardEvaluator struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

func NewGuardEvaluator() (*GuardEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("phase", cel.StringType),
		cel.Variable("days_in_phase", cel.IntType),
		cel.Variable("days_since_creation", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &GuardEvaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Validate checks that an expression compiles and yields a boolean.
func (g *GuardEvaluator) Validate(expression string) error {
	ast, issues := g.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("guard expression validation failed: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("guard expression must return bool, got %v", ast.OutputType())
	}
	return nil
}

// Evaluate runs an expression against the fact map. Compiled programs are
// cached per expression so repeated evaluation across a batch only pays
// compilation once.
func (g *GuardEvaluator) Evaluate(expression string, facts map[string]any) (bool, error) {
	program, err := g.program(expression)
	if err != nil {
		return false, err
	}

	result, _, err := program.Eval(facts)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate guard expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("guard expression did not return bool, got %T", result.Value())
	}
	return boolVal, nil
}

func (g *GuardEvaluator) program(expression string) (cel.Program, error) {
	g.mu.RLock()
	program, ok := g.programs[expression]
	g.mu.RUnlock()
	if ok {
		return program, nil
	}

	ast, issues := g.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile guard expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("guard expression must return bool, got %v", ast.OutputType())
	}

	program, err := g.env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return nil, fmt.Errorf("failed to create guard program: %w", err)
	}

	g.mu.Lock()
	g.programs[expression] = program
	g.mu.Unlock()

	return program, nil
}
